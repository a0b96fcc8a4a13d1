package localstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/seckatie/moohub/internal/core/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(storage.NewMemStorage())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ids(cfg []WidgetConfig) []string {
	out := make([]string, len(cfg))
	for i, w := range cfg {
		out[i] = w.ID
	}
	return out
}

func TestOpenPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prefs")
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(ThemeLight))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestDashboard(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := newTestStore(t)
		cfg, err := s.Dashboard()
		require.NoError(t, err)
		assert.Equal(t, DefaultDashboard(), cfg)
		assert.Len(t, cfg, len(widgets.All()))
		assert.Len(t, VisibleWidgets(cfg), 7)
	})

	t.Run("merge keeps saved order and appends new widgets", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.put(KeyDashboard, []WidgetConfig{
			{ID: "news", Label: "stale label", Icon: "x", Visible: false},
			{ID: "clock", Visible: true},
			{ID: "retired-widget", Visible: true},
			{ID: "news", Visible: true},
		}))

		cfg, err := s.Dashboard()
		require.NoError(t, err)
		require.Len(t, cfg, len(widgets.All()))
		assert.Equal(t, []string{"news", "clock"}, ids(cfg[:2]))

		news, err := widgets.Lookup("news")
		require.NoError(t, err)
		assert.Equal(t, WidgetConfig{ID: "news", Label: news.Label, Icon: news.Icon, Visible: false}, cfg[0])
		assert.NotContains(t, ids(cfg), "retired-widget")
	})

	t.Run("unreadable value falls back to defaults", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.db.Put([]byte(KeyDashboard), []byte("{not json"), nil))
		cfg, err := s.Dashboard()
		require.NoError(t, err)
		assert.Equal(t, DefaultDashboard(), cfg)
	})

	t.Run("toggle", func(t *testing.T) {
		s := newTestStore(t)
		cfg, err := s.ToggleWidget("todo")
		require.NoError(t, err)
		assert.Contains(t, ids(VisibleWidgets(cfg)), "todo")

		cfg, err = s.Dashboard()
		require.NoError(t, err)
		assert.Contains(t, ids(VisibleWidgets(cfg)), "todo", "toggle is saved")

		_, err = s.ToggleWidget("nope")
		assert.ErrorIs(t, err, widgets.ErrUnknownKind)
	})

	t.Run("move", func(t *testing.T) {
		s := newTestStore(t)
		defaults := ids(DefaultDashboard())

		cfg, err := s.MoveWidget(0, 2)
		require.NoError(t, err)
		want := append([]string{defaults[1], defaults[2], defaults[0]}, defaults[3:]...)
		if diff := cmp.Diff(want, ids(cfg)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}

		last := len(cfg) - 1
		cfg, err = s.MoveWidget(last, 0)
		require.NoError(t, err)
		assert.Equal(t, defaults[last], cfg[0].ID)

		_, err = s.MoveWidget(0, last+1)
		assert.ErrorIs(t, err, ErrInvalidIndex)
		_, err = s.MoveWidget(-1, 0)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("reset", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.ToggleWidget("clock")
		require.NoError(t, err)
		cfg, err := s.ResetDashboard()
		require.NoError(t, err)
		assert.Equal(t, DefaultDashboard(), cfg)
	})
}

func TestGenres(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "lofi", s.MusicGenre().ID)
	assert.Equal(t, "lofi", s.YouTubeGenre().ID)

	require.NoError(t, s.SetMusicGenre("jazz"))
	require.NoError(t, s.SetYouTubeGenre("ambient"))
	assert.Equal(t, "jazz", s.MusicGenre().ID)
	assert.Equal(t, "ambient", s.YouTubeGenre().ID)

	assert.ErrorIs(t, s.SetMusicGenre("ambient"), ErrUnknownGenre)
	assert.ErrorIs(t, s.SetYouTubeGenre("chill"), ErrUnknownGenre)

	require.NoError(t, s.put(KeyMusicGenre, "polka"))
	assert.Equal(t, "lofi", s.MusicGenre().ID, "unknown saved genre falls back")
}

func TestDDays(t *testing.T) {
	s := newTestStore(t)
	d, err := s.AddDDay(" Launch ", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Launch", d.Label)
	assert.NotEmpty(t, d.ID)

	_, err = s.AddDDay("bad", "03/01/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.AddDDay("  ", "2026-03-01")
	assert.ErrorIs(t, err, ErrEmptyText)

	days, err := s.DDays()
	require.NoError(t, err)
	require.Len(t, days, 1)

	seoul := time.FixedZone("KST", 9*60*60)
	tests := []struct {
		now  time.Time
		want int
		text string
	}{
		{time.Date(2026, 2, 26, 23, 59, 0, 0, seoul), 3, "D-3"},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, seoul), 0, "D-Day"},
		{time.Date(2026, 3, 1, 23, 0, 0, 0, seoul), 0, "D-Day"},
		{time.Date(2026, 3, 3, 8, 0, 0, 0, seoul), -2, "D+2"},
	}
	for _, tt := range tests {
		got, err := DaysUntil(d, tt.now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.now.String())
		assert.Equal(t, tt.text, FormatDDay(got))
	}

	require.NoError(t, s.RemoveDDay(d.ID))
	days, err = s.DDays()
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestTodos(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	milk, err := s.AddTodo("milk")
	require.NoError(t, err)
	eggs, err := s.AddTodo("eggs")
	require.NoError(t, err)
	_, err = s.AddTodo("   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	toggled, err := s.ToggleTodo(milk.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)
	_, err = s.ToggleTodo("missing")
	assert.ErrorIs(t, err, ErrTodoNotFound)

	todos, err := s.Todos()
	require.NoError(t, err)
	assert.Len(t, todos, 2, "same day keeps done items")

	now = now.Add(24 * time.Hour)
	todos, err = s.Todos()
	require.NoError(t, err)
	require.Len(t, todos, 1, "new day purges done items")
	assert.Equal(t, eggs.ID, todos[0].ID)

	var lastReset string
	_, err = s.get(KeyTodosReset, &lastReset)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-02", lastReset)

	_, err = s.ToggleTodo(eggs.ID)
	require.NoError(t, err)
	todos, err = s.ClearDone()
	require.NoError(t, err)
	assert.Empty(t, todos)

	t.Run("first load never purges", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.put(KeyTodos, []Todo{{ID: "a", Text: "done", Done: true}}))
		todos, err := s.Todos()
		require.NoError(t, err)
		assert.Len(t, todos, 1)
	})

	t.Run("remove", func(t *testing.T) {
		s := newTestStore(t)
		a, err := s.AddTodo("a")
		require.NoError(t, err)
		require.NoError(t, s.RemoveTodo(a.ID))
		todos, err := s.Todos()
		require.NoError(t, err)
		assert.Empty(t, todos)
	})
}

func TestTheme(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, ThemeDark, s.Theme())

	next, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
	assert.Equal(t, ThemeLight, s.Theme())

	assert.ErrorIs(t, s.SetTheme("sepia"), ErrInvalidTheme)
	require.NoError(t, s.put(KeyTheme, "sepia"))
	assert.Equal(t, ThemeDark, s.Theme())
}
