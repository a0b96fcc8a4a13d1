package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
	"github.com/seckatie/moohub/internal/core/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend is a real MooHub server over an in-memory database.
type testBackend struct {
	srv      *httptest.Server
	db       *db.DB
	sessions *auth.Sessions
}

func newTestBackend(t *testing.T, wrap func(http.Handler) http.Handler) *testBackend {
	t.Helper()
	database, err := db.NewSQLiteDB(":memory:", core.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { database.Close() })

	sessions := auth.NewSessions([]byte("0123456789abcdef0123456789abcdef"), nil, false)
	handler := web.NewServer(web.Options{
		DB:       database,
		Sessions: sessions,
		Log:      core.DiscardLogger(),
	}).Handler()
	if wrap != nil {
		handler = wrap(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testBackend{srv: srv, db: database, sessions: sessions}
}

// apiFor returns a client signed in as email, creating the user.
func (b *testBackend) apiFor(t *testing.T, email string) (*API, db.User) {
	t.Helper()
	user, err := b.db.UpsertUser(context.Background(), email, email, "")
	require.NoError(t, err)
	cookie, err := b.sessions.Cookie(auth.Session{UserID: user.ID, Email: email})
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(b.srv.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{cookie})

	return NewAPI(b.srv.URL+"/", &http.Client{Jar: jar}), user
}

func (b *testBackend) anonymous() *API {
	return NewAPI(b.srv.URL, nil)
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: http.StatusNotFound, Message: "Not found"}
	assert.Equal(t, "server returned 404: Not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthenticated(err))
	assert.Equal(t, "server returned 401", (&StatusError{StatusCode: 401}).Error())
}

func TestAPI(t *testing.T) {
	backend := newTestBackend(t, nil)
	ctx := context.Background()
	alice, aliceUser := backend.apiFor(t, "alice@example.com")
	bob, _ := backend.apiFor(t, "bob@example.com")

	t.Run("session", func(t *testing.T) {
		user, err := alice.Session(ctx)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, aliceUser.ID, user.ID)

		user, err = backend.anonymous().Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := backend.anonymous().ListPosts(ctx)
		require.Error(t, err)
		assert.True(t, IsUnauthenticated(err))
	})

	t.Run("posts", func(t *testing.T) {
		p, err := alice.CreatePost(ctx, db.NewPost{Title: "T", Content: "C", Status: "draft"})
		require.NoError(t, err)
		assert.Nil(t, p.PublishedAt)

		got, err := alice.GetPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)

		_, err = bob.GetPost(ctx, p.ID)
		assert.True(t, IsNotFound(err))

		err = bob.DeletePost(ctx, p.ID)
		assert.True(t, IsNotFound(err))
		require.NoError(t, alice.DeletePost(ctx, p.ID))
	})

	t.Run("bad request message", func(t *testing.T) {
		_, err := alice.CreatePost(ctx, db.NewPost{Title: "x", Status: "archived"})
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Contains(t, se.Message, "invalid post status")
	})

	t.Run("logout", func(t *testing.T) {
		carol, _ := backend.apiFor(t, "carol@example.com")
		require.NoError(t, carol.Logout(ctx))
		user, err := carol.Session(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}
