package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/db"
	"github.com/seckatie/moohub/internal/core/patch"
	"github.com/sirupsen/logrus"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrEditorClosed  = errors.New("editor is closed")
	// ErrPublishStatus is returned when Publish is asked for a draft.
	ErrPublishStatus = errors.New("publish status must be published or private")
)

// State of an editing session.
type State int

const (
	// StateNew has no persisted post yet.
	StateNew State = iota
	// StateEditingExisting is bound to a saved post with no unsaved edits.
	StateEditingExisting
	// StateDirty has edits that have not been saved.
	StateDirty
	// StateClosed is terminal; the post was published or the editor closed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateEditingExisting:
		return "editing-existing"
	case StateDirty:
		return "dirty"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PostWriter persists posts. *PostStore implements it, so saves also update
// the cached post list.
type PostWriter interface {
	Add(ctx context.Context, in db.NewPost) (db.Post, error)
	Update(ctx context.Context, id string, in db.PostPatch) (db.Post, error)
}

// Editor is one blog editing session with periodic draft autosave.
type Editor struct {
	posts    PostWriter
	interval time.Duration
	log      *logrus.Entry

	// saveMu serializes saves; mu guards the fields below.
	saveMu  sync.Mutex
	mu      sync.Mutex
	id      string
	title   string
	content string
	tags    []string
	state   State
	edits   uint64

	edited chan struct{}
	closed chan struct{}
}

type EditorOption func(*Editor)

// WithInterval overrides the autosave interval.
func WithInterval(d time.Duration) EditorOption {
	return func(e *Editor) { e.interval = d }
}

func WithLogger(log *logrus.Entry) EditorOption {
	return func(e *Editor) { e.log = log }
}

// NewEditor starts a session for a post that does not exist yet.
func NewEditor(posts PostWriter, opts ...EditorOption) *Editor {
	e := &Editor{
		posts:    posts,
		interval: core.AutosaveInterval,
		log:      core.DiscardLogger(),
		tags:     []string{},
		state:    StateNew,
		edited:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenEditor starts a session on an existing post.
func OpenEditor(posts PostWriter, post db.Post, opts ...EditorOption) *Editor {
	e := NewEditor(posts, opts...)
	e.id = post.ID
	e.title = post.Title
	e.content = post.Content
	e.tags = append([]string{}, post.Tags...)
	e.state = StateEditingExisting
	return e
}

// ParseTags splits a comma-separated tag string, trimming each tag and
// dropping blanks.
func ParseTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) SetTitle(title string) error {
	return e.edit(func() { e.title = title })
}

func (e *Editor) SetContent(content string) error {
	return e.edit(func() { e.content = content })
}

// SetTags takes the raw comma-separated input.
func (e *Editor) SetTags(raw string) error {
	return e.edit(func() { e.tags = ParseTags(raw) })
}

func (e *Editor) edit(fn func()) error {
	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	fn()
	e.edits++
	e.state = StateDirty
	e.mu.Unlock()

	select {
	case e.edited <- struct{}{}:
	default:
	}
	return nil
}

// Run autosaves a draft every interval until ctx is done or the editor is
// closed. Every edit restarts the interval. Autosave errors are logged and
// retried on the next tick.
func (e *Editor) Run(ctx context.Context) error {
	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.closed:
			return nil
		case <-e.edited:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(e.interval)
		case <-timer.C:
			if err := e.SaveDraft(ctx); err != nil && !errors.Is(err, ErrEditorClosed) {
				e.log.Warnf("Autosave failed: %v", err)
			}
			timer.Reset(e.interval)
		}
	}
}

// SaveDraft saves the current fields as a draft right away. It does nothing
// while both title and content are blank.
func (e *Editor) SaveDraft(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	id, title, content, tags, edits := e.id, e.title, e.content, e.tags, e.edits
	e.mu.Unlock()

	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return nil
	}

	post, err := e.write(ctx, id, title, content, tags, core.PostStatusDraft)
	if err != nil {
		e.endIfDetached(post, err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = post.ID
	if e.state != StateClosed && e.edits == edits {
		e.state = StateEditingExisting
	}
	return nil
}

// Publish saves the post with status published or private and closes the
// session. A blank title fails with ErrTitleRequired before any request.
func (e *Editor) Publish(ctx context.Context, status string) (db.Post, error) {
	if status != core.PostStatusPublished && status != core.PostStatusPrivate {
		return db.Post{}, fmt.Errorf("%w: %q", ErrPublishStatus, status)
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return db.Post{}, ErrEditorClosed
	}
	id, title, content, tags := e.id, e.title, e.content, e.tags
	e.mu.Unlock()

	if strings.TrimSpace(title) == "" {
		return db.Post{}, ErrTitleRequired
	}

	post, err := e.write(ctx, id, title, content, tags, status)
	if err != nil {
		e.endIfDetached(post, err)
		return db.Post{}, err
	}

	e.mu.Lock()
	e.id = post.ID
	e.mu.Unlock()
	e.Close()
	return post, nil
}

// Close ends the session and stops Run. It is safe to call more than once.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed {
		return
	}
	e.state = StateClosed
	close(e.closed)
}

// endIfDetached closes the editor once its store has been detached, so no
// later save can reach the server under another session. A post the server
// created before the detach is still adopted.
func (e *Editor) endIfDetached(post db.Post, err error) {
	if !errors.Is(err, ErrDetached) {
		return
	}
	e.mu.Lock()
	if post.ID != "" {
		e.id = post.ID
	}
	e.mu.Unlock()
	e.log.Info("Editing session ended by a sign-in change")
	e.Close()
}

func (e *Editor) write(ctx context.Context, id, title, content string, tags []string, status string) (db.Post, error) {
	if id == "" {
		return e.posts.Add(ctx, db.NewPost{
			Title:   title,
			Content: content,
			Tags:    tags,
			Status:  status,
		})
	}
	return e.posts.Update(ctx, id, db.PostPatch{
		Title:   patch.Some(title),
		Content: patch.Some(content),
		Tags:    patch.Some(tags),
		Status:  patch.Some(status),
	})
}
