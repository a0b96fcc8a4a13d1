package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/seckatie/moohub/internal/core/db"
	"github.com/seckatie/moohub/internal/core/patch"
)

// ErrDetached is returned by a store whose cache was discarded. Requests are
// not sent once the store is detached, and a request in flight at that
// moment is cancelled; its result is never applied to memory.
var ErrDetached = errors.New("store detached from the current session")

// ErrNotLoaded is returned for operations that need an entity the store has
// not loaded.
var ErrNotLoaded = errors.New("not loaded")

// store is the state shared by every resource store: a mutex, the loading
// flag and the detached marker set when the owning cache is discarded.
type store struct {
	api      *API
	mu       sync.Mutex
	loading  bool
	detached bool

	// life is cancelled on detach and bounds every request.
	life context.Context
	end  context.CancelFunc
}

func (s *store) init(api *API) {
	s.api = api
	s.life, s.end = context.WithCancel(context.Background())
}

func (s *store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *store) isDetached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func (s *store) detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
	s.end()
}

// send runs one request unless the store is detached. The request context
// is cancelled if the store is detached while it runs; any failure after
// detach reads as ErrDetached.
func send[T any](s *store, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if s.isDetached() {
		return zero, ErrDetached
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.life, cancel)
	defer stop()

	v, err := fn(ctx)
	if err != nil {
		if s.isDetached() {
			return v, ErrDetached
		}
		return v, err
	}
	return v, nil
}

// sendOnly is send for requests without a result.
func sendOnly(s *store, ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := send(s, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// apply runs fn under the lock unless the store has been detached.
func (s *store) apply(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return ErrDetached
	}
	fn()
	return nil
}

// load sets the loading flag around fetch, then applies the result.
func load[T any](s *store, ctx context.Context, fetch func(ctx context.Context) (T, error), set func(T)) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	v, err := send(s, ctx, fetch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return err
	}
	if s.detached {
		return ErrDetached
	}
	set(v)
	return nil
}

// replaceByID swaps the entity with the same id for v.
func replaceByID[T any](items []T, v T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(v) {
			items[i] = v
		}
	}
	return items
}

func removeByID[T any](items []T, target string, id func(T) string) []T {
	return slices.DeleteFunc(items, func(v T) bool { return id(v) == target })
}

func postID(p db.Post) string         { return p.ID }
func memoID(m db.Memo) string         { return m.ID }
func folderID(f db.Folder) string     { return f.ID }
func bookmarkID(b db.Bookmark) string { return b.ID }

// ------------------------------
// Posts
// ------------------------------

// PostStore caches the current user's posts, newest first.
type PostStore struct {
	store
	posts []db.Post
}

func (s *PostStore) Posts() []db.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

// Get looks a post up in memory only.
func (s *PostStore) Get(id string) (db.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return db.Post{}, false
}

// Load replaces the cached posts with the server's list.
func (s *PostStore) Load(ctx context.Context) error {
	return load(&s.store, ctx, s.api.ListPosts, func(posts []db.Post) {
		s.posts = posts
	})
}

func (s *PostStore) Add(ctx context.Context, in db.NewPost) (db.Post, error) {
	p, err := send(&s.store, ctx, func(ctx context.Context) (db.Post, error) {
		return s.api.CreatePost(ctx, in)
	})
	if err != nil {
		return db.Post{}, err
	}
	return p, s.apply(func() {
		s.posts = append([]db.Post{p}, s.posts...)
	})
}

func (s *PostStore) Update(ctx context.Context, id string, in db.PostPatch) (db.Post, error) {
	p, err := send(&s.store, ctx, func(ctx context.Context) (db.Post, error) {
		return s.api.UpdatePost(ctx, id, in)
	})
	if err != nil {
		return db.Post{}, err
	}
	return p, s.apply(func() {
		s.posts = replaceByID(s.posts, p, postID)
	})
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := sendOnly(&s.store, ctx, func(ctx context.Context) error {
		return s.api.DeletePost(ctx, id)
	}); err != nil {
		return err
	}
	return s.apply(func() {
		s.posts = removeByID(s.posts, id, postID)
	})
}

// ------------------------------
// Memos
// ------------------------------

// MemoStore caches the current user's memos, newest first.
type MemoStore struct {
	store
	memos []db.Memo
}

func (s *MemoStore) Memos() []db.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.memos)
}

// ByDate groups the cached memos by their day bucket.
func (s *MemoStore) ByDate() map[string][]db.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]db.Memo)
	for _, m := range s.memos {
		out[m.Date] = append(out[m.Date], m)
	}
	return out
}

func (s *MemoStore) Load(ctx context.Context) error {
	return load(&s.store, ctx, s.api.ListMemos, func(memos []db.Memo) {
		s.memos = memos
	})
}

func (s *MemoStore) Add(ctx context.Context, content string) (db.Memo, error) {
	m, err := send(&s.store, ctx, func(ctx context.Context) (db.Memo, error) {
		return s.api.CreateMemo(ctx, db.NewMemo{Content: content})
	})
	if err != nil {
		return db.Memo{}, err
	}
	return m, s.apply(func() {
		s.memos = append([]db.Memo{m}, s.memos...)
	})
}

func (s *MemoStore) Update(ctx context.Context, id, content string) (db.Memo, error) {
	m, err := send(&s.store, ctx, func(ctx context.Context) (db.Memo, error) {
		return s.api.UpdateMemo(ctx, id, db.MemoPatch{Content: patch.Some(content)})
	})
	if err != nil {
		return db.Memo{}, err
	}
	return m, s.apply(func() {
		s.memos = replaceByID(s.memos, m, memoID)
	})
}

func (s *MemoStore) Delete(ctx context.Context, id string) error {
	if err := sendOnly(&s.store, ctx, func(ctx context.Context) error {
		return s.api.DeleteMemo(ctx, id)
	}); err != nil {
		return err
	}
	return s.apply(func() {
		s.memos = removeByID(s.memos, id, memoID)
	})
}

// ------------------------------
// Bookmarks
// ------------------------------

// BookmarkStore caches the current user's folders and bookmarks.
type BookmarkStore struct {
	store
	folders   []db.Folder
	bookmarks []db.Bookmark
}

func (s *BookmarkStore) Folders() []db.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.folders)
}

func (s *BookmarkStore) Bookmarks() []db.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bookmarks)
}

// InFolder returns the cached bookmarks of one folder in display order.
func (s *BookmarkStore) InFolder(folderID string) []db.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Bookmark
	for _, b := range s.bookmarks {
		if b.FolderID == folderID {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b db.Bookmark) int { return a.Order - b.Order })
	return out
}

func (s *BookmarkStore) Load(ctx context.Context) error {
	return load(&s.store, ctx, s.api.BookmarkTree, func(tree db.BookmarkTree) {
		s.folders = tree.Folders
		s.bookmarks = tree.Bookmarks
	})
}

func (s *BookmarkStore) AddFolder(ctx context.Context, name string) (db.Folder, error) {
	f, err := send(&s.store, ctx, func(ctx context.Context) (db.Folder, error) {
		return s.api.CreateFolder(ctx, db.NewFolder{Name: name})
	})
	if err != nil {
		return db.Folder{}, err
	}
	return f, s.apply(func() {
		s.folders = append(s.folders, f)
	})
}

func (s *BookmarkStore) RenameFolder(ctx context.Context, id, name string) (db.Folder, error) {
	return s.updateFolder(ctx, id, db.FolderPatch{Name: patch.Some(name)})
}

// ToggleFolder flips the collapsed flag of a cached folder.
func (s *BookmarkStore) ToggleFolder(ctx context.Context, id string) (db.Folder, error) {
	s.mu.Lock()
	var collapsed, found bool
	for _, f := range s.folders {
		if f.ID == id {
			collapsed, found = f.Collapsed, true
		}
	}
	s.mu.Unlock()
	if !found {
		return db.Folder{}, fmt.Errorf("folder %s: %w", id, ErrNotLoaded)
	}
	return s.updateFolder(ctx, id, db.FolderPatch{Collapsed: patch.Some(!collapsed)})
}

func (s *BookmarkStore) updateFolder(ctx context.Context, id string, in db.FolderPatch) (db.Folder, error) {
	f, err := send(&s.store, ctx, func(ctx context.Context) (db.Folder, error) {
		return s.api.UpdateFolder(ctx, id, in)
	})
	if err != nil {
		return db.Folder{}, err
	}
	if in.Order.Set {
		// The server renumbered every sibling.
		return f, s.Load(ctx)
	}
	return f, s.apply(func() {
		s.folders = replaceByID(s.folders, f, folderID)
	})
}

// MoveFolder puts a folder at position order; the server shifts the others.
func (s *BookmarkStore) MoveFolder(ctx context.Context, id string, order int) (db.Folder, error) {
	return s.updateFolder(ctx, id, db.FolderPatch{Order: patch.Some(order)})
}

// DeleteFolder deletes the folder with its bookmarks, then reloads the tree
// since the server compacts the remaining folders' order.
func (s *BookmarkStore) DeleteFolder(ctx context.Context, id string) error {
	if err := sendOnly(&s.store, ctx, func(ctx context.Context) error {
		return s.api.DeleteFolder(ctx, id)
	}); err != nil {
		return err
	}
	return s.Load(ctx)
}

// ReorderFolders sends the full new order and caches the renumbered folders.
func (s *BookmarkStore) ReorderFolders(ctx context.Context, ids []string) ([]db.Folder, error) {
	folders, err := send(&s.store, ctx, func(ctx context.Context) ([]db.Folder, error) {
		return s.api.ReorderFolders(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return folders, s.apply(func() {
		s.folders = folders
	})
}

func (s *BookmarkStore) AddBookmark(ctx context.Context, in db.NewBookmark) (db.Bookmark, error) {
	b, err := send(&s.store, ctx, func(ctx context.Context) (db.Bookmark, error) {
		return s.api.CreateBookmark(ctx, in)
	})
	if err != nil {
		return db.Bookmark{}, err
	}
	return b, s.apply(func() {
		s.bookmarks = append(s.bookmarks, b)
	})
}

// UpdateBookmark applies a partial update. When the patch changes position
// or folder the server renumbers the siblings, so the tree is reloaded.
func (s *BookmarkStore) UpdateBookmark(ctx context.Context, id string, in db.BookmarkPatch) (db.Bookmark, error) {
	b, err := send(&s.store, ctx, func(ctx context.Context) (db.Bookmark, error) {
		return s.api.UpdateBookmark(ctx, id, in)
	})
	if err != nil {
		return db.Bookmark{}, err
	}
	if in.Order.Set || in.FolderID.Set {
		return b, s.Load(ctx)
	}
	return b, s.apply(func() {
		s.bookmarks = replaceByID(s.bookmarks, b, bookmarkID)
	})
}

// MoveBookmark puts a bookmark at the end of another folder.
func (s *BookmarkStore) MoveBookmark(ctx context.Context, id, targetFolderID string) (db.Bookmark, error) {
	return s.UpdateBookmark(ctx, id, db.BookmarkPatch{FolderID: patch.Some(targetFolderID)})
}

// ReorderBookmarks sends the full new order of one folder.
func (s *BookmarkStore) ReorderBookmarks(ctx context.Context, folderID string, ids []string) ([]db.Bookmark, error) {
	reordered, err := send(&s.store, ctx, func(ctx context.Context) ([]db.Bookmark, error) {
		return s.api.ReorderBookmarks(ctx, folderID, ids)
	})
	if err != nil {
		return nil, err
	}
	return reordered, s.apply(func() {
		for _, b := range reordered {
			s.bookmarks = replaceByID(s.bookmarks, b, bookmarkID)
		}
	})
}

// DeleteBookmark deletes a bookmark and reloads the tree, since the server
// compacts the order of the folder it left.
func (s *BookmarkStore) DeleteBookmark(ctx context.Context, id string) error {
	if err := sendOnly(&s.store, ctx, func(ctx context.Context) error {
		return s.api.DeleteBookmark(ctx, id)
	}); err != nil {
		return err
	}
	return s.Load(ctx)
}
