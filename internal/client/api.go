// Package client talks to a MooHub server and keeps per-user caches of its
// resources.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/seckatie/moohub/internal/core/db"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsUnauthenticated reports whether err is a 401 from the server.
func IsUnauthenticated(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404 from the server. Rows owned by
// another user are reported the same way.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// API is a typed client for the resource endpoints. Authentication rides on
// the session cookie, so the http.Client should carry a cookie jar.
type API struct {
	base   string
	client *http.Client
}

func NewAPI(baseURL string, client *http.Client) *API {
	if client == nil {
		client = http.DefaultClient
	}
	return &API{base: strings.TrimRight(baseURL, "/"), client: client}
}

// do sends in as JSON (when non-nil) and decodes the response into out (when
// non-nil).
func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return interpretStatus(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func interpretStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// Session returns the signed-in user, or nil when signed out.
func (a *API) Session(ctx context.Context) (*db.User, error) {
	var out struct {
		User *db.User `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ------------------------------
// Posts
// ------------------------------

func (a *API) ListPosts(ctx context.Context) ([]db.Post, error) {
	var out []db.Post
	err := a.do(ctx, http.MethodGet, "/api/blog", nil, &out)
	return out, err
}

func (a *API) GetPost(ctx context.Context, id string) (db.Post, error) {
	var out db.Post
	err := a.do(ctx, http.MethodGet, "/api/blog/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (a *API) CreatePost(ctx context.Context, in db.NewPost) (db.Post, error) {
	var out db.Post
	err := a.do(ctx, http.MethodPost, "/api/blog", in, &out)
	return out, err
}

func (a *API) UpdatePost(ctx context.Context, id string, in db.PostPatch) (db.Post, error) {
	var out db.Post
	err := a.do(ctx, http.MethodPatch, "/api/blog/"+url.PathEscape(id), in, &out)
	return out, err
}

func (a *API) DeletePost(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/blog/"+url.PathEscape(id), nil, nil)
}

// ------------------------------
// Memos
// ------------------------------

func (a *API) ListMemos(ctx context.Context) ([]db.Memo, error) {
	var out []db.Memo
	err := a.do(ctx, http.MethodGet, "/api/memo", nil, &out)
	return out, err
}

func (a *API) CreateMemo(ctx context.Context, in db.NewMemo) (db.Memo, error) {
	var out db.Memo
	err := a.do(ctx, http.MethodPost, "/api/memo", in, &out)
	return out, err
}

func (a *API) UpdateMemo(ctx context.Context, id string, in db.MemoPatch) (db.Memo, error) {
	var out db.Memo
	err := a.do(ctx, http.MethodPatch, "/api/memo/"+url.PathEscape(id), in, &out)
	return out, err
}

func (a *API) DeleteMemo(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/memo/"+url.PathEscape(id), nil, nil)
}

// ------------------------------
// Bookmarks
// ------------------------------

func (a *API) BookmarkTree(ctx context.Context) (db.BookmarkTree, error) {
	var out db.BookmarkTree
	err := a.do(ctx, http.MethodGet, "/api/bookmarks", nil, &out)
	return out, err
}

func (a *API) CreateFolder(ctx context.Context, in db.NewFolder) (db.Folder, error) {
	var out db.Folder
	err := a.do(ctx, http.MethodPost, "/api/bookmarks/folders", in, &out)
	return out, err
}

func (a *API) UpdateFolder(ctx context.Context, id string, in db.FolderPatch) (db.Folder, error) {
	var out db.Folder
	err := a.do(ctx, http.MethodPatch, "/api/bookmarks/folders/"+url.PathEscape(id), in, &out)
	return out, err
}

func (a *API) DeleteFolder(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/bookmarks/folders/"+url.PathEscape(id), nil, nil)
}

func (a *API) ReorderFolders(ctx context.Context, ids []string) ([]db.Folder, error) {
	var out []db.Folder
	err := a.do(ctx, http.MethodPut, "/api/bookmarks/folders/order", map[string][]string{"ids": ids}, &out)
	return out, err
}

func (a *API) ReorderBookmarks(ctx context.Context, folderID string, ids []string) ([]db.Bookmark, error) {
	var out []db.Bookmark
	path := "/api/bookmarks/folders/" + url.PathEscape(folderID) + "/order"
	err := a.do(ctx, http.MethodPut, path, map[string][]string{"ids": ids}, &out)
	return out, err
}

func (a *API) CreateBookmark(ctx context.Context, in db.NewBookmark) (db.Bookmark, error) {
	var out db.Bookmark
	err := a.do(ctx, http.MethodPost, "/api/bookmarks/items", in, &out)
	return out, err
}

func (a *API) UpdateBookmark(ctx context.Context, id string, in db.BookmarkPatch) (db.Bookmark, error) {
	var out db.Bookmark
	err := a.do(ctx, http.MethodPatch, "/api/bookmarks/items/"+url.PathEscape(id), in, &out)
	return out, err
}

func (a *API) DeleteBookmark(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/bookmarks/items/"+url.PathEscape(id), nil, nil)
}
