package db

import (
	"time"

	"github.com/seckatie/moohub/internal/core/patch"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a blog post. PublishedAt stays nil while the post has only ever
// been a draft.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	UserID      string     `json:"userId"`
}

// Memo is a free-text note grouped under the calendar day it was created.
type Memo struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `json:"userId"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	Collapsed bool      `json:"collapsed"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}

type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FolderID  string    `json:"folderId"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}

// BookmarkTree is the combined bookmark page payload.
type BookmarkTree struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// ------------------------------
// Create payloads
// ------------------------------

type NewPost struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status"`
}

type NewMemo struct {
	Content string `json:"content"`
}

type NewFolder struct {
	Name string `json:"name"`
}

type NewBookmark struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	FolderID string `json:"folderId"`
}

// ------------------------------
// Partial update payloads
// ------------------------------

type PostPatch struct {
	Title   patch.Field[string]   `json:"title,omitzero"`
	Content patch.Field[string]   `json:"content,omitzero"`
	Tags    patch.Field[[]string] `json:"tags,omitzero"`
	Status  patch.Field[string]   `json:"status,omitzero"`
}

type MemoPatch struct {
	Content patch.Field[string] `json:"content,omitzero"`
}

type FolderPatch struct {
	Name      patch.Field[string] `json:"name,omitzero"`
	Collapsed patch.Field[bool]   `json:"collapsed,omitzero"`
	Order     patch.Field[int]    `json:"order,omitzero"`
}

type BookmarkPatch struct {
	Title    patch.Field[string] `json:"title,omitzero"`
	URL      patch.Field[string] `json:"url,omitzero"`
	FolderID patch.Field[string] `json:"folderId,omitzero"`
	Order    patch.Field[int]    `json:"order,omitzero"`
}
