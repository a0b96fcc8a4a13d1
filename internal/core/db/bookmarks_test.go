package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/seckatie/moohub/internal/core/patch"
)

func bookmarkTitles(bookmarks []Bookmark) []string {
	out := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		out[i] = b.Title
	}
	return out
}

func folderContents(t *testing.T, db *DB, userID, folderID string) []Bookmark {
	t.Helper()
	all, err := db.ListBookmarks(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var out []Bookmark
	for _, b := range all {
		if b.FolderID == folderID {
			out = append(out, b)
		}
	}
	return out
}

func assertDense(t *testing.T, bookmarks []Bookmark) {
	t.Helper()
	for i, b := range bookmarks {
		if b.Order != i {
			t.Errorf("expected %q at order %d, got %d", b.Title, i, b.Order)
		}
	}
}

// TestNormalizeBookmarkURL tests URL normalization on save.
func TestNormalizeBookmarkURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  example.com/path  ", want: "https://example.com/path"},
		{in: "http://example.com", want: "http://example.com"},
		{in: "HTTPS://Example.com", want: "HTTPS://Example.com"},
		{in: "httpbin.org", want: "https://httpbin.org"},
		{in: "ftp://files.example.com", want: "ftp://files.example.com"},
		{in: "example.com/go?to=https://other.org", want: "https://example.com/go?to=https://other.org"},
		{in: "svn+ssh://repo.example.com", want: "svn+ssh://repo.example.com"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeBookmarkURL(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestCreateBookmark tests bookmark creation.
func TestCreateBookmark(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "Work")
	foreign := createFolders(t, db, other, "Theirs")

	t.Run("normalizes URL and appends to folder", func(t *testing.T) {
		b1, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "One", URL: "example.com", FolderID: folders[0].ID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b1.URL != "https://example.com" {
			t.Errorf("expected URL 'https://example.com', got %q", b1.URL)
		}
		if b1.Order != 0 {
			t.Errorf("expected order 0, got %d", b1.Order)
		}

		b2, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "Two", URL: "https://two.com", FolderID: folders[0].ID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b2.Order != 1 {
			t.Errorf("expected order 1, got %d", b2.Order)
		}
	})

	t.Run("foreign folder is rejected", func(t *testing.T) {
		_, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "x", URL: "x.com", FolderID: foreign[0].ID})
		if !errors.Is(err, ErrFolderNotFound) {
			t.Fatalf("expected ErrFolderNotFound, got %v", err)
		}
		if got := folderContents(t, db, other, foreign[0].ID); len(got) != 0 {
			t.Errorf("expected foreign folder to stay empty, got %d bookmarks", len(got))
		}
	})

	t.Run("missing folder is rejected", func(t *testing.T) {
		_, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "x", URL: "x.com", FolderID: "missing"})
		if !errors.Is(err, ErrFolderNotFound) {
			t.Fatalf("expected ErrFolderNotFound, got %v", err)
		}
	})

	t.Run("invalid URL is rejected", func(t *testing.T) {
		_, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "x", URL: "  ", FolderID: folders[0].ID})
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL, got %v", err)
		}
	})
}

// TestUpdateBookmark tests partial updates, moves and repositioning.
func TestUpdateBookmark(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "Src", "Dst")
	foreign := createFolders(t, db, other, "Theirs")

	var src []Bookmark
	for _, title := range []string{"a", "b", "c"} {
		b, err := db.CreateBookmark(ctx, user, NewBookmark{Title: title, URL: title + ".com", FolderID: folders[0].ID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		src = append(src, b)
	}
	d, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "d", URL: "d.com", FolderID: folders[1].ID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("title and URL only", func(t *testing.T) {
		got, err := db.UpdateBookmark(ctx, user, src[0].ID, BookmarkPatch{
			Title: patch.Some("A"),
			URL:   patch.Some("a.example.com"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "A" || got.URL != "https://a.example.com" {
			t.Errorf("unexpected bookmark %+v", got)
		}
		if got.FolderID != folders[0].ID || got.Order != 0 {
			t.Errorf("expected folder and order unchanged, got %+v", got)
		}
	})

	t.Run("move appends to target and compacts source", func(t *testing.T) {
		got, err := db.UpdateBookmark(ctx, user, src[1].ID, BookmarkPatch{FolderID: patch.Some(folders[1].ID)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.FolderID != folders[1].ID {
			t.Errorf("expected folder %s, got %s", folders[1].ID, got.FolderID)
		}
		if got.Order != 1 {
			t.Errorf("expected order 1 in target, got %d", got.Order)
		}

		left := folderContents(t, db, user, folders[0].ID)
		if diff := cmp.Diff([]string{"A", "c"}, bookmarkTitles(left)); diff != "" {
			t.Errorf("source folder mismatch (-want +got):\n%s", diff)
		}
		assertDense(t, left)

		right := folderContents(t, db, user, folders[1].ID)
		if diff := cmp.Diff([]string{"d", "b"}, bookmarkTitles(right)); diff != "" {
			t.Errorf("target folder mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("order repositions within folder", func(t *testing.T) {
		if _, err := db.UpdateBookmark(ctx, user, src[1].ID, BookmarkPatch{Order: patch.Some(0)}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		right := folderContents(t, db, user, folders[1].ID)
		if diff := cmp.Diff([]string{"b", "d"}, bookmarkTitles(right)); diff != "" {
			t.Errorf("folder mismatch (-want +got):\n%s", diff)
		}
		assertDense(t, right)
	})

	t.Run("move into foreign folder is rejected", func(t *testing.T) {
		_, err := db.UpdateBookmark(ctx, user, d.ID, BookmarkPatch{FolderID: patch.Some(foreign[0].ID)})
		if !errors.Is(err, ErrFolderNotFound) {
			t.Fatalf("expected ErrFolderNotFound, got %v", err)
		}
		b, err := getBookmark(ctx, db.db, user, d.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.FolderID != folders[1].ID {
			t.Errorf("expected bookmark to stay in %s, got %s", folders[1].ID, b.FolderID)
		}
	})

	t.Run("foreign bookmark is not found", func(t *testing.T) {
		_, err := db.UpdateBookmark(ctx, other, d.ID, BookmarkPatch{Title: patch.Some("x")})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestDeleteBookmark tests bookmark deletion.
func TestDeleteBookmark(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "Work")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		b, err := db.CreateBookmark(ctx, user, NewBookmark{Title: title, URL: title + ".com", FolderID: folders[0].ID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		ids = append(ids, b.ID)
	}

	t.Run("other user cannot delete", func(t *testing.T) {
		if err := db.DeleteBookmark(ctx, other, ids[0]); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deletes and compacts", func(t *testing.T) {
		if err := db.DeleteBookmark(ctx, user, ids[1]); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		left := folderContents(t, db, user, folders[0].ID)
		if diff := cmp.Diff([]string{"a", "c"}, bookmarkTitles(left)); diff != "" {
			t.Errorf("folder mismatch (-want +got):\n%s", diff)
		}
		assertDense(t, left)
	})

	t.Run("returns error for non-existent bookmark", func(t *testing.T) {
		if err := db.DeleteBookmark(ctx, user, ids[1]); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestReorderBookmarks tests atomic reordering inside a folder.
func TestReorderBookmarks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "Work", "Other")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		b, err := db.CreateBookmark(ctx, user, NewBookmark{Title: title, URL: title + ".com", FolderID: folders[0].ID})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		ids = append(ids, b.ID)
	}
	elsewhere, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "z", URL: "z.com", FolderID: folders[1].ID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("applies a permutation", func(t *testing.T) {
		got, err := db.ReorderBookmarks(ctx, user, folders[0].ID, []string{ids[2], ids[0], ids[1]})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff([]string{"c", "a", "b"}, bookmarkTitles(got)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		assertDense(t, got)
	})

	t.Run("bookmark from another folder is rejected", func(t *testing.T) {
		_, err := db.ReorderBookmarks(ctx, user, folders[0].ID, []string{ids[0], ids[1], elsewhere.ID})
		if !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
		got := folderContents(t, db, user, folders[0].ID)
		if diff := cmp.Diff([]string{"c", "a", "b"}, bookmarkTitles(got)); diff != "" {
			t.Errorf("order changed after rejected reorder (-want +got):\n%s", diff)
		}
	})

	t.Run("foreign folder is not found", func(t *testing.T) {
		_, err := db.ReorderBookmarks(ctx, other, folders[0].ID, ids)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestRenumber tests repairing orders written with gaps and duplicates.
func TestRenumber(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	folders := createFolders(t, db, user, "A", "B")

	for _, title := range []string{"x", "y", "z"} {
		if _, err := db.CreateBookmark(ctx, user, NewBookmark{Title: title, URL: title + ".com", FolderID: folders[0].ID}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	if _, err := db.db.Exec("UPDATE bookmark_folders SET sort_order = 7 WHERE user_id = ?", user); err != nil {
		t.Fatalf("failed to corrupt folders: %v", err)
	}
	if _, err := db.db.Exec("UPDATE bookmarks SET sort_order = sort_order * 5 WHERE user_id = ?", user); err != nil {
		t.Fatalf("failed to corrupt bookmarks: %v", err)
	}

	if err := db.Renumber(ctx, user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	list, err := db.ListFolders(ctx, user)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i, f := range list {
		if f.Order != i {
			t.Errorf("expected folder %q at %d, got %d", f.Name, i, f.Order)
		}
	}

	got := folderContents(t, db, user, folders[0].ID)
	if diff := cmp.Diff([]string{"x", "y", "z"}, bookmarkTitles(got)); diff != "" {
		t.Errorf("bookmark order mismatch (-want +got):\n%s", diff)
	}
	assertDense(t, got)
}

// TestGetBookmarkTree tests the combined read.
func TestGetBookmarkTree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")

	t.Run("empty tree has empty lists", func(t *testing.T) {
		tree, err := db.GetBookmarkTree(ctx, user)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tree.Folders == nil || tree.Bookmarks == nil {
			t.Error("expected non-nil empty lists")
		}
	})

	t.Run("only the owner's rows are returned", func(t *testing.T) {
		mine := createFolders(t, db, user, "Mine")
		theirs := createFolders(t, db, other, "Theirs")
		if _, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "m", URL: "m.com", FolderID: mine[0].ID}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := db.CreateBookmark(ctx, other, NewBookmark{Title: "t", URL: "t.com", FolderID: theirs[0].ID}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tree, err := db.GetBookmarkTree(ctx, user)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tree.Folders) != 1 || len(tree.Bookmarks) != 1 {
			t.Fatalf("expected 1 folder and 1 bookmark, got %d and %d", len(tree.Folders), len(tree.Bookmarks))
		}
		if tree.Bookmarks[0].Title != "m" {
			t.Errorf("expected bookmark 'm', got %q", tree.Bookmarks[0].Title)
		}
	})
}
