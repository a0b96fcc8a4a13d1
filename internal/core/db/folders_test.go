package db

import (
	"context"
	"testing"

	"github.com/seckatie/moohub/internal/core/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folderNames(folders []Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.Name
	}
	return out
}

func folderOrders(folders []Folder) []int {
	out := make([]int, len(folders))
	for i, f := range folders {
		out[i] = f.Order
	}
	return out
}

func createFolders(t *testing.T, db *DB, userID string, names ...string) []Folder {
	t.Helper()
	var out []Folder
	for _, name := range names {
		f, err := db.CreateFolder(context.Background(), userID, NewFolder{Name: name})
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func TestCreateFolder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")

	t.Run("order equals existing sibling count", func(t *testing.T) {
		folders := createFolders(t, db, alice, "Work", "Play", "News")
		assert.Equal(t, []int{0, 1, 2}, folderOrders(folders))
		assert.False(t, folders[0].Collapsed)
	})

	t.Run("count is per owner", func(t *testing.T) {
		f, err := db.CreateFolder(ctx, bob, NewFolder{Name: "Bob"})
		require.NoError(t, err)
		assert.Equal(t, 0, f.Order)
	})
}

func TestUpdateFolder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "A", "B", "C", "D")

	t.Run("rename and collapse", func(t *testing.T) {
		got, err := db.UpdateFolder(ctx, user, folders[1].ID, FolderPatch{
			Name:      patch.Some("Bee"),
			Collapsed: patch.Some(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "Bee", got.Name)
		assert.True(t, got.Collapsed)
		assert.Equal(t, 1, got.Order)
	})

	t.Run("order repositions and keeps the sequence dense", func(t *testing.T) {
		got, err := db.UpdateFolder(ctx, user, folders[3].ID, FolderPatch{Order: patch.Some(0)})
		require.NoError(t, err)
		assert.Equal(t, 0, got.Order)

		list, err := db.ListFolders(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"D", "A", "Bee", "C"}, folderNames(list))
		assert.Equal(t, []int{0, 1, 2, 3}, folderOrders(list))
	})

	t.Run("out of range order is clamped", func(t *testing.T) {
		_, err := db.UpdateFolder(ctx, user, folders[3].ID, FolderPatch{Order: patch.Some(42)})
		require.NoError(t, err)

		list, err := db.ListFolders(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "Bee", "C", "D"}, folderNames(list))
	})

	t.Run("foreign folder is not found", func(t *testing.T) {
		_, err := db.UpdateFolder(ctx, other, folders[0].ID, FolderPatch{Name: patch.Some("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteFolder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "A", "B", "C")

	for _, u := range []string{"a.com", "b.com"} {
		_, err := db.CreateBookmark(ctx, user, NewBookmark{Title: u, URL: u, FolderID: folders[1].ID})
		require.NoError(t, err)
	}
	keep, err := db.CreateBookmark(ctx, user, NewBookmark{Title: "keep", URL: "keep.com", FolderID: folders[2].ID})
	require.NoError(t, err)

	t.Run("foreign folder is not found and untouched", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteFolder(ctx, other, folders[1].ID), ErrNotFound)

		tree, err := db.GetBookmarkTree(ctx, user)
		require.NoError(t, err)
		assert.Len(t, tree.Folders, 3)
		assert.Len(t, tree.Bookmarks, 3)
	})

	t.Run("removes the folder with its bookmarks and compacts order", func(t *testing.T) {
		require.NoError(t, db.DeleteFolder(ctx, user, folders[1].ID))

		tree, err := db.GetBookmarkTree(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, folderNames(tree.Folders))
		assert.Equal(t, []int{0, 1}, folderOrders(tree.Folders))
		require.Len(t, tree.Bookmarks, 1)
		assert.Equal(t, keep.ID, tree.Bookmarks[0].ID)
	})
}

func TestReorderFolders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, "user@example.com")
	other := newTestUser(t, db, "other@example.com")
	folders := createFolders(t, db, user, "A", "B", "C")
	foreign := createFolders(t, db, other, "X")

	t.Run("applies a permutation", func(t *testing.T) {
		got, err := db.ReorderFolders(ctx, user, []string{folders[2].ID, folders[0].ID, folders[1].ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, folderNames(got))
		assert.Equal(t, []int{0, 1, 2}, folderOrders(got))
	})

	rejects := map[string][]string{
		"missing id":   {folders[0].ID, folders[1].ID},
		"duplicate id": {folders[0].ID, folders[0].ID, folders[1].ID},
		"foreign id":   {folders[0].ID, folders[1].ID, foreign[0].ID},
		"unknown id":   {folders[0].ID, folders[1].ID, "nope"},
	}
	for name, ids := range rejects {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := db.ReorderFolders(ctx, user, ids)
			assert.ErrorIs(t, err, ErrInvalidOrder)

			list, err := db.ListFolders(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, []string{"C", "A", "B"}, folderNames(list), "order must be unchanged")
		})
	}

	t.Run("other user's folders are untouched", func(t *testing.T) {
		list, err := db.ListFolders(ctx, other)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 0, list[0].Order)
	})
}
