package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/seckatie/moohub/internal/core"
	"golang.org/x/sync/errgroup"
)

const bookmarkColumns = "id, title, url, folder_id, sort_order, created_at, user_id"

const bookmarkOrderQuery = `
	SELECT id FROM bookmarks
	WHERE folder_id = ? AND user_id = ?
	ORDER BY sort_order, created_at, id
`

// NormalizeBookmarkURL prefixes bare domains with https:// and checks that
// the result names a host.
func NormalizeBookmarkURL(raw string) (string, error) {
	u := core.NormalizeURL(raw)
	if u == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// ------------------------------
// Bookmark methods
// ------------------------------

// ListBookmarks returns all bookmarks owned by userID ordered by position.
func (db *DB) ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks
		WHERE user_id = ?
		ORDER BY sort_order, created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warnf("failed to close rows: %v", err)
		}
	}()

	out := []Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return out, nil
}

// GetBookmarkTree loads folders and bookmarks with two independent queries
// run concurrently.
func (db *DB) GetBookmarkTree(ctx context.Context, userID string) (BookmarkTree, error) {
	var tree BookmarkTree
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		folders, err := db.ListFolders(gctx, userID)
		tree.Folders = folders
		return err
	})
	g.Go(func() error {
		bookmarks, err := db.ListBookmarks(gctx, userID)
		tree.Bookmarks = bookmarks
		return err
	})
	if err := g.Wait(); err != nil {
		return BookmarkTree{}, err
	}
	return tree, nil
}

// CreateBookmark adds a bookmark at the end of a folder. The folder has to
// belong to userID; otherwise ErrFolderNotFound is returned and nothing is
// inserted.
func (db *DB) CreateBookmark(ctx context.Context, userID string, in NewBookmark) (Bookmark, error) {
	u, err := NormalizeBookmarkURL(in.URL)
	if err != nil {
		return Bookmark{}, err
	}

	var created Bookmark
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getFolder(ctx, tx, userID, in.FolderID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrFolderNotFound, in.FolderID)
			}
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookmarks WHERE folder_id = ?", in.FolderID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count bookmarks: %w", err)
		}

		now := db.now()
		b := Bookmark{
			ID:        newID(),
			Title:     in.Title,
			URL:       u,
			FolderID:  in.FolderID,
			Order:     count,
			CreatedAt: now,
			UserID:    userID,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookmarks (id, user_id, folder_id, title, url, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, b.ID, userID, b.FolderID, b.Title, b.URL, b.Order, formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("failed to add bookmark: %w", err)
		}
		created = b
		return nil
	})
	if err != nil {
		return Bookmark{}, err
	}

	db.emit(BookmarkCreatedEvent{Bookmark: created})
	return created, nil
}

// UpdateBookmark applies the present fields. Moving to another folder
// appends the bookmark there (the target must belong to userID) and closes
// the gap it leaves behind; Order repositions it within its folder.
func (db *DB) UpdateBookmark(ctx context.Context, userID, id string, in BookmarkPatch) (Bookmark, error) {
	var newURL string
	if v, ok := in.URL.Get(); ok {
		u, err := NormalizeBookmarkURL(v)
		if err != nil {
			return Bookmark{}, err
		}
		newURL = u
	}

	var updated Bookmark
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getBookmark(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if v, ok := in.Title.Get(); ok {
			b.Title = v
		}
		if in.URL.Set {
			b.URL = newURL
		}

		sourceFolder := b.FolderID
		if target, ok := in.FolderID.Get(); ok && target != b.FolderID {
			if _, err := getFolder(ctx, tx, userID, target); err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrFolderNotFound, target)
				}
				return err
			}
			b.FolderID = target
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookmarks SET title = ?, url = ?, folder_id = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, b.Title, b.URL, b.FolderID, formatTime(db.now()), id, userID)
		if err != nil {
			return fmt.Errorf("failed to update bookmark: %w", err)
		}

		if b.FolderID != sourceFolder {
			left, err := siblingIDs(ctx, tx, bookmarkOrderQuery, sourceFolder, userID)
			if err != nil {
				return err
			}
			if err := writeOrder(ctx, tx, "bookmarks", userID, left); err != nil {
				return err
			}
		}

		if b.FolderID != sourceFolder || in.Order.Set {
			ids, err := siblingIDs(ctx, tx, bookmarkOrderQuery, b.FolderID, userID)
			if err != nil {
				return err
			}
			to := len(ids)
			if v, ok := in.Order.Get(); ok {
				to = v
			}
			if err := writeOrder(ctx, tx, "bookmarks", userID, reposition(ids, id, to)); err != nil {
				return err
			}
		}

		updated, err = getBookmark(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return Bookmark{}, err
	}

	db.emit(BookmarkUpdatedEvent{Bookmark: updated})
	return updated, nil
}

// DeleteBookmark removes a bookmark and compacts its folder's order.
func (db *DB) DeleteBookmark(ctx context.Context, userID, id string) error {
	var deleted Bookmark
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getBookmark(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ? AND user_id = ?", id, userID); err != nil {
			return fmt.Errorf("failed to delete bookmark: %w", err)
		}
		ids, err := siblingIDs(ctx, tx, bookmarkOrderQuery, b.FolderID, userID)
		if err != nil {
			return err
		}
		if err := writeOrder(ctx, tx, "bookmarks", userID, ids); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	if err != nil {
		return err
	}

	db.emit(BookmarkDeletedEvent{Bookmark: deleted})
	return nil
}

// ReorderBookmarks renumbers the bookmarks of one folder to follow ids in a
// single transaction.
func (db *DB) ReorderBookmarks(ctx context.Context, userID, folderID string, ids []string) ([]Bookmark, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getFolder(ctx, tx, userID, folderID); err != nil {
			return err
		}
		have, err := siblingIDs(ctx, tx, bookmarkOrderQuery, folderID, userID)
		if err != nil {
			return err
		}
		if !isPermutation(have, ids) {
			return fmt.Errorf("%w: bookmark ids do not match the folder contents", ErrInvalidOrder)
		}
		return writeOrder(ctx, tx, "bookmarks", userID, ids)
	})
	if err != nil {
		return nil, err
	}

	db.emit(BookmarksReorderedEvent{UserID: userID, FolderID: folderID, BookmarkIDs: ids})

	all, err := db.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []Bookmark{}
	for _, b := range all {
		if b.FolderID == folderID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Renumber rewrites the order of every folder and bookmark owned by userID
// into dense sequences, keeping the current relative order. It repairs rows
// left with gaps or duplicates by older clients that reordered row by row.
func (db *DB) Renumber(ctx context.Context, userID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		folders, err := siblingIDs(ctx, tx, folderOrderQuery, userID)
		if err != nil {
			return err
		}
		if err := writeOrder(ctx, tx, "bookmark_folders", userID, folders); err != nil {
			return err
		}
		for _, folderID := range folders {
			ids, err := siblingIDs(ctx, tx, bookmarkOrderQuery, folderID, userID)
			if err != nil {
				return err
			}
			if err := writeOrder(ctx, tx, "bookmarks", userID, ids); err != nil {
				return err
			}
		}
		return nil
	})
}

func getBookmark(ctx context.Context, q queryer, userID, id string) (Bookmark, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ? AND user_id = ?", id, userID)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Bookmark{}, fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
	}
	return b, err
}

func scanBookmark(row scanner) (Bookmark, error) {
	var b Bookmark
	var createdAt string
	if err := row.Scan(&b.ID, &b.Title, &b.URL, &b.FolderID, &b.Order, &createdAt, &b.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bookmark{}, err
		}
		return Bookmark{}, fmt.Errorf("failed to scan bookmark: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return Bookmark{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	b.CreatedAt = t
	return b, nil
}
