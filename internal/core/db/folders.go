package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const folderColumns = "id, name, sort_order, collapsed, created_at, user_id"

const folderOrderQuery = `
	SELECT id FROM bookmark_folders
	WHERE user_id = ?
	ORDER BY sort_order, created_at, id
`

// ------------------------------
// Folder methods
// ------------------------------

// ListFolders returns the folders owned by userID in display order.
func (db *DB) ListFolders(ctx context.Context, userID string) ([]Folder, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+folderColumns+`
		FROM bookmark_folders
		WHERE user_id = ?
		ORDER BY sort_order, created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warnf("failed to close rows: %v", err)
		}
	}()

	out := []Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return out, nil
}

// CreateFolder appends a folder after the owner's existing folders.
func (db *DB) CreateFolder(ctx context.Context, userID string, in NewFolder) (Folder, error) {
	var created Folder
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookmark_folders WHERE user_id = ?", userID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count folders: %w", err)
		}

		now := db.now()
		f := Folder{
			ID:        newID(),
			Name:      in.Name,
			Order:     count,
			CreatedAt: now,
			UserID:    userID,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookmark_folders (id, user_id, name, sort_order, collapsed, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?)
		`, f.ID, userID, f.Name, f.Order, formatTime(now), formatTime(now))
		if err != nil {
			return fmt.Errorf("failed to add folder: %w", err)
		}
		created = f
		return nil
	})
	if err != nil {
		return Folder{}, err
	}

	db.emit(FolderCreatedEvent{Folder: created})
	return created, nil
}

// UpdateFolder renames, collapses or moves a folder. Setting Order moves the
// folder to that position and shifts its siblings, so the sequence stays
// dense.
func (db *DB) UpdateFolder(ctx context.Context, userID, id string, in FolderPatch) (Folder, error) {
	var updated Folder
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		f, err := getFolder(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if v, ok := in.Name.Get(); ok {
			f.Name = v
		}
		if v, ok := in.Collapsed.Get(); ok {
			f.Collapsed = v
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookmark_folders SET name = ?, collapsed = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, f.Name, f.Collapsed, formatTime(db.now()), id, userID)
		if err != nil {
			return fmt.Errorf("failed to update folder: %w", err)
		}

		if to, ok := in.Order.Get(); ok {
			ids, err := siblingIDs(ctx, tx, folderOrderQuery, userID)
			if err != nil {
				return err
			}
			ids = reposition(ids, id, to)
			if err := writeOrder(ctx, tx, "bookmark_folders", userID, ids); err != nil {
				return err
			}
		}

		updated, err = getFolder(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return Folder{}, err
	}

	db.emit(FolderUpdatedEvent{Folder: updated})
	return updated, nil
}

// DeleteFolder removes a folder together with every bookmark in it, then
// closes the gap in the remaining folders' order.
func (db *DB) DeleteFolder(ctx context.Context, userID, id string) error {
	var deleted Folder
	var removed int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		f, err := getFolder(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE folder_id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete folder bookmarks: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to determine rows affected: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM bookmark_folders WHERE id = ? AND user_id = ?", id, userID); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}

		ids, err := siblingIDs(ctx, tx, folderOrderQuery, userID)
		if err != nil {
			return err
		}
		if err := writeOrder(ctx, tx, "bookmark_folders", userID, ids); err != nil {
			return err
		}
		deleted = f
		return nil
	})
	if err != nil {
		return err
	}

	db.emit(FolderDeletedEvent{Folder: deleted, BookmarksRemoved: removed})
	return nil
}

// ReorderFolders renumbers the owner's folders to follow ids, in a single
// transaction. ids must name every folder the owner has, each exactly once.
func (db *DB) ReorderFolders(ctx context.Context, userID string, ids []string) ([]Folder, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		have, err := siblingIDs(ctx, tx, folderOrderQuery, userID)
		if err != nil {
			return err
		}
		if !isPermutation(have, ids) {
			return fmt.Errorf("%w: folder ids do not match the existing folders", ErrInvalidOrder)
		}
		return writeOrder(ctx, tx, "bookmark_folders", userID, ids)
	})
	if err != nil {
		return nil, err
	}

	db.emit(FoldersReorderedEvent{UserID: userID, FolderIDs: ids})
	return db.ListFolders(ctx, userID)
}

func getFolder(ctx context.Context, q queryer, userID, id string) (Folder, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM bookmark_folders WHERE id = ? AND user_id = ?", id, userID)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Folder{}, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return f, err
}

func scanFolder(row scanner) (Folder, error) {
	var f Folder
	var createdAt string
	if err := row.Scan(&f.ID, &f.Name, &f.Order, &f.Collapsed, &createdAt, &f.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, err
		}
		return Folder{}, fmt.Errorf("failed to scan folder: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return Folder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	f.CreatedAt = t
	return f, nil
}
