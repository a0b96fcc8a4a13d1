package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seckatie/moohub/internal/core"
)

const memoColumns = "id, date, content, created_at, updated_at, user_id"

// ListMemos returns every memo owned by userID, newest first.
func (db *DB) ListMemos(ctx context.Context, userID string) ([]Memo, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+memoColumns+`
		FROM memos
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warnf("failed to close rows: %v", err)
		}
	}()

	out := []Memo{}
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	return out, nil
}

// CreateMemo adds a memo bucketed under today's (UTC) date.
func (db *DB) CreateMemo(ctx context.Context, userID string, in NewMemo) (Memo, error) {
	now := db.now()
	m := Memo{
		ID:        newID(),
		Date:      now.Format(core.DayBucketLayout),
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO memos (id, user_id, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, userID, m.Date, m.Content, formatTime(now), formatTime(now))
	if err != nil {
		return Memo{}, fmt.Errorf("failed to add memo: %w", err)
	}

	db.emit(MemoCreatedEvent{Memo: m})
	return m, nil
}

// UpdateMemo edits a memo in place. The day bucket never moves.
func (db *DB) UpdateMemo(ctx context.Context, userID, id string, in MemoPatch) (Memo, error) {
	var updated Memo
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		m, err := getMemo(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if v, ok := in.Content.Get(); ok {
			m.Content = v
		}
		m.UpdatedAt = db.now()

		_, err = tx.ExecContext(ctx,
			"UPDATE memos SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?",
			m.Content, formatTime(m.UpdatedAt), id, userID)
		if err != nil {
			return fmt.Errorf("failed to update memo: %w", err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return Memo{}, err
	}

	db.emit(MemoUpdatedEvent{Memo: updated})
	return updated, nil
}

func (db *DB) DeleteMemo(ctx context.Context, userID, id string) error {
	var deleted Memo
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		m, err := getMemo(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM memos WHERE id = ? AND user_id = ?", id, userID); err != nil {
			return fmt.Errorf("failed to delete memo: %w", err)
		}
		deleted = m
		return nil
	})
	if err != nil {
		return err
	}

	db.emit(MemoDeletedEvent{Memo: deleted})
	return nil
}

func getMemo(ctx context.Context, q queryer, userID, id string) (Memo, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = ? AND user_id = ?", id, userID)
	m, err := scanMemo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Memo{}, fmt.Errorf("memo %s: %w", id, ErrNotFound)
	}
	return m, err
}

func scanMemo(row scanner) (Memo, error) {
	var m Memo
	var createdAt, updatedAt string
	if err := row.Scan(&m.ID, &m.Date, &m.Content, &createdAt, &updatedAt, &m.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Memo{}, err
		}
		return Memo{}, fmt.Errorf("failed to scan memo: %w", err)
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return Memo{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Memo{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return m, nil
}
