package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seckatie/moohub/internal/core"
)

const postColumns = "id, title, content, tags, status, created_at, updated_at, published_at, user_id"

// ListPosts returns every post owned by userID, newest first.
func (db *DB) ListPosts(ctx context.Context, userID string) ([]Post, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warnf("failed to close rows: %v", err)
		}
	}()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return out, nil
}

// GetPost returns the post with the given id if it belongs to userID.
func (db *DB) GetPost(ctx context.Context, userID, id string) (Post, error) {
	return getPost(ctx, db.db, userID, id)
}

// CreatePost inserts a post owned by userID. Tags default to an empty list
// and status to draft; publishedAt is stamped only for non-draft posts.
func (db *DB) CreatePost(ctx context.Context, userID string, in NewPost) (Post, error) {
	status := in.Status
	if status == "" {
		status = core.PostStatusDraft
	}
	if !core.IsValidPostStatus(status) {
		return Post{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := db.now()
	p := Post{
		ID:        newID(),
		Title:     in.Title,
		Content:   in.Content,
		Tags:      tags,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}
	if status != core.PostStatusDraft {
		p.PublishedAt = &now
	}

	if err := insertPost(ctx, db.db, p); err != nil {
		return Post{}, err
	}

	db.emit(PostCreatedEvent{Post: p})
	if p.PublishedAt != nil {
		db.emit(PostPublishedEvent{Post: p})
	}
	return p, nil
}

// UpdatePost applies the fields present in the patch. The row is loaded
// first; a missing or foreign row yields ErrNotFound before anything is
// written.
func (db *DB) UpdatePost(ctx context.Context, userID, id string, in PostPatch) (Post, error) {
	var updated Post
	var firstPublish bool
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getPost(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if v, ok := in.Title.Get(); ok {
			p.Title = v
		}
		if v, ok := in.Content.Get(); ok {
			p.Content = v
		}
		if v, ok := in.Tags.Get(); ok {
			if v == nil {
				v = []string{}
			}
			p.Tags = v
		}
		if v, ok := in.Status.Get(); ok {
			if !core.IsValidPostStatus(v) {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, v)
			}
			p.Status = v
		}

		now := db.now()
		if p.Status != core.PostStatusDraft && p.PublishedAt == nil {
			p.PublishedAt = &now
			firstPublish = true
		}
		p.UpdatedAt = now

		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE blog_posts
			SET title = ?, content = ?, tags = ?, status = ?, updated_at = ?, published_at = ?
			WHERE id = ? AND user_id = ?
		`, p.Title, p.Content, string(tags), p.Status, formatTime(p.UpdatedAt), nullTime(p.PublishedAt), id, userID)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return Post{}, err
	}

	db.emit(PostUpdatedEvent{Post: updated})
	if firstPublish {
		db.emit(PostPublishedEvent{Post: updated})
	}
	return updated, nil
}

// DeletePost removes a post owned by userID.
func (db *DB) DeletePost(ctx context.Context, userID, id string) error {
	var deleted Post
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		p, err := getPost(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM blog_posts WHERE id = ? AND user_id = ?", id, userID); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		deleted = p
		return nil
	})
	if err != nil {
		return err
	}

	db.emit(PostDeletedEvent{Post: deleted})
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getPost(ctx context.Context, q queryer, userID, id string) (Post, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM blog_posts WHERE id = ? AND user_id = ?", id, userID)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return p, err
}

func insertPost(ctx context.Context, q queryer, p Post) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO blog_posts (id, user_id, title, content, tags, status, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Title, p.Content, string(tags), p.Status,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullTime(p.PublishedAt))
	if err != nil {
		return fmt.Errorf("failed to add post: %w", err)
	}
	return nil
}

func scanPost(row scanner) (Post, error) {
	var p Post
	var tags, createdAt, updatedAt string
	var publishedAt sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Content, &tags, &p.Status, &createdAt, &updatedAt, &publishedAt, &p.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, err
		}
		return Post{}, fmt.Errorf("failed to scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Post{}, fmt.Errorf("failed to decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return Post{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Post{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if publishedAt.Valid {
		t, err := parseTime(publishedAt.String)
		if err != nil {
			return Post{}, fmt.Errorf("failed to parse published_at: %w", err)
		}
		p.PublishedAt = &t
	}
	return p, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
