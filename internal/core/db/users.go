package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// UpsertUser creates the user on first sign-in or refreshes the profile
// fields of an existing one. Users are keyed by email.
func (db *DB) UpsertUser(ctx context.Context, email, name, image string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, fmt.Errorf("failed to upsert user: empty email")
	}

	now := formatTime(db.now())
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name = excluded.name,
			image = excluded.image,
			updated_at = excluded.updated_at
	`, newID(), email, name, image, now, now)
	if err != nil {
		return User{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	row := db.db.QueryRowContext(ctx,
		"SELECT id, email, name, image, created_at FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (db *DB) GetUser(ctx context.Context, id string) (User, error) {
	row := db.db.QueryRowContext(ctx,
		"SELECT id, email, name, image, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row scanner) (User, error) {
	var u User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, fmt.Errorf("user %w", ErrNotFound)
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return User{}, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}

// ListUserIDs returns the ids of all registered users.
func (db *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := db.db.QueryContext(ctx, "SELECT id FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warnf("failed to close rows: %v", err)
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
