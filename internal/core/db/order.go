package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Folders and bookmarks keep a dense, zero-based sort_order. Every mutation
// that could open a gap or a duplicate rewrites the affected sibling set
// inside the caller's transaction.

// siblingIDs returns the ids of a sibling set in display order. The query
// must select a single id column.
func siblingIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list siblings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan sibling: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writeOrder assigns sort_order = index for every id, scoped to the owner.
func writeOrder(ctx context.Context, tx *sql.Tx, table, userID string, ids []string) error {
	stmt, err := tx.PrepareContext(ctx,
		"UPDATE "+table+" SET sort_order = ? WHERE id = ? AND user_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i, id, userID); err != nil {
			return fmt.Errorf("failed to reorder %s: %w", table, err)
		}
	}
	return nil
}

// isPermutation reports whether want contains exactly the ids in have.
func isPermutation(have, want []string) bool {
	if len(have) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(have))
	for _, id := range have {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return len(seen) == 0
}

// reposition moves id to index to (clamped) and returns the new order.
func reposition(ids []string, id string, to int) []string {
	out := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = id
	return out
}
