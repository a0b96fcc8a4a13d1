/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/db"
)

func TestRenumberCmd_Flags(t *testing.T) {
	f := renumberCmd.Flags().Lookup("user")
	if f == nil {
		t.Fatal("Flag user is not registered")
	}
	if f.DefValue != "" {
		t.Errorf("Flag user: got default %q, want empty", f.DefValue)
	}
}

func TestRenumberCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moohub.db")
	ctx := context.Background()

	database, err := db.NewSQLiteDB(path, core.DiscardLogger())
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	user, err := database.UpsertUser(ctx, "a@example.com", "A", "")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	for _, name := range []string{"one", "two", "three"} {
		if _, err := database.CreateFolder(ctx, user.ID, db.NewFolder{Name: name}); err != nil {
			t.Fatalf("CreateFolder: %v", err)
		}
	}
	database.Close()

	// Leave gaps the way a row-by-row client would.
	raw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := raw.Exec("UPDATE bookmark_folders SET sort_order = sort_order * 10 + 5"); err != nil {
		t.Fatalf("Failed to scramble order: %v", err)
	}
	raw.Close()

	if _, err := executeCmd(t, "renumber", "--db", path, "--log-level", "error", "--user", ""); err != nil {
		t.Fatalf("renumber failed: %v", err)
	}

	database, err = db.NewSQLiteDB(path, core.DiscardLogger())
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer database.Close()
	folders, err := database.ListFolders(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	for i, f := range folders {
		if f.Order != i {
			t.Errorf("folder %s: order %d, want %d", f.Name, f.Order, i)
		}
	}
	if len(folders) != 3 || folders[0].Name != "one" || folders[2].Name != "three" {
		t.Errorf("unexpected folders after renumber: %+v", folders)
	}
}
