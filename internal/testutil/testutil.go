// Package testutil provides shared test helpers for databases, storage roots
// and seeded projects.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sohanasz/viote/internal/models"
	"github.com/sohanasz/viote/internal/storage"
	"github.com/sohanasz/viote/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "viote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStorage creates a temporary directory with a storage.Provider.
func TestStorage(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// SeedProject inserts a project directly into db.
func SeedProject(t *testing.T, db *store.DB, id, name string) models.Project {
	t.Helper()
	p := models.Project{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	if err := db.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}
