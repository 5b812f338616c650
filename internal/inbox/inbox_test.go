package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sohanasz/viote/internal/models"
	"github.com/sohanasz/viote/internal/noteservice"
	"github.com/sohanasz/viote/internal/testutil"
)

var discard = slog.New(slog.DiscardHandler)

type fakeImporter struct {
	mu     sync.Mutex
	titles []string
	fail   bool
}

func (f *fakeImporter) ImportMarkdown(_ context.Context, projectID string, _ []byte, title string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("rejected")
	}
	f.titles = append(f.titles, title)
	return &models.Note{ID: "n" + title, ProjectID: projectID}, nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.titles)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func movedTo(t *testing.T, root, dir string) []string {
	t.Helper()
	entries, _ := os.ReadDir(filepath.Join(root, dir))
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSync_ImportsAndMoves(t *testing.T) {
	root, files := testutil.TestStorage(t)
	_ = os.WriteFile(filepath.Join(root, "todo.md"), []byte("- a"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644)
	_ = os.MkdirAll(filepath.Join(root, ImportedDir), 0o755)
	_ = os.WriteFile(filepath.Join(root, ImportedDir, "old.md"), []byte("- done"), 0o644)

	imp := &fakeImporter{}
	in := New(files, root, imp, "p1", discard)
	n, err := in.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 1 || imp.titles[0] != "todo" {
		t.Errorf("imported %d, titles %v", n, imp.titles)
	}
	if exists(filepath.Join(root, "todo.md")) {
		t.Error("imported file should be moved")
	}
	if got := movedTo(t, root, ImportedDir); len(got) != 2 {
		t.Errorf("imported dir = %v", got)
	}
	if !exists(filepath.Join(root, "notes.txt")) {
		t.Error("non-Markdown file should be left alone")
	}
}

func TestSync_FailedImportMovedAside(t *testing.T) {
	root, files := testutil.TestStorage(t)
	_ = os.WriteFile(filepath.Join(root, "bad.md"), []byte("x"), 0o644)

	in := New(files, root, &fakeImporter{fail: true}, "p1", discard)
	n, _ := in.Sync(context.Background())
	if n != 0 {
		t.Errorf("imported = %d, want 0", n)
	}
	got := movedTo(t, root, FailedDir)
	if len(got) != 1 || !strings.HasSuffix(got[0], "-bad.md") {
		t.Errorf("failed dir = %v", got)
	}
}

func TestSync_NestedNameFlattened(t *testing.T) {
	root, files := testutil.TestStorage(t)
	_ = os.MkdirAll(filepath.Join(root, "trip"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "trip", "day1.md"), []byte("# Day 1"), 0o644)

	in := New(files, root, &fakeImporter{}, "p1", discard)
	in.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	if _, err := in.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !exists(filepath.Join(root, ImportedDir, "20260102T030405-trip_day1.md")) {
		t.Errorf("imported dir = %v", movedTo(t, root, ImportedDir))
	}
}

func TestWatch_NewFileImported(t *testing.T) {
	root, files := testutil.TestStorage(t)
	imp := &fakeImporter{}
	in := New(files, root, imp, "p1", discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return imp.count() == 1 && !exists(filepath.Join(root, "new.md"))
	}, "new file not imported by watcher")
}

func TestWatch_NewDirWatched(t *testing.T) {
	root, files := testutil.TestStorage(t)
	imp := &fakeImporter{}
	in := New(files, root, imp, "p1", discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(root, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return imp.count() == 1
	}, "file in new subdir not imported by watcher")
}

func TestWatch_WithService(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedProject(t, db, "p1", "Home")
	svc := noteservice.NewService(db, nil)

	root, files := testutil.TestStorage(t)
	in := New(files, root, svc, "p1", discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "groceries.md"), []byte("- milk\n- eggs\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		notes, total, _ := svc.ListNotes(context.Background(), "p1", 10, 0)
		return total == 1 && notes[0].Title == "groceries"
	}, "note not created from inbox file")
}
