package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "viote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProject(t *testing.T, db *DB, id, name string) {
	t.Helper()
	if err := db.CreateProject(context.Background(), models.Project{ID: id, Name: name, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
}

func sampleNote(id, projectID, title string) models.Note {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Note{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		Content: document.Content{
			document.Heading{ID: 1, Text: title},
			document.BulletList{ID: 2, Numeric: true, Points: []document.BulletPoint{{ID: 1, Text: "first"}}},
		},
		Checksum:  "c-" + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"projects", "notes"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestProjects(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p2", "work")
	seedProject(t, db, "p1", "Home")

	list, err := db.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Home" {
		t.Errorf("projects = %+v, want Home first", list)
	}

	p, err := db.GetProject(ctx, "p2")
	if err != nil || p.Name != "work" {
		t.Errorf("GetProject = %+v, %v", p, err)
	}
	if _, err := db.GetProject(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing project err = %v", err)
	}
}

func TestCreateProject_DuplicateName(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "p1", "Home")
	err := db.CreateProject(context.Background(), models.Project{ID: "p2", Name: "Home", CreatedAt: time.Now()})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestInsertAndGetNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "Home")

	n := sampleNote("n1", "p1", "Plan")
	if err := db.InsertNote(ctx, n, "Plan\nfirst"); err != nil {
		t.Fatalf("InsertNote: %v", err)
	}

	got, err := db.GetNote(ctx, "p1", "n1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Plan" || got.Checksum != "c-n1" {
		t.Errorf("note = %+v", got)
	}
	if len(got.Content) != 2 {
		t.Fatalf("content blocks = %d, want 2", len(got.Content))
	}
	l, ok := got.Content[1].(document.BulletList)
	if !ok || !l.Numeric || l.Points[0].Text != "first" {
		t.Errorf("list block = %#v", got.Content[1])
	}

	// Notes are scoped to their project.
	if _, err := db.GetNote(ctx, "other", "n1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-project get err = %v", err)
	}
}

func TestInsertNote_UnknownProject(t *testing.T) {
	db := testDB(t)
	err := db.InsertNote(context.Background(), sampleNote("n1", "ghost", "x"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "Home")
	n := sampleNote("n1", "p1", "Old")
	_ = db.InsertNote(ctx, n, "old body")

	n.Title = "New"
	n.Checksum = "c2"
	n.Content = document.Content{document.Paragraph{ID: 1, Text: "only"}}
	if err := db.UpdateNote(ctx, n, "only"); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	got, _ := db.GetNote(ctx, "p1", "n1")
	if got.Title != "New" || got.Checksum != "c2" || len(got.Content) != 1 {
		t.Errorf("updated note = %+v", got)
	}

	n.ID = "missing"
	if err := db.UpdateNote(ctx, n, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "Home")
	_ = db.InsertNote(ctx, sampleNote("n1", "p1", "Gone"), "vanishing")

	if err := db.DeleteNote(ctx, "p1", "n1"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := db.GetNote(ctx, "p1", "n1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if err := db.DeleteNote(ctx, "p1", "n1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestListNotes_Pagination(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "Home")
	seedProject(t, db, "p2", "Work")

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a", "b", "c"} {
		n := sampleNote(id, "p1", id)
		n.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		_ = db.InsertNote(ctx, n, "")
	}
	_ = db.InsertNote(ctx, sampleNote("z", "p2", "z"), "")

	page, total, err := db.ListNotes(ctx, "p1", 2, 0)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Errorf("page = %+v, want c, b", page)
	}

	page, _, _ = db.ListNotes(ctx, "p1", 2, 2)
	if len(page) != 1 || page[0].ID != "a" {
		t.Errorf("second page = %+v", page)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1", "Home")
	seedProject(t, db, "p2", "Work")
	_ = db.InsertNote(ctx, sampleNote("n1", "p1", "Search Me"), "uniqueword appears here")
	_ = db.InsertNote(ctx, sampleNote("n2", "p2", "Other"), "uniqueword again")

	results, err := db.Search(ctx, "uniqueword", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("results = %+v, want 2 hits", results)
	}

	results, err = db.Search(ctx, "uniqueword", "p1", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].NoteID != "n1" {
		t.Errorf("scoped results = %+v, want n1", results)
	}
}
