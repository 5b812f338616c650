package noteservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/testutil"
)

type sinkEvent struct{ kind, projectID, noteID string }

type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *recordingSink) PublishNoteEvent(kind, projectID, noteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{kind, projectID, noteID})
}

func newTestService(t *testing.T) (*Service, *recordingSink) {
	t.Helper()
	db := testutil.TestDB(t)
	testutil.SeedProject(t, db, "p1", "Home")
	sink := &recordingSink{}
	return NewService(db, sink), sink
}

func sampleContent() document.Content {
	return document.Content{
		document.Heading{ID: 1, Text: "Goals"},
		document.BulletList{ID: 2, Points: []document.BulletPoint{{ID: 1, Text: "ship"}, {ID: 2, Text: "rest"}}},
	}
}

func TestCreateAndGetNote(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	n, err := svc.CreateNote(ctx, "p1", "Plan", sampleContent())
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if n.ID == "" || n.Checksum == "" {
		t.Errorf("note = %+v", n)
	}

	got, err := svc.GetNote(ctx, "p1", n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Plan" || got.Checksum != n.Checksum || len(got.Content) != 2 {
		t.Errorf("got = %+v", got)
	}
	if len(sink.events) != 1 || sink.events[0] != (sinkEvent{EventCreated, "p1", n.ID}) {
		t.Errorf("events = %+v", sink.events)
	}
}

func TestCreateNote_InvalidContent(t *testing.T) {
	svc, sink := newTestService(t)
	bad := document.Content{document.BulletList{ID: 1, Points: []document.BulletPoint{{ID: 2, Text: "gap"}}}}
	_, err := svc.CreateNote(context.Background(), "p1", "x", bad)
	if !errors.Is(err, apperr.ErrInvalidContent) {
		t.Fatalf("err = %v, want ErrInvalidContent", err)
	}
	if len(sink.events) != 0 {
		t.Error("no event expected for rejected note")
	}
}

func TestCreateNote_UnknownProject(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateNote(context.Background(), "nope", "x", nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNote_IfMatch(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	n, _ := svc.CreateNote(ctx, "p1", "v1", sampleContent())

	updated, err := svc.UpdateNote(ctx, "p1", n.ID, "v2", sampleContent(), n.Checksum)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Checksum == n.Checksum {
		t.Error("checksum should change with the title")
	}
	if !updated.CreatedAt.Equal(n.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", n.CreatedAt, updated.CreatedAt)
	}

	_, err = svc.UpdateNote(ctx, "p1", n.ID, "v3", sampleContent(), n.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale If-Match err = %v, want ErrConflict", err)
	}

	if _, err := svc.UpdateNote(ctx, "p1", n.ID, "v4", nil, ""); err != nil {
		t.Errorf("update without If-Match: %v", err)
	}
	if got := sink.events[len(sink.events)-1].kind; got != EventUpdated {
		t.Errorf("last event = %s", got)
	}
}

func TestUpdateNote_Missing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateNote(context.Background(), "p1", "ghost", "t", nil, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()
	n, _ := svc.CreateNote(ctx, "p1", "bye", nil)

	if err := svc.DeleteNote(ctx, "p1", n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := svc.GetNote(ctx, "p1", n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if sink.events[len(sink.events)-1].kind != EventDeleted {
		t.Errorf("events = %+v", sink.events)
	}
}

func TestListNotes_UnknownProject(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.ListNotes(context.Background(), "nope", 10, 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProjects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "  Work ", "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Name != "Work" || p.ID == "" {
		t.Errorf("project = %+v", p)
	}
	if _, err := svc.CreateProject(ctx, "Work", ""); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v", err)
	}
	if _, err := svc.CreateProject(ctx, "   ", ""); !errors.Is(err, apperr.ErrInvalidContent) {
		t.Errorf("blank name err = %v", err)
	}
	list, _ := svc.ListProjects(ctx)
	if len(list) != 2 {
		t.Errorf("projects = %d, want 2", len(list))
	}
}

func TestImportAndExportMarkdown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.ImportMarkdown(ctx, "p1", []byte("# Trip\n\n1. pack\n2. go\n"), "fallback")
	if err != nil {
		t.Fatalf("ImportMarkdown: %v", err)
	}
	if n.Title != "Trip" || len(n.Content) != 2 {
		t.Errorf("imported = %+v", n)
	}

	out, err := svc.ExportMarkdown(ctx, "p1", n.ID)
	if err != nil {
		t.Fatalf("ExportMarkdown: %v", err)
	}
	if !strings.Contains(string(out), "2. go") {
		t.Errorf("export = %q", out)
	}
}

func TestImportMarkdown_FallbackTitleAndProject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.ImportMarkdown(ctx, "", []byte("---\nproject: p1\n---\nplain text\n"), "inbox-file")
	if err != nil {
		t.Fatalf("ImportMarkdown: %v", err)
	}
	if n.Title != "inbox-file" || n.ProjectID != "p1" {
		t.Errorf("imported = %+v", n)
	}

	_, err = svc.ImportMarkdown(ctx, "", []byte("no project"), "x")
	if !errors.Is(err, apperr.ErrNoProject) {
		t.Errorf("err = %v, want ErrNoProject", err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.CreateNote(ctx, "p1", "Recipes", document.Content{document.Paragraph{ID: 1, Text: "saffron risotto"}})

	hits, err := svc.Search(ctx, "saffron", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Recipes" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestBody(t *testing.T) {
	got := Body("T", sampleContent())
	if got != "T\nGoals\nship\nrest" {
		t.Errorf("body = %q", got)
	}
}
