package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sohanasz/viote/internal/noteservice"
	"github.com/sohanasz/viote/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.TestDB(t)
	testutil.SeedProject(t, db, "p1", "Home")
	return New(noteservice.NewService(db, nil), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createdID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	_, ref, ok := strings.Cut(text, "created: ")
	if !ok || r.IsError {
		t.Fatalf("create result = %q", text)
	}
	_, id, _ := strings.Cut(ref, "/")
	return id
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{
		"project": "p1",
		"content": "# Groceries\n\n- milk\n- eggs\n",
	})
	id := createdID(t, r)

	r = callTool(t, srv, "read_note", map[string]any{"project": "p1", "id": id})
	text := resultText(r)
	for _, want := range []string{"title: Groceries", "# Groceries", "- milk", "- eggs"} {
		if !strings.Contains(text, want) {
			t.Errorf("read result missing %q:\n%s", want, text)
		}
	}
}

func TestCreateNote_ProjectFromFrontmatter(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_note", map[string]any{
		"content": "---\nproject: p1\n---\nhello",
		"title":   "Greeting",
	})
	if !strings.HasPrefix(resultText(r), "created: p1/") {
		t.Errorf("create result = %q", resultText(r))
	}
}

func TestCreateNote_NoProject(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_note", map[string]any{"content": "hello"})
	if !r.IsError || !strings.Contains(resultText(r), "no project") {
		t.Errorf("result = %q, want no project error", resultText(r))
	}
}

func TestListProjectsAndNotes(t *testing.T) {
	srv := testServer(t)
	createdID(t, callTool(t, srv, "create_note", map[string]any{"project": "p1", "content": "# A"}))
	createdID(t, callTool(t, srv, "create_note", map[string]any{"project": "p1", "content": "# B"}))

	r := callTool(t, srv, "list_projects", map[string]any{})
	if !strings.Contains(resultText(r), `"Home"`) {
		t.Errorf("projects = %q", resultText(r))
	}

	r = callTool(t, srv, "list_notes", map[string]any{"project": "p1"})
	if lines := strings.Split(resultText(r), "\n"); len(lines) != 2 {
		t.Errorf("notes = %q, want two lines", resultText(r))
	}

	r = callTool(t, srv, "list_notes", map[string]any{"project": "p1", "limit": 1})
	if !strings.Contains(resultText(r), "(1 of 2)") {
		t.Errorf("paged notes = %q", resultText(r))
	}
}

func TestListNotes_UnknownProject(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_notes", map[string]any{"project": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown project")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_note", map[string]any{"project": "p1", "id": "nope"})
	if !r.IsError || resultText(r) != "not found" {
		t.Errorf("result = %q, want not found error", resultText(r))
	}
}

func TestSearchNotes(t *testing.T) {
	srv := testServer(t)
	createdID(t, callTool(t, srv, "create_note", map[string]any{"project": "p1", "content": "# Trip\n\n- passport\n"}))

	r := callTool(t, srv, "search_notes", map[string]any{"query": "passport"})
	if !strings.Contains(resultText(r), "Trip") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestGetNoteContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_contract", map[string]any{})
	text := resultText(r)
	for _, want := range []string{"- `heading`: Heading", "- `bulletList`: Bullet List", "- `numericList`: Numeric List"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}
