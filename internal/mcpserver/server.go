// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Viote projects and notes for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/noteservice"
)

const formatURI = "viote://block-format"

// Server wraps the MCP server with Viote tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Viote tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Viote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects. Every note belongs to exactly one project."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the notes of a project, most recently updated first."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note rendered as Markdown."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note from Markdown. Headings, paragraphs, bullet and "+
			"numbered lists become blocks. Read the format first via the get_note_contract "+
			"tool or the "+formatURI+" resource."),
		mcp.WithString("project", mcp.Description("Project ID; may be omitted when the frontmatter names one")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown following the Viote note format")),
		mcp.WithString("title", mcp.Description("Title used when the document has none")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("project", mcp.Description("Limit results to one project")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Viote note format. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("How Markdown maps to note blocks."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.svc.ListProjects(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(projects)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, total, err := s.svc.ListNotes(ctx, project, req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return toolError(err), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	lines := make([]string, 0, len(notes)+1)
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", n.ID, n.UpdatedAt.Format("2006-01-02 15:04"), n.Title))
	}
	if total > len(notes) {
		lines = append(lines, fmt.Sprintf("(%d of %d)", len(notes), total))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ExportMarkdown(ctx, project, id)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.ImportMarkdown(ctx, req.GetString("project", ""), []byte(content), req.GetString("title", ""))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s/%s", note.ProjectID, note.ID)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetString("project", ""), 20)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) getNoteContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BlockFormatContract + blockTypeList()), nil
}

// blockTypeList names every block type with its editor label.
func blockTypeList() string {
	var b strings.Builder
	b.WriteString("\n## Block type tags\n\n")
	for _, k := range document.Kinds {
		fmt.Fprintf(&b, "- `%s`: %s\n", k, k.Label())
	}
	return b.String()
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BlockFormatContract + blockTypeList(),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a service error into a tool error the model can act on.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrNoProject):
		return mcp.NewToolResultError("no project: pass a project ID or set one in the frontmatter")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
