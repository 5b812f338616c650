// Package noteservice implements project and note operations on top of the
// store: content validation, checksums, change events and Markdown import.
package noteservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/checksum"
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/markdown"
	"github.com/sohanasz/viote/internal/models"
	"github.com/sohanasz/viote/internal/store"
)

// Note change kinds passed to an EventSink.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventSink receives note change notifications. sse.Broker implements it.
type EventSink interface {
	PublishNoteEvent(kind, projectID, noteID string)
}

// Service coordinates the store and change events.
type Service struct {
	db     store.NoteStore
	events EventSink
	now    func() time.Time
}

// NewService creates a note service. events may be nil.
func NewService(db store.NoteStore, events EventSink) *Service {
	return &Service{
		db:     db,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CreateProject creates a project with a fresh id.
func (s *Service) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, 200)); err != nil {
		return nil, fmt.Errorf("%w: name %s", apperr.ErrInvalidContent, err)
	}
	p := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.db.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.db.GetProject(ctx, id)
}

// ListProjects returns all projects.
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.db.ListProjects(ctx)
}

// CreateNote validates content and stores it as a new note of the project.
func (s *Service) CreateNote(ctx context.Context, projectID, title string, content document.Content) (*models.Note, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	content = nonNilContent(content)
	sum, err := Checksum(title, content)
	if err != nil {
		return nil, err
	}
	now := s.now()
	n := models.Note{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Content:   content,
		Checksum:  sum,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.InsertNote(ctx, n, Body(title, content)); err != nil {
		return nil, err
	}
	s.publish(EventCreated, n.ProjectID, n.ID)
	return &n, nil
}

// UpdateNote replaces a note's title and content. A non-empty ifMatch must
// equal the stored checksum, otherwise ErrConflict is returned.
func (s *Service) UpdateNote(ctx context.Context, projectID, noteID, title string, content document.Content, ifMatch string) (*models.Note, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	existing, err := s.db.GetNote(ctx, projectID, noteID)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != existing.Checksum {
		return nil, apperr.ErrConflict
	}

	content = nonNilContent(content)
	sum, err := Checksum(title, content)
	if err != nil {
		return nil, err
	}
	n := *existing
	n.Title = title
	n.Content = content
	n.Checksum = sum
	n.UpdatedAt = s.now()
	if err := s.db.UpdateNote(ctx, n, Body(title, content)); err != nil {
		return nil, err
	}
	s.publish(EventUpdated, n.ProjectID, n.ID)
	return &n, nil
}

// GetNote returns a note with its content.
func (s *Service) GetNote(ctx context.Context, projectID, noteID string) (*models.Note, error) {
	return s.db.GetNote(ctx, projectID, noteID)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, projectID, noteID string) error {
	if err := s.db.DeleteNote(ctx, projectID, noteID); err != nil {
		return err
	}
	s.publish(EventDeleted, projectID, noteID)
	return nil
}

// ListNotes returns a page of a project's notes and the total count.
func (s *Service) ListNotes(ctx context.Context, projectID string, limit, offset int) ([]models.NoteSummary, int, error) {
	if _, err := s.db.GetProject(ctx, projectID); err != nil {
		return nil, 0, err
	}
	return s.db.ListNotes(ctx, projectID, limit, offset)
}

// Search delegates full-text search to the store.
func (s *Service) Search(ctx context.Context, query, projectID string, limit int) ([]store.SearchResult, error) {
	return s.db.Search(ctx, query, projectID, limit)
}

// ImportMarkdown parses a Markdown document and stores it as a new note. A
// "project" frontmatter field overrides projectID; fallbackTitle is used
// when the document carries no title.
func (s *Service) ImportMarkdown(ctx context.Context, projectID string, data []byte, fallbackTitle string) (*models.Note, error) {
	res, err := markdown.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("noteservice: parse markdown: %w", err)
	}
	if res.Project != "" {
		projectID = res.Project
	}
	if projectID == "" {
		return nil, apperr.ErrNoProject
	}
	title := res.Title
	if title == "" {
		title = fallbackTitle
	}
	return s.CreateNote(ctx, projectID, title, res.Content)
}

// ExportMarkdown renders a note as Markdown.
func (s *Service) ExportMarkdown(ctx context.Context, projectID, noteID string) ([]byte, error) {
	n, err := s.db.GetNote(ctx, projectID, noteID)
	if err != nil {
		return nil, err
	}
	return markdown.Render(n.Title, n.Content)
}

// Checksum digests a note's title and encoded content.
func Checksum(title string, content document.Content) (string, error) {
	data, err := json.Marshal(nonNilContent(content))
	if err != nil {
		return "", fmt.Errorf("noteservice: encode content: %w", err)
	}
	return checksum.Parts([]byte(title), data), nil
}

// Body flattens a note into the plain text indexed for search.
func Body(title string, content document.Content) string {
	parts := make([]string, 0, len(content)+1)
	if title != "" {
		parts = append(parts, title)
	}
	for _, b := range content {
		if text := document.PlainText(b); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func (s *Service) publish(kind, projectID, noteID string) {
	if s.events != nil {
		s.events.PublishNoteEvent(kind, projectID, noteID)
	}
}

func validateContent(c document.Content) error {
	if err := document.Validate(c); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidContent, err)
	}
	return nil
}

func nonNilContent(c document.Content) document.Content {
	if c == nil {
		return document.Content{}
	}
	return c
}
