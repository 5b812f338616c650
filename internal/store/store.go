package store

import (
	"context"

	"github.com/sohanasz/viote/internal/models"
)

// NoteStore is the persistence surface the service layer depends on.
type NoteStore interface {
	CreateProject(ctx context.Context, p models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	InsertNote(ctx context.Context, n models.Note, body string) error
	UpdateNote(ctx context.Context, n models.Note, body string) error
	GetNote(ctx context.Context, projectID, id string) (*models.Note, error)
	DeleteNote(ctx context.Context, projectID, id string) error
	ListNotes(ctx context.Context, projectID string, limit, offset int) ([]models.NoteSummary, int, error)
	Search(ctx context.Context, query, projectID string, limit int) ([]SearchResult, error)

	Ping(ctx context.Context) error
	Close() error
}

var _ NoteStore = (*DB)(nil)
