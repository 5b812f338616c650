package api

import (
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/models"
	"github.com/sohanasz/viote/internal/store"
)

// NoteRequest is the request body for creating or updating a note.
type NoteRequest struct {
	Title   string           `json:"title" example:"Weekly plan"`
	Content document.Content `json:"content" validate:"required"`
}

// ProjectRequest is the request body for creating a project.
type ProjectRequest struct {
	Name        string `json:"name" example:"Work" validate:"required"`
	Description string `json:"description,omitempty" example:"Notes for the day job"`
}

// NoteDetail is the full note response type.
type NoteDetail = models.Note

// NoteListItem is a lightweight item in a list response.
type NoteListItem = models.NoteSummary

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// ProjectListResponse wraps project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}
