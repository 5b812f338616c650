// Package models defines the persisted domain types shared by the store,
// service and API layers.
package models

import (
	"time"

	"github.com/sohanasz/viote/internal/document"
)

// Project groups notes. Every note belongs to exactly one project.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is a saved block document.
type Note struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id"`
	Title     string           `json:"title"`
	Content   document.Content `json:"content"`
	Checksum  string           `json:"checksum"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NoteSummary is the lightweight form returned by list operations.
type NoteSummary struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileMeta describes a file found under a storage root.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
