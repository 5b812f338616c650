package editor

import (
	"context"
	"log/slog"

	"github.com/sohanasz/viote/internal/document"
)

// Payload is what a save sends to the persistence layer.
type Payload struct {
	Title   string           `json:"title"`
	Content document.Content `json:"content"`
}

// Persister stores notes. client.Client implements it over HTTP.
type Persister interface {
	// CreateNote stores a new note and returns its id.
	CreateNote(ctx context.Context, projectID string, p Payload) (string, error)
	// UpdateNote replaces an existing note.
	UpdateNote(ctx context.Context, projectID, noteID string, p Payload) error
}

// Notifier shows a message to the user.
type Notifier interface {
	Alert(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(title, message string) { f(title, message) }

// LogNotifier writes alerts to a logger, for sessions without a UI.
type LogNotifier struct {
	Logger *slog.Logger
}

// Alert implements Notifier.
func (n LogNotifier) Alert(title, message string) {
	n.Logger.Info("editor: alert", slog.String("title", title), slog.String("message", message))
}
