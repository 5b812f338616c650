package editor

import (
	"log/slog"

	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/draft"
)

// Option configures a Session.
type Option func(*Session)

// WithDrafts enables draft caching under key. A draft found there when the
// session starts replaces the initial document.
func WithDrafts(store draft.Store, key string) Option {
	return func(s *Session) {
		s.drafts = store
		s.draftKey = key
	}
}

// WithNotifier sets where user-visible alerts go.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithProject selects the project saves go to.
func WithProject(projectID string) Option {
	return func(s *Session) {
		s.projectID = projectID
	}
}

// WithNote opens an existing note; saves update it instead of creating a
// new one.
func WithNote(noteID, title string, content document.Content) Option {
	return func(s *Session) {
		s.noteID = noteID
		s.doc = document.Hydrate(title, content)
	}
}
