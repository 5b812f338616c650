// Package editor drives a Document from user events: text input, key
// presses, focus changes, layout reports and saves. A Session is safe for
// concurrent use; every event is applied atomically.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/document"
	"github.com/sohanasz/viote/internal/draft"
)

// KeyBackspace is the key name that triggers a point merge.
const KeyBackspace = "Backspace"

// ErrNoFocus is returned by text events when no block is selected.
var ErrNoFocus = errors.New("no block selected")

// Session is one open editor.
type Session struct {
	mu sync.Mutex

	doc          document.Document
	input        string
	creationKind document.Kind
	projectID    string
	noteID       string
	saving       bool

	persister Persister
	notifier  Notifier
	drafts    draft.Store
	draftKey  string
	logger    *slog.Logger
}

// New opens a session that saves through p.
func New(p Persister, opts ...Option) *Session {
	s := &Session{
		doc:          document.New(""),
		creationKind: document.KindParagraph,
		persister:    p,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	if s.drafts != nil {
		if snap, ok := draft.Load(s.drafts, s.draftKey, s.logger); ok {
			s.doc = document.Hydrate(snap.Title, snap.Content)
			s.logger.Info("editor: draft restored",
				slog.String("key", s.draftKey),
				slog.Int("blocks", s.doc.Len()),
				slog.Int("last_id", s.doc.LastID()),
			)
		}
	}
	return s
}

// Document returns a snapshot of the document.
func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Input returns the text of the active input: the focused heading or
// paragraph, or the focused point of the focused list.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// CreationKind returns the kind CreateBlock will append.
func (s *Session) CreationKind() document.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creationKind
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// NoteID returns the id of the note being edited, empty before the first
// successful save of a new note.
func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// SetProject selects the project saves go to.
func (s *Session) SetProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = projectID
}

// SetTitle replaces the note title.
func (s *Session) SetTitle(title string) error {
	return s.edit(func() error {
		s.doc = s.doc.SetTitle(title)
		return nil
	})
}

// SetCreationKind selects the kind of block CreateBlock appends.
func (s *Session) SetCreationKind(kind document.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("editor: %w: %q", document.ErrUnknownKind, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return apperr.ErrSaveInFlight
	}
	s.creationKind = kind
	return nil
}

// CreateBlock appends an empty block of the selected creation kind.
func (s *Session) CreateBlock() (document.Handle, error) {
	var h document.Handle
	err := s.edit(func() error {
		doc, created, err := s.doc.Create(s.creationKind)
		if err != nil {
			return err
		}
		s.doc, h = doc, created
		return nil
	})
	return h, err
}

// SelectBlock focuses a block and loads its text into the input.
func (s *Session) SelectBlock(h document.Handle) error {
	return s.edit(func() error {
		doc, err := s.doc.Select(h)
		if err != nil {
			return err
		}
		s.doc = doc
		s.syncInput()
		return nil
	})
}

// SelectBullet focuses point id of the list addressed by h.
func (s *Session) SelectBullet(h document.Handle, id int) error {
	return s.edit(func() error {
		doc, err := s.doc.SelectBullet(h, id)
		if err != nil {
			return err
		}
		s.doc = doc
		s.syncInput()
		return nil
	})
}

// DeleteSelected removes the focused block. Without a focus it does
// nothing.
func (s *Session) DeleteSelected() error {
	return s.edit(func() error {
		s.doc = s.doc.DeleteSelected()
		s.syncInput()
		return nil
	})
}

// ChangeText applies new input text to the focused block. In a list a
// newline splits the focused point.
func (s *Session) ChangeText(text string) error {
	return s.edit(func() error {
		h, bullet, ok := s.doc.Focus()
		if !ok {
			return ErrNoFocus
		}
		b, _ := s.doc.Block(h)
		if _, isList := b.(document.BulletList); isList {
			return s.changeBullet(h, bullet, text)
		}
		nb, _ := document.WithText(b, text)
		doc, err := s.doc.Replace(h, nb)
		if err != nil {
			return err
		}
		s.doc = doc
		s.input = text
		return nil
	})
}

// ChangeBulletText applies text addressed to a specific point. Input
// events may arrive for a point that has since lost focus. Such an event
// updates that point's text with newlines dropped; it never splits the
// list or moves the focus.
func (s *Session) ChangeBulletText(h document.Handle, id int, text string) error {
	return s.edit(func() error {
		return s.changeBullet(h, id, text)
	})
}

// KeyPress handles a key event on the focused block. Backspace on an
// empty point of a list with more than one point removes that point.
func (s *Session) KeyPress(key string) error {
	if key != KeyBackspace {
		return nil
	}
	return s.edit(func() error {
		h, bullet, ok := s.doc.Focus()
		if !ok {
			return nil
		}
		b, _ := s.doc.Block(h)
		l, isList := b.(document.BulletList)
		if !isList {
			return nil
		}
		merged, changed := l.Merge(bullet)
		if !changed {
			return nil
		}
		doc, err := s.doc.Replace(h, merged)
		if err != nil {
			return err
		}
		s.doc = doc
		s.syncInput()
		return nil
	})
}

// ContentSizeChanged records a rendered content height for a block.
// Layout reports are accepted while a save is in flight.
func (s *Session) ContentSizeChanged(h document.Handle, height float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.doc.ReportHeight(h, height)
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Discard drops the document and its cached draft.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return apperr.ErrSaveInFlight
	}
	s.doc = document.New("")
	s.input = ""
	s.clearDraft()
	return nil
}

// Save persists the document: a create for a new note, an update once the
// note has an id. Edits are refused until the save finishes. The outcome
// is reported through the Notifier as well as the returned error.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return apperr.ErrSaveInFlight
	}
	if s.projectID == "" {
		s.mu.Unlock()
		s.notifier.Alert("Notes not saved", "Please select a project before saving.")
		return apperr.ErrNoProject
	}
	s.saving = true
	payload := Payload{Title: s.doc.Title(), Content: s.doc.Blocks()}
	projectID, noteID := s.projectID, s.noteID
	s.mu.Unlock()

	updating := noteID != ""
	var err error
	if updating {
		err = s.persister.UpdateNote(ctx, projectID, noteID, payload)
	} else {
		noteID, err = s.persister.CreateNote(ctx, projectID, payload)
	}

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.noteID = noteID
		s.clearDraft()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("editor: save failed",
			slog.String("project_id", projectID),
			slog.Bool("update", updating),
			slog.String("error", err.Error()),
		)
		if updating {
			s.notifier.Alert("Error", "Notes did not update.")
		} else {
			s.notifier.Alert("Error", "Failed to save notes.")
		}
		return fmt.Errorf("editor: save: %w", err)
	}

	s.logger.Info("editor: saved",
		slog.String("project_id", projectID),
		slog.String("note_id", noteID),
		slog.Bool("update", updating),
	)
	if updating {
		s.notifier.Alert("Success", "Notes updated successfully")
	} else {
		s.notifier.Alert("Success", "Notes saved successfully")
	}
	return nil
}

// edit runs fn under the lock unless a save is in flight, then caches the
// draft.
func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return apperr.ErrSaveInFlight
	}
	if err := fn(); err != nil {
		return err
	}
	s.saveDraft()
	return nil
}

func (s *Session) changeBullet(h document.Handle, id int, text string) error {
	b, ok := s.doc.Block(h)
	if !ok {
		return document.ErrNoBlock
	}
	l, ok := b.(document.BulletList)
	if !ok {
		return document.ErrNoBlock
	}

	fh, fb, ok := s.doc.Focus()
	focused := ok && fh == h && fb == id

	var changed bool
	if focused && strings.ContainsAny(text, "\r\n") {
		l, changed = l.Split(id, text)
	} else {
		l, changed = l.SetText(id, text)
	}
	if !changed {
		return nil
	}
	doc, err := s.doc.Replace(h, l)
	if err != nil {
		return err
	}
	s.doc = doc
	if focused {
		s.syncInput()
	}
	return nil
}

// syncInput loads the focused text into the input buffer.
func (s *Session) syncInput() {
	h, bullet, ok := s.doc.Focus()
	if !ok {
		s.input = ""
		return
	}
	b, _ := s.doc.Block(h)
	switch b := b.(type) {
	case document.Heading:
		s.input = b.Text
	case document.Paragraph:
		s.input = b.Text
	case document.BulletList:
		p, _ := b.Point(bullet)
		s.input = p.Text
	}
}

func (s *Session) saveDraft() {
	if s.drafts == nil {
		return
	}
	snap := draft.Snapshot{Title: s.doc.Title(), Content: s.doc.Blocks()}
	if err := draft.Save(s.drafts, s.draftKey, snap); err != nil {
		s.logger.Warn("editor: draft not cached",
			slog.String("key", s.draftKey),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Session) clearDraft() {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Clear(s.draftKey); err != nil {
		s.logger.Warn("editor: draft not cleared",
			slog.String("key", s.draftKey),
			slog.String("error", err.Error()),
		)
	}
}
