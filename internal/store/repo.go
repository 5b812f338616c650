package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/models"
)

// SearchResult is one search hit.
type SearchResult struct {
	NoteID    string `json:"note_id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CreateProject inserts a project. A duplicate name is ErrAlreadyExists.
func (db *DB) CreateProject(ctx context.Context, p models.Project) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.CreatedAt.UTC())
	if isUnique(err) {
		return fmt.Errorf("store: project %q: %w", p.Name, apperr.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("store: insert project: %w", err)
	}
	return nil
}

// GetProject returns the project with the given id.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM projects ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertNote stores a new note. body is the plain text indexed for search.
func (db *DB) InsertNote(ctx context.Context, n models.Note, body string) error {
	content, err := json.Marshal(n.Content)
	if err != nil {
		return fmt.Errorf("store: encode content: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (id, project_id, title, content, body, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.ProjectID, n.Title, string(content), body, n.Checksum, n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if isUnique(err) {
		return fmt.Errorf("store: note %s: %w", n.ID, apperr.ErrAlreadyExists)
	}
	if isForeignKey(err) {
		return fmt.Errorf("store: project %s: %w", n.ProjectID, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	if err := ftsUpsert(tx, n.ID, n.ProjectID, n.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateNote replaces the title, content and checksum of an existing note.
func (db *DB) UpdateNote(ctx context.Context, n models.Note, body string) error {
	content, err := json.Marshal(n.Content)
	if err != nil {
		return fmt.Errorf("store: encode content: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, body = ?, checksum = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`, n.Title, string(content), body, n.Checksum, n.UpdatedAt.UTC(), n.ID, n.ProjectID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsUpsert(tx, n.ID, n.ProjectID, n.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// GetNote returns a note with its decoded content.
func (db *DB) GetNote(ctx context.Context, projectID, id string) (*models.Note, error) {
	var (
		n       models.Note
		content string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, project_id, title, content, checksum, created_at, updated_at
		FROM notes WHERE id = ? AND project_id = ?
	`, id, projectID).Scan(&n.ID, &n.ProjectID, &n.Title, &content, &n.Checksum, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	if err := json.Unmarshal([]byte(content), &n.Content); err != nil {
		return nil, fmt.Errorf("store: decode content of %s: %w", id, err)
	}
	return &n, nil
}

// DeleteNote removes a note and its search entry.
func (db *DB) DeleteNote(ctx context.Context, projectID, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	ftsDelete(tx, id)
	return tx.Commit()
}

// ListNotes returns a page of a project's notes, most recently updated
// first, and the total count.
func (db *DB) ListNotes(ctx context.Context, projectID string, limit, offset int) ([]models.NoteSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM notes WHERE project_id = ?`, projectID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count notes: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, title, checksum, updated_at
		FROM notes
		WHERE project_id = ?
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?
	`, projectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.NoteSummary{}
	for rows.Next() {
		var s models.NoteSummary
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Title, &s.Checksum, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func isUnique(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKey(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
