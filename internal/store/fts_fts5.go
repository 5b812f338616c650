//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			note_id UNINDEXED,
			project_id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, noteID, projectID, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, noteID)
	_, err := tx.Exec(`INSERT INTO notes_fts (note_id, project_id, title, body) VALUES (?, ?, ?, ?)`,
		noteID, projectID, title, body)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, noteID string) {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, noteID)
}

// Search runs an FTS5 query, optionally limited to one project, and
// returns hits with highlighted snippets.
func (db *DB) Search(ctx context.Context, query, projectID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT note_id,
		       project_id,
		       title,
		       snippet(notes_fts, 3, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ? AND (? = '' OR project_id = ?)
		ORDER BY rank
		LIMIT ?
	`, query, projectID, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.NoteID, &r.ProjectID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
