//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches query literally anywhere in a column.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

func initFTS(_ *sql.DB) error {
	// Without FTS5, search scans notes.body with LIKE.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search runs a LIKE match over titles and bodies, optionally limited to
// one project.
func (db *DB) Search(ctx context.Context, query, projectID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := likePattern(query)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, title, substr(body, 1, 200)
		FROM notes
		WHERE (title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\') AND (? = '' OR project_id = ?)
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, like, projectID, projectID, limit)
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
