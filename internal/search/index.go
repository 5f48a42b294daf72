// Package search provides a SQLite-backed full-text index over notes and
// captions, with optional FTS5 support.
//
// The index is derived state: it is rebuilt from the persisted document at
// startup and whenever the document changes on disk. The JSON document stays
// the source of truth; losing the index loses nothing.
package search

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/models"
)

// Entry kinds.
const (
	KindNote    = "note"
	KindCaption = "caption"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	text       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (kind, id)
);
`

// Result is a single search hit.
type Result struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
}

// Index wraps a sql.DB with entry indexing operations.
type Index struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite index and applies the schema.
func Open(dsn string) (*Index, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("search: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply fts schema: %w", err)
	}
	return &Index{conn: conn}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.conn.Close()
}

// Upsert inserts or replaces a single entry.
func (ix *Index) Upsert(kind, id, text, createdAt string) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO entries (kind, id, text, created_at)
		VALUES (?, ?, ?, ?)
	`, kind, id, text, createdAt); err != nil {
		return fmt.Errorf("search: upsert entry: %w", err)
	}
	if err := ftsUpsert(tx, kind, id, text); err != nil {
		return err
	}
	return tx.Commit()
}

// Rebuild replaces the whole index with the collections from doc. Used at
// startup and after external document edits.
func (ix *Index) Rebuild(doc models.Document) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("search: clear entries: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	for _, n := range doc.Notes {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO entries (kind, id, text, created_at)
			VALUES (?, ?, ?, ?)
		`, KindNote, n.ID, n.Text, n.Date.Format("2006-01-02T15:04:05Z07:00")); err != nil {
			return fmt.Errorf("search: rebuild note %s: %w", n.ID, err)
		}
		if err := ftsUpsert(tx, KindNote, n.ID, n.Text); err != nil {
			return err
		}
	}
	for _, c := range doc.Captions {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO entries (kind, id, text, created_at)
			VALUES (?, ?, ?, ?)
		`, KindCaption, c.ID, c.Text, c.Timestamp); err != nil {
			return fmt.Errorf("search: rebuild caption %s: %w", c.ID, err)
		}
		if err := ftsUpsert(tx, KindCaption, c.ID, c.Text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of indexed entries.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("search: count: %w", err)
	}
	return n, nil
}
