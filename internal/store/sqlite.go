package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dobby152/askelio-sub001/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	doc        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`

// SQLite stores documents in a local SQLite database. The full document is
// serialized as JSON; status and timestamps are lifted into columns for
// filtering.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open database")
	}

	// WAL keeps readers unblocked during pipeline writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: set pragmas")
	}

	return &SQLite{db: db}, nil
}

// Migrate implements Store.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// CreateDocument implements Store.
func (s *SQLite) CreateDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal document")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, status, created_at, updated_at, doc) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, string(doc.Status), doc.CreatedAt, doc.UpdatedAt, string(payload))
	if err != nil {
		return eris.Wrap(err, "sqlite: insert document")
	}
	return nil
}

// GetDocument implements Store.
func (s *SQLite) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query document")
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal document")
	}
	return &doc, nil
}

// UpdateDocument implements Store.
func (s *SQLite) UpdateDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal document")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ?, doc = ? WHERE id = ?`,
		string(doc.Status), doc.UpdatedAt, string(payload), doc.ID)
	if err != nil {
		return eris.Wrap(err, "sqlite: update document")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if affected == 0 {
		return notFound(doc.ID)
	}
	return nil
}

// ListDocuments implements Store.
func (s *SQLite) ListDocuments(ctx context.Context, filter Filter) ([]*model.Document, error) {
	query := `SELECT doc FROM documents`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 || filter.Offset > 0 {
		// OFFSET needs a LIMIT clause; -1 means unbounded.
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close() //nolint:errcheck

	var out []*model.Document
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		var doc model.Document
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal document")
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return out, nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
