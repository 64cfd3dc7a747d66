package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dobby152/askelio-sub001/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`

// Pool is the subset of pgxpool.Pool the store uses, satisfied by pgxmock
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres stores documents in a PostgreSQL database.
type Postgres struct {
	pool Pool
}

// OpenPostgres connects to the database at databaseURL.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool. Used by tests with pgxmock.
func NewPostgres(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate implements Store.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// CreateDocument implements Store.
func (p *Postgres) CreateDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal document")
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO documents (id, status, created_at, updated_at, doc) VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, string(doc.Status), doc.CreatedAt, doc.UpdatedAt, payload)
	if err != nil {
		return eris.Wrap(err, "postgres: insert document")
	}
	return nil
}

// GetDocument implements Store.
func (p *Postgres) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query document")
	}

	var doc model.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal document")
	}
	return &doc, nil
}

// UpdateDocument implements Store.
func (p *Postgres) UpdateDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal document")
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2, doc = $3 WHERE id = $4`,
		string(doc.Status), doc.UpdatedAt, payload, doc.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: update document")
	}
	if tag.RowsAffected() == 0 {
		return notFound(doc.ID)
	}
	return nil
}

// ListDocuments implements Store.
func (p *Postgres) ListDocuments(ctx context.Context, filter Filter) ([]*model.Document, error) {
	query := `SELECT doc FROM documents`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var out []*model.Document
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		var doc model.Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal document")
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return out, nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
