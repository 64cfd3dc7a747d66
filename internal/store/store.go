// Package store persists documents across the extraction and review
// lifecycle. Three backends are available: an in-memory store for tests
// and single-shot CLI runs, SQLite for local use and Postgres for server
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dobby152/askelio-sub001/internal/config"
	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
)

// Filter narrows ListDocuments results.
type Filter struct {
	Status model.DocumentStatus
	Limit  int
	Offset int
}

// Store is the document persistence interface. Implementations return a
// not_found fault when a document id is unknown.
type Store interface {
	// Migrate creates or upgrades the backing schema.
	Migrate(ctx context.Context) error
	// CreateDocument inserts a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument loads a document by id.
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	// UpdateDocument replaces the stored document with the same id.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// ListDocuments returns documents matching the filter, newest first.
	ListDocuments(ctx context.Context, filter Filter) ([]*model.Document, error)
	// Close releases backend resources.
	Close() error
}

// Open creates the store selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func notFound(id string) error {
	return faults.Newf(faults.KindNotFound, faults.CodeDocumentNotFound,
		"store: document %s not found", id)
}
