package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobby152/askelio-sub001/internal/config"
	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
)

func configFor(driver, path string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, Path: path}
}

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLite(t)

	doc := sampleDoc("doc-1", model.StatusNeedsReview, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	doc.Enrichment = []model.EnrichmentResult{{Subject: model.SubjectVendor, RegistryID: "27074358", Success: true}}
	require.NoError(t, s.CreateDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Fields, got.Fields)
	require.Len(t, got.Enrichment, 1)
	assert.Equal(t, "27074358", got.Enrichment[0].RegistryID)
}

func TestSQLiteNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLite(t)

	_, err := s.GetDocument(ctx, "ghost")
	assert.True(t, faults.IsKind(err, faults.KindNotFound))

	err = s.UpdateDocument(ctx, sampleDoc("ghost", model.StatusProcessing, time.Now()))
	assert.True(t, faults.IsKind(err, faults.KindNotFound))
}

func TestSQLiteUpdateAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSQLite(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateDocument(ctx, sampleDoc("a", model.StatusNeedsReview, base)))
	require.NoError(t, s.CreateDocument(ctx, sampleDoc("b", model.StatusNeedsReview, base.Add(time.Hour))))

	doc, err := s.GetDocument(ctx, "a")
	require.NoError(t, err)
	doc.Status = model.StatusCompleted
	require.NoError(t, s.UpdateDocument(ctx, doc))

	completed, err := s.ListDocuments(ctx, Filter{Status: model.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "a", completed[0].ID)

	all, err := s.ListDocuments(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	limited, err := s.ListDocuments(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "a", limited[0].ID)
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mem, err := Open(ctx, configFor("memory", ""))
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, mem)

	sq, err := Open(ctx, configFor("sqlite", filepath.Join(t.TempDir(), "x.db")))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, sq)
	_ = sq.Close()

	_, err = Open(ctx, configFor("oracle", ""))
	assert.Error(t, err)
}
