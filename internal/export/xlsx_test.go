package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/store"
)

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	now := time.Now().UTC()

	require.NoError(t, st.CreateDocument(ctx, &model.Document{
		ID:        "done",
		Status:    model.StatusCompleted,
		CreatedAt: now,
		Fields: []model.FieldRecord{
			{ID: "f1", Key: "invoice_number", Value: "FV-2026-001", Confidence: 0.95, SourceProvider: "claude"},
			{ID: "f2", Key: "vendor.ico", Value: "27074358", Confidence: 0.95, SourceProvider: "ares", Enriched: true},
			{ID: "f3", Key: "total_amount", Value: "1210.00", Confidence: 0.9, SourceProvider: "claude"},
		},
	}))
	// Unreviewed documents never leave the engine.
	require.NoError(t, st.CreateDocument(ctx, &model.Document{
		ID:        "pending",
		Status:    model.StatusNeedsReview,
		CreatedAt: now,
	}))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	n, err := WriteXLSX(ctx, st, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)

	summary := file.Sheets[0]
	require.GreaterOrEqual(t, len(summary.Rows), 2)
	assert.Equal(t, "document_id", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "done", summary.Rows[1].Cells[0].String())
	// invoice_number is the first export column after the id.
	assert.Equal(t, "FV-2026-001", summary.Rows[1].Cells[1].String())

	detail := file.Sheets[1]
	// Header plus one row per field of the completed document.
	assert.Len(t, detail.Rows, 4)
}

func TestWriteXLSXEmptyStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	n, err := WriteXLSX(context.Background(), store.NewMemory(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
