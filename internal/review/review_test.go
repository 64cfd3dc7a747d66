package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func processingDoc(succeeded int) *model.Document {
	doc := &model.Document{ID: "doc-1", Status: model.StatusProcessing}
	for i := 0; i < succeeded; i++ {
		doc.ProviderResults = append(doc.ProviderResults, model.ProviderResult{Provider: "claude", Success: true})
	}
	return doc
}

func TestCompleteExtraction(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithNow(fixedNow))

	t.Run("success moves to needs_review", func(t *testing.T) {
		t.Parallel()
		doc := processingDoc(1)
		require.NoError(t, e.CompleteExtraction(doc))
		assert.Equal(t, model.StatusNeedsReview, doc.Status)
		assert.Equal(t, fixedNow(), doc.UpdatedAt)
	})

	t.Run("zero fields still needs review when a provider succeeded", func(t *testing.T) {
		t.Parallel()
		doc := processingDoc(1)
		doc.Fields = nil
		require.NoError(t, e.CompleteExtraction(doc))
		assert.Equal(t, model.StatusNeedsReview, doc.Status)
		assert.Equal(t, 0.0, doc.AggregateConfidence())
	})

	t.Run("all providers failed moves to error", func(t *testing.T) {
		t.Parallel()
		doc := processingDoc(0)
		doc.ProviderResults = []model.ProviderResult{{Provider: "claude", Success: false, Error: "timeout"}}
		require.NoError(t, e.CompleteExtraction(doc))
		assert.Equal(t, model.StatusError, doc.Status)
	})

	t.Run("illegal outside processing", func(t *testing.T) {
		t.Parallel()
		doc := processingDoc(1)
		doc.Status = model.StatusNeedsReview
		err := e.CompleteExtraction(doc)
		assert.True(t, faults.IsKind(err, faults.KindIllegalTransition))
	})
}

func TestEditField(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithNow(fixedNow))

	newDoc := func() *model.Document {
		return &model.Document{
			ID:     "doc-1",
			Status: model.StatusNeedsReview,
			Fields: []model.FieldRecord{
				{ID: "f1", Key: "total_amount", Value: "1210.00", Editable: true},
				{ID: "f2", Key: "vendor.ico", Value: "27074358", Editable: false},
			},
		}
	}

	t.Run("edit appends history and marks manual", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		require.NoError(t, e.EditField(doc, "f1", "1250.00"))
		assert.Equal(t, "1250.00", doc.FieldByID("f1").Value)
		assert.Equal(t, "manual", doc.FieldByID("f1").SourceProvider)
		require.Len(t, doc.EditHistory, 1)
		assert.Equal(t, "1210.00", doc.EditHistory[0].OldValue)
		assert.Equal(t, "1250.00", doc.EditHistory[0].NewValue)
	})

	t.Run("second edit wins and history keeps both", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		require.NoError(t, e.EditField(doc, "f1", "1250.00"))
		require.NoError(t, e.EditField(doc, "f1", "1300.00"))
		assert.Equal(t, "1300.00", doc.FieldByID("f1").Value)
		require.Len(t, doc.EditHistory, 2)
	})

	t.Run("completed document gets distinct error", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		doc.Status = model.StatusCompleted
		err := e.EditField(doc, "f1", "999")
		require.Error(t, err)
		assert.Equal(t, faults.CodeDocumentCompleted, faults.CodeOf(err))
		assert.Equal(t, "1210.00", doc.FieldByID("f1").Value)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		err := e.EditField(doc, "f99", "x")
		assert.True(t, faults.IsKind(err, faults.KindNotFound))
	})

	t.Run("non-editable field rejected", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		err := e.EditField(doc, "f2", "00000019")
		require.Error(t, err)
		assert.Equal(t, "27074358", doc.FieldByID("f2").Value)
	})

	t.Run("processing document rejected", func(t *testing.T) {
		t.Parallel()
		doc := newDoc()
		doc.Status = model.StatusProcessing
		err := e.EditField(doc, "f1", "x")
		assert.Equal(t, faults.CodeBadTransition, faults.CodeOf(err))
	})
}

func TestApprove(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithNow(fixedNow))

	t.Run("needs_review completes", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{ID: "doc-1", Status: model.StatusNeedsReview}
		require.NoError(t, e.Approve(doc))
		assert.Equal(t, model.StatusCompleted, doc.Status)
	})

	t.Run("double approve is illegal", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{ID: "doc-1", Status: model.StatusNeedsReview}
		require.NoError(t, e.Approve(doc))
		err := e.Approve(doc)
		assert.Equal(t, faults.CodeDocumentCompleted, faults.CodeOf(err))
	})

	t.Run("error document cannot be approved", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{ID: "doc-1", Status: model.StatusError}
		err := e.Approve(doc)
		assert.Equal(t, faults.CodeBadTransition, faults.CodeOf(err))
	})
}

func TestReject(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithNow(fixedNow))

	t.Run("needs_review stays put", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{ID: "doc-1", Status: model.StatusNeedsReview}
		require.NoError(t, e.Reject(doc))
		assert.Equal(t, model.StatusNeedsReview, doc.Status)
	})

	t.Run("completed document cannot be rejected", func(t *testing.T) {
		t.Parallel()
		doc := &model.Document{ID: "doc-1", Status: model.StatusCompleted}
		err := e.Reject(doc)
		assert.True(t, faults.IsKind(err, faults.KindIllegalTransition))
	})
}
