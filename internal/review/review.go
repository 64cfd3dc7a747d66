// Package review owns the document status lifecycle and the edit, approve
// and reject commands. Transitions are checked against current state before
// applying; illegal commands leave the document unchanged.
package review

import (
	"time"

	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
)

// Engine applies review commands to documents.
type Engine struct {
	now func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithNow fixes the clock for testing.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a review engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CompleteExtraction transitions a processing document based on its
// provider results: error when zero providers succeeded, otherwise
// needs_review — even with an empty field set, which downstream treats as
// low-information rather than failure.
func (e *Engine) CompleteExtraction(doc *model.Document) error {
	if doc.Status != model.StatusProcessing {
		return e.illegal(doc, "complete extraction")
	}
	if doc.SucceededProviders() == 0 {
		doc.Status = model.StatusError
	} else {
		doc.Status = model.StatusNeedsReview
	}
	doc.UpdatedAt = e.now().UTC()
	zap.L().Info("review: extraction complete",
		zap.String("document_id", doc.ID),
		zap.String("status", string(doc.Status)),
		zap.Int("fields", len(doc.Fields)),
	)
	return nil
}

// EditField overrides a field value during review. The edit is appended to
// the edit history; two edits to the same field resolve last-write-wins by
// timestamp. Edits against a completed document fail with a distinct error
// rather than silently applying.
func (e *Engine) EditField(doc *model.Document, fieldID, newValue string) error {
	if doc.Status == model.StatusCompleted {
		return faults.Newf(faults.KindIllegalTransition, faults.CodeDocumentCompleted,
			"review: document %s is completed and read-only", doc.ID)
	}
	if doc.Status != model.StatusNeedsReview {
		return e.illegal(doc, "edit")
	}

	field := doc.FieldByID(fieldID)
	if field == nil {
		return faults.Newf(faults.KindNotFound, faults.CodeFieldNotFound,
			"review: document %s has no field %s", doc.ID, fieldID)
	}
	if !field.Editable {
		return faults.Newf(faults.KindIllegalTransition, faults.CodeBadTransition,
			"review: field %s is not editable", fieldID)
	}

	old := field.Value
	field.Value = newValue
	field.SourceProvider = model.SourceManual
	doc.EditHistory = append(doc.EditHistory, model.EditEntry{
		FieldID:   fieldID,
		OldValue:  old,
		NewValue:  newValue,
		Timestamp: e.now().UTC(),
	})
	doc.UpdatedAt = e.now().UTC()
	return nil
}

// Approve moves a document from needs_review to the terminal completed
// state. There is no field-completeness guard: approval is a human
// judgment call.
func (e *Engine) Approve(doc *model.Document) error {
	if doc.Status != model.StatusNeedsReview {
		return e.illegal(doc, "approve")
	}
	doc.Status = model.StatusCompleted
	doc.UpdatedAt = e.now().UTC()
	zap.L().Info("review: document approved", zap.String("document_id", doc.ID))
	return nil
}

// Reject sends a document back for correction. In needs_review it is an
// idempotent no-op on status; elsewhere it is an illegal transition.
func (e *Engine) Reject(doc *model.Document) error {
	if doc.Status != model.StatusNeedsReview {
		return e.illegal(doc, "reject")
	}
	doc.UpdatedAt = e.now().UTC()
	zap.L().Info("review: document rejected for correction", zap.String("document_id", doc.ID))
	return nil
}

func (e *Engine) illegal(doc *model.Document, command string) error {
	if doc.Status == model.StatusCompleted {
		return faults.Newf(faults.KindIllegalTransition, faults.CodeDocumentCompleted,
			"review: cannot %s document %s in status %s", command, doc.ID, doc.Status)
	}
	return faults.Newf(faults.KindIllegalTransition, faults.CodeBadTransition,
		"review: cannot %s document %s in status %s", command, doc.ID, doc.Status)
}
