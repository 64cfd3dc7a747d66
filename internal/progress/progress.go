// Package progress models the asynchronous stage-event stream callers
// consume while a document moves through upload, extraction and enrichment.
// Every stage emits an event regardless of success; events arriving after
// the stream is cancelled or closed are dropped.
package progress

import (
	"context"
	"sync"
)

// Stage identifies where in the processing lifecycle an event was emitted.
type Stage string

const (
	StageUploading  Stage = "uploading"
	StageProcessing Stage = "processing"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// Event is one progress update.
type Event struct {
	DocumentID string `json:"document_id,omitempty"`
	Stage      Stage  `json:"stage"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message,omitempty"`
}

// Tracker is a cancellable ordered event stream. Events emitted after the
// stream is closed or its context cancelled are dropped.
type Tracker struct {
	ctx    context.Context
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// NewTracker creates a tracker bound to ctx with the given buffer size.
func NewTracker(ctx context.Context, buffer int) *Tracker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Tracker{
		ctx: ctx,
		ch:  make(chan Event, buffer),
	}
}

// Events returns the receive side of the stream. The channel is closed when
// the producer finishes.
func (t *Tracker) Events() <-chan Event {
	return t.ch
}

// Emit publishes an event. Late events after Close or cancellation are
// silently dropped, preserving the ordering contract for live consumers.
func (t *Tracker) Emit(ev Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.ch <- ev:
	case <-t.ctx.Done():
	}
}

// Close ends the stream. Safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.ch)
}
