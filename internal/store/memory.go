package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dobby152/askelio-sub001/internal/model"
)

// Memory is an in-process store used by tests and single-shot CLI runs.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*model.Document)}
}

// Migrate implements Store. The memory store has no schema.
func (m *Memory) Migrate(ctx context.Context) error { return nil }

// CreateDocument implements Store.
func (m *Memory) CreateDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.Clone()
	return nil
}

// GetDocument implements Store.
func (m *Memory) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	return doc.Clone(), nil
}

// UpdateDocument implements Store.
func (m *Memory) UpdateDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return notFound(doc.ID)
	}
	m.docs[doc.ID] = doc.Clone()
	return nil
}

// ListDocuments implements Store.
func (m *Memory) ListDocuments(ctx context.Context, filter Filter) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
