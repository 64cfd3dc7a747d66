// Package provider defines the interface and registry for OCR/AI
// extraction providers. Providers are consumed as black boxes that return
// candidate field values or errors.
package provider

import (
	"context"
	"sync"

	"github.com/dobby152/askelio-sub001/internal/normalize"
)

// Input is the document handed to a provider for extraction.
type Input struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is the complete response from one provider for one document.
type Result struct {
	Provider   string               `json:"provider"`
	Fields     []normalize.RawField `json:"fields"`
	Confidence float64              `json:"confidence"`
	TextLength int                  `json:"text_length"`
}

// Provider is a single extraction engine.
type Provider interface {
	// Name returns the provider identifier used in priority ordering and
	// cost rates.
	Name() string
	// Fallback reports whether the provider only runs when fallbacks are
	// enabled and a primary provider failed.
	Fallback() bool
	// Extract produces candidate field values for a document.
	Extract(ctx context.Context, in Input) (*Result, error)
}

// Registry manages the available extraction providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. Registration order is preserved for
// deterministic fan-out.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Get returns a provider by name, or nil if not found.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns all registered providers in registration order.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
