// Package monitoring aggregates operational metrics over the document
// store for the /metrics endpoint and the docs command.
package monitoring

import (
	"context"

	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/store"
)

// ProviderStats summarizes one provider's runs.
type ProviderStats struct {
	Runs          int     `json:"runs"`
	Successes     int     `json:"successes"`
	SuccessRate   float64 `json:"success_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgTimeMs     float64 `json:"avg_time_ms"`
}

// Snapshot is a point-in-time metrics view.
type Snapshot struct {
	Documents          int                            `json:"documents"`
	ByStatus           map[model.DocumentStatus]int   `json:"by_status"`
	AvgConfidence      float64                        `json:"avg_confidence"`
	Providers          map[string]*ProviderStats      `json:"providers"`
	EnrichmentAttempts int                            `json:"enrichment_attempts"`
	EnrichmentFailures int                            `json:"enrichment_failures"`
	EditedDocuments    int                            `json:"edited_documents"`
}

// Collector computes snapshots from the store.
type Collector struct {
	docs store.Store
}

// NewCollector creates a collector over the given store.
func NewCollector(docs store.Store) *Collector {
	return &Collector{docs: docs}
}

// Collect walks all documents and aggregates counts, confidences and
// provider outcomes.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	docs, err := c.docs.ListDocuments(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ByStatus:  make(map[model.DocumentStatus]int),
		Providers: make(map[string]*ProviderStats),
	}

	var confidenceSum float64
	var confidenceDocs int
	for _, doc := range docs {
		snap.Documents++
		snap.ByStatus[doc.Status]++
		if len(doc.EditHistory) > 0 {
			snap.EditedDocuments++
		}

		if len(doc.Fields) > 0 {
			confidenceSum += doc.AggregateConfidence()
			confidenceDocs++
		}

		for _, pr := range doc.ProviderResults {
			stats, ok := snap.Providers[pr.Provider]
			if !ok {
				stats = &ProviderStats{}
				snap.Providers[pr.Provider] = stats
			}
			stats.Runs++
			if pr.Success {
				stats.Successes++
				stats.AvgConfidence += pr.Confidence
			}
			stats.AvgTimeMs += float64(pr.ProcessingTimeMs)
		}

		for _, en := range doc.Enrichment {
			snap.EnrichmentAttempts++
			if !en.Success {
				snap.EnrichmentFailures++
			}
		}
	}

	if confidenceDocs > 0 {
		snap.AvgConfidence = confidenceSum / float64(confidenceDocs)
	}
	for _, stats := range snap.Providers {
		if stats.Runs > 0 {
			stats.SuccessRate = float64(stats.Successes) / float64(stats.Runs)
			stats.AvgTimeMs /= float64(stats.Runs)
		}
		if stats.Successes > 0 {
			stats.AvgConfidence /= float64(stats.Successes)
		}
	}
	return snap, nil
}
