// Package reconcile deduplicates per-provider field candidates into a single
// winning value per field, with the full ranked candidate list preserved as
// alternatives, winner first.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/dobby152/askelio-sub001/internal/model"
)

// ConfidenceClass buckets a confidence score for display.
type ConfidenceClass string

const (
	ClassHigh   ConfidenceClass = "high"
	ClassMedium ConfidenceClass = "medium"
	ClassLow    ConfidenceClass = "low"
)

const (
	highThreshold   = 0.9
	mediumThreshold = 0.7
)

// Classify is a pure function of the fixed 0.9/0.7 thresholds.
func Classify(confidence float64) ConfidenceClass {
	switch {
	case confidence >= highThreshold:
		return ClassHigh
	case confidence >= mediumThreshold:
		return ClassMedium
	default:
		return ClassLow
	}
}

// DefaultPriority orders providers most capable first. It breaks confidence
// ties during ranking.
var DefaultPriority = []string{"claude", "mistral", "tesseract"}

// Reconciler ranks candidate values per field identity and selects winners.
type Reconciler struct {
	rank map[string]int // provider -> priority rank, lower wins ties
}

// New creates a Reconciler with the given provider priority order
// (most capable first). Nil or empty falls back to DefaultPriority.
func New(priority []string) *Reconciler {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		rank[name] = i
	}
	return &Reconciler{rank: rank}
}

type candidate struct {
	value      string
	confidence float64
	provider   string
	rawText    string
}

// Reconcile groups candidates by field identity (canonical key), ranks them
// by confidence descending with provider priority breaking ties, and returns
// one FieldRecord per identity. Alternatives carry the full ranked candidate
// list, winner first, so Value always mirrors Alternatives[0]. Ids are
// derived from group insertion order. Fields holding a human override pass
// through untouched; re-ranking never reverts an edit. The operation is
// idempotent: reconciling an already-reconciled set changes nothing.
func (r *Reconciler) Reconcile(fields []model.FieldRecord) []model.FieldRecord {
	type group struct {
		key        string
		fieldType  model.FieldType
		label      string
		enriched   bool
		editable   bool
		manual     *model.FieldRecord
		candidates []candidate
	}

	var order []string
	groups := make(map[string]*group)

	for _, f := range fields {
		g, ok := groups[f.Key]
		if !ok {
			g = &group{key: f.Key, fieldType: f.Type, label: f.Label, editable: f.Editable}
			groups[f.Key] = g
			order = append(order, f.Key)
		}
		if f.SourceProvider == model.SourceManual {
			override := f
			g.manual = &override
			continue
		}
		if f.Enriched {
			g.enriched = true
		}
		g.candidates = append(g.candidates, candidate{
			value:      f.Value,
			confidence: f.Confidence,
			provider:   f.SourceProvider,
			rawText:    f.RawText,
		})
		for j, alt := range f.Alternatives {
			// An already-reconciled record repeats its winner at the head
			// of the alternatives; count that candidate once.
			if j == 0 && alt.Value == f.Value && alt.Confidence == f.Confidence && alt.Provider == f.SourceProvider {
				continue
			}
			g.candidates = append(g.candidates, candidate{
				value:      alt.Value,
				confidence: alt.Confidence,
				provider:   alt.Provider,
			})
		}
	}

	out := make([]model.FieldRecord, 0, len(order))
	for i, key := range order {
		g := groups[key]
		if g.manual != nil {
			rec := *g.manual
			rec.ID = fmt.Sprintf("f%d", i+1)
			out = append(out, rec)
			continue
		}
		r.sortCandidates(g.candidates)

		winner := g.candidates[0]
		rec := model.FieldRecord{
			ID:             fmt.Sprintf("f%d", i+1),
			Key:            g.key,
			Type:           g.fieldType,
			Label:          g.label,
			Value:          winner.value,
			Confidence:     winner.confidence,
			SourceProvider: winner.provider,
			RawText:        winner.rawText,
			Editable:       g.editable,
			Enriched:       g.enriched,
		}
		for _, c := range g.candidates {
			rec.Alternatives = append(rec.Alternatives, model.Alternative{
				Value:      c.value,
				Confidence: c.confidence,
				Provider:   c.provider,
			})
		}
		out = append(out, rec)
	}
	return out
}

// sortCandidates orders by confidence descending; ties go to the higher
// priority provider.
func (r *Reconciler) sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].confidence != cands[j].confidence {
			return cands[i].confidence > cands[j].confidence
		}
		return r.priorityOf(cands[i].provider) < r.priorityOf(cands[j].provider)
	})
}

func (r *Reconciler) priorityOf(provider string) int {
	if rank, ok := r.rank[provider]; ok {
		return rank
	}
	return len(r.rank)
}

// Aggregate is the arithmetic mean of current field confidences; an empty
// set yields 0.
func Aggregate(fields []model.FieldRecord) float64 {
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fields {
		sum += f.Confidence
	}
	return sum / float64(len(fields))
}
