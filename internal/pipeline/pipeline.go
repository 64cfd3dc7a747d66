// Package pipeline orchestrates a document's path from upload through
// provider fan-out, normalization, reconciliation and review handoff, with
// registry enrichment running decoupled in the background.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dobby152/askelio-sub001/internal/cost"
	"github.com/dobby152/askelio-sub001/internal/enrich"
	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/normalize"
	"github.com/dobby152/askelio-sub001/internal/progress"
	"github.com/dobby152/askelio-sub001/internal/provider"
	"github.com/dobby152/askelio-sub001/internal/reconcile"
	"github.com/dobby152/askelio-sub001/internal/review"
	"github.com/dobby152/askelio-sub001/internal/store"
)

// Options control per-run pipeline behavior.
type Options struct {
	// Mode selects the provider set: empty or "all" fans out to every
	// primary provider, a provider name runs that provider alone.
	Mode string
	// MinConfidence drops provider candidates below the floor before
	// reconciliation. Zero keeps everything.
	MinConfidence float64
	// MaxCostUSD rejects uploads whose estimated provider cost exceeds the
	// ceiling. Zero disables the check.
	MaxCostUSD float64
	// MaxFileSizeMB rejects oversized uploads. Zero disables the check.
	MaxFileSizeMB int
	// AllowedTypes whitelists upload content types. Empty allows all.
	AllowedTypes []string
	// EnableFallbacks runs fallback providers when every primary failed.
	EnableFallbacks bool
	// SkipEnrichment disables the background registry enrichment pass.
	SkipEnrichment bool
}

// Pipeline processes uploaded documents end to end.
type Pipeline struct {
	registry   *provider.Registry
	reconciler *reconcile.Reconciler
	reviewer   *review.Engine
	merger     *enrich.Merger
	calculator *cost.Calculator
	mapping    *normalize.Mapping
	docs       store.Store
	opts       Options

	enrichWG sync.WaitGroup
	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc
}

// New wires a pipeline from its collaborators. A nil merger disables
// enrichment regardless of options.
func New(
	registry *provider.Registry,
	reconciler *reconcile.Reconciler,
	reviewer *review.Engine,
	merger *enrich.Merger,
	calculator *cost.Calculator,
	mapping *normalize.Mapping,
	docs store.Store,
	opts Options,
) *Pipeline {
	return &Pipeline{
		registry:   registry,
		reconciler: reconciler,
		reviewer:   reviewer,
		merger:     merger,
		calculator: calculator,
		mapping:    mapping,
		docs:       docs,
		opts:       opts,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Process runs a document through extraction and hands it to review.
// Progress events are emitted at every stage; the tracker may be nil.
// Enrichment runs in the background after Process returns; call Wait to
// flush it before shutdown.
func (p *Pipeline) Process(ctx context.Context, in provider.Input, tracker *progress.Tracker) (*model.Document, error) {
	emit := func(docID string, stage progress.Stage, pct int, msg string) {
		if tracker != nil {
			tracker.Emit(progress.Event{DocumentID: docID, Stage: stage, Percentage: pct, Message: msg})
		}
	}

	emit("", progress.StageUploading, 0, in.Filename)

	primaries, fallbacks := p.splitProviders()
	if err := p.validate(in, providerNames(primaries)); err != nil {
		emit("", progress.StageError, 0, err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:        uuid.NewString(),
		Filename:  in.Filename,
		Status:    model.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.docs.CreateDocument(ctx, doc); err != nil {
		emit("", progress.StageError, 0, err.Error())
		return nil, err
	}

	emit(doc.ID, progress.StageProcessing, 10, "extraction started")

	results := p.fanOut(ctx, in, primaries)
	if !anySucceeded(results) && p.opts.EnableFallbacks && len(fallbacks) > 0 {
		zap.L().Info("pipeline: primaries failed, running fallbacks",
			zap.String("document_id", doc.ID),
			zap.Int("fallbacks", len(fallbacks)),
		)
		results = append(results, p.fanOut(ctx, in, fallbacks)...)
	}

	doc.ProviderResults = providerOutcomes(results)

	payloads := make(map[string][]normalize.RawField, len(results))
	var order []string
	for _, r := range results {
		if r.result == nil {
			continue
		}
		order = append(order, r.name)
		payloads[r.name] = p.filterByConfidence(r.result.Fields)
	}

	emit(doc.ID, progress.StageProcessing, 60, "reconciling fields")

	doc.Fields = p.reconciler.Reconcile(normalize.Normalize(order, payloads, p.mapping))

	if err := p.reviewer.CompleteExtraction(doc); err != nil {
		emit(doc.ID, progress.StageError, 60, err.Error())
		return nil, err
	}
	if err := p.docs.UpdateDocument(ctx, doc); err != nil {
		emit(doc.ID, progress.StageError, 60, err.Error())
		return nil, err
	}

	if doc.Status == model.StatusError {
		err := faults.Newf(faults.KindExtraction, faults.CodeAllProvidersFail,
			"pipeline: all providers failed for document %s", doc.ID)
		emit(doc.ID, progress.StageError, 100, err.Error())
		return doc, err
	}

	emit(doc.ID, progress.StageProcessing, 80, "extraction complete")

	if p.merger != nil && !p.opts.SkipEnrichment {
		p.spawnEnrichment(doc.ID)
	}

	emit(doc.ID, progress.StageComplete, 100, "ready for review")
	return doc, nil
}

// Wait blocks until all background enrichment goroutines finish.
func (p *Pipeline) Wait() {
	p.enrichWG.Wait()
}

// CancelEnrichment stops a document's in-flight enrichment, if any.
func (p *Pipeline) CancelEnrichment(docID string) {
	p.cancelMu.Lock()
	cancel, ok := p.cancels[docID]
	p.cancelMu.Unlock()
	if ok {
		cancel()
	}
}

// spawnEnrichment runs vendor and customer registry lookups in the
// background. It re-reads the document from the store so a concurrent
// approve cannot be overwritten, and discards results if the document
// completed meanwhile.
func (p *Pipeline) spawnEnrichment(docID string) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancelMu.Lock()
	p.cancels[docID] = cancel
	p.cancelMu.Unlock()

	p.enrichWG.Add(1)
	go func() {
		defer p.enrichWG.Done()
		defer func() {
			p.cancelMu.Lock()
			delete(p.cancels, docID)
			p.cancelMu.Unlock()
			cancel()
		}()

		doc, err := p.docs.GetDocument(ctx, docID)
		if err != nil {
			zap.L().Warn("pipeline: enrichment load failed",
				zap.String("document_id", docID), zap.Error(err))
			return
		}

		var touched bool
		for _, subject := range []model.EnrichmentSubject{model.SubjectVendor, model.SubjectCustomer} {
			res, err := p.merger.Enrich(ctx, doc, subject)
			if err != nil {
				// Missing or malformed ico is expected for many invoices.
				zap.L().Debug("pipeline: enrichment skipped",
					zap.String("document_id", docID),
					zap.String("subject", string(subject)),
					zap.Error(err),
				)
				continue
			}
			if res != nil {
				touched = true
			}
		}
		if !touched {
			return
		}

		// The lookups are slow; re-read before writing so a review action
		// that landed meanwhile is not reverted by the stale snapshot.
		current, err := p.docs.GetDocument(ctx, docID)
		if err != nil {
			zap.L().Warn("pipeline: enrichment reload failed",
				zap.String("document_id", docID), zap.Error(err))
			return
		}
		if current.Status == model.StatusCompleted {
			zap.L().Debug("pipeline: dropping late enrichment for completed document",
				zap.String("document_id", docID))
			return
		}
		carryEdits(doc, current)

		// Winner selection can shift after registry values land.
		doc.Fields = p.reconciler.Reconcile(doc.Fields)

		if err := p.docs.UpdateDocument(ctx, doc); err != nil {
			zap.L().Warn("pipeline: enrichment save failed",
				zap.String("document_id", docID), zap.Error(err))
		}
	}()
}

// carryEdits copies human overrides made while enrichment ran from the
// current document into the enriched snapshot, so a merge never clobbers a
// reviewer's value.
func carryEdits(doc, current *model.Document) {
	for i := range doc.Fields {
		cf := current.FieldByID(doc.Fields[i].ID)
		if cf == nil || cf.SourceProvider != model.SourceManual {
			continue
		}
		doc.Fields[i].Value = cf.Value
		doc.Fields[i].Confidence = cf.Confidence
		doc.Fields[i].SourceProvider = model.SourceManual
	}
	if len(current.EditHistory) > len(doc.EditHistory) {
		doc.EditHistory = current.EditHistory
	}
}

type fanOutResult struct {
	name     string
	result   *provider.Result
	err      error
	duration time.Duration
}

// fanOut runs the given providers concurrently and collects every outcome,
// success or failure. A provider error never aborts its siblings.
func (p *Pipeline) fanOut(ctx context.Context, in provider.Input, providers []provider.Provider) []fanOutResult {
	results := make([]fanOutResult, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, prov := range providers {
		g.Go(func() error {
			start := time.Now()
			res, err := prov.Extract(gctx, in)
			results[i] = fanOutResult{
				name:     prov.Name(),
				result:   res,
				err:      err,
				duration: time.Since(start),
			}
			if err != nil {
				zap.L().Warn("pipeline: provider failed",
					zap.String("provider", prov.Name()),
					zap.Duration("duration", results[i].duration),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	return results
}

func (p *Pipeline) splitProviders() (primaries, fallbacks []provider.Provider) {
	for _, prov := range p.registry.List() {
		switch {
		case prov.Fallback():
			fallbacks = append(fallbacks, prov)
		case p.opts.Mode == "" || p.opts.Mode == "all" || p.opts.Mode == prov.Name():
			primaries = append(primaries, prov)
		}
	}
	return primaries, fallbacks
}

// filterByConfidence drops candidates below the configured floor.
func (p *Pipeline) filterByConfidence(fields []normalize.RawField) []normalize.RawField {
	if p.opts.MinConfidence <= 0 {
		return fields
	}
	kept := fields[:0]
	for _, f := range fields {
		if f.Confidence >= p.opts.MinConfidence {
			kept = append(kept, f)
		}
	}
	return kept
}

func providerNames(providers []provider.Provider) []string {
	names := make([]string, len(providers))
	for i, prov := range providers {
		names[i] = prov.Name()
	}
	return names
}

func anySucceeded(results []fanOutResult) bool {
	for _, r := range results {
		if r.err == nil && r.result != nil {
			return true
		}
	}
	return false
}

func providerOutcomes(results []fanOutResult) []model.ProviderResult {
	out := make([]model.ProviderResult, 0, len(results))
	for _, r := range results {
		pr := model.ProviderResult{
			Provider:         r.name,
			ProcessingTimeMs: r.duration.Milliseconds(),
			Success:          r.err == nil && r.result != nil,
		}
		if r.result != nil {
			pr.Confidence = r.result.Confidence
			pr.TextLength = r.result.TextLength
		}
		if r.err != nil {
			pr.Error = r.err.Error()
		}
		out = append(out, pr)
	}
	return out
}
