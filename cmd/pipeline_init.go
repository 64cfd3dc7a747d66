package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/cost"
	"github.com/dobby152/askelio-sub001/internal/enrich"
	"github.com/dobby152/askelio-sub001/internal/monitoring"
	"github.com/dobby152/askelio-sub001/internal/normalize"
	"github.com/dobby152/askelio-sub001/internal/pipeline"
	"github.com/dobby152/askelio-sub001/internal/provider"
	"github.com/dobby152/askelio-sub001/internal/provider/anthropic"
	"github.com/dobby152/askelio-sub001/internal/provider/mistral"
	"github.com/dobby152/askelio-sub001/internal/provider/tesseract"
	"github.com/dobby152/askelio-sub001/internal/reconcile"
	"github.com/dobby152/askelio-sub001/internal/review"
	"github.com/dobby152/askelio-sub001/internal/store"
	"github.com/dobby152/askelio-sub001/pkg/ares"
)

// pipelineEnv holds the initialized store, clients and pipeline shared by
// the process/serve/review commands.
type pipelineEnv struct {
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Registry  ares.Client
	Review    *review.Engine
	Collector *monitoring.Collector
}

// Close releases resources held by the environment. Background enrichment
// is flushed first so late results are not lost on CLI exit.
func (pe *pipelineEnv) Close() {
	if pe.Pipeline != nil {
		pe.Pipeline.Wait()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initEnv sets up the store, extraction providers, registry client and the
// pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	registry := provider.NewRegistry()
	if cfg.Anthropic.Enabled && cfg.Anthropic.Key != "" {
		registry.Register(anthropic.New(cfg.Anthropic.Key, cfg.Anthropic.Model))
	} else {
		zap.L().Warn("claude provider disabled (no key)")
	}
	if cfg.Mistral.Enabled && cfg.Mistral.Key != "" {
		registry.Register(mistral.New(cfg.Mistral.Key, cfg.Mistral.Model))
	} else {
		zap.L().Warn("mistral provider disabled (no key)")
	}
	if cfg.Tesseract.Enabled {
		registry.Register(tesseract.New(cfg.Tesseract.Languages))
	}
	if len(registry.Names()) == 0 {
		_ = st.Close()
		return nil, eris.New("no extraction providers configured")
	}

	mapping := normalize.DefaultMapping()
	if cfg.Processing.FieldMappingPath != "" {
		mapping, err = normalize.LoadMapping(cfg.Processing.FieldMappingPath)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load field mapping")
		}
	}

	aresClient := ares.NewClient(
		ares.WithBaseURL(cfg.Registry.BaseURL),
		ares.WithRateLimit(cfg.Registry.RequestsPerSec),
	)
	merger := enrich.NewMerger(aresClient, enrich.WithTrust(cfg.Processing.EnrichmentTrust))

	rates := cfg.Pricing
	if len(rates.Providers) == 0 {
		rates = cost.DefaultRates()
	}

	reviewer := review.NewEngine()
	p := pipeline.New(
		registry,
		reconcile.New(cfg.Processing.ProviderPriority),
		reviewer,
		merger,
		cost.NewCalculator(rates),
		mapping,
		st,
		pipeline.Options{
			Mode:            cfg.Processing.Mode,
			MinConfidence:   cfg.Processing.MinConfidence,
			MaxCostUSD:      cfg.Processing.MaxCostUSD,
			MaxFileSizeMB:   cfg.Processing.MaxFileSizeMB,
			AllowedTypes:    cfg.Processing.AllowedTypes,
			EnableFallbacks: cfg.Tesseract.Enabled,
			SkipEnrichment:  cfg.Processing.SkipEnrichment,
		},
	)

	zap.L().Info("pipeline initialized",
		zap.Strings("providers", registry.Names()),
		zap.String("store", cfg.Store.Driver),
	)

	return &pipelineEnv{
		Store:     st,
		Pipeline:  p,
		Registry:  aresClient,
		Review:    reviewer,
		Collector: monitoring.NewCollector(st),
	}, nil
}
