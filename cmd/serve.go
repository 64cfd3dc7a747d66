package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/cost"
	"github.com/dobby152/askelio-sub001/internal/enrich"
	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/provider"
	"github.com/dobby152/askelio-sub001/internal/store"
	"github.com/dobby152/askelio-sub001/pkg/ares"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction and review HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			snap, err := env.Collector.Collect(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, snap)
		})

		r.Post("/documents", func(w http.ResponseWriter, req *http.Request) {
			in, err := readUpload(req)
			if err != nil {
				writeError(w, err)
				return
			}
			doc, err := env.Pipeline.Process(req.Context(), in, nil)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, doc)
		})

		r.Get("/documents", func(w http.ResponseWriter, req *http.Request) {
			filter := store.Filter{
				Status: model.DocumentStatus(req.URL.Query().Get("status")),
			}
			docs, err := env.Store.ListDocuments(req.Context(), filter)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, docs)
		})

		r.Get("/documents/{id}", func(w http.ResponseWriter, req *http.Request) {
			doc, err := env.Store.GetDocument(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
		})

		r.Post("/documents/{id}/fields/{fieldID}", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Value string `json:"value"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, faults.Wrap(faults.KindValidation, "", err, "decode edit body"))
				return
			}
			doc, err := mutateDocument(req, env, func(doc *model.Document) error {
				return env.Review.EditField(doc, chi.URLParam(req, "fieldID"), body.Value)
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
		})

		r.Post("/documents/{id}/approve", func(w http.ResponseWriter, req *http.Request) {
			doc, err := mutateDocument(req, env, func(doc *model.Document) error {
				env.Pipeline.CancelEnrichment(doc.ID)
				return env.Review.Approve(doc)
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
		})

		r.Post("/documents/{id}/reject", func(w http.ResponseWriter, req *http.Request) {
			doc, err := mutateDocument(req, env, func(doc *model.Document) error {
				return env.Review.Reject(doc)
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, doc)
		})

		r.Post("/estimate", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				SizeBytes int64    `json:"size_bytes"`
				Providers []string `json:"providers,omitempty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, faults.Wrap(faults.KindValidation, "", err, "decode estimate body"))
				return
			}
			providers := body.Providers
			if len(providers) == 0 {
				providers = cfg.Processing.ProviderPriority
			}
			rates := cfg.Pricing
			if len(rates.Providers) == 0 {
				rates = cost.DefaultRates()
			}
			calc := cost.NewCalculator(rates)
			estimate := calc.Estimate(body.SizeBytes, providers)
			writeJSON(w, http.StatusOK, map[string]any{
				"estimate_usd":  estimate,
				"max_cost_usd":  cfg.Processing.MaxCostUSD,
				"within_budget": calc.CheckCeiling(estimate, cfg.Processing.MaxCostUSD) == nil,
			})
		})

		r.Get("/registry/{ico}", func(w http.ResponseWriter, req *http.Request) {
			ico := chi.URLParam(req, "ico")
			if err := enrich.ValidateICO(ico); err != nil {
				writeError(w, err)
				return
			}
			record, err := env.Registry.Lookup(req.Context(), ico)
			if errors.Is(err, ares.ErrNotFound) {
				writeError(w, faults.Wrap(faults.KindNotFound, faults.CodeRegistryLookup, err, "registry lookup"))
				return
			}
			if err != nil {
				writeError(w, faults.Wrap(faults.KindEnrichment, faults.CodeRegistryLookup, err, "registry lookup"))
				return
			}
			writeJSON(w, http.StatusOK, record)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// mutateDocument loads, mutates and saves a document in one step.
func mutateDocument(req *http.Request, env *pipelineEnv, fn func(*model.Document) error) (*model.Document, error) {
	ctx := req.Context()
	doc, err := env.Store.GetDocument(ctx, chi.URLParam(req, "id"))
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := env.Store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// readUpload accepts either a multipart form with a "file" part or a raw
// body with an explicit Content-Type.
func readUpload(req *http.Request) (provider.Input, error) {
	contentType := req.Header.Get("Content-Type")
	if contentType == "application/pdf" || contentType == "image/png" || contentType == "image/jpeg" {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return provider.Input{}, eris.Wrap(err, "read upload body")
		}
		return provider.Input{Filename: "upload", ContentType: contentType, Data: data}, nil
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return provider.Input{}, faults.Wrap(faults.KindValidation, faults.CodeUnsupportedFile, err, "missing file upload")
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return provider.Input{}, eris.Wrap(err, "read upload file")
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = contentTypeFor(header.Filename)
	}
	return provider.Input{Filename: header.Filename, ContentType: ct, Data: data}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps the fault taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch faults.KindOf(err) {
	case faults.KindValidation:
		status = http.StatusBadRequest
	case faults.KindNotFound:
		status = http.StatusNotFound
	case faults.KindIllegalTransition:
		status = http.StatusConflict
	case faults.KindExtraction:
		status = http.StatusUnprocessableEntity
	case faults.KindEnrichment:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(faults.KindOf(err)),
		"code":  faults.CodeOf(err),
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
