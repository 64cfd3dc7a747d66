package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/progress"
	"github.com/dobby152/askelio-sub001/internal/provider"
)

var (
	processShowEvents bool
	processNoEnrich   bool
	processMode       string
	processMinConf    float64
	processMaxCost    float64
	processFallbacks  bool
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Extract and reconcile fields from one invoice file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Per-run flags override the config before the pipeline is built.
		if cmd.Flags().Changed("mode") {
			cfg.Processing.Mode = processMode
		}
		if cmd.Flags().Changed("min-confidence") {
			cfg.Processing.MinConfidence = processMinConf
		}
		if cmd.Flags().Changed("max-cost") {
			cfg.Processing.MaxCostUSD = processMaxCost
		}
		if cmd.Flags().Changed("fallbacks") {
			cfg.Tesseract.Enabled = processFallbacks
		}
		if processNoEnrich {
			cfg.Processing.SkipEnrichment = true
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrap(err, "read input file")
		}

		in := provider.Input{
			Filename:    filepath.Base(path),
			ContentType: contentTypeFor(path),
			Data:        data,
		}

		tracker := progress.NewTracker(ctx, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range tracker.Events() {
				if processShowEvents {
					fmt.Fprintf(os.Stderr, "[%3d%%] %s %s\n", ev.Percentage, ev.Stage, ev.Message)
				}
			}
		}()

		doc, err := env.Pipeline.Process(ctx, in, tracker)
		tracker.Close()
		<-done
		if err != nil {
			return eris.Wrap(err, "process document")
		}

		if !processNoEnrich {
			// Flush background enrichment so the printed document carries
			// registry data.
			env.Pipeline.Wait()
			doc, err = env.Store.GetDocument(ctx, doc.ID)
			if err != nil {
				return err
			}
		}

		zap.L().Info("document processed",
			zap.String("document_id", doc.ID),
			zap.String("status", string(doc.Status)),
			zap.Int("fields", len(doc.Fields)),
			zap.Float64("confidence", doc.AggregateConfidence()),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

// contentTypeFor maps a filename extension to the upload content type.
// Unknown extensions pass through empty and fail validation.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}

func init() {
	processCmd.Flags().BoolVar(&processShowEvents, "events", false, "print progress events to stderr")
	processCmd.Flags().BoolVar(&processNoEnrich, "no-enrich", false, "disable the registry enrichment pass")
	processCmd.Flags().StringVar(&processMode, "mode", "all", "provider mode: all or a single provider name")
	processCmd.Flags().Float64Var(&processMinConf, "min-confidence", 0, "drop provider candidates below this confidence")
	processCmd.Flags().Float64Var(&processMaxCost, "max-cost", 0, "per-run cost ceiling in USD (0 disables)")
	processCmd.Flags().BoolVar(&processFallbacks, "fallbacks", true, "run fallback OCR when all primaries fail")
	rootCmd.AddCommand(processCmd)
}
