package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/store"
)

var (
	docsStatus string
	docsLimit  int
	docsJSON   bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := env.Store.ListDocuments(ctx, store.Filter{
			Status: model.DocumentStatus(docsStatus),
			Limit:  docsLimit,
		})
		if err != nil {
			return err
		}

		if docsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}

		for _, doc := range docs {
			fmt.Printf("%s  %-12s  %-30s  fields=%d  confidence=%.2f\n",
				doc.ID, doc.Status, doc.Filename, len(doc.Fields), doc.AggregateConfidence())
		}
		fmt.Printf("%d document(s)\n", len(docs))
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print aggregate processing metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Collector.Collect(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsStatus, "status", "", "filter by status")
	docsCmd.Flags().IntVar(&docsLimit, "limit", 0, "limit results")
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "print full documents as JSON")
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(metricsCmd)
}
