package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/dobby152/askelio-sub001/internal/enrich"
	"github.com/dobby152/askelio-sub001/pkg/ares"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <ico>",
	Short: "Look up a company in the ARES registry by IČO",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ico := args[0]
		if err := enrich.ValidateICO(ico); err != nil {
			return err
		}

		client := ares.NewClient(
			ares.WithBaseURL(cfg.Registry.BaseURL),
			ares.WithRateLimit(cfg.Registry.RequestsPerSec),
		)
		record, err := client.Lookup(cmd.Context(), ico)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
