package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dobby152/askelio-sub001/internal/cost"
)

var estimateProviders []string

var estimateCmd = &cobra.Command{
	Use:   "estimate <file>",
	Short: "Estimate the provider cost of processing a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return eris.Wrap(err, "stat input file")
		}

		rates := cfg.Pricing
		if len(rates.Providers) == 0 {
			rates = cost.DefaultRates()
		}
		calc := cost.NewCalculator(rates)

		providers := estimateProviders
		if len(providers) == 0 {
			providers = cfg.Processing.ProviderPriority
		}

		estimate := calc.Estimate(info.Size(), providers)
		fmt.Printf("%.4f USD (%d bytes, providers %v)\n", estimate, info.Size(), providers)

		if err := calc.CheckCeiling(estimate, cfg.Processing.MaxCostUSD); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringSliceVar(&estimateProviders, "providers", nil, "providers to include (default from config)")
	rootCmd.AddCommand(estimateCmd)
}
