package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approved documents to an XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := export.WriteXLSX(ctx, env.Store, exportOut)
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("documents", n),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "invoices.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
