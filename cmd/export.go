package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all group summaries to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		evals, err := env.Engine.EvaluateAll(ctx)
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(exportOut, evals); err != nil {
			return err
		}

		zap.L().Info("export written",
			zap.String("path", exportOut),
			zap.Int("groups", len(evals)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "group-costs.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
