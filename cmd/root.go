package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cost-console",
	Short: "Group cost desk for the operations console",
	Long:  "Computes travel-group operating costs from catalogs, lodging, coordinator pay and approved expenses, with reviewer overrides and spreadsheet export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
