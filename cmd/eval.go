package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/solandes-viajes/cost-console/internal/export"
	"github.com/solandes-viajes/cost-console/internal/model"
)

var evalAll bool

var evalCmd = &cobra.Command{
	Use:   "eval [group-id]",
	Short: "Evaluate group costs and print the summary table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var evals []model.Evaluation
		if evalAll || len(args) == 0 {
			evals, err = env.Engine.EvaluateAll(ctx)
			if err != nil {
				return err
			}
		} else {
			ev, err := env.Engine.Evaluate(ctx, args[0])
			if err != nil {
				return err
			}
			evals = []model.Evaluation{*ev}
		}

		export.RenderTable(os.Stdout, evals)
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&evalAll, "all", false, "evaluate every stored group")
	rootCmd.AddCommand(evalCmd)
}
