package main

import (
	"os/user"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/model"
)

var (
	overridePrice    float64
	overrideQty      float64
	overrideNote     string
	overrideActor    string
	clearPriceFlag   bool
	clearQtyFlag     bool
	clearNoteFlag    bool
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage per-line price and quantity overrides",
}

var overrideSetCmd = &cobra.Command{
	Use:   "set <group-id> <line-id>",
	Short: "Set override fields on a cost line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		patch := model.OverridePatch{
			UpdatedBy: actor(),
		}
		if cmd.Flags().Changed("price") {
			patch.Price = &overridePrice
		}
		if cmd.Flags().Changed("qty") {
			patch.Quantity = &overrideQty
		}
		if cmd.Flags().Changed("note") {
			patch.Note = &overrideNote
		}

		rec, err := env.Engine.ApplyOverride(ctx, args[0], args[1], patch, "")
		if err != nil {
			return err
		}

		zap.L().Info("override set",
			zap.String("line_id", rec.LineID),
			zap.String("updated_by", rec.UpdatedBy),
		)
		return nil
	},
}

var overrideClearCmd = &cobra.Command{
	Use:   "clear <group-id> <line-id>",
	Short: "Clear override fields on a cost line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		patch := model.OverridePatch{
			ClearPrice:    clearPriceFlag,
			ClearQuantity: clearQtyFlag,
			ClearNote:     clearNoteFlag,
			UpdatedBy:     actor(),
		}

		rec, err := env.Engine.ApplyOverride(ctx, args[0], args[1], patch, "")
		if err != nil {
			return err
		}

		zap.L().Info("override cleared",
			zap.String("line_id", rec.LineID),
			zap.Bool("price_cleared", clearPriceFlag),
			zap.Bool("qty_cleared", clearQtyFlag),
		)
		return nil
	},
}

// actor resolves the acting-user identifier attached to the change.
func actor() string {
	if overrideActor != "" {
		return overrideActor
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func init() {
	overrideSetCmd.Flags().Float64Var(&overridePrice, "price", 0, "price override")
	overrideSetCmd.Flags().Float64Var(&overrideQty, "qty", 0, "quantity override")
	overrideSetCmd.Flags().StringVar(&overrideNote, "note", "", "reviewer note")
	overrideSetCmd.Flags().StringVar(&overrideActor, "actor", "", "acting user (defaults to OS user)")

	overrideClearCmd.Flags().BoolVar(&clearPriceFlag, "price", false, "clear the price override")
	overrideClearCmd.Flags().BoolVar(&clearQtyFlag, "qty", false, "clear the quantity override")
	overrideClearCmd.Flags().BoolVar(&clearNoteFlag, "note", false, "clear the note")
	overrideClearCmd.Flags().StringVar(&overrideActor, "actor", "", "acting user (defaults to OS user)")

	overrideCmd.AddCommand(overrideSetCmd)
	overrideCmd.AddCommand(overrideClearCmd)
	rootCmd.AddCommand(overrideCmd)
}
