package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solandes-viajes/cost-console/internal/model"
)

var (
	reviewPIN   string
	reviewActor string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Lock or unlock a cost line's review sign-off",
}

var reviewLockCmd = &cobra.Command{
	Use:   "lock <group-id> <line-id>",
	Short: "Mark a line as reviewed",
	Args:  cobra.ExactArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setReviewed(cmd, args, true) },
}

var reviewUnlockCmd = &cobra.Command{
	Use:   "unlock <group-id> <line-id>",
	Short: "Clear a line's reviewed flag (requires the configured PIN)",
	Args:  cobra.ExactArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setReviewed(cmd, args, false) },
}

func setReviewed(cmd *cobra.Command, args []string, reviewed bool) error {
	ctx := cmd.Context()

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	who := reviewActor
	if who == "" {
		who = actor()
	}
	patch := model.OverridePatch{
		Reviewed:  &reviewed,
		UpdatedBy: who,
	}

	rec, err := env.Engine.ApplyOverride(ctx, args[0], args[1], patch, reviewPIN)
	if err != nil {
		return err
	}

	zap.L().Info("review flag updated",
		zap.String("line_id", rec.LineID),
		zap.Bool("reviewed", rec.Reviewed),
		zap.String("updated_by", rec.UpdatedBy),
	)
	return nil
}

func init() {
	reviewUnlockCmd.Flags().StringVar(&reviewPIN, "pin", "", "review unlock secret")
	for _, c := range []*cobra.Command{reviewLockCmd, reviewUnlockCmd} {
		c.Flags().StringVar(&reviewActor, "actor", "", "acting user (defaults to OS user)")
	}

	reviewCmd.AddCommand(reviewLockCmd)
	reviewCmd.AddCommand(reviewUnlockCmd)
	rootCmd.AddCommand(reviewCmd)
}
