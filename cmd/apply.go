package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applySpecPath string
	applyNoBackup bool
)

// applyCmd runs one full apply pass over the mod spec.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the mod spec to the game data",
	Long: `Apply restores every managed file from its pristine snapshot and then
reapplies the whole mod spec: unit attribute changes, squadron rebuilds,
hardpoint tuning, purchase costs, tooltip text and the ship market.

Running apply twice in a row yields identical files.

Examples:
  # Apply the default spec
  modkit apply

  # Apply a specific spec file
  modkit apply --spec balance_pass_3.yaml

  # Apply without the snapshot store (changes compound across runs)
  modkit apply --no-backup`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applySpecPath, "spec", "mods.yaml", "Path to the mod spec document")
	applyCmd.Flags().BoolVar(&applyNoBackup, "no-backup", false, "Skip snapshot creation and restore (not recommended)")
	RootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	orch, err := a.orchestrator(applySpecPath, !applyNoBackup)
	if err != nil {
		return err
	}

	summary, err := orch.Apply(context.Background())
	if err != nil {
		return err
	}

	a.logger.Info("apply complete",
		zap.String("run_id", summary.RunID),
		zap.Int("units", summary.Units),
		zap.Int("fields_changed", summary.FieldsChanged),
		zap.Int("warnings", summary.Warnings),
		zap.Bool("text_changed", summary.TextChanged),
		zap.Bool("market_changed", summary.MarketChanged))
	return nil
}
