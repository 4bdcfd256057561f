package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resetSpecPath string
	resetUnit     string
)

// resetCmd restores managed fields from the pristine snapshots.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore managed fields to their stock values",
	Long: `Reset compares the managed fields of every configured unit against the
pristine snapshots and restores whatever drifted: template attributes,
squadron compositions, hardpoint fire rates and purchase costs. Fields
this tool never manages are left untouched.

Examples:
  # Reset every unit in the spec
  modkit reset

  # Reset a single unit
  modkit reset --unit Acclamator_I_Carrier`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().StringVar(&resetSpecPath, "spec", "mods.yaml", "Path to the mod spec document")
	resetCmd.Flags().StringVar(&resetUnit, "unit", "", "Reset only this unit (default: all configured units)")
	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	orch, err := a.orchestrator(resetSpecPath, true)
	if err != nil {
		return err
	}

	summary, err := orch.Reset(resetUnit)
	if err != nil {
		return err
	}

	a.logger.Info("reset complete",
		zap.String("run_id", summary.RunID),
		zap.Int("units", summary.Units),
		zap.Int("fields_restored", summary.FieldsChanged),
		zap.Int("warnings", summary.Warnings))
	return nil
}
