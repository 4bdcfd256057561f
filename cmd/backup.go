package cmd

import (
	"fmt"

	"modkit/feature/units"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// backupCmd is the parent command for snapshot store operations.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage the pristine snapshot store",
}

// backupInitCmd snapshots every managed file that has no snapshot yet.
var backupInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Snapshot every managed file that is not snapshotted yet",
	Long: `Init creates a pristine snapshot of every managed game data file.
Snapshots are created once and never overwritten, so init is safe to run
at any time: files that already have a snapshot are skipped.`,
	RunE: runBackupInit,
}

// backupRestoreCmd copies every snapshot back over its managed file.
var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore every managed file from its pristine snapshot",
	RunE:  runBackupRestore,
}

func init() {
	backupCmd.AddCommand(backupInitCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	RootCmd.AddCommand(backupCmd)
}

func runBackupInit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	store, err := a.store()
	if err != nil {
		return err
	}

	files := units.NewFiles(a.cfg.Game.XMLDir)
	if !store.InitializeAll(files.Managed()) {
		return fmt.Errorf("no snapshots could be created, check game data paths")
	}

	a.logger.Info("snapshot store initialized", zap.String("dir", store.Dir()))
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	store, err := a.store()
	if err != nil {
		return err
	}

	files := units.NewFiles(a.cfg.Game.XMLDir)
	if !store.RestoreAll(files.Managed()) {
		return fmt.Errorf("no snapshots found to restore from")
	}

	a.logger.Info("managed files restored from snapshots")
	return nil
}
