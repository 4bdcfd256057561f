package cmd

import (
	"fmt"

	"modkit/core/backup"
	"modkit/core/config"
	"modkit/core/logger"
	"modkit/feature/units"

	"go.uber.org/zap"
)

// app bundles the shared wiring every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

// newApp loads configuration and initializes the logger.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &app{cfg: cfg, logger: l}, nil
}

// store opens the pristine snapshot store.
func (a *app) store() (*backup.Store, error) {
	return backup.NewStore(a.cfg.Backup.Dir, a.logger)
}

// orchestrator loads the mod spec at specPath and wires a full
// orchestrator around it. withBackups controls whether the snapshot
// store is attached.
func (a *app) orchestrator(specPath string, withBackups bool) (*units.Orchestrator, error) {
	spec, err := units.LoadSpec(specPath)
	if err != nil {
		return nil, err
	}

	var store *backup.Store
	if withBackups {
		store, err = a.store()
		if err != nil {
			return nil, err
		}
	}

	return units.NewOrchestrator(a.cfg, spec, store, a.logger), nil
}
