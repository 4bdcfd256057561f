package units

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"modkit/core/backup"
	"modkit/core/config"
	"modkit/core/gamexml"
	"modkit/core/logger"
	"modkit/feature/market"
	"modkit/feature/tooltips"

	"go.uber.org/zap"
)

// ErrNoBackups aborts an apply pass when no snapshot could be ensured:
// without a pristine baseline the restore-before-apply contract cannot
// hold and repeated runs would compound.
var ErrNoBackups = errors.New("no backup snapshots available")

// templatePrefix marks a skirmish record that inherits straight from a
// shared template rather than from its campaign counterpart.
const templatePrefix = "Template_"

// RunSummary is the result of one apply or reset pass. Downstream side
// effects (DAT rebuild) key off it rather than off shared mutable state.
type RunSummary struct {
	RunID         string
	Units         int
	FieldsChanged int
	Warnings      int
	TextChanged   bool
	MarketChanged bool
}

// Orchestrator drives full apply and reset passes over every configured
// unit, sequencing restore-from-backup before apply and dispatching to
// the per-domain appliers.
type Orchestrator struct {
	spec      *Spec
	files     Files
	store     *backup.Store // nil when backups are disabled
	applier   *Applier
	rebuilder *Rebuilder
	resetter  *Resetter
	tooltips  *tooltips.Updater
	market    *market.Editor
	logger    *zap.Logger
}

// NewOrchestrator wires an Orchestrator from the app config and a loaded
// mod spec. store may be nil to disable the backup/restore sequencing.
func NewOrchestrator(cfg *config.Config, spec *Spec, store *backup.Store, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		spec:      spec,
		files:     NewFiles(cfg.Game.XMLDir),
		store:     store,
		applier:   NewApplier(log),
		rebuilder: NewRebuilder(store, log),
		resetter:  NewResetter(log),
		tooltips:  tooltips.NewUpdater(cfg.Game.TextDir, store, log),
		market:    market.NewEditor(cfg.Game.ScriptsDir, store, log),
		logger:    log,
	}
}

// Apply runs one full apply pass: restore every managed file to its
// pristine snapshot, then reapply the whole spec. Per-unit failures are
// logged and the pass continues; only missing backup infrastructure
// aborts.
func (o *Orchestrator) Apply(ctx context.Context) (*RunSummary, error) {
	log, runID := logger.WithRun(o.logger)
	summary := &RunSummary{RunID: runID}
	mode := o.spec.Mode()
	log.Info("starting apply pass", zap.String("mode", mode))

	if o.store != nil {
		if !o.store.InitializeAll(o.files.Managed()) {
			return nil, ErrNoBackups
		}
		if !o.store.RestoreAll(o.files.Managed()) {
			log.Warn("no files restored from snapshots")
		}
	} else {
		log.Warn("backups disabled, applying without restore; repeated runs will compound")
	}

	for _, name := range sortedUnitNames(o.spec.Units) {
		uc := o.spec.Units[name]
		unitLog := log.With(zap.String("unit", name))
		unitLog.Info("processing unit")
		o.applyUnit(unitLog, summary, name, uc, mode)
		summary.Units++
	}

	if o.spec.Market != nil {
		changed, err := o.market.Apply(o.spec.Market)
		if err != nil {
			log.Warn("market processing failed", zap.Error(err))
			summary.Warnings++
		}
		summary.MarketChanged = changed
	}

	if summary.TextChanged {
		o.tooltips.RebuildDAT(ctx)
	}

	log.Info("apply pass finished",
		zap.Int("units", summary.Units),
		zap.Int("fields_changed", summary.FieldsChanged),
		zap.Int("warnings", summary.Warnings))
	return summary, nil
}

func (o *Orchestrator) applyUnit(log *zap.Logger, summary *RunSummary, name string, uc *UnitConfig, mode string) {
	target := o.files.Target(name, mode)

	if len(uc.TemplateChanges) > 0 {
		if err := o.applyTemplateChanges(log, summary, uc, target.Template); err != nil {
			log.Warn("template changes failed", zap.Error(err))
			summary.Warnings++
		}
	}

	if uc.Squadrons != nil {
		if err := o.applySquadronChanges(log, name, uc, target, mode); err != nil {
			log.Warn("squadron changes failed", zap.Error(err))
			summary.Warnings++
		}
	}

	if uc.Hardpoints != nil {
		if err := o.applyHardpointChanges(log, summary, name, uc, target.Hardpoints); err != nil {
			log.Warn("hardpoint changes failed", zap.Error(err))
			summary.Warnings++
		}
	}

	if mode == ModeSkirmish && len(uc.CostChanges) > 0 {
		if err := o.applyCostChanges(log, summary, uc, target.Skirmish); err != nil {
			log.Warn("cost changes failed", zap.Error(err))
			summary.Warnings++
		}
	}
}

func (o *Orchestrator) applyTemplateChanges(log *zap.Logger, summary *RunSummary, uc *UnitConfig, templateFile string) error {
	if uc.Template == "" {
		// No shared template: apply to the campaign record directly.
		// Skirmish records inherit additively from campaign, so writing
		// them too would double up.
		return o.applyDirectChanges(log, summary, uc)
	}

	doc, err := gamexml.Load(templateFile)
	if err != nil {
		return err
	}
	el := doc.FindTemplate(uc.Template)
	if el == nil {
		return fmt.Errorf("template not found: %s", uc.Template)
	}

	updated := o.applier.ApplyFieldChanges(el, uc.TemplateChanges, true)
	summary.FieldsChanged += len(updated)
	if err := doc.Save(); err != nil {
		return err
	}

	o.propagateTooltips(log, summary, uc, updated)
	return nil
}

// applyDirectChanges is the fallback for units defined without a shared
// template, such as one-off capital ships.
func (o *Orchestrator) applyDirectChanges(log *zap.Logger, summary *RunSummary, uc *UnitConfig) error {
	if uc.CampaignUnit == "" {
		return fmt.Errorf("unit has neither template nor campaign_unit")
	}

	doc, err := gamexml.Load(o.files.Campaign())
	if err != nil {
		return err
	}
	el := doc.FindUnit(uc.CampaignUnit)
	if el == nil {
		return fmt.Errorf("campaign unit not found: %s", uc.CampaignUnit)
	}

	updated := o.applier.ApplyFieldChanges(el, uc.TemplateChanges, false)
	summary.FieldsChanged += len(updated)
	if err := doc.Save(); err != nil {
		return err
	}

	o.propagateTooltips(log, summary, uc, updated)
	return nil
}

func (o *Orchestrator) propagateTooltips(log *zap.Logger, summary *RunSummary, uc *UnitConfig, updated map[string]float64) {
	if !tooltips.Relevant(updated) {
		return
	}
	unitName := uc.CampaignUnit
	if unitName == "" {
		unitName = uc.BaseUnit
	}
	if unitName == "" {
		return
	}
	unitFiles := []string{o.files.Campaign(), o.files.Skirmish()}
	if o.tooltips.UpdateForUnit(unitFiles, unitName, updated) {
		summary.TextChanged = true
	}
}

func (o *Orchestrator) applySquadronChanges(log *zap.Logger, specName string, uc *UnitConfig, target TargetFiles, mode string) error {
	if mode != ModeSkirmish {
		return o.rebuildSquadronsIn(target.Squadrons, specName, uc)
	}

	// Skirmish mode rebuilds both files: the in-game inheritance between
	// the mode records is additive, so leaving either stale keeps old
	// squadron data alive. Inspection of the skirmish record only decides
	// which file is reported first.
	ordered := []string{target.Campaign, target.Skirmish}
	if o.isTemplateBasedSkirmishUnit(uc) {
		log.Info("template-based skirmish unit, rebuilding skirmish file first")
		ordered = []string{target.Skirmish, target.Campaign}
	} else {
		log.Info("campaign-based unit, rebuilding campaign file first")
	}

	for _, file := range ordered {
		if err := o.rebuildSquadronsIn(file, specName, uc); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) rebuildSquadronsIn(file, specName string, uc *UnitConfig) error {
	unitName := resolveUnitName(uc, specName)
	if IsCampaignFile(file) && uc.CampaignUnit != "" {
		unitName = uc.CampaignUnit
	}

	doc, err := gamexml.Load(file)
	if err != nil {
		return err
	}
	if err := o.rebuilder.Rebuild(doc, unitName, uc.Squadrons); err != nil {
		return err
	}
	return doc.Save()
}

// isTemplateBasedSkirmishUnit reports whether the skirmish record
// inherits directly from a shared template.
func (o *Orchestrator) isTemplateBasedSkirmishUnit(uc *UnitConfig) bool {
	if uc.BaseUnit == "" {
		return false
	}
	doc, err := gamexml.Load(o.files.Skirmish())
	if err != nil {
		o.logger.Warn("could not inspect skirmish record inheritance", zap.Error(err))
		return false
	}
	unit := doc.FindUnit(uc.BaseUnit)
	if unit == nil {
		return false
	}
	variant := unit.SelectElement("Variant_Of_Existing_Type")
	if variant == nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(variant.Text()), templatePrefix)
}

func (o *Orchestrator) applyHardpointChanges(log *zap.Logger, summary *RunSummary, specName string, uc *UnitConfig, hardpointFile string) error {
	doc, err := gamexml.Load(hardpointFile)
	if err != nil {
		return err
	}

	shipType := shipTypeOf(specName)
	hardpoints := doc.FindHardpoints(shipType)
	if len(hardpoints) == 0 {
		return fmt.Errorf("no hardpoints found for %s", shipType)
	}

	summary.FieldsChanged += o.applier.ApplyHardpointChanges(hardpoints, uc.Hardpoints)
	return doc.Save()
}

func (o *Orchestrator) applyCostChanges(log *zap.Logger, summary *RunSummary, uc *UnitConfig, skirmishFile string) error {
	if uc.BaseUnit == "" {
		return fmt.Errorf("no base_unit configured for cost changes")
	}
	doc, err := gamexml.Load(skirmishFile)
	if err != nil {
		return err
	}
	el := doc.FindUnit(uc.BaseUnit)
	if el == nil {
		return fmt.Errorf("skirmish unit not found: %s", uc.BaseUnit)
	}
	summary.FieldsChanged += o.applier.ApplyCostChanges(el, uc.CostChanges)
	return doc.Save()
}

// Reset restores the managed field sets for one unit, or all configured
// units when unitName is empty.
func (o *Orchestrator) Reset(unitName string) (*RunSummary, error) {
	log, runID := logger.WithRun(o.logger)
	summary := &RunSummary{RunID: runID}
	mode := o.spec.Mode()
	log.Info("starting reset pass", zap.String("mode", mode))

	if o.store == nil {
		return nil, ErrNoBackups
	}

	selected := o.spec.Units
	if unitName != "" {
		uc, ok := o.spec.Units[unitName]
		if !ok {
			return nil, fmt.Errorf("unit not configured: %s", unitName)
		}
		selected = map[string]*UnitConfig{unitName: uc}
	}

	for _, name := range sortedUnitNames(selected) {
		uc := selected[name]
		unitLog := log.With(zap.String("unit", name))
		unitLog.Info("resetting unit")
		o.resetUnit(unitLog, summary, name, uc, mode)
		summary.Units++
	}

	log.Info("reset pass finished",
		zap.Int("units", summary.Units),
		zap.Int("fields_changed", summary.FieldsChanged),
		zap.Int("warnings", summary.Warnings))
	return summary, nil
}

func (o *Orchestrator) resetUnit(log *zap.Logger, summary *RunSummary, name string, uc *UnitConfig, mode string) {
	target := o.files.Target(name, mode)

	if err := o.resetTemplateFields(summary, uc, target.Template); err != nil {
		log.Warn("template reset failed", zap.Error(err))
		summary.Warnings++
	}

	// Squadron state lives in both mode files; reset both.
	for _, file := range []string{target.Skirmish, target.Campaign} {
		if err := o.resetSquadrons(summary, name, uc, file); err != nil {
			log.Warn("squadron reset failed", zap.String("file", file), zap.Error(err))
			summary.Warnings++
		}
	}

	if err := o.resetHardpoints(summary, name, target.Hardpoints); err != nil {
		log.Warn("hardpoint reset failed", zap.Error(err))
		summary.Warnings++
	}

	if mode == ModeSkirmish {
		if err := o.resetCosts(summary, uc, target.Skirmish); err != nil {
			log.Warn("cost reset failed", zap.Error(err))
			summary.Warnings++
		}
	}
}

func (o *Orchestrator) resetTemplateFields(summary *RunSummary, uc *UnitConfig, templateFile string) error {
	if uc.Template == "" {
		return nil
	}
	doc, backupDoc, err := o.loadWithBackup(templateFile)
	if err != nil {
		return err
	}
	el := doc.FindTemplate(uc.Template)
	backupEl := backupDoc.FindTemplate(uc.Template)
	if el == nil || backupEl == nil {
		return fmt.Errorf("template not found in file or snapshot: %s", uc.Template)
	}
	summary.FieldsChanged += o.resetter.ResetFields(el, backupEl, templateProperties)
	return doc.Save()
}

func (o *Orchestrator) resetSquadrons(summary *RunSummary, specName string, uc *UnitConfig, file string) error {
	unitName := resolveUnitName(uc, specName)
	if IsCampaignFile(file) && uc.CampaignUnit != "" {
		unitName = uc.CampaignUnit
	}

	doc, backupDoc, err := o.loadWithBackup(file)
	if err != nil {
		return err
	}
	el := doc.FindUnit(unitName)
	backupEl := backupDoc.FindUnit(unitName)
	if el == nil || backupEl == nil {
		return fmt.Errorf("unit not found in file or snapshot: %s", unitName)
	}
	summary.FieldsChanged += o.resetter.ResetSquadronTags(el, backupEl)
	return doc.Save()
}

func (o *Orchestrator) resetHardpoints(summary *RunSummary, specName, hardpointFile string) error {
	doc, backupDoc, err := o.loadWithBackup(hardpointFile)
	if err != nil {
		return err
	}
	hardpoints := doc.FindHardpoints(shipTypeOf(specName))
	if len(hardpoints) == 0 {
		return fmt.Errorf("no hardpoints found for %s", shipTypeOf(specName))
	}
	summary.FieldsChanged += o.resetter.ResetHardpoints(hardpoints, backupDoc)
	return doc.Save()
}

func (o *Orchestrator) resetCosts(summary *RunSummary, uc *UnitConfig, skirmishFile string) error {
	if uc.BaseUnit == "" {
		return nil
	}
	doc, backupDoc, err := o.loadWithBackup(skirmishFile)
	if err != nil {
		return err
	}
	el := doc.FindUnit(uc.BaseUnit)
	backupEl := backupDoc.FindUnit(uc.BaseUnit)
	if el == nil || backupEl == nil {
		return fmt.Errorf("skirmish unit not found in file or snapshot: %s", uc.BaseUnit)
	}
	summary.FieldsChanged += o.resetter.ResetFields(el, backupEl, costTags)
	return doc.Save()
}

// loadWithBackup loads a managed file together with its pristine
// snapshot.
func (o *Orchestrator) loadWithBackup(file string) (*gamexml.Document, *gamexml.Document, error) {
	snapshot := o.store.LatestSnapshot(file)
	if snapshot == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoBackups, file)
	}
	doc, err := gamexml.Load(file)
	if err != nil {
		return nil, nil, err
	}
	backupDoc, err := gamexml.Load(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return doc, backupDoc, nil
}

// resolveUnitName picks the record name for a non-campaign file.
func resolveUnitName(uc *UnitConfig, specName string) string {
	if uc.BaseUnit != "" {
		return uc.BaseUnit
	}
	if uc.CampaignUnit != "" {
		return uc.CampaignUnit
	}
	return specName
}

// shipTypeOf extracts the hardpoint search key from a unit name, e.g.
// "Acclamator" from "Acclamator_I_Carrier".
func shipTypeOf(unitName string) string {
	if idx := strings.Index(unitName, "_"); idx > 0 {
		return unitName[:idx]
	}
	return unitName
}

func sortedUnitNames(units map[string]*UnitConfig) []string {
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
