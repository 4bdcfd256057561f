package units

import (
	"fmt"
	"sort"

	"modkit/core/backup"
	"modkit/core/gamexml"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Squadron tag families. Tech levels 0 through 5 exist in the data even
// though most units only populate a subset.
const (
	startingTagPrefix = "Starting_Spawned_Units_Tech_"
	reserveTagPrefix  = "Reserve_Spawned_Units_Tech_"
	delayField        = "Spawned_Squadron_Delay_Seconds"

	maxTechLevel = 5
)

// Fallback tech level sets when no backup data exists for a unit.
var (
	campaignFallbackLevels = []int{1, 2, 4}
	skirmishFallbackLevels = []int{0}
)

func startingTag(level int) string {
	return fmt.Sprintf("%s%d", startingTagPrefix, level)
}

func reserveTag(level int) string {
	return fmt.Sprintf("%s%d", reserveTagPrefix, level)
}

// legacyTags returns the misspelled "Tech_tech_N" family an older version
// of the mod wrote. Kept only so cleanup still removes them.
func legacyTags() []string {
	var tags []string
	for level := 0; level <= maxTechLevel; level++ {
		tags = append(tags,
			fmt.Sprintf("%stech_%d", startingTagPrefix, level),
			fmt.Sprintf("%stech_%d", reserveTagPrefix, level))
	}
	return tags
}

// removeSquadronTags strips every squadron tag from a record, both
// families across all tech levels plus the legacy misspelled family.
func removeSquadronTags(el *etree.Element) {
	for level := 0; level <= maxTechLevel; level++ {
		gamexml.RemoveFields(el, startingTag(level))
		gamexml.RemoveFields(el, reserveTag(level))
	}
	for _, tag := range legacyTags() {
		gamexml.RemoveFields(el, tag)
	}
}

// Rebuilder regenerates a unit's spawned squadron tags from the
// configured template group. The tech levels written are never taken
// from configuration: they are inferred from whichever levels existed in
// the pristine backup, so a rebuild can never invent tiers the stock
// data did not have.
type Rebuilder struct {
	store  *backup.Store
	logger *zap.Logger
}

// NewRebuilder returns a Rebuilder. store may be nil when backups are
// disabled, in which case the per-file fallback level sets apply.
func NewRebuilder(store *backup.Store, logger *zap.Logger) *Rebuilder {
	return &Rebuilder{store: store, logger: logger}
}

// Rebuild replaces the squadron tags of unitName inside doc. The caller
// saves the document.
func (r *Rebuilder) Rebuild(doc *gamexml.Document, unitName string, cfg *SquadronConfig) error {
	unit := doc.FindUnit(unitName)
	if unit == nil {
		r.logger.Warn("unit not found for squadron rebuild",
			zap.String("unit", unitName), zap.String("file", doc.Path()))
		return nil
	}

	removeSquadronTags(unit)

	levels := r.originalTechLevels(doc.Path(), unitName)
	r.logger.Info("rebuilding squadrons",
		zap.String("unit", unitName),
		zap.Ints("tech_levels", levels))

	// The first configured group is broadcast to every inferred level.
	if !cfg.Starting.Empty() {
		for _, level := range levels {
			for _, entry := range cfg.Starting.First() {
				gamexml.AppendField(unit, startingTag(level), fmt.Sprintf("%s, %d", entry.Type, entry.Count))
			}
		}
	}
	if !cfg.Reserve.Empty() {
		for _, level := range levels {
			for _, entry := range cfg.Reserve.First() {
				gamexml.AppendField(unit, reserveTag(level), fmt.Sprintf("%s, %d", entry.Type, entry.Count))
			}
		}
	}

	if cfg.DelaySeconds != nil {
		gamexml.SetValue(unit, delayField, *cfg.DelaySeconds)
	}

	return nil
}

// originalTechLevels scans the pristine backup of file for which tech
// level tags the unit carried. Falls back to a per-file default set when
// no usable backup data exists.
func (r *Rebuilder) originalTechLevels(file, unitName string) []int {
	fallback := skirmishFallbackLevels
	if IsCampaignFile(file) {
		fallback = campaignFallbackLevels
	}

	if r.store == nil {
		return fallback
	}
	snapshot := r.store.LatestSnapshot(file)
	if snapshot == "" {
		r.logger.Warn("no snapshot for squadron file, using fallback tech levels",
			zap.String("file", file))
		return fallback
	}

	backupDoc, err := gamexml.Load(snapshot)
	if err != nil {
		r.logger.Warn("failed to load snapshot, using fallback tech levels",
			zap.String("snapshot", snapshot), zap.Error(err))
		return fallback
	}
	unit := backupDoc.FindUnit(unitName)
	if unit == nil {
		r.logger.Warn("unit not in snapshot, using fallback tech levels",
			zap.String("unit", unitName))
		return fallback
	}

	levelSet := map[int]bool{}
	for level := 0; level <= maxTechLevel; level++ {
		if gamexml.HasField(unit, startingTag(level)) || gamexml.HasField(unit, reserveTag(level)) {
			levelSet[level] = true
		}
	}
	if len(levelSet) == 0 {
		r.logger.Warn("no tech levels in snapshot, using fallback",
			zap.String("unit", unitName))
		return fallback
	}

	levels := make([]int, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}
