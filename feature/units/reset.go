package units

import (
	"math"

	"modkit/core/gamexml"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// resetTolerance bounds the numeric drift tolerated before a field is
// considered changed and restored.
const resetTolerance = 0.001

// templateProperties is the managed field set on shared templates and
// mode records. Reset only ever touches named field sets, never whole
// records, which bounds its blast radius to fields this tool manages.
var templateProperties = []string{
	"shield_points", "shield_refresh_rate", "energy_capacity", "energy_refresh_rate",
	"tactical_health", "armor_type", "max_speed", "max_thrust", "max_rate_of_turn",
	"override_acceleration", "override_deceleration", "ai_combat_power", "damage",
	"maintenance_cost", "build_cost_credits", "build_time_seconds", "squadron_capacity",
	"tech_level", "required_star_base_level",
}

// costTags is the managed field set for purchase costs on skirmish records.
var costTags = []string{
	"Tactical_Build_Cost_Multiplayer",
	"Tactical_Build_Cost_Campaign",
	"Build_Cost_Credits",
	"Maintenance_Cost",
}

// fireResetFields is the managed field set on hardpoints.
var fireResetFields = []string{fieldMinRecharge, fieldMaxRecharge}

// Resetter restores managed fields to their pristine backup values.
type Resetter struct {
	logger *zap.Logger
}

// NewResetter returns a Resetter.
func NewResetter(logger *zap.Logger) *Resetter {
	return &Resetter{logger: logger}
}

// ResetFields restores each named numeric field from the backup record
// when the current value is absent or differs beyond the tolerance.
// Fields absent from the backup are left alone. Returns the number of
// fields restored.
func (r *Resetter) ResetFields(el, backupEl *etree.Element, names []string) int {
	restored := 0
	for _, name := range names {
		backupValue, inBackup := gamexml.Value(backupEl, name)
		if !inBackup {
			continue
		}
		current, hasCurrent := gamexml.Value(el, name)
		if hasCurrent && math.Abs(current-backupValue) <= resetTolerance {
			continue
		}
		gamexml.SetValue(el, name, backupValue)
		r.logger.Info("field restored",
			zap.String("field", name),
			zap.Float64("old", current),
			zap.Float64("restored", backupValue))
		restored++
	}
	return restored
}

// ResetSquadronTags restores a record's squadron tags to the backup
// state: composition tags are matched as ordered text lists and
// regenerated from the backup when they differ, tags with no backup
// entry at all are removed (they were created by a prior apply), and the
// spawn delay is restored numerically. Returns the number of tags
// touched.
func (r *Resetter) ResetSquadronTags(el, backupEl *etree.Element) int {
	touched := 0
	for level := 0; level <= maxTechLevel; level++ {
		for _, tag := range []string{startingTag(level), reserveTag(level)} {
			touched += r.resetRepeatable(el, backupEl, tag)
		}
	}

	touched += r.ResetFields(el, backupEl, []string{delayField})
	if !gamexml.HasField(backupEl, delayField) {
		if removed := gamexml.RemoveFields(el, delayField); removed > 0 {
			r.logger.Info("field removed", zap.String("field", delayField))
			touched += removed
		}
	}
	return touched
}

// resetRepeatable reconciles one repeatable tag name against the backup.
func (r *Resetter) resetRepeatable(el, backupEl *etree.Element, tag string) int {
	backupValues := fieldTexts(backupEl, tag)
	currentValues := fieldTexts(el, tag)

	if len(backupValues) == 0 {
		if len(currentValues) == 0 {
			return 0
		}
		removed := gamexml.RemoveFields(el, tag)
		r.logger.Info("tag removed", zap.String("tag", tag), zap.Int("count", removed))
		return removed
	}

	if equalTexts(backupValues, currentValues) {
		return 0
	}
	gamexml.RemoveFields(el, tag)
	for _, text := range backupValues {
		gamexml.AppendField(el, tag, text)
	}
	r.logger.Info("tag restored", zap.String("tag", tag), zap.Strings("entries", backupValues))
	return len(backupValues)
}

// ResetHardpoints restores the fire recharge fields of every hardpoint
// against its backup counterpart, matched by exact name.
func (r *Resetter) ResetHardpoints(hardpoints []*etree.Element, backupDoc *gamexml.Document) int {
	restored := 0
	for _, hp := range hardpoints {
		name := hp.SelectAttrValue("Name", "")
		backupHP := backupDoc.FindHardpoint(name)
		if backupHP == nil {
			continue
		}
		restored += r.ResetFields(hp, backupHP, fireResetFields)
	}
	return restored
}

func fieldTexts(el *etree.Element, tag string) []string {
	var out []string
	for _, child := range el.SelectElements(tag) {
		out = append(out, child.Text())
	}
	return out
}

func equalTexts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
