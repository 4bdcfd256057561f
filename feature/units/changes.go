package units

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"modkit/core/gamexml"
	"modkit/core/utils"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// ErrBadPercent indicates a malformed percentage-delta expression.
var ErrBadPercent = errors.New("invalid percentage expression")

// integerFields are stored as whole numbers in the game format; computed
// values are rounded regardless of the precision the config asked for.
var integerFields = map[string]bool{
	"shield_points":       true,
	"shield_refresh_rate": true,
}

// PercentExpr reports whether a configured change value is a
// percentage-delta string and returns it when so.
func PercentExpr(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	return s, strings.HasSuffix(s, "%")
}

// ApplyPercent computes original * (1 + pct/100) for an expression like
// "+10%" or "-25%".
func ApplyPercent(original float64, expr string) (float64, error) {
	if !strings.HasSuffix(expr, "%") {
		return 0, fmt.Errorf("%w: %q", ErrBadPercent, expr)
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(expr, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadPercent, expr)
	}
	return original * (1 + pct/100), nil
}

// Applier computes and writes declared field changes onto records.
type Applier struct {
	logger *zap.Logger
}

// NewApplier returns an Applier.
func NewApplier(logger *zap.Logger) *Applier {
	return &Applier{logger: logger}
}

// ApplyFieldChanges writes each declared change onto the record and
// returns the fields actually written with their new values, which
// drives dependent tooltip regeneration.
//
// Percentage deltas need a resolvable original and are skipped with a
// warning otherwise. When requireOriginal is set, absolute values are
// also skipped for fields with no resolvable original; the lenient form
// is used when applying directly to mode records that may not carry the
// field yet.
func (a *Applier) ApplyFieldChanges(el *etree.Element, changes map[string]any, requireOriginal bool) map[string]float64 {
	updated := make(map[string]float64)

	for _, name := range sortedChangeKeys(changes) {
		raw := changes[name]
		original, hasOriginal := gamexml.Value(el, name)

		var newValue float64
		if expr, isPct := PercentExpr(raw); isPct {
			if !hasOriginal {
				a.logger.Warn("original value not found, skipping percentage change", zap.String("field", name))
				continue
			}
			v, err := ApplyPercent(original, expr)
			if err != nil {
				a.logger.Warn("skipping field", zap.String("field", name), zap.Error(err))
				continue
			}
			newValue = v
		} else {
			if requireOriginal && !hasOriginal {
				a.logger.Warn("original value not found, skipping change", zap.String("field", name))
				continue
			}
			v, ok := numericValue(raw)
			if !ok {
				a.logger.Warn("non-numeric change value, skipping", zap.String("field", name))
				continue
			}
			newValue = v
		}

		if integerFields[name] {
			newValue = float64(utils.RoundInt(newValue))
			gamexml.SetValue(el, name, utils.RoundInt(newValue))
		} else {
			gamexml.SetValue(el, name, newValue)
		}

		a.logger.Info("field changed",
			zap.String("field", name),
			zap.Float64("old", original),
			zap.Float64("new", newValue))
		updated[name] = newValue
	}

	return updated
}

// ApplyCostChanges applies purchase cost changes. Cost fields are whole
// credit amounts; computed values are truncated to integers.
func (a *Applier) ApplyCostChanges(el *etree.Element, changes map[string]any) int {
	applied := 0
	for _, name := range sortedChangeKeys(changes) {
		raw := changes[name]
		original, hasOriginal := gamexml.Value(el, name)
		if !hasOriginal {
			a.logger.Warn("original cost not found, skipping", zap.String("field", name))
			continue
		}

		var newValue float64
		if expr, isPct := PercentExpr(raw); isPct {
			v, err := ApplyPercent(original, expr)
			if err != nil {
				a.logger.Warn("skipping cost field", zap.String("field", name), zap.Error(err))
				continue
			}
			newValue = v
		} else {
			v, ok := numericValue(raw)
			if !ok {
				a.logger.Warn("non-numeric cost value, skipping", zap.String("field", name))
				continue
			}
			newValue = v
		}

		// Costs are whole credits.
		cost := int(newValue)
		gamexml.SetValue(el, name, cost)
		a.logger.Info("cost changed",
			zap.String("field", name),
			zap.Float64("old", original),
			zap.Int("new", cost))
		applied++
	}
	return applied
}

// HardpointConfig declares weapon tuning for a unit's hardpoints. All
// three knobs are percentage-delta expressions.
type HardpointConfig struct {
	FireRateIncrease     string `yaml:"fire_rate_increase"`
	DamageIncrease       string `yaml:"damage_increase"`
	BurstDelayAdjustment string `yaml:"burst_delay_adjustment"`
}

// Hardpoint fields the tuning knobs act on.
const (
	fieldMinRecharge = "Fire_Min_Recharge_Seconds"
	fieldMaxRecharge = "Fire_Max_Recharge_Seconds"
	fieldPulseCount  = "Fire_Pulse_Count"
	fieldPulseDelay  = "Fire_Pulse_Delay_Seconds"
)

// minPulseDelay is the floor a burst delay reduction can reach.
const minPulseDelay = 0.05

// ApplyHardpointChanges tunes every given hardpoint element and returns
// how many field writes were made.
func (a *Applier) ApplyHardpointChanges(hardpoints []*etree.Element, cfg *HardpointConfig) int {
	applied := 0

	// A fire rate increase shortens the recharge window.
	if pct, ok := percentOf(cfg.FireRateIncrease); ok {
		for _, hp := range hardpoints {
			name := hp.SelectAttrValue("Name", "")
			for _, field := range []string{fieldMinRecharge, fieldMaxRecharge} {
				recharge, found := gamexml.Value(hp, field)
				if !found {
					continue
				}
				newValue := recharge / (1 + pct/100)
				gamexml.SetValue(hp, field, newValue)
				a.logger.Info("hardpoint recharge changed",
					zap.String("hardpoint", name),
					zap.String("field", field),
					zap.Float64("old", recharge),
					zap.Float64("new", newValue))
				applied++
			}
		}
	}

	// A damage increase adds shots per salvo, at least one.
	if pct, ok := percentOf(cfg.DamageIncrease); ok {
		for _, hp := range hardpoints {
			pulses, found := gamexml.Value(hp, fieldPulseCount)
			if !found {
				continue
			}
			newCount := int(pulses * (1 + pct/100))
			if newCount < int(pulses)+1 {
				newCount = int(pulses) + 1
			}
			gamexml.SetValue(hp, fieldPulseCount, newCount)
			a.logger.Info("hardpoint pulse count changed",
				zap.String("hardpoint", hp.SelectAttrValue("Name", "")),
				zap.Float64("old", pulses),
				zap.Int("new", newCount))
			applied++
		}
	}

	// Burst delay scales the gap between shots in a salvo; reductions
	// are floored so a salvo never collapses into a single pulse.
	if pct, ok := percentOf(cfg.BurstDelayAdjustment); ok {
		for _, hp := range hardpoints {
			delay, found := gamexml.Value(hp, fieldPulseDelay)
			if !found {
				continue
			}
			newDelay := delay * (1 + pct/100)
			if pct < 0 && newDelay < minPulseDelay {
				newDelay = minPulseDelay
			}
			gamexml.SetValue(hp, fieldPulseDelay, newDelay)
			a.logger.Info("hardpoint burst delay changed",
				zap.String("hardpoint", hp.SelectAttrValue("Name", "")),
				zap.Float64("old", delay),
				zap.Float64("new", newDelay))
			applied++
		}
	}

	return applied
}

func percentOf(expr string) (float64, bool) {
	if !strings.HasSuffix(expr, "%") {
		return 0, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(expr, "%"), 64)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		return utils.ParseNumber(v)
	default:
		return 0, false
	}
}

func sortedChangeKeys(changes map[string]any) []string {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
