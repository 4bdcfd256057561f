package tooltips

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"modkit/core/backup"
	"modkit/core/gamexml"
	"modkit/core/utils"

	"go.uber.org/zap"
)

// Fields whose changes must be mirrored into tooltip text.
const (
	FieldShieldPoints = "shield_points"
	FieldShieldRate   = "shield_refresh_rate"
	FieldHealth       = "tactical_health"
)

var (
	shieldRe    = regexp.MustCompile(`(Shields?:\s*)(\d+)`)
	shieldTagRe = regexp.MustCompile(`Shields?:`)
	rateRe      = regexp.MustCompile(`\[(\d+(?:\.\d+)?)/R\]`)
	healthRe    = regexp.MustCompile(`(Health:\s*)(\d+)`)
	hullRe      = regexp.MustCompile(`(Hull:\s*)(\d+)`)
	statblockRe = regexp.MustCompile(`^TEXT_STATBLOCK_.*_BASE$`)
	tokenRe     = regexp.MustCompile(`\s+|,`)
)

// Relevant reports whether any changed field requires a tooltip rewrite.
func Relevant(updated map[string]float64) bool {
	for _, f := range []string{FieldShieldPoints, FieldShieldRate, FieldHealth} {
		if _, ok := updated[f]; ok {
			return true
		}
	}
	return false
}

// Updater keeps the human-readable tooltip tables numerically consistent
// with the unit stats they describe.
type Updater struct {
	textDir string
	store   *backup.Store
	logger  *zap.Logger
}

// NewUpdater returns an Updater over the text tables in textDir.
// store may be nil when backups are disabled.
func NewUpdater(textDir string, store *backup.Store, logger *zap.Logger) *Updater {
	return &Updater{textDir: textDir, store: store, logger: logger}
}

// EncyclopediaKeys collects every TEXT_ token from the unit's
// encyclopedia block across the given unit files, in discovery order and
// without duplicates.
func EncyclopediaKeys(unitFiles []string, unitName string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, file := range unitFiles {
		doc, err := gamexml.Load(file)
		if err != nil {
			continue
		}
		unit := doc.FindUnit(unitName)
		if unit == nil {
			continue
		}
		enc := unit.SelectElement("Encyclopedia_Text")
		if enc == nil {
			continue
		}
		for _, tok := range tokenRe.Split(strings.TrimSpace(gamexml.AllText(enc)), -1) {
			if tok != "" && strings.HasPrefix(tok, "TEXT_") && !seen[tok] {
				seen[tok] = true
				keys = append(keys, tok)
			}
		}
	}
	return keys
}

// candidateKeys filters to the key families that embed shield/hull stats.
func candidateKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		switch {
		case strings.Contains(k, "_SHIELD"):
			out = append(out, k)
		case strings.Contains(k, "_HULL"):
			out = append(out, k)
		case statblockRe.MatchString(k):
			out = append(out, k)
		}
	}
	return out
}

// UpdateForUnit rewrites every tooltip line referenced by the unit's
// encyclopedia block that embeds a changed shield/hull value. Returns
// whether any text file changed.
func (u *Updater) UpdateForUnit(unitFiles []string, unitName string, updated map[string]float64) bool {
	keys := candidateKeys(EncyclopediaKeys(unitFiles, unitName))
	if len(keys) == 0 {
		return false
	}

	changed := false
	for _, key := range keys {
		path := u.findTextFile(key)
		if path == "" {
			u.logger.Info("no text file carries key", zap.String("key", key))
			continue
		}
		if u.updateLine(path, key, updated) {
			changed = true
		}
	}
	return changed
}

// findTextFile returns the first text table containing a line that starts
// with "<key>,".
func (u *Updater) findTextFile(key string) string {
	matches, err := filepath.Glob(filepath.Join(u.textDir, "*.txt"))
	if err != nil {
		return ""
	}
	sort.Strings(matches)
	prefix := key + ","
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, prefix) {
				return path
			}
		}
	}
	return ""
}

// updateLine rewrites the single "<key>,<text>" line in path.
func (u *Updater) updateLine(path, key string, updated map[string]float64) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		u.logger.Warn("failed to read text table", zap.String("file", path), zap.Error(err))
		return false
	}

	lines := strings.Split(string(data), "\n")
	prefix := key + ","
	changed := false
	for i, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		value := strings.TrimPrefix(line, prefix)
		rewritten := rewriteValue(value, updated)
		if rewritten != value {
			if u.store != nil {
				if _, err := u.store.EnsureBackup(path); err != nil {
					u.logger.Warn("failed to back up text table", zap.String("file", path), zap.Error(err))
				}
			}
			lines[i] = prefix + rewritten
			changed = true
			u.logger.Info("tooltip updated", zap.String("key", key), zap.String("text", rewritten))
		}
		break
	}

	if !changed {
		return false
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		u.logger.Warn("failed to write text table", zap.String("file", path), zap.Error(err))
		return false
	}
	return true
}

// rewriteValue applies the three tooltip patterns to one line value:
// dedicated shield tooltips, combined statblock lines, and dedicated hull
// tooltips.
func rewriteValue(value string, updated map[string]float64) string {
	// Dedicated shield tooltip, e.g. "Shields: 450 / [9/R] (Frigate)".
	if shieldTagRe.MatchString(value) {
		if sp, ok := updated[FieldShieldPoints]; ok {
			value = shieldRe.ReplaceAllString(value, "${1}"+strconv.Itoa(utils.RoundInt(sp)))
		}
		if rate, ok := updated[FieldShieldRate]; ok {
			value = rateRe.ReplaceAllStringFunc(value, func(m string) string {
				// Keep the decimal style the line already uses.
				if strings.Contains(rateRe.FindStringSubmatch(m)[1], ".") {
					return "[" + utils.FormatNumber(rate) + "/R]"
				}
				return "[" + strconv.Itoa(utils.RoundInt(rate)) + "/R]"
			})
		}
	}

	// Statblock base line, e.g. "Health: 4000 | Shields: 2400" or
	// "Health: 4000 | Unshielded".
	if healthRe.MatchString(value) || strings.Contains(value, "Unshielded") {
		if hp, ok := updated[FieldHealth]; ok {
			value = healthRe.ReplaceAllString(value, "${1}"+strconv.Itoa(utils.RoundInt(hp)))
		}
		if sp, ok := updated[FieldShieldPoints]; ok {
			n := utils.RoundInt(sp)
			if n <= 0 {
				value = shieldRe.ReplaceAllString(value, "Unshielded")
			} else if strings.Contains(value, "Unshielded") {
				value = strings.ReplaceAll(value, "Unshielded", "Shields: "+strconv.Itoa(n))
			} else {
				value = shieldRe.ReplaceAllString(value, "${1}"+strconv.Itoa(n))
			}
		}
	}

	// Dedicated hull tooltip, e.g. "Hull: 4000 (Capital)".
	if hp, ok := updated[FieldHealth]; ok {
		value = hullRe.ReplaceAllString(value, "${1}"+strconv.Itoa(utils.RoundInt(hp)))
	}

	return value
}
