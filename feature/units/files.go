package units

import (
	"path/filepath"
	"strings"
)

// Ship classes the managed data is split across.
const (
	ClassFrigates = "Frigates"
	ClassCapitals = "Capitals"
)

var frigateKeywords = []string{"acclamator", "venator", "victory", "frigate"}

var capitalKeywords = []string{
	"star_destroyer", "tector", "secutor", "capital",
	"praetor", "procurator", "mandator", "maelstrom",
	"battlecruiser", "dreadnought", "imperator",
}

// ShipClass classifies a unit name into the template/hardpoint file class
// it lives in. Unknown names fall back to frigates.
func ShipClass(unitName string) string {
	lower := strings.ToLower(unitName)
	for _, kw := range frigateKeywords {
		if strings.Contains(lower, kw) {
			return ClassFrigates
		}
	}
	for _, kw := range capitalKeywords {
		if strings.Contains(lower, kw) {
			return ClassCapitals
		}
	}
	return ClassFrigates
}

const campaignFileName = "Republic_Space_Units.xml"

// Files resolves the fixed universe of managed XML files under the game's
// XML base directory.
type Files struct {
	xmlDir string
}

// NewFiles returns a resolver rooted at xmlDir.
func NewFiles(xmlDir string) Files {
	return Files{xmlDir: xmlDir}
}

// Skirmish returns the skirmish-mode unit file.
func (f Files) Skirmish() string {
	return filepath.Join(f.xmlDir, "Units", "Skirmish", "SkirmishUnits_Republic.xml")
}

// Campaign returns the campaign-mode unit file.
func (f Files) Campaign() string {
	return filepath.Join(f.xmlDir, "Units", campaignFileName)
}

// Template returns the shared template file for a ship class.
func (f Files) Template(class string) string {
	return filepath.Join(f.xmlDir, "Units", "Templates_"+class+".xml")
}

// Hardpoints returns the hardpoint file for a ship class.
func (f Files) Hardpoints(class string) string {
	return filepath.Join(f.xmlDir, "Hardpoints", "HardPoints_Coresaga_"+class+".xml")
}

// Managed enumerates every XML file this tool may rewrite, the set the
// snapshot store initializes and restores.
func (f Files) Managed() []string {
	return []string{
		f.Template(ClassFrigates),
		f.Template(ClassCapitals),
		f.Campaign(),
		f.Skirmish(),
		f.Hardpoints(ClassFrigates),
		f.Hardpoints(ClassCapitals),
	}
}

// TargetFiles bundles the files one unit's changes touch.
type TargetFiles struct {
	Template   string
	Hardpoints string
	Skirmish   string
	Campaign   string
	// Squadrons is the mode-selected primary squadron file.
	Squadrons string
}

// Target resolves the files for a unit in the given game mode.
func (f Files) Target(unitName, mode string) TargetFiles {
	class := ShipClass(unitName)
	t := TargetFiles{
		Template:   f.Template(class),
		Hardpoints: f.Hardpoints(class),
		Skirmish:   f.Skirmish(),
		Campaign:   f.Campaign(),
	}
	if mode == ModeSkirmish {
		t.Squadrons = t.Skirmish
	} else {
		t.Squadrons = t.Campaign
	}
	return t
}

// IsCampaignFile reports whether path is the campaign-mode unit file,
// which selects the campaign record name and tech level fallback set.
func IsCampaignFile(path string) bool {
	return strings.Contains(filepath.ToSlash(path), campaignFileName)
}
