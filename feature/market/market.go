package market

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"modkit/core/backup"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Config is the kdy_market section of the mod spec.
type Config struct {
	// Enabled defaults to true when omitted.
	Enabled *bool                  `yaml:"enabled"`
	Ships   map[string]ShipConfig  `yaml:"ships"`
	Events  map[string]EventConfig `yaml:"events"`
}

// IsEnabled reports whether market processing should run.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ShipConfig describes one entry in the ship market options table.
type ShipConfig struct {
	Locked          bool   `yaml:"locked"`
	Chance          int    `yaml:"chance"`
	ReadableName    string `yaml:"readable_name"`
	RequirementText string `yaml:"requirement_text"`
	Order           int    `yaml:"order"`
}

// EventConfig describes one entry in the market adjustments library.
type EventConfig struct {
	Adjustments  map[string]int    `yaml:"adjustments"`
	Locks        map[string]bool   `yaml:"locks"`
	Unlocks      map[string]bool   `yaml:"unlocks"`
	Requirements map[string]string `yaml:"requirements"`
}

// Editor rewrites the two ship-market Lua tables in place. The edits are
// textual (entry blocks replaced or inserted by pattern), but every
// rewritten file must still compile in a Lua state before it is written
// back; a file that stops parsing is left untouched.
type Editor struct {
	optionsPath     string
	adjustmentsPath string
	store           *backup.Store
	logger          *zap.Logger
}

// NewEditor returns an Editor over the market library files in scriptsDir.
// store may be nil when backups are disabled.
func NewEditor(scriptsDir string, store *backup.Store, logger *zap.Logger) *Editor {
	return &Editor{
		optionsPath:     filepath.Join(scriptsDir, "ShipMarketOptions.lua"),
		adjustmentsPath: filepath.Join(scriptsDir, "ShipMarketAdjustmentsLibrary.lua"),
		store:           store,
		logger:          logger,
	}
}

// Apply rewrites both market files per the configuration and reports
// whether anything changed on disk.
func (e *Editor) Apply(cfg *Config) (bool, error) {
	if cfg == nil || !cfg.IsEnabled() {
		e.logger.Info("ship market processing disabled")
		return false, nil
	}

	changed := false
	if len(cfg.Ships) > 0 {
		c, err := e.rewrite(e.optionsPath, func(content string) string {
			for _, name := range sortedKeys(cfg.Ships) {
				content = upsertShipEntry(content, name, cfg.Ships[name])
			}
			return content
		})
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}

	if len(cfg.Events) > 0 {
		c, err := e.rewrite(e.adjustmentsPath, func(content string) string {
			for _, name := range sortedKeys(cfg.Events) {
				content = upsertEvent(content, name, cfg.Events[name])
			}
			return content
		})
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}

	return changed, nil
}

// rewrite loads a market file, applies fn, and writes the result back
// when it differs and still compiles as Lua.
func (e *Editor) rewrite(path string, fn func(string) string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			e.logger.Warn("market file not found", zap.String("file", path))
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	updated := fn(content)
	if updated == content {
		return false, nil
	}

	if err := compileLua(filepath.Base(path), updated); err != nil {
		e.logger.Warn("rewritten market file does not parse, keeping previous content",
			zap.String("file", path), zap.Error(err))
		return false, nil
	}

	if e.store != nil {
		if _, err := e.store.EnsureBackup(path); err != nil {
			e.logger.Warn("failed to back up market file", zap.String("file", path), zap.Error(err))
		}
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.logger.Info("market file updated", zap.String("file", filepath.Base(path)))
	return true, nil
}

// compileLua checks that content still loads as a Lua chunk, without
// executing it.
func compileLua(name, content string) error {
	L := lua.NewState()
	defer L.Close()
	_, err := L.Load(strings.NewReader(content), name)
	return err
}

// upsertShipEntry replaces an existing ship block or inserts a new one
// before the first table close.
func upsertShipEntry(content, name string, cfg ShipConfig) string {
	entry := fmt.Sprintf(`				["%s"] = {
					locked = %s,
					gc_locked = false,
					amount = 0,
					chance = %d,
					perception_modifier = nil,
					association = nil,
					readable_name = "%s",
					text_requirement = "%s",
					order = %d,
				},`,
		name,
		strconv.FormatBool(cfg.Locked),
		cfg.Chance,
		readableName(name, cfg),
		cfg.RequirementText,
		cfg.Order,
	)

	pattern := regexp.MustCompile(`(?s)\["` + regexp.QuoteMeta(name) + `"\]\s*=\s*\{[^}]+\},`)
	if loc := pattern.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + entry + content[loc[1]:]
	}

	// New entry: splice in before the first closing brace following an
	// existing entry.
	insertAt := regexp.MustCompile(`,(\s*)\}`)
	if loc := insertAt.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + ",\n" + entry + "\n			}" + content[loc[1]:]
	}
	return content
}

func readableName(name string, cfg ShipConfig) string {
	if cfg.ReadableName != "" {
		return cfg.ReadableName
	}
	return name
}

// upsertEvent replaces an existing event block or appends a new one
// before the final table close.
func upsertEvent(content, name string, cfg EventConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `		["%s"] = {`, name)

	if len(cfg.Adjustments) > 0 {
		sb.WriteString("\n			adjustment_lists = {")
		for _, ship := range sortedKeys(cfg.Adjustments) {
			fmt.Fprintf(&sb, "\n				{\"EMPIRE\", \"KDY_MARKET\", \"%s\", %d},", ship, cfg.Adjustments[ship])
		}
		sb.WriteString("\n			},")
	}

	if len(cfg.Locks) > 0 || len(cfg.Unlocks) > 0 {
		sb.WriteString("\n			lock_lists = {")
		for _, ship := range sortedKeys(cfg.Locks) {
			fmt.Fprintf(&sb, "\n				{\"EMPIRE\", \"KDY_MARKET\", \"%s\", %s},", ship, strconv.FormatBool(cfg.Locks[ship]))
		}
		// An unlock is recorded as the inverted lock flag.
		for _, ship := range sortedKeys(cfg.Unlocks) {
			fmt.Fprintf(&sb, "\n				{\"EMPIRE\", \"KDY_MARKET\", \"%s\", %s},", ship, strconv.FormatBool(!cfg.Unlocks[ship]))
		}
		sb.WriteString("\n			},")
	}

	if len(cfg.Requirements) > 0 {
		sb.WriteString("\n			requirement_lists = {")
		for _, ship := range sortedKeys(cfg.Requirements) {
			fmt.Fprintf(&sb, "\n				{\"EMPIRE\", \"KDY_MARKET\", \"%s\", \"%s\"},", ship, cfg.Requirements[ship])
		}
		sb.WriteString("\n			},")
	}

	sb.WriteString("\n		},")
	entry := sb.String()

	pattern := regexp.MustCompile(`(?s)\["` + regexp.QuoteMeta(name) + `"\]\s*=\s*\{[^}]+\},`)
	if loc := pattern.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + entry + content[loc[1]:]
	}

	if idx := strings.LastIndex(content, "}"); idx >= 0 {
		return content[:idx] + entry + "\n}" + content[idx+1:]
	}
	return content
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
