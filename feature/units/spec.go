package units

import (
	"errors"
	"fmt"
	"os"

	"modkit/feature/market"

	"gopkg.in/yaml.v3"
)

// Game modes a mod spec can target.
const (
	ModeSkirmish = "skirmish"
	ModeCampaign = "campaign"
)

// ErrParse indicates a malformed mod spec document. Unlike per-unit
// problems this is fatal for the whole run.
var ErrParse = errors.New("malformed mod spec")

// Spec is the declarative mod specification: the set of desired attribute
// changes for named units, plus the optional ship market section.
type Spec struct {
	GameMode string                 `yaml:"game_mode"`
	Units    map[string]*UnitConfig `yaml:"units"`
	Market   *market.Config         `yaml:"kdy_market"`
}

// Mode returns the configured game mode, defaulting to skirmish.
func (s *Spec) Mode() string {
	if s.GameMode == "" {
		return ModeSkirmish
	}
	return s.GameMode
}

// UnitConfig is the change set declared for one logical unit. The same
// ship carries distinct record names per game mode; BaseUnit names the
// skirmish record and CampaignUnit the campaign one.
type UnitConfig struct {
	Template        string           `yaml:"template"`
	BaseUnit        string           `yaml:"base_unit"`
	CampaignUnit    string           `yaml:"campaign_unit"`
	TemplateChanges map[string]any   `yaml:"template_changes"`
	Squadrons       *SquadronConfig  `yaml:"squadrons"`
	Hardpoints      *HardpointConfig `yaml:"hardpoints"`
	CostChanges     map[string]any   `yaml:"cost_changes"`
}

// SquadronConfig declares the spawned squadron composition for a unit,
// split into the starting and reserve slots.
type SquadronConfig struct {
	Starting     TechGroups `yaml:"starting"`
	Reserve      TechGroups `yaml:"reserve"`
	DelaySeconds *float64   `yaml:"delay_seconds"`
}

// SquadronEntry is one (unit type, count) pair within a slot.
type SquadronEntry struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// TechGroup is the entry list configured under one tech level key.
type TechGroup struct {
	Level   int
	Entries []SquadronEntry
}

// TechGroups preserves the document order of the tech level keys. Only
// the first configured group is ever written; it is broadcast to every
// tech level the pristine backup carried, so the order the config lists
// them in matters.
type TechGroups struct {
	Groups []TechGroup
}

// UnmarshalYAML decodes a mapping of tech level to entry list while
// keeping document order.
func (t *TechGroups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("squadron slot must be a mapping of tech level to entries, got %v", node.Kind)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var group TechGroup
		if err := node.Content[i].Decode(&group.Level); err != nil {
			return fmt.Errorf("invalid tech level key: %w", err)
		}
		if err := node.Content[i+1].Decode(&group.Entries); err != nil {
			return fmt.Errorf("invalid squadron entries for tech level %d: %w", group.Level, err)
		}
		t.Groups = append(t.Groups, group)
	}
	return nil
}

// MarshalYAML renders the groups back as a plain mapping, for preview
// output.
func (t TechGroups) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range t.Groups {
		var key, value yaml.Node
		if err := key.Encode(g.Level); err != nil {
			return nil, err
		}
		if err := value.Encode(g.Entries); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

// Empty reports whether the slot has no configured groups.
func (t TechGroups) Empty() bool {
	return len(t.Groups) == 0
}

// First returns the entry list of the first configured tech level.
func (t TechGroups) First() []SquadronEntry {
	if len(t.Groups) == 0 {
		return nil
	}
	return t.Groups[0].Entries
}

// LoadSpec reads and decodes the mod spec document at path.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mod spec %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return &spec, nil
}
