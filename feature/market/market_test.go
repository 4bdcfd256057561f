package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleOptions = `return {
	market = {
		options = {
				["Venator_Republic"] = {
					locked = true,
					gc_locked = false,
					amount = 0,
					chance = 10,
					perception_modifier = nil,
					association = nil,
					readable_name = "Venator",
					text_requirement = "",
					order = 1,
				},
		},
	},
}
`

const sampleAdjustments = `return {
}
`

func boolPtr(b bool) *bool { return &b }

func writeScripts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ShipMarketOptions.lua"), []byte(sampleOptions), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ShipMarketAdjustmentsLibrary.lua"), []byte(sampleAdjustments), 0o644))
	return dir
}

func TestUpsertShipEntry(t *testing.T) {
	t.Run("Replaces Existing", func(t *testing.T) {
		out := upsertShipEntry(sampleOptions, "Venator_Republic", ShipConfig{Chance: 40, ReadableName: "Venator"})
		assert.Contains(t, out, "chance = 40,")
		assert.Contains(t, out, "locked = false,")
		assert.NotContains(t, out, "chance = 10,")
		assert.NoError(t, compileLua("options", out))
	})

	t.Run("Inserts New", func(t *testing.T) {
		out := upsertShipEntry(sampleOptions, "Secutor_Republic", ShipConfig{Locked: true, Chance: 5, Order: 2})
		assert.Contains(t, out, `["Secutor_Republic"]`)
		// Falls back to the unit name when no readable name is configured.
		assert.Contains(t, out, `readable_name = "Secutor_Republic",`)
		assert.NoError(t, compileLua("options", out))
	})
}

func TestUpsertEvent(t *testing.T) {
	out := upsertEvent(sampleAdjustments, "Battle_Of_Coruscant", EventConfig{
		Adjustments: map[string]int{"Venator_Republic": 20},
		Unlocks:     map[string]bool{"Secutor_Republic": true},
	})
	assert.Contains(t, out, `["Battle_Of_Coruscant"]`)
	assert.Contains(t, out, `{"EMPIRE", "KDY_MARKET", "Venator_Republic", 20},`)
	// Unlock writes the inverted lock flag.
	assert.Contains(t, out, `{"EMPIRE", "KDY_MARKET", "Secutor_Republic", false},`)
	assert.NoError(t, compileLua("adjustments", out))
}

func TestEditorApply(t *testing.T) {
	t.Run("Rewrites Both Files", func(t *testing.T) {
		dir := writeScripts(t)
		editor := NewEditor(dir, nil, zap.NewNop())

		changed, err := editor.Apply(&Config{
			Ships:  map[string]ShipConfig{"Venator_Republic": {Chance: 60}},
			Events: map[string]EventConfig{"Clone_Wars_End": {Locks: map[string]bool{"Venator_Republic": true}}},
		})
		require.NoError(t, err)
		assert.True(t, changed)

		data, err := os.ReadFile(filepath.Join(dir, "ShipMarketOptions.lua"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "chance = 60,")
	})

	t.Run("Disabled", func(t *testing.T) {
		dir := writeScripts(t)
		editor := NewEditor(dir, nil, zap.NewNop())

		changed, err := editor.Apply(&Config{
			Enabled: boolPtr(false),
			Ships:   map[string]ShipConfig{"Venator_Republic": {Chance: 60}},
		})
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("Missing Files Are Warnings", func(t *testing.T) {
		editor := NewEditor(t.TempDir(), nil, zap.NewNop())
		changed, err := editor.Apply(&Config{Ships: map[string]ShipConfig{"X": {}}})
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("No Config Entries", func(t *testing.T) {
		dir := writeScripts(t)
		editor := NewEditor(dir, nil, zap.NewNop())
		changed, err := editor.Apply(&Config{})
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestCompileLuaRejectsGarbage(t *testing.T) {
	assert.Error(t, compileLua("bad", "return {{{"))
}
