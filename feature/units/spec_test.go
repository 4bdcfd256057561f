package units

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSpec = `game_mode: skirmish
units:
  Acclamator_I_Carrier:
    template: Template_Acclamator
    base_unit: Acclamator_Assault_Ship
    campaign_unit: Acclamator_Assault_Ship_C
    template_changes:
      shield_points: "+25%"
      shield_refresh_rate: 40
    squadrons:
      starting:
        2:
          - type: Republic_V19_Squadron
            count: 2
        1:
          - type: Republic_ARC170_Squadron
            count: 1
      reserve:
        2:
          - type: Republic_V19_Squadron
            count: 4
      delay_seconds: 20
    cost_changes:
      Tactical_Build_Cost_Multiplayer: "-10%"
kdy_market:
  enabled: true
  ships:
    Venator:
      chance: 42
      readable_name: TEXT_VENATOR
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mods.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpec(t *testing.T) {
	spec, err := LoadSpec(writeSpec(t, sampleSpec))
	require.NoError(t, err)

	assert.Equal(t, ModeSkirmish, spec.Mode())
	require.Contains(t, spec.Units, "Acclamator_I_Carrier")

	uc := spec.Units["Acclamator_I_Carrier"]
	assert.Equal(t, "Template_Acclamator", uc.Template)
	assert.Equal(t, "Acclamator_Assault_Ship", uc.BaseUnit)
	assert.Equal(t, "+25%", uc.TemplateChanges["shield_points"])
	assert.Equal(t, 40, uc.TemplateChanges["shield_refresh_rate"])

	require.NotNil(t, spec.Market)
	assert.Contains(t, spec.Market.Ships, "Venator")
}

func TestLoadSpecSquadronOrder(t *testing.T) {
	spec, err := LoadSpec(writeSpec(t, sampleSpec))
	require.NoError(t, err)

	sq := spec.Units["Acclamator_I_Carrier"].Squadrons
	require.NotNil(t, sq)

	// Document order decides which group gets broadcast, so tech level 2
	// must come first even though 1 sorts lower.
	require.Len(t, sq.Starting.Groups, 2)
	assert.Equal(t, 2, sq.Starting.Groups[0].Level)
	assert.Equal(t, 1, sq.Starting.Groups[1].Level)

	first := sq.Starting.First()
	require.Len(t, first, 1)
	assert.Equal(t, "Republic_V19_Squadron", first[0].Type)
	assert.Equal(t, 2, first[0].Count)

	assert.False(t, sq.Reserve.Empty())
	require.NotNil(t, sq.DelaySeconds)
	assert.Equal(t, 20.0, *sq.DelaySeconds)
}

func TestLoadSpecDefaultsAndErrors(t *testing.T) {
	t.Run("mode defaults to skirmish", func(t *testing.T) {
		spec, err := LoadSpec(writeSpec(t, "units: {}\n"))
		require.NoError(t, err)
		assert.Equal(t, ModeSkirmish, spec.Mode())
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := LoadSpec(writeSpec(t, "units: [broken\n"))
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSpec(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("squadron slot must be a mapping", func(t *testing.T) {
		_, err := LoadSpec(writeSpec(t, `units:
  Acclamator:
    squadrons:
      starting:
        - type: X
          count: 1
`))
		assert.ErrorIs(t, err, ErrParse)
	})
}
