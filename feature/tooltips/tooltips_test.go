package tooltips

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const unitXML = `<?xml version="1.0"?>
<SpaceUnitsRepublic>
	<SpaceUnit Name="Venator_Republic">
		<Encyclopedia_Text>
			TEXT_TOOLTIP_VENATOR_SHIELD TEXT_TOOLTIP_VENATOR_HULL,TEXT_STATBLOCK_VENATOR_BASE
			TEXT_ENCYCLOPEDIA_VENATOR_FLAVOR
		</Encyclopedia_Text>
	</SpaceUnit>
</SpaceUnitsRepublic>`

func writeUnitFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Republic_Space_Units.xml")
	require.NoError(t, os.WriteFile(path, []byte(unitXML), 0o644))
	return path
}

func TestEncyclopediaKeys(t *testing.T) {
	keys := EncyclopediaKeys([]string{writeUnitFile(t)}, "Venator_Republic")
	assert.Equal(t, []string{
		"TEXT_TOOLTIP_VENATOR_SHIELD",
		"TEXT_TOOLTIP_VENATOR_HULL",
		"TEXT_STATBLOCK_VENATOR_BASE",
		"TEXT_ENCYCLOPEDIA_VENATOR_FLAVOR",
	}, keys)

	t.Run("Unknown Unit", func(t *testing.T) {
		assert.Empty(t, EncyclopediaKeys([]string{writeUnitFile(t)}, "Ghost_Ship"))
	})
}

func TestCandidateKeys(t *testing.T) {
	keys := candidateKeys([]string{
		"TEXT_TOOLTIP_VENATOR_SHIELD",
		"TEXT_TOOLTIP_VENATOR_HULL",
		"TEXT_STATBLOCK_VENATOR_BASE",
		"TEXT_ENCYCLOPEDIA_VENATOR_FLAVOR",
		"TEXT_STATBLOCK_VENATOR_UPGRADED",
	})
	assert.Equal(t, []string{
		"TEXT_TOOLTIP_VENATOR_SHIELD",
		"TEXT_TOOLTIP_VENATOR_HULL",
		"TEXT_STATBLOCK_VENATOR_BASE",
	}, keys)
}

func TestRewriteValue(t *testing.T) {
	t.Run("Shield Tooltip", func(t *testing.T) {
		out := rewriteValue("Shields: 450 / [9/R] (Frigate)", map[string]float64{
			FieldShieldPoints: 500,
			FieldShieldRate:   10,
		})
		assert.Equal(t, "Shields: 500 / [10/R] (Frigate)", out)
	})

	t.Run("Decimal Rate Keeps Style", func(t *testing.T) {
		out := rewriteValue("Shields: 450 / [9.5/R]", map[string]float64{FieldShieldRate: 10.5})
		assert.Equal(t, "Shields: 450 / [10.5/R]", out)
	})

	t.Run("Statblock", func(t *testing.T) {
		out := rewriteValue("Health: 4000 | Shields: 2400", map[string]float64{
			FieldHealth:       4400,
			FieldShieldPoints: 2640,
		})
		assert.Equal(t, "Health: 4400 | Shields: 2640", out)
	})

	t.Run("Zero Shields Becomes Unshielded", func(t *testing.T) {
		out := rewriteValue("Health: 4000 | Shields: 2400", map[string]float64{FieldShieldPoints: 0})
		assert.Equal(t, "Health: 4000 | Unshielded", out)
	})

	t.Run("Unshielded Gains Shields", func(t *testing.T) {
		out := rewriteValue("Health: 4000 | Unshielded", map[string]float64{FieldShieldPoints: 800})
		assert.Equal(t, "Health: 4000 | Shields: 800", out)
	})

	t.Run("Hull Tooltip", func(t *testing.T) {
		out := rewriteValue("Hull: 4000 (Capital)", map[string]float64{FieldHealth: 4400})
		assert.Equal(t, "Hull: 4400 (Capital)", out)
	})

	t.Run("Untouched Without Matching Fields", func(t *testing.T) {
		out := rewriteValue("Hull: 4000 (Capital)", map[string]float64{"max_speed": 3})
		assert.Equal(t, "Hull: 4000 (Capital)", out)
	})
}

func TestUpdateForUnit(t *testing.T) {
	unitFile := writeUnitFile(t)
	textDir := t.TempDir()
	table := filepath.Join(textDir, "MasterTextFile_ENGLISH.txt")
	require.NoError(t, os.WriteFile(table, []byte(
		"TEXT_TOOLTIP_VENATOR_SHIELD,Shields: 2400 / [12/R] (Capital)\n"+
			"TEXT_STATBLOCK_VENATOR_BASE,Health: 4000 | Shields: 2400\n"+
			"TEXT_ENCYCLOPEDIA_VENATOR_FLAVOR,A venerable workhorse.\n"), 0o644))

	u := NewUpdater(textDir, nil, zap.NewNop())

	changed := u.UpdateForUnit([]string{unitFile}, "Venator_Republic", map[string]float64{
		FieldShieldPoints: 2640,
	})
	assert.True(t, changed)

	data, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TEXT_TOOLTIP_VENATOR_SHIELD,Shields: 2640 / [12/R] (Capital)")
	assert.Contains(t, string(data), "TEXT_STATBLOCK_VENATOR_BASE,Health: 4000 | Shields: 2640")
	assert.Contains(t, string(data), "A venerable workhorse.")

	t.Run("No Relevant Key", func(t *testing.T) {
		changed := u.UpdateForUnit([]string{unitFile}, "Venator_Republic", map[string]float64{"max_speed": 4})
		// Candidate keys still resolve, but no pattern matches the new field.
		assert.False(t, changed)
	})
}

func TestRelevant(t *testing.T) {
	assert.True(t, Relevant(map[string]float64{FieldShieldPoints: 1}))
	assert.True(t, Relevant(map[string]float64{FieldHealth: 1}))
	assert.False(t, Relevant(map[string]float64{"max_speed": 1}))
}
