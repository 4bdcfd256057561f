package units

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShipClass(t *testing.T) {
	tests := []struct {
		unit string
		want string
	}{
		{"Acclamator_I_Carrier", ClassFrigates},
		{"Venator_Variant", ClassFrigates},
		{"Victory_I", ClassFrigates},
		{"Imperial_Star_Destroyer", ClassCapitals},
		{"Praetor_Battlecruiser", ClassCapitals},
		{"Secutor_Carrier", ClassCapitals},
		{"Unknown_Ship", ClassFrigates},
	}
	for _, tc := range tests {
		t.Run(tc.unit, func(t *testing.T) {
			assert.Equal(t, tc.want, ShipClass(tc.unit))
		})
	}
}

func TestFiles(t *testing.T) {
	f := NewFiles("XML")

	assert.Equal(t, filepath.Join("XML", "Units", "Templates_Frigates.xml"), f.Template(ClassFrigates))
	assert.Equal(t, filepath.Join("XML", "Hardpoints", "HardPoints_Coresaga_Capitals.xml"), f.Hardpoints(ClassCapitals))
	assert.Len(t, f.Managed(), 6)

	t.Run("target selects squadron file by mode", func(t *testing.T) {
		skirmish := f.Target("Acclamator_I_Carrier", ModeSkirmish)
		assert.Equal(t, skirmish.Skirmish, skirmish.Squadrons)

		campaign := f.Target("Acclamator_I_Carrier", ModeCampaign)
		assert.Equal(t, campaign.Campaign, campaign.Squadrons)
	})

	t.Run("campaign file detection", func(t *testing.T) {
		assert.True(t, IsCampaignFile(f.Campaign()))
		assert.False(t, IsCampaignFile(f.Skirmish()))
		assert.False(t, IsCampaignFile(f.Template(ClassCapitals)))
	})
}
