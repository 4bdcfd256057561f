package units

import (
	"testing"

	"modkit/core/gamexml"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResetFields(t *testing.T) {
	resetter := NewResetter(zap.NewNop())

	t.Run("restores drifted values", func(t *testing.T) {
		el := parseElement(t, `<SpaceUnit Name="U"><Shield_Points>2128</Shield_Points></SpaceUnit>`)
		backupEl := parseElement(t, `<SpaceUnit Name="U"><Shield_Points>1850</Shield_Points></SpaceUnit>`)

		restored := resetter.ResetFields(el, backupEl, []string{"shield_points"})
		assert.Equal(t, 1, restored)

		v, ok := gamexml.Value(el, "shield_points")
		require.True(t, ok)
		assert.Equal(t, 1850.0, v)
	})

	t.Run("within tolerance left alone", func(t *testing.T) {
		el := parseElement(t, `<SpaceUnit Name="U"><Max_Speed>2.0005</Max_Speed></SpaceUnit>`)
		backupEl := parseElement(t, `<SpaceUnit Name="U"><Max_Speed>2.0</Max_Speed></SpaceUnit>`)

		assert.Zero(t, resetter.ResetFields(el, backupEl, []string{"max_speed"}))
	})

	t.Run("absent from backup left alone", func(t *testing.T) {
		el := parseElement(t, `<SpaceUnit Name="U"><Max_Speed>9.0</Max_Speed></SpaceUnit>`)
		backupEl := parseElement(t, `<SpaceUnit Name="U"/>`)

		assert.Zero(t, resetter.ResetFields(el, backupEl, []string{"max_speed"}))
		v, _ := gamexml.Value(el, "max_speed")
		assert.Equal(t, 9.0, v)
	})

	t.Run("absent current restored", func(t *testing.T) {
		el := parseElement(t, `<SpaceUnit Name="U"/>`)
		backupEl := parseElement(t, `<SpaceUnit Name="U"><Max_Speed>2.0</Max_Speed></SpaceUnit>`)

		assert.Equal(t, 1, resetter.ResetFields(el, backupEl, []string{"max_speed"}))
		v, ok := gamexml.Value(el, "max_speed")
		require.True(t, ok)
		assert.Equal(t, 2.0, v)
	})
}

func TestResetSquadronTags(t *testing.T) {
	resetter := NewResetter(zap.NewNop())

	backupXML := `<SkirmishSpaceUnit Name="U">
		<Starting_Spawned_Units_Tech_0>Stock_Squadron, 1</Starting_Spawned_Units_Tech_0>
		<Starting_Spawned_Units_Tech_0>Stock_Squadron_B, 2</Starting_Spawned_Units_Tech_0>
	</SkirmishSpaceUnit>`

	t.Run("regenerates differing composition", func(t *testing.T) {
		el := parseElement(t, `<SkirmishSpaceUnit Name="U">
			<Starting_Spawned_Units_Tech_0>Modded_Squadron, 4</Starting_Spawned_Units_Tech_0>
		</SkirmishSpaceUnit>`)
		backupEl := parseElement(t, backupXML)

		touched := resetter.ResetSquadronTags(el, backupEl)
		assert.Equal(t, 2, touched)

		entries := el.SelectElements("Starting_Spawned_Units_Tech_0")
		require.Len(t, entries, 2)
		assert.Equal(t, "Stock_Squadron, 1", entries[0].Text())
		assert.Equal(t, "Stock_Squadron_B, 2", entries[1].Text())
	})

	t.Run("matching composition untouched", func(t *testing.T) {
		el := parseElement(t, backupXML)
		backupEl := parseElement(t, backupXML)
		assert.Zero(t, resetter.ResetSquadronTags(el, backupEl))
	})

	t.Run("tags with no backup entry removed", func(t *testing.T) {
		el := parseElement(t, `<SkirmishSpaceUnit Name="U">
			<Reserve_Spawned_Units_Tech_3>Modded_Squadron, 2</Reserve_Spawned_Units_Tech_3>
			<Spawned_Squadron_Delay_Seconds>20</Spawned_Squadron_Delay_Seconds>
		</SkirmishSpaceUnit>`)
		backupEl := parseElement(t, `<SkirmishSpaceUnit Name="U"/>`)

		touched := resetter.ResetSquadronTags(el, backupEl)
		assert.Equal(t, 2, touched)
		assert.Empty(t, el.SelectElements("Reserve_Spawned_Units_Tech_3"))
		assert.False(t, gamexml.HasField(el, delayField))
	})

	t.Run("delay restored numerically", func(t *testing.T) {
		el := parseElement(t, `<SkirmishSpaceUnit Name="U">
			<Spawned_Squadron_Delay_Seconds>20</Spawned_Squadron_Delay_Seconds>
		</SkirmishSpaceUnit>`)
		backupEl := parseElement(t, `<SkirmishSpaceUnit Name="U">
			<Spawned_Squadron_Delay_Seconds>45</Spawned_Squadron_Delay_Seconds>
		</SkirmishSpaceUnit>`)

		assert.Equal(t, 1, resetter.ResetSquadronTags(el, backupEl))
		v, _ := gamexml.Value(el, delayField)
		assert.Equal(t, 45.0, v)
	})
}

// Reset undoes a rebuild exactly: rebuilding from config and then
// resetting against the pristine record yields the original composition.
func TestResetUndoesRebuild(t *testing.T) {
	pristine := `<SpaceUnitsList>
		<SkirmishSpaceUnit Name="U">
			<Starting_Spawned_Units_Tech_0>Stock_Squadron, 1</Starting_Spawned_Units_Tech_0>
			<Reserve_Spawned_Units_Tech_0>Stock_Reserve, 3</Reserve_Spawned_Units_Tech_0>
		</SkirmishSpaceUnit>
	</SpaceUnitsList>`

	dir := t.TempDir()
	file := writeUnitFile(t, dir, "SkirmishUnits_Republic.xml", pristine)

	store := newTestStore(t)
	_, err := store.EnsureBackup(file)
	require.NoError(t, err)

	doc, err := gamexml.Load(file)
	require.NoError(t, err)

	delay := 15.0
	cfg := squadronConfig("Modded_Squadron", 4, 0)
	cfg.DelaySeconds = &delay
	require.NoError(t, NewRebuilder(store, zap.NewNop()).Rebuild(doc, "U", cfg))

	unit := doc.FindUnit("U")
	backupEl := parseElement(t, pristine).SelectElement("SkirmishSpaceUnit")

	resetter := NewResetter(zap.NewNop())
	assert.Positive(t, resetter.ResetSquadronTags(unit, backupEl))

	starting := unit.SelectElements("Starting_Spawned_Units_Tech_0")
	require.Len(t, starting, 1)
	assert.Equal(t, "Stock_Squadron, 1", starting[0].Text())

	reserve := unit.SelectElements("Reserve_Spawned_Units_Tech_0")
	require.Len(t, reserve, 1)
	assert.Equal(t, "Stock_Reserve, 3", reserve[0].Text())

	assert.False(t, gamexml.HasField(unit, delayField))

	// A second reset finds nothing left to do.
	assert.Zero(t, resetter.ResetSquadronTags(unit, backupEl))
}

func TestResetHardpoints(t *testing.T) {
	resetter := NewResetter(zap.NewNop())

	current := parseElement(t, `<HardPointDataList>
		<HardPoint Name="HP_Acclamator_Turbolaser_00">
			<Fire_Min_Recharge_Seconds>3.2</Fire_Min_Recharge_Seconds>
			<Fire_Max_Recharge_Seconds>4.0</Fire_Max_Recharge_Seconds>
		</HardPoint>
		<HardPoint Name="HP_Unmatched"/>
	</HardPointDataList>`)

	backupDoc := etree.NewDocument()
	require.NoError(t, backupDoc.ReadFromString(`<HardPointDataList>
		<HardPoint Name="HP_Acclamator_Turbolaser_00">
			<Fire_Min_Recharge_Seconds>4.0</Fire_Min_Recharge_Seconds>
			<Fire_Max_Recharge_Seconds>5.0</Fire_Max_Recharge_Seconds>
		</HardPoint>
	</HardPointDataList>`))

	dir := t.TempDir()
	path := writeUnitFile(t, dir, "HardPoints_Coresaga_Frigates.xml", "")
	require.NoError(t, backupDoc.WriteToFile(path))
	backup, err := gamexml.Load(path)
	require.NoError(t, err)

	restored := resetter.ResetHardpoints(current.SelectElements("HardPoint"), backup)
	assert.Equal(t, 2, restored)

	hp := current.SelectElements("HardPoint")[0]
	v, _ := gamexml.Value(hp, fieldMinRecharge)
	assert.Equal(t, 4.0, v)
}
