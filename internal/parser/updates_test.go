package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinekit/s57/internal/diag"
	"github.com/marinekit/s57/internal/iso8211/iso8211test"
)

func countCode(col *diag.Collector, code string) int {
	n := 0
	for _, ev := range col.Events() {
		if ev.Code == code {
			n++
		}
	}
	return n
}

func TestUpdateInsertNewFeature(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	wreck := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(9, 1, 1, 159, 1, 1)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 5001, 1)},
		iso8211test.Field{Tag: "FSPT", Data: fsptField([5]int{110, 1, 255, 255, 255})},
	)
	err := ApplyUpdate(work, updateCell("1", wreck), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, work.NumFeatureRecords())
	assert.Equal(t, 2, cell.NumFeatureRecords(), "base cell must stay untouched")
	assert.Equal(t, "1", work.UpdateNumber())
	assert.Equal(t, "20260201", work.UpdateDate())
}

func TestUpdateInsertExistingKeepsOriginal(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	// Same FOID as the base DEPARE, different attributes.
	dup := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 2, 1)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{87, "5"})},
	)
	err := ApplyUpdate(work, updateCell("1", dup), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	foid := FOID{AGEN: 550, FIDN: 1001, FIDS: 1}
	assert.Equal(t, 2, work.NumFeatureRecords())
	assert.Equal(t, "0", work.featuresByFOID[foid].Attributes["DRVAL1"],
		"existing feature wins on duplicate insert")
	assert.Equal(t, 1, countCode(col, diag.CodeUpdateDuplicateFOID))
}

func TestUpdateDeleteFeature(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	del := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 2, 2)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1002, 1)},
	)
	err := ApplyUpdate(work, updateCell("1", del), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, work.NumFeatureRecords())
	_, exists := work.featuresByFOID[FOID{AGEN: 550, FIDN: 1002, FIDS: 1}]
	assert.False(t, exists)
}

func TestUpdateDeleteAbsentWarns(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	del := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 2, 2)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 9999, 1)},
	)
	err := ApplyUpdate(work, updateCell("1", del), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, work.NumFeatureRecords())
	assert.Equal(t, 1, countCode(col, diag.CodeUpdateTargetMissing))
}

func TestUpdateModifyMergesAttributes(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	mod := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 2, 3)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{87, "2"})}, // DRVAL1 only
	)
	err := ApplyUpdate(work, updateCell("1", mod), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	foid := FOID{AGEN: 550, FIDN: 1001, FIDS: 1}
	got := work.featuresByFOID[foid]
	assert.Equal(t, "2", got.Attributes["DRVAL1"], "supplied attribute overwrites")
	assert.Equal(t, "10", got.Attributes["DRVAL2"], "absent attribute survives")
	assert.Equal(t, 2, got.RecordVersion)
	assert.Len(t, got.SpatialRefs, 1, "pointers survive when update has no FSPT")
}

func TestUpdateModifyAbsentWarns(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	mod := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 2, 3)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 8888, 1)},
	)
	err := ApplyUpdate(work, updateCell("1", mod), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, countCode(col, diag.CodeUpdateTargetMissing))
}

func TestUpdateGapHaltsLenient(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	// Buffer claims UPDN=3 where 2 is expected.
	del := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 2, 2)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1002, 1)},
	)
	err := ApplyUpdate(work, updateCell("3", del), 2, NewCatalog(Edition31), col, Options{})
	require.ErrorIs(t, err, ErrUpdateGap)

	// Nothing from the gapped buffer applied.
	assert.Equal(t, 2, work.NumFeatureRecords())
	assert.Equal(t, 1, countCode(col, diag.CodeUpdateGap))
}

func TestUpdateGapStrictEscalates(t *testing.T) {
	col := diag.NewCollector(true)
	cell, err := DecodeCell(baseCell(), NewCatalog(Edition31), col, Options{Strict: true})
	require.NoError(t, err)
	work := cell.Clone()

	err = ApplyUpdate(work, updateCell("3"), 2, NewCatalog(Edition31), col, Options{Strict: true})
	var strict *diag.StrictError
	require.ErrorAs(t, err, &strict)
	assert.NotEmpty(t, strict.Events)
}

func TestUpdateRVERMismatchLenientApplies(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	// Base DEPARE has RVER=1; a modify declaring RVER=5 skipped
	// versions 2..4.
	mod := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 5, 3)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{87, "7"})},
	)
	err := ApplyUpdate(work, updateCell("1", mod), 1, NewCatalog(Edition31), col, Options{RVERPolicy: RVERLenient})
	require.NoError(t, err)

	foid := FOID{AGEN: 550, FIDN: 1001, FIDS: 1}
	assert.Equal(t, "7", work.featuresByFOID[foid].Attributes["DRVAL1"])
	assert.Equal(t, 1, countCode(col, diag.CodeRVERMismatch))
}

func TestUpdateRVERMismatchStrictSkips(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	mod := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 5, 3)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{87, "7"})},
	)
	err := ApplyUpdate(work, updateCell("1", mod), 1, NewCatalog(Edition31), col, Options{RVERPolicy: RVERStrict})
	require.NoError(t, err)

	foid := FOID{AGEN: 550, FIDN: 1001, FIDS: 1}
	assert.Equal(t, "0", work.featuresByFOID[foid].Attributes["DRVAL1"],
		"instruction skipped under strict RVER policy")
	assert.Equal(t, 1, countCode(col, diag.CodeRVERMismatch))
}

func TestUpdateInvalidRUINSkipsInstruction(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	bad := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 2, 7)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{87, "9"})},
	)
	good := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 2, 3)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1002, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{75, "6"})},
	)
	err := ApplyUpdate(work, updateCell("1", bad, good), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	depare := work.featuresByFOID[FOID{AGEN: 550, FIDN: 1001, FIDS: 1}]
	lights := work.featuresByFOID[FOID{AGEN: 550, FIDN: 1002, FIDS: 1}]
	assert.Equal(t, "0", depare.Attributes["DRVAL1"], "instruction with bad RUIN skipped")
	assert.Equal(t, "6", lights.Attributes["COLOUR"], "later instructions still apply")
	assert.Equal(t, 1, countCode(col, diag.CodeInvalidRUIN))
}

func TestUpdateSpatialModifyMovesGeometry(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	// Move the isolated node the LIGHTS feature sits on.
	move := iso8211test.Record(
		iso8211test.Field{Tag: "VRID", Data: vridField(110, 1, 2, 3)},
		iso8211test.Field{Tag: "SG2D", Data: sg2dField([2]int32{scaled(-70.6), scaled(42.4)})},
	)
	err := ApplyUpdate(work, updateCell("1", move), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	features := work.BuildFeatures(NewCatalog(Edition31), col, Options{})
	var light *Feature
	for i := range features {
		if features[i].ObjectClass == "LIGHTS" {
			light = &features[i]
		}
	}
	require.NotNil(t, light)
	require.Len(t, light.Geometry.Coordinates, 1)
	assert.InDelta(t, -70.6, light.Geometry.Coordinates[0][0], 1e-9)
	assert.InDelta(t, 42.4, light.Geometry.Coordinates[0][1], 1e-9)
}

func TestUpdateSpatialDeleteLeavesDanglingPointer(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	del := iso8211test.Record(
		iso8211test.Field{Tag: "VRID", Data: vridField(110, 1, 2, 2)},
	)
	err := ApplyUpdate(work, updateCell("1", del), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	features := work.BuildFeatures(NewCatalog(Edition31), col, Options{})
	require.Len(t, features, 2)
	assert.GreaterOrEqual(t, countCode(col, diag.CodeDanglingPointer), 1)
}

func TestUpdateWithoutDSIDWarnsButApplies(t *testing.T) {
	cell, col := decodeBase(t, baseCell(), Options{})
	work := cell.Clone()

	del := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 2, 2)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1002, 1)},
	)
	err := ApplyUpdate(work, iso8211test.File(del), 1, NewCatalog(Edition31), col, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, work.NumFeatureRecords())
	assert.GreaterOrEqual(t, countCode(col, diag.CodeEmptyRequiredField), 1)
}
