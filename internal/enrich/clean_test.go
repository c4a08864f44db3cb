package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
)

const square = "POLYGON ((-122.42 37.77, -122.419 37.77, -122.419 37.771, -122.42 37.771, -122.42 37.77))"

func ids(t parcel.Table) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.At(i).MapBlkLot
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	raw := []source.RawParcel{
		{MapBlkLot: "B", BlkLot: "B2", Active: "true", Shape: square, StreetName: "FIRST"},
		{MapBlkLot: "A", BlkLot: "A1", Active: "false", Shape: square},
		{MapBlkLot: "B", BlkLot: "B1", Active: "false", Shape: square, StreetName: "SECOND"},
		{MapBlkLot: "C", BlkLot: "C1", Active: "true"},
		{MapBlkLot: "B", BlkLot: "B3", Active: "false", Shape: square},
	}

	tbl, err := Deduplicate(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, ids(tbl))
	b := tbl.At(0)
	assert.Equal(t, []string{"B1", "B2", "B3"}, b.BlkLots)
	assert.Equal(t, "FIRST", *b.StreetName)
	assert.True(t, b.Active)
	assert.NotNil(t, b.Geom)

	c := tbl.At(2)
	assert.Nil(t, c.Geom)
	assert.Equal(t, []string{"C1"}, c.BlkLots)
}

func TestDeduplicate_BadShape(t *testing.T) {
	_, err := Deduplicate([]source.RawParcel{{MapBlkLot: "A", BlkLot: "A1", Shape: "POLYGON ((0 0,"}})
	assert.Error(t, err)
}

func TestFillAddresses(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "A"},
		{MapBlkLot: "B", FromAddressNum: parcel.Str("5"), StreetName: parcel.Str("OAK")},
		{MapBlkLot: "C"},
	})
	lu := source.LandUseIndex{
		"A": {MapBlkLot: "A", FromSt: "10", Street: "MAIN", StType: "ST"},
		"B": {MapBlkLot: "B", FromSt: "99", Street: "ELM", StType: "AVE"},
	}

	out := FillAddresses(tbl, lu)

	a := out.At(0)
	assert.Equal(t, "10", *a.FromAddressNum)
	assert.Equal(t, "MAIN", *a.StreetName)
	assert.Equal(t, "ST", *a.StreetType)

	b := out.At(1)
	assert.Equal(t, "5", *b.FromAddressNum)
	assert.Equal(t, "OAK", *b.StreetName)
	assert.Nil(t, b.StreetType)

	assert.Nil(t, out.At(2).FromAddressNum)
	assert.Nil(t, tbl.At(0).FromAddressNum, "input table unchanged")
}

func TestMergeModel(t *testing.T) {
	raw := []source.RawParcel{
		{MapBlkLot: "A", BlkLot: "A1"},
		{MapBlkLot: "A", BlkLot: "A2"},
		{MapBlkLot: "B", BlkLot: "B1"},
		{MapBlkLot: "C", BlkLot: "C1"},
	}
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "A", Active: false},
		{MapBlkLot: "B", Active: true},
		{MapBlkLot: "C", Active: false},
	})
	model := []source.ModelRow{
		{BlockLot: "A2", HeightFt: parcel.Float(40)},
		{BlockLot: "A1", HeightFt: parcel.Float(65)},
		{BlockLot: "Z9", HeightFt: parcel.Float(85)},
	}

	out := MergeModel(tbl, model, raw)

	assert.Equal(t, []string{"A", "B"}, ids(out))
	a := out.At(0)
	assert.True(t, a.HasModelData)
	assert.Equal(t, 40.0, *a.HeightFt, "first model row per parcel wins")

	b := out.At(1)
	assert.False(t, b.HasModelData)
	assert.Nil(t, b.HeightFt)
}

func TestRemovePublic(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{{MapBlkLot: "A"}, {MapBlkLot: "B"}, {MapBlkLot: "C"}})
	out := RemovePublic(tbl, NewPublicAccumulator([]string{"B", "Z"}))
	assert.Equal(t, []string{"A", "C"}, ids(out))
}

func TestPublicAccumulator(t *testing.T) {
	acc := NewPublicAccumulator([]string{"A", ""})
	assert.True(t, acc.Contains("A"))
	assert.False(t, acc.Contains(""))

	assert.False(t, acc.Add(parcel.Parcel{MapBlkLot: "A"}))
	assert.True(t, acc.Add(parcel.Parcel{MapBlkLot: "B"}))
	assert.False(t, acc.Add(parcel.Parcel{MapBlkLot: "B"}))
	assert.True(t, acc.Add(parcel.Parcel{MapBlkLot: "C"}))

	added := acc.Added()
	require.Len(t, added, 2)
	assert.Equal(t, "B", added[0].MapBlkLot)
	assert.Equal(t, "C", added[1].MapBlkLot)
	assert.True(t, acc.Contains("C"))
}
