package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfhousing/parcel-enrich/internal/crs"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

func withGeom(t *testing.T, p parcel.Parcel, wkt string) parcel.Parcel {
	t.Helper()
	g, err := spatial.ParseWKT(wkt)
	require.NoError(t, err)
	p.Shape = wkt
	p.Geom = g
	return p
}

func TestFillArea(t *testing.T) {
	proj, err := crs.ByEPSG(crs.CAStatePlaneIII)
	require.NoError(t, err)

	tbl := parcel.NewTable([]parcel.Parcel{
		withGeom(t, parcel.Parcel{MapBlkLot: "computed"}, square),
		withGeom(t, parcel.Parcel{MapBlkLot: "sourced", ShapeAreaSqFt: parcel.Float(2500)}, square),
		withGeom(t, parcel.Parcel{MapBlkLot: "both", ShapeAreaSqFt: parcel.Float(2500), Area1000: parcel.Float(9)}, square),
		withGeom(t, parcel.Parcel{MapBlkLot: "area-only", Area1000: parcel.Float(3)}, square),
		{MapBlkLot: "no-geom"},
	})

	out, err := FillArea(tbl, proj)
	require.NoError(t, err)

	computed := out.At(0)
	assert.InDelta(t, 105245.13, *computed.ShapeAreaSqFt, 1.0)
	assert.InDelta(t, 105.245, *computed.Area1000, 0.001)

	assert.Equal(t, 2500.0, *out.At(1).ShapeAreaSqFt)
	assert.Equal(t, 2.5, *out.At(1).Area1000)

	assert.Equal(t, 9.0, *out.At(2).Area1000)

	areaOnly := out.At(3)
	assert.InDelta(t, 105245.13, *areaOnly.ShapeAreaSqFt, 1.0)
	assert.Equal(t, 3.0, *areaOnly.Area1000)

	assert.Nil(t, out.At(4).ShapeAreaSqFt)
	assert.Nil(t, out.At(4).Area1000)
}

func TestDistricts(t *testing.T) {
	sourced := parcel.DistrictFlags{}
	sourced[parcel.DistMarina] = true

	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "mission", PlanningDistrict: parcel.Str("Mission")},
		{MapBlkLot: "presidio", PlanningDistrict: parcel.Str("Presidio")},
		{MapBlkLot: "unmapped", PlanningDistrict: parcel.Str("Twin Peaks")},
		{MapBlkLot: "sourced", PlanningDistrict: parcel.Str("Mission"), Districts: &sourced},
		{MapBlkLot: "none"},
	})

	out := FillDistricts(RemoveExcludedDistrict(tbl))
	require.Equal(t, []string{"mission", "unmapped", "sourced", "none"}, ids(out))

	m := out.At(0).Districts
	require.NotNil(t, m)
	for d := parcel.District(0); d < parcel.NumDistricts; d++ {
		assert.Equal(t, d == parcel.DistMission, m[d], parcel.DistrictColumns[d])
	}

	assert.Equal(t, parcel.DistrictFlags{}, *out.At(1).Districts)
	assert.True(t, out.At(2).Districts[parcel.DistMarina])
	assert.False(t, out.At(2).Districts[parcel.DistMission])
	assert.Equal(t, parcel.DistrictFlags{}, *out.At(3).Districts)
}

func TestFillResDummy(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "A"},
		{MapBlkLot: "B"},
		{MapBlkLot: "C"},
		{MapBlkLot: "D", ResDummy: parcel.Bool(true)},
	})
	lu := source.LandUseIndex{
		"A": {ResUnits: "1,024"},
		"B": {ResUnits: "0"},
		"D": {ResUnits: "0"},
	}

	out := FillResDummy(tbl, lu)
	assert.True(t, *out.At(0).ResDummy)
	assert.False(t, *out.At(1).ResDummy)
	assert.False(t, *out.At(2).ResDummy, "no survey row means no units")
	assert.True(t, *out.At(3).ResDummy)
}

func TestFillBuildingSqFt(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "A"},
		{MapBlkLot: "B"},
		{MapBlkLot: "C", TotExistingSqFt: parcel.Float(900)},
		{MapBlkLot: "D", BldgSqFt1000: parcel.Float(7)},
	})
	lu := source.LandUseIndex{
		"A": {Res: "2,500"},
		"C": {Res: "100"},
		"D": {Res: "3000"},
	}

	out := FillBuildingSqFt(tbl, lu)
	assert.Equal(t, 2500.0, *out.At(0).TotExistingSqFt)
	assert.Equal(t, 2.5, *out.At(0).BldgSqFt1000)

	assert.Nil(t, out.At(1).TotExistingSqFt)
	assert.Nil(t, out.At(1).BldgSqFt1000)

	assert.Equal(t, 900.0, *out.At(2).TotExistingSqFt)
	assert.Nil(t, out.At(2).BldgSqFt1000)

	assert.Equal(t, 3000.0, *out.At(3).TotExistingSqFt)
	assert.Equal(t, 7.0, *out.At(3).BldgSqFt1000)
}

func TestFillZoningCategories(t *testing.T) {
	var sourced parcel.ZoningFlags
	sourced[parcel.ZPRH2] = true

	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "fbd", PlanningCode: parcel.Str("NCT-3; RH-2")},
		{MapBlkLot: "office", PlanningCode: parcel.Str("C-3-O(SD)")},
		{MapBlkLot: "unknown", PlanningCode: parcel.Str("RH-1(D)")},
		{MapBlkLot: "missing"},
		{MapBlkLot: "sourced", PlanningCode: parcel.Str("M-1"), Zoning: &sourced},
	})

	out := FillZoningCategories(tbl)

	expect := func(i int, cat parcel.ZoningCategory) {
		flags := out.At(i).Zoning
		require.NotNil(t, flags)
		set := 0
		for c := parcel.ZoningCategory(0); c < parcel.NumZoningCategories; c++ {
			if flags[c] {
				set++
				assert.Equal(t, cat, c)
			}
		}
		if cat >= 0 {
			assert.Equal(t, 1, set)
		} else {
			assert.Equal(t, 0, set)
		}
	}
	expect(0, parcel.ZPFBDMultiRTO)
	expect(1, parcel.ZPOfficeComm)
	expect(2, -1)
	expect(3, -1)
	expect(4, parcel.ZPRH2)
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		code string
		want parcel.ZoningCategory
		ok   bool
	}{
		{"RH-2", parcel.ZPRH2, true},
		{"RM-1", parcel.ZPRH3RM1, true},
		{"NCD-INNER SUNSET", parcel.ZPDRMultiRTO, true},
		{"NCD-BROADWAY", parcel.ZPDRMultiRTO, true},
		{"NCD-24TH-MISSION", parcel.ZPDRMultiRTO, true},
		{"NCD-BAYVIEW", parcel.ZPDRMultiRTO, true},
		{"NCD", parcel.ZPDRMultiRTO, true},
		{"INNER SUNSET", 0, false},
		{"BROADWAY", 0, false},
		{"WMUG", parcel.ZPFBDMultiRTO, true},
		{"PDR-1-G", parcel.ZPPDRInd, true},
		{"MB-OS", parcel.ZPPublic, true},
		{"MISS BAY S PLN", parcel.ZPRedev, true},
		{" RH-3 ;NC-1", parcel.ZPRH3RM1, true},
		{"RH-1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := CategoryOf(tt.code)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFillEnvelope(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "derived", Area1000: parcel.Float(10), HeightFt: parcel.Float(40)},
		{MapBlkLot: "sourced", Area1000: parcel.Float(10), HeightFt: parcel.Float(40), Envelope: parcel.Float(12)},
		{MapBlkLot: "no-height", Area1000: parcel.Float(10)},
	})

	out := FillEnvelope(tbl)
	assert.InDelta(t, 40.0, *out.At(0).Envelope, 1e-9)
	assert.Equal(t, 12.0, *out.At(1).Envelope)
	assert.Nil(t, out.At(2).Envelope)
}

func TestFillHistoric(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "both-missing-in", InHistoricDistrict: true},
		{MapBlkLot: "both-missing-out"},
		{MapBlkLot: "upper-set", Historic: parcel.Bool(false), InHistoricDistrict: true},
		{MapBlkLot: "lower-set", HistoricAlt: parcel.Bool(true)},
	})

	out := FillHistoric(tbl)

	assert.True(t, *out.At(0).Historic)
	assert.True(t, *out.At(0).HistoricAlt)
	assert.False(t, *out.At(1).Historic)
	assert.False(t, *out.At(1).HistoricAlt)

	// One column sourced: the computed membership is discarded and the
	// other column stays missing.
	assert.False(t, *out.At(2).Historic)
	assert.Nil(t, out.At(2).HistoricAlt)
	assert.Nil(t, out.At(3).Historic)
	assert.True(t, *out.At(3).HistoricAlt)
}

func TestFillsNeverOverwrite(t *testing.T) {
	var zp parcel.ZoningFlags
	var dist parcel.DistrictFlags
	full := parcel.Parcel{
		MapBlkLot:       "full",
		FromAddressNum:  parcel.Str("1"),
		StreetName:      parcel.Str("A"),
		StreetType:      parcel.Str("ST"),
		PlanningCode:    parcel.Str("RH-2"),
		HeightFt:        parcel.Float(40),
		Area1000:        parcel.Float(1),
		ShapeAreaSqFt:   parcel.Float(1000),
		TotExistingSqFt: parcel.Float(500),
		BldgSqFt1000:    parcel.Float(0.5),
		Envelope:        parcel.Float(4),
		ResDummy:        parcel.Bool(false),
		Historic:        parcel.Bool(false),
		HistoricAlt:     parcel.Bool(false),
		SDB:             parcel.Bool(false),
		SDBEnvFull:      parcel.Float(0),
		ZoningDREnvFull: parcel.Float(0),
		Zoning:          &zp,
		Districts:       &dist,
	}
	lu := source.LandUseIndex{"full": {FromSt: "9", Street: "Z", StType: "AVE", ResUnits: "10", Res: "9000"}}
	proj, err := crs.ByEPSG(crs.CAStatePlaneIII)
	require.NoError(t, err)

	tbl := parcel.NewTable([]parcel.Parcel{withGeom(t, full, square)})
	out := FillAddresses(tbl, lu)
	out, err = FillArea(out, proj)
	require.NoError(t, err)
	out = FillDistricts(out)
	out = FillResDummy(out, lu)
	out = FillBuildingSqFt(out, lu)
	out = FillZoningCategories(out)
	out = FillEnvelope(out)
	out = FillSDB(out)
	out = FillHistoric(out)

	got := out.At(0)
	want := tbl.At(0)
	assert.Equal(t, want, got)
}
