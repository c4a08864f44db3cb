package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

func TestIsOpenSpace(t *testing.T) {
	assert.True(t, IsOpenSpace(&parcel.Parcel{HeightFt: parcel.Float(1000)}))
	assert.True(t, IsOpenSpace(&parcel.Parcel{HeightFt: parcel.Float(1200)}))
	assert.False(t, IsOpenSpace(&parcel.Parcel{HeightFt: parcel.Float(999.9)}))
	assert.False(t, IsOpenSpace(&parcel.Parcel{}))
}

func TestIsNonHousing(t *testing.T) {
	tests := []struct {
		name string
		p    parcel.Parcel
		want bool
	}{
		{"industrial small lot", parcel.Parcel{PlanningCode: parcel.Str("M-1"), Area1000: parcel.Float(1)}, true},
		{"public", parcel.Parcel{PlanningCode: parcel.Str("P")}, true},
		{"pdr family", parcel.Parcel{PlanningCode: parcel.Str("PDR-1-G")}, true},
		{"primary code only", parcel.Parcel{PlanningCode: parcel.Str("RH-2;M-1")}, false},
		{"registry fallback", parcel.Parcel{ZoningCode: parcel.Str("PM-OS")}, true},
		{"planning code wins", parcel.Parcel{PlanningCode: parcel.Str("RH-2"), ZoningCode: parcel.Str("P")}, false},
		{"large single family", parcel.Parcel{PlanningCode: parcel.Str("RH-1(D)"), Area1000: parcel.Float(20.5)}, true},
		{"threshold single family", parcel.Parcel{PlanningCode: parcel.Str("RH-1(D)"), Area1000: parcel.Float(20)}, false},
		{"single family unknown area", parcel.Parcel{PlanningCode: parcel.Str("RH-1(D)")}, false},
		{"no zoning", parcel.Parcel{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNonHousing(&tt.p))
		})
	}
}

func TestIsIncompleteShipyard(t *testing.T) {
	hood := parcel.Str(ShipyardNeighborhood)
	assert.True(t, IsIncompleteShipyard(&parcel.Parcel{AnalysisNeighborhood: hood}))
	assert.False(t, IsIncompleteShipyard(&parcel.Parcel{AnalysisNeighborhood: hood, HeightFt: parcel.Float(40)}))
	assert.False(t, IsIncompleteShipyard(&parcel.Parcel{AnalysisNeighborhood: hood, ZoningCode: parcel.Str("HP-RA")}))
	assert.False(t, IsIncompleteShipyard(&parcel.Parcel{AnalysisNeighborhood: parcel.Str("Mission")}))
}

func TestRemovals_RecordPublic(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "park", HeightFt: parcel.Float(1000)},
		{MapBlkLot: "house", PlanningCode: parcel.Str("RH-2"), HeightFt: parcel.Float(40)},
		{MapBlkLot: "factory", PlanningCode: parcel.Str("M-2"), HeightFt: parcel.Float(65)},
		{MapBlkLot: "shipyard", AnalysisNeighborhood: parcel.Str(ShipyardNeighborhood)},
	})
	public := NewPublicAccumulator([]string{"factory"})

	out := RemoveOpenSpace(tbl, public)
	out = RemoveNonHousing(out, public)
	out = RemoveShipyard(out)

	assert.Equal(t, []string{"house"}, ids(out))

	added := public.Added()
	require.Len(t, added, 1, "factory was already public")
	assert.Equal(t, "park", added[0].MapBlkLot)
	assert.False(t, public.Contains("shipyard"))
}

func TestSDBEligible(t *testing.T) {
	tests := []struct {
		name   string
		zoning string
		env    float64
		height float64
		want   bool
	}{
		{"nct", "NCT-3", 40, 40, true},
		{"lower case", "nct-3", 40, 40, true},
		{"rto substring", "RTO-M", 10, 130, true},
		{"wmug", "WMUG", 9.5, 55, true},
		{"envelope at threshold", "NCT-3", 9, 40, false},
		{"too tall", "NCT-3", 40, 130.5, false},
		{"other family", "RH-2", 40, 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SDBEligible(tt.zoning, tt.env, tt.height))
		})
	}
}

func TestFillSDB(t *testing.T) {
	tbl := parcel.NewTable([]parcel.Parcel{
		{MapBlkLot: "eligible", PlanningCode: parcel.Str("NCT-3"), Envelope: parcel.Float(40), HeightFt: parcel.Float(40)},
		{MapBlkLot: "ineligible", PlanningCode: parcel.Str("RH-2"), Envelope: parcel.Float(40), HeightFt: parcel.Float(40)},
		{MapBlkLot: "unknown", PlanningCode: parcel.Str("NCT-3")},
		{MapBlkLot: "sourced", PlanningCode: parcel.Str("NCT-3"), Envelope: parcel.Float(40), HeightFt: parcel.Float(40),
			SDB: parcel.Bool(false)},
		{MapBlkLot: "sourced-env", PlanningCode: parcel.Str("NCT-3"), Envelope: parcel.Float(40), HeightFt: parcel.Float(40),
			SDBEnvFull: parcel.Float(12), ZoningDREnvFull: parcel.Float(3)},
	})

	out := FillSDB(tbl)

	e := out.At(0)
	assert.True(t, *e.SDB)
	assert.Equal(t, 40.0, *e.SDBEnvFull)
	assert.Equal(t, 0.0, *e.ZoningDREnvFull)

	i := out.At(1)
	assert.False(t, *i.SDB)
	assert.Equal(t, 0.0, *i.SDBEnvFull)

	u := out.At(2)
	assert.False(t, *u.SDB)
	assert.Equal(t, 0.0, *u.SDBEnvFull)

	s := out.At(3)
	assert.False(t, *s.SDB)
	assert.Equal(t, 0.0, *s.SDBEnvFull)

	se := out.At(4)
	assert.True(t, *se.SDB)
	assert.Equal(t, 12.0, *se.SDBEnvFull)
	assert.Equal(t, 3.0, *se.ZoningDREnvFull)
}
