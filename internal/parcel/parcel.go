// Package parcel defines the parcel record and the table threaded through the
// enrichment stages.
//
// Every nullable attribute is a pointer: nil means "missing" (the source was
// null or an empty string). Stages fill a field only when it is nil, so a
// sourced value is never overwritten. Pointees are never mutated after
// assignment, which lets Table.Clone share them between snapshots.
package parcel

import (
	"github.com/twpayne/go-geom"
)

// ZoningCategory indexes the eight zp_* one-hot zoning-family flags.
type ZoningCategory int

// Zoning categories in model-table column order.
const (
	ZPOfficeComm ZoningCategory = iota
	ZPDRMultiRTO
	ZPFBDMultiRTO
	ZPPDRInd
	ZPPublic
	ZPRedev
	ZPRH2
	ZPRH3RM1
	NumZoningCategories
)

// ZoningColumns are the zp_* column names, indexed by ZoningCategory.
var ZoningColumns = [NumZoningCategories]string{
	"zp_OfficeComm",
	"zp_DRMulti_RTO",
	"zp_FBDMulti_RTO",
	"zp_PDRInd",
	"zp_Public",
	"zp_Redev",
	"zp_RH2",
	"zp_RH3_RM1",
}

// District indexes the fourteen DIST_* planning-district flags.
type District int

// Planning districts in model-table column order.
const (
	DistSBayshore District = iota
	DistBernalHts
	DistSCentral
	DistCentral
	DistBuenaVista
	DistNortheast
	DistWestAddition
	DistSOMA
	DistInnerSunset
	DistRichmond
	DistIngleside
	DistOuterSunset
	DistMarina
	DistMission
	NumDistricts
)

// DistrictColumns are the DIST_* column names, indexed by District.
var DistrictColumns = [NumDistricts]string{
	"DIST_SBayshore",
	"DIST_BernalHts",
	"DIST_Scentral",
	"DIST_Central",
	"DIST_BuenaVista",
	"DIST_Northeast",
	"DIST_WestAddition",
	"DIST_SOMA",
	"DIST_InnerSunset",
	"DIST_Richmond",
	"DIST_Ingleside",
	"DIST_OuterSunset",
	"DIST_Marina",
	"DIST_Mission",
}

// ZoningFlags holds one bool per zoning category. At most one is set.
type ZoningFlags [NumZoningCategories]bool

// DistrictFlags holds one bool per planning district.
type DistrictFlags [NumDistricts]bool

// Parcel is one row of the parcel table, keyed by MapBlkLot.
type Parcel struct {
	MapBlkLot string
	// BlkLots are the sorted legacy lot ids merged into this parcel.
	BlkLots []string
	Active  bool

	// Shape is the source WKT; Geom is its parsed form (nil when Shape is empty).
	Shape string
	Geom  geom.T

	FromAddressNum *string
	StreetName     *string
	StreetType     *string

	ZoningCode           *string
	PlanningCode         *string // "FZP Planning Code" from the prior model run
	ZoningDistrict       *string
	AnalysisNeighborhood *string
	PlanningDistrict     *string
	SupervisorDistrict   *string
	SupName              *string

	HeightFt        *float64
	Area1000        *float64
	ShapeAreaSqFt   *float64
	TotExistingSqFt *float64
	BldgSqFt1000    *float64
	Envelope        *float64 // Env_1000_Area_Height

	ResDummy *bool
	// Historic and HistoricAlt are the source's "Historic" and "historic" columns.
	Historic    *bool
	HistoricAlt *bool

	SDB             *bool    // SDB_2016_5Plus
	SDBEnvFull      *float64 // SDB_2016_5Plus_EnvFull
	ZoningDREnvFull *float64 // Zoning_DR_EnvFull

	Zoning    *ZoningFlags
	Districts *DistrictFlags

	HasModelData       bool
	InHistoricDistrict bool

	ExpectedUnitsLow  *float64
	ExpectedUnitsHigh *float64
	DistanceToTransit *float64
}

// EffectiveZoning returns the primary zoning code used by eligibility rules:
// the planning code when present, otherwise the registry zoning code.
func (p *Parcel) EffectiveZoning() (string, bool) {
	if p.PlanningCode != nil {
		if code := PrimaryCode(*p.PlanningCode); code != "" {
			return code, true
		}
	}
	if p.ZoningCode != nil {
		if code := PrimaryCode(*p.ZoningCode); code != "" {
			return code, true
		}
	}
	return "", false
}

// Neighborhood returns the analysis neighborhood or "".
func (p *Parcel) Neighborhood() string {
	return Deref(p.AnalysisNeighborhood)
}
