// Package output writes the enriched parcel table: the geometry file, the
// overlay and model tables, the optional workbook, and the public parcels
// artifact.
package output

import (
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
)

// OverlayColumns is the overlay table schema.
var OverlayColumns = []string{
	source.ColMapBlkLot,
	source.ColFromAddressNum,
	source.ColStreetName,
	source.ColStreetType,
	source.ColAnalysisNeighborhood,
	source.ColZoningCode,
	source.ColZoningDistrict,
	source.ColSupervisorDistrict,
	source.ColSupName,
	source.ColHeightFt,
	source.ColTransit,
}

// ModelColumns is the model table schema. The identifier is renamed
// BlockLot.
var ModelColumns = modelColumns()

func modelColumns() []string {
	cols := []string{
		source.ColBlockLot,
		source.ColHeightFt,
		source.ColArea1000,
		source.ColEnvelope,
		source.ColBldgSqFt1000,
		source.ColResDummy,
		source.ColHistoric,
		source.ColSDB,
	}
	cols = append(cols, parcel.ZoningColumns[:]...)
	cols = append(cols, parcel.DistrictColumns[:]...)
	return append(cols,
		source.ColSDBEnvFull,
		source.ColZoningDREnvFull,
		source.ColUnitsLow,
		source.ColUnitsHigh,
	)
}

// OverlayRecord renders p in OverlayColumns order.
func OverlayRecord(p *parcel.Parcel) []string {
	return []string{
		p.MapBlkLot,
		parcel.Deref(p.FromAddressNum),
		parcel.Deref(p.StreetName),
		parcel.Deref(p.StreetType),
		parcel.Deref(p.AnalysisNeighborhood),
		parcel.Deref(p.ZoningCode),
		parcel.Deref(p.ZoningDistrict),
		parcel.Deref(p.SupervisorDistrict),
		parcel.Deref(p.SupName),
		parcel.FormatFloat(p.HeightFt),
		parcel.FormatFloat(p.DistanceToTransit),
	}
}

// ModelRecord renders p in ModelColumns order.
func ModelRecord(p *parcel.Parcel) []string {
	rec := make([]string, 0, len(ModelColumns))
	rec = append(rec,
		p.MapBlkLot,
		parcel.FormatFloat(p.HeightFt),
		parcel.FormatFloat(p.Area1000),
		parcel.FormatFloat(p.Envelope),
		parcel.FormatFloat(p.BldgSqFt1000),
		parcel.FormatFlag(p.ResDummy),
		parcel.FormatFlag(p.Historic),
		parcel.FormatFlag(p.SDB),
	)
	if p.Zoning != nil {
		rec = appendFlags(rec, p.Zoning[:])
	} else {
		rec = appendBlank(rec, int(parcel.NumZoningCategories))
	}
	if p.Districts != nil {
		rec = appendFlags(rec, p.Districts[:])
	} else {
		rec = appendBlank(rec, int(parcel.NumDistricts))
	}
	return append(rec,
		parcel.FormatFloat(p.SDBEnvFull),
		parcel.FormatFloat(p.ZoningDREnvFull),
		parcel.FormatFloat(p.ExpectedUnitsLow),
		parcel.FormatFloat(p.ExpectedUnitsHigh),
	)
}

func appendFlags(rec []string, flags []bool) []string {
	for _, set := range flags {
		rec = append(rec, parcel.FormatFlag(&set))
	}
	return rec
}

func appendBlank(rec []string, n int) []string {
	for range n {
		rec = append(rec, "")
	}
	return rec
}
