package source

import (
	"context"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Model table column names shared with the output writer.
const (
	ColBlockLot        = "BlockLot"
	ColPlanningCode    = "FZP Planning Code"
	ColHeightFt        = "Height_Ft"
	ColArea1000        = "Area_1000"
	ColShapeAreaSqFt   = "Shape_Area_SqFt"
	ColTotExistingSqFt = "Tot_Existing_SqFt"
	ColBldgSqFt1000    = "Bldg_SqFt_1000"
	ColEnvelope        = "Env_1000_Area_Height"
	ColResDummy        = "Res_Dummy"
	ColHistoric        = "Historic"
	ColHistoricAlt     = "historic"
	ColSDB             = "SDB_2016_5Plus"
	ColSDBEnvFull      = "SDB_2016_5Plus_EnvFull"
	ColZoningDREnvFull = "Zoning_DR_EnvFull"
	ColUnitsLow        = "fzp_expected_units_low"
	ColUnitsHigh       = "fzp_expected_units_high"
	ColTransit         = "distance_to_transit"
)

// ModelRow is one row of a prior model run, keyed by legacy blklot.
type ModelRow struct {
	BlockLot string

	PlanningCode    *string
	HeightFt        *float64
	Area1000        *float64
	ShapeAreaSqFt   *float64
	TotExistingSqFt *float64
	BldgSqFt1000    *float64
	Envelope        *float64
	ResDummy        *bool
	Historic        *bool
	HistoricAlt     *bool
	SDB             *bool
	SDBEnvFull      *float64
	ZoningDREnvFull *float64
	Zoning          *parcel.ZoningFlags
	Districts       *parcel.DistrictFlags
	UnitsLow        *float64
	UnitsHigh       *float64
}

// LoadModel reads a prior model run. Columns the file lacks are missing on
// every row.
func LoadModel(ctx context.Context, path string) ([]ModelRow, error) {
	var out []ModelRow
	err := ReadRecords(ctx, path, func(rec Record) error {
		out = append(out, ParseModelRow(rec))
		return nil
	}, ColBlockLot)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseModelRow decodes one model-table record.
func ParseModelRow(rec Record) ModelRow {
	return ModelRow{
		BlockLot:        rec.Get(ColBlockLot),
		PlanningCode:    parcel.Str(rec.Get(ColPlanningCode)),
		HeightFt:        parcel.Number(rec.Get(ColHeightFt)),
		Area1000:        parcel.Number(rec.Get(ColArea1000)),
		ShapeAreaSqFt:   parcel.Number(rec.Get(ColShapeAreaSqFt)),
		TotExistingSqFt: parcel.Number(rec.Get(ColTotExistingSqFt)),
		BldgSqFt1000:    parcel.Number(rec.Get(ColBldgSqFt1000)),
		Envelope:        parcel.Number(rec.Get(ColEnvelope)),
		ResDummy:        parcel.Flag(rec.Get(ColResDummy)),
		Historic:        parcel.Flag(rec.Get(ColHistoric)),
		HistoricAlt:     parcel.Flag(rec.Get(ColHistoricAlt)),
		SDB:             parcel.Flag(rec.Get(ColSDB)),
		SDBEnvFull:      parcel.Number(rec.Get(ColSDBEnvFull)),
		ZoningDREnvFull: parcel.Number(rec.Get(ColZoningDREnvFull)),
		Zoning:          zoningFlags(rec),
		Districts:       districtFlags(rec),
		UnitsLow:        parcel.Number(rec.Get(ColUnitsLow)),
		UnitsHigh:       parcel.Number(rec.Get(ColUnitsHigh)),
	}
}

// zoningFlags is nil when every zp_* column is empty.
func zoningFlags(rec Record) *parcel.ZoningFlags {
	var flags parcel.ZoningFlags
	present := false
	for i, col := range parcel.ZoningColumns {
		if f := parcel.Flag(rec.Get(col)); f != nil {
			present = true
			flags[i] = *f
		}
	}
	if !present {
		return nil
	}
	return &flags
}

// districtFlags is nil when every DIST_* column is empty.
func districtFlags(rec Record) *parcel.DistrictFlags {
	var flags parcel.DistrictFlags
	present := false
	for i, col := range parcel.DistrictColumns {
		if f := parcel.Flag(rec.Get(col)); f != nil {
			present = true
			flags[i] = *f
		}
	}
	if !present {
		return nil
	}
	return &flags
}
