package source

import (
	"context"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Registry column names.
const (
	ColMapBlkLot            = "mapblklot"
	ColBlkLot               = "blklot"
	ColActive               = "active"
	ColShape                = "shape"
	ColFromAddressNum       = "from_address_num"
	ColStreetName           = "street_name"
	ColStreetType           = "street_type"
	ColZoningCode           = "zoning_code"
	ColZoningDistrict       = "zoning_district"
	ColAnalysisNeighborhood = "analysis_neighborhood"
	ColPlanningDistrict     = "planning_district"
	ColSupervisorDistrict   = "supervisor_district"
	ColSupName              = "supname"
)

// RawParcel is one row of the active-and-retired parcel registry. A
// mapblklot may appear on several rows, one per legacy blklot.
type RawParcel struct {
	MapBlkLot string
	BlkLot    string
	Active    string
	Shape     string

	FromAddressNum string
	StreetName     string
	StreetType     string

	ZoningCode           string
	ZoningDistrict       string
	AnalysisNeighborhood string
	PlanningDistrict     string
	SupervisorDistrict   string
	SupName              string
}

// IsActive reports the registry's literal active flag.
func (r *RawParcel) IsActive() bool {
	return r.Active == "true"
}

// Overlay returns the registry's display attributes as a parcel with
// nullable fields, for backfilling rows that never went through the stages.
func (r *RawParcel) Overlay() parcel.Parcel {
	return parcel.Parcel{
		MapBlkLot:            r.MapBlkLot,
		FromAddressNum:       parcel.Str(r.FromAddressNum),
		StreetName:           parcel.Str(r.StreetName),
		StreetType:           parcel.Str(r.StreetType),
		ZoningCode:           parcel.Str(r.ZoningCode),
		ZoningDistrict:       parcel.Str(r.ZoningDistrict),
		AnalysisNeighborhood: parcel.Str(r.AnalysisNeighborhood),
		PlanningDistrict:     parcel.Str(r.PlanningDistrict),
		SupervisorDistrict:   parcel.Str(r.SupervisorDistrict),
		SupName:              parcel.Str(r.SupName),
	}
}

// LoadRegistry reads the parcel registry in file order.
func LoadRegistry(ctx context.Context, path string) ([]RawParcel, error) {
	var out []RawParcel
	err := ReadRecords(ctx, path, func(rec Record) error {
		out = append(out, RawParcel{
			MapBlkLot:            rec.Get(ColMapBlkLot),
			BlkLot:               rec.Get(ColBlkLot),
			Active:               rec.Get(ColActive),
			Shape:                rec.Get(ColShape),
			FromAddressNum:       rec.Get(ColFromAddressNum),
			StreetName:           rec.Get(ColStreetName),
			StreetType:           rec.Get(ColStreetType),
			ZoningCode:           rec.Get(ColZoningCode),
			ZoningDistrict:       rec.Get(ColZoningDistrict),
			AnalysisNeighborhood: rec.Get(ColAnalysisNeighborhood),
			PlanningDistrict:     rec.Get(ColPlanningDistrict),
			SupervisorDistrict:   rec.Get(ColSupervisorDistrict),
			SupName:              rec.Get(ColSupName),
		})
		return nil
	}, ColMapBlkLot, ColBlkLot, ColShape)
	if err != nil {
		return nil, err
	}
	return out, nil
}
