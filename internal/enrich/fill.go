package enrich

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/crs"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// FillArea computes Shape_Area_SqFt from the projected geometry where it is
// missing, then derives Area_1000 where that is missing. The two gates are
// independent.
func FillArea(t parcel.Table, proj crs.Projection) (parcel.Table, error) {
	out := t.Clone()
	var err error
	out.Update(func(_ int, p *parcel.Parcel) {
		if err != nil {
			return
		}
		if p.ShapeAreaSqFt == nil && p.Geom != nil {
			area, aerr := spatial.Area(p.Geom, proj)
			if aerr != nil {
				err = eris.Wrapf(aerr, "enrich: area of %s", p.MapBlkLot)
				return
			}
			p.ShapeAreaSqFt = parcel.Float(area)
		}
		if p.Area1000 == nil && p.ShapeAreaSqFt != nil {
			p.Area1000 = parcel.Float(*p.ShapeAreaSqFt / 1000)
		}
	})
	if err != nil {
		return parcel.Table{}, err
	}
	return out, nil
}

// RemoveExcludedDistrict drops parcels in the federally administered
// enclave.
func RemoveExcludedDistrict(t parcel.Table) parcel.Table {
	return t.Filter(func(p *parcel.Parcel) bool {
		return parcel.Deref(p.PlanningDistrict) != ExcludedDistrict
	})
}

// FillDistricts sets the DIST_* flags of parcels that have none: all zero
// except the flag mapped from planning_district.
func FillDistricts(t parcel.Table) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.Districts != nil {
			return
		}
		var flags parcel.DistrictFlags
		if d, ok := PlanningDistricts[parcel.Deref(p.PlanningDistrict)]; ok {
			flags[d] = true
		}
		p.Districts = &flags
	})
	return out
}

// FillResDummy sets Res_Dummy from the survey's residential unit count where
// missing. A parcel absent from the survey has no units on record.
func FillResDummy(t parcel.Table, lu source.LandUseIndex) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.ResDummy != nil {
			return
		}
		var units float64
		if row, ok := lu[p.MapBlkLot]; ok {
			units, _ = parcel.ParseNumber(row.ResUnits)
		}
		p.ResDummy = parcel.Bool(units > 0)
	})
	return out
}

// FillBuildingSqFt sets Tot_Existing_SqFt from the survey's residential
// square footage where missing, and derives Bldg_SqFt_1000 from it when that
// is missing too.
func FillBuildingSqFt(t parcel.Table, lu source.LandUseIndex) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.TotExistingSqFt != nil {
			return
		}
		row, ok := lu[p.MapBlkLot]
		if !ok {
			return
		}
		p.TotExistingSqFt = parcel.Number(row.Res)
		if p.TotExistingSqFt != nil && p.BldgSqFt1000 == nil {
			p.BldgSqFt1000 = parcel.Float(*p.TotExistingSqFt / 1000)
		}
	})
	return out
}

// FillZoningCategories sets the zp_* flags of parcels that have none: all
// zero except the category of the primary planning code.
func FillZoningCategories(t parcel.Table) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.Zoning != nil {
			return
		}
		var flags parcel.ZoningFlags
		if p.PlanningCode != nil {
			if cat, ok := CategoryOf(*p.PlanningCode); ok {
				flags[cat] = true
			}
		}
		p.Zoning = &flags
	})
	return out
}

// FillEnvelope derives Env_1000_Area_Height = Area_1000 * Height_Ft / 10
// where it is missing and both inputs are known.
func FillEnvelope(t parcel.Table) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.Envelope != nil || p.Area1000 == nil || p.HeightFt == nil {
			return
		}
		p.Envelope = parcel.Float(Envelope(*p.Area1000, *p.HeightFt))
	})
	return out
}

// Envelope is the building-envelope capacity proxy.
func Envelope(area1000, heightFt float64) float64 {
	return area1000 * heightFt / 10
}

// FillHistoric copies the computed historic-district membership onto
// parcels whose Historic and historic columns are both missing. A parcel with
// either column sourced keeps both as they are.
func FillHistoric(t parcel.Table) parcel.Table {
	out := t.Clone()
	filled := 0
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.Historic != nil || p.HistoricAlt != nil {
			return
		}
		p.Historic = parcel.Bool(p.InHistoricDistrict)
		p.HistoricAlt = parcel.Bool(p.InHistoricDistrict)
		filled++
	})
	zap.L().Debug("enrich: historic filled", zap.Int("filled", filled))
	return out
}
