// Package enrich implements the fill, derive and removal stages applied to
// the parcel table. Every stage takes a table and returns a new one; fills
// only touch fields that are missing.
package enrich

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// Deduplicate builds the parcel table from registry rows: one row per
// mapblklot, the first in file order, carrying the sorted blklots of every
// row in its group. The representative row's shape is parsed here; a shape
// that does not parse aborts the run.
func Deduplicate(raw []source.RawParcel) (parcel.Table, error) {
	order := make([]string, 0, len(raw))
	first := make(map[string]int, len(raw))
	lots := make(map[string][]string, len(raw))

	for i := range raw {
		key := raw[i].MapBlkLot
		if _, seen := first[key]; !seen {
			first[key] = i
			order = append(order, key)
		}
		lots[key] = append(lots[key], raw[i].BlkLot)
	}

	rows := make([]parcel.Parcel, 0, len(order))
	for _, key := range order {
		r := &raw[first[key]]
		g, err := spatial.ParseWKT(r.Shape)
		if err != nil {
			return parcel.Table{}, eris.Wrapf(err, "enrich: parcel %s shape", key)
		}

		blklots := lots[key]
		sort.Strings(blklots)

		p := r.Overlay()
		p.BlkLots = blklots
		p.Active = r.IsActive()
		p.Shape = r.Shape
		p.Geom = g
		rows = append(rows, p)
	}
	return parcel.NewTable(rows), nil
}

// FillAddresses copies the land-use survey address onto parcels whose
// from_address_num is missing. All three address parts are taken from the
// survey row together.
func FillAddresses(t parcel.Table, lu source.LandUseIndex) parcel.Table {
	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		if p.FromAddressNum != nil {
			return
		}
		row, ok := lu[p.MapBlkLot]
		if !ok {
			return
		}
		p.FromAddressNum = parcel.Str(row.FromSt)
		p.StreetName = parcel.Str(row.Street)
		p.StreetType = parcel.Str(row.StType)
	})
	return out
}

// MergeModel attaches prior model-run data. Model rows are keyed by legacy
// blklot and mapped to mapblklot through the raw registry; the first model
// row per mapblklot wins. Parcels with neither model data nor an active
// registry status are dropped.
func MergeModel(t parcel.Table, model []source.ModelRow, raw []source.RawParcel) parcel.Table {
	lotToParcel := make(map[string]string, len(raw))
	for i := range raw {
		lotToParcel[raw[i].BlkLot] = raw[i].MapBlkLot
	}

	byParcel := make(map[string]*source.ModelRow, len(model))
	for i := range model {
		key, ok := lotToParcel[model[i].BlockLot]
		if !ok {
			continue
		}
		if _, dup := byParcel[key]; !dup {
			byParcel[key] = &model[i]
		}
	}

	out := t.Clone()
	out.Update(func(_ int, p *parcel.Parcel) {
		m, ok := byParcel[p.MapBlkLot]
		if !ok {
			return
		}
		ApplyModel(p, m)
	})
	return out.Filter(func(p *parcel.Parcel) bool {
		return p.HasModelData || p.Active
	})
}

// ApplyModel copies the feature columns of a model row onto p.
func ApplyModel(p *parcel.Parcel, m *source.ModelRow) {
	p.HasModelData = true
	p.PlanningCode = m.PlanningCode
	p.HeightFt = m.HeightFt
	p.Area1000 = m.Area1000
	p.ShapeAreaSqFt = m.ShapeAreaSqFt
	p.TotExistingSqFt = m.TotExistingSqFt
	p.BldgSqFt1000 = m.BldgSqFt1000
	p.Envelope = m.Envelope
	p.ResDummy = m.ResDummy
	p.Historic = m.Historic
	p.HistoricAlt = m.HistoricAlt
	p.SDB = m.SDB
	p.SDBEnvFull = m.SDBEnvFull
	p.ZoningDREnvFull = m.ZoningDREnvFull
	p.Zoning = m.Zoning
	p.Districts = m.Districts
}

// RemovePublic drops parcels listed in the public-parcels set.
func RemovePublic(t parcel.Table, public *PublicAccumulator) parcel.Table {
	return t.Filter(func(p *parcel.Parcel) bool {
		return !public.Contains(p.MapBlkLot)
	})
}
