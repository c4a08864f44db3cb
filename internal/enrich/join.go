package enrich

import (
	"context"

	"github.com/twpayne/go-geom"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// JoinStats summarizes one spatial fill.
type JoinStats struct {
	Layer      string
	Candidates int
	Resolved   int
}

// Unresolved is the number of candidates no polygon contained.
func (s JoinStats) Unresolved() int {
	return s.Candidates - s.Resolved
}

// Joiner runs spatial fills against reference layers.
type Joiner struct {
	Locator *spatial.Locator
	Workers int
}

// join resolves the parcels selected by need against layer and hands each
// match to apply. Unmatched parcels are left untouched.
func (j Joiner) join(ctx context.Context, t parcel.Table, layer *spatial.Layer,
	need func(*parcel.Parcel) bool, apply func(*parcel.Parcel, spatial.Match) bool,
) (parcel.Table, JoinStats, error) {
	stats := JoinStats{Layer: layer.Name()}

	geoms := make([]geom.T, t.Len())
	for i := range geoms {
		p := t.At(i)
		if need(&p) {
			geoms[i] = p.Geom
			stats.Candidates++
		}
	}
	if stats.Candidates == 0 {
		return t, stats, nil
	}

	matches, err := spatial.Join(ctx, layer, j.Locator, geoms, j.Workers)
	if err != nil {
		return parcel.Table{}, stats, err
	}

	out := t.Clone()
	out.Update(func(i int, p *parcel.Parcel) {
		if !need(p) || !matches[i].OK {
			return
		}
		if apply(p, matches[i]) {
			stats.Resolved++
		}
	})
	return out, stats, nil
}

// FillPlanningCode assigns the zoning of the containing zoning-district
// polygon to parcels without a planning code.
func (j Joiner) FillPlanningCode(ctx context.Context, t parcel.Table, layer *spatial.Layer) (parcel.Table, JoinStats, error) {
	return j.join(ctx, t, layer,
		func(p *parcel.Parcel) bool { return p.PlanningCode == nil },
		func(p *parcel.Parcel, m spatial.Match) bool {
			p.PlanningCode = parcel.Str(m.Value)
			return p.PlanningCode != nil
		})
}

// FillHeight assigns the generalized height of the containing height/bulk
// polygon to parcels without Height_Ft.
func (j Joiner) FillHeight(ctx context.Context, t parcel.Table, layer *spatial.Layer) (parcel.Table, JoinStats, error) {
	return j.join(ctx, t, layer,
		func(p *parcel.Parcel) bool { return p.HeightFt == nil },
		func(p *parcel.Parcel, m spatial.Match) bool {
			p.HeightFt = parcel.Number(m.Value)
			return p.HeightFt != nil
		})
}

// MarkHistoricDistricts computes historic-district membership for every
// parcel. A parcel is in a district when any containing polygon is named.
func (j Joiner) MarkHistoricDistricts(ctx context.Context, t parcel.Table, layer *spatial.Layer) (parcel.Table, JoinStats, error) {
	return j.join(ctx, t, layer.Named(),
		func(*parcel.Parcel) bool { return true },
		func(p *parcel.Parcel, m spatial.Match) bool {
			p.InHistoricDistrict = m.Value != ""
			return p.InHistoricDistrict
		})
}
