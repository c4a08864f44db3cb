package rules

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/enrich"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
	"github.com/sfhousing/parcel-enrich/internal/units"
)

// Report compares the baseline totals with the totals under a rule set.
type Report struct {
	Baseline units.Totals `json:"baseline"`
	Plan     units.Totals `json:"plan"`
	Rescored int          `json:"rescored"`
	// Gains is plan minus baseline per analysis neighborhood, for
	// neighborhoods with at least one re-scored parcel.
	Gains map[string]units.Totals `json:"gains"`
}

// Upzone returns a copy of p at height h: the envelope is rederived and the
// density bonus is re-qualified on envelope and height alone.
func Upzone(p parcel.Parcel, h float64) parcel.Parcel {
	env := enrich.Envelope(parcel.OrZero(p.Area1000), h)
	sdb := enrich.SDBQualifies(env, h)
	p.HeightFt = parcel.Float(h)
	p.Envelope = parcel.Float(env)
	p.SDB = parcel.Bool(sdb)
	p.SDBEnvFull = parcel.Float(parcel.FlagValue(p.SDB) * env)
	return p
}

type outcome struct {
	base     units.Totals
	plan     units.Totals
	rescored bool
}

// Simulate applies rules to every parcel of t. A parcel is re-scored only
// when a rule proposes a height above its current one; otherwise its
// recorded expected units carry over.
func Simulate(ctx context.Context, t parcel.Table, rules []Rule, workers int) (Report, error) {
	rows := t.Rows()
	results := make([]outcome, len(rows))
	err := spatial.ForEachChunk(ctx, len(rows), workers, func(start, end int) error {
		for i := start; i < end; i++ {
			p := &rows[i]
			o := outcome{base: units.Totals{
				Low:  parcel.OrZero(p.ExpectedUnitsLow),
				High: parcel.OrZero(p.ExpectedUnitsHigh),
			}}
			o.plan = o.base
			if h, ok := ProposedHeight(rules, p); ok && h > parcel.OrZero(p.HeightFt) {
				q := Upzone(*p, h)
				e := units.Evaluate(units.FeaturesOf(&q))
				o.plan = units.Totals{Low: e.UnitsLow, High: e.UnitsHigh}
				o.rescored = true
			}
			results[i] = o
		}
		return nil
	})
	if err != nil {
		return Report{}, eris.Wrap(err, "rules: simulate")
	}

	rep := Report{Gains: make(map[string]units.Totals)}
	for i, o := range results {
		rep.Baseline.Low += o.base.Low
		rep.Baseline.High += o.base.High
		rep.Plan.Low += o.plan.Low
		rep.Plan.High += o.plan.High
		if !o.rescored {
			continue
		}
		rep.Rescored++
		hood := rows[i].Neighborhood()
		g := rep.Gains[hood]
		g.Low += o.plan.Low - o.base.Low
		g.High += o.plan.High - o.base.High
		rep.Gains[hood] = g
	}
	return rep, nil
}

// LoadTable joins a model table and an overlay table written by a run into
// one parcel table. Model rows without an overlay row keep no neighborhood,
// zoning or transit distance.
func LoadTable(ctx context.Context, modelPath, overlayPath string) (parcel.Table, error) {
	overlay := make(map[string]parcel.Parcel)
	err := source.ReadRecords(ctx, overlayPath, func(r source.Record) error {
		id := r.Get(source.ColMapBlkLot)
		if _, dup := overlay[id]; dup {
			return nil
		}
		overlay[id] = parcel.Parcel{
			AnalysisNeighborhood: parcel.Str(r.Get(source.ColAnalysisNeighborhood)),
			ZoningCode:           parcel.Str(r.Get(source.ColZoningCode)),
			DistanceToTransit:    parcel.Number(r.Get(source.ColTransit)),
		}
		return nil
	}, source.ColMapBlkLot)
	if err != nil {
		return parcel.Table{}, err
	}

	var rows []parcel.Parcel
	err = source.ReadRecords(ctx, modelPath, func(r source.Record) error {
		m := source.ParseModelRow(r)
		p := overlay[m.BlockLot]
		p.MapBlkLot = m.BlockLot
		enrich.ApplyModel(&p, &m)
		p.ExpectedUnitsLow = m.UnitsLow
		p.ExpectedUnitsHigh = m.UnitsHigh
		rows = append(rows, p)
		return nil
	}, source.ColBlockLot)
	if err != nil {
		return parcel.Table{}, err
	}
	return parcel.NewTable(rows), nil
}
