package units

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// Totals sums the expected units of a table.
type Totals struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Apply sets fzp_expected_units_low/high on every parcel. Parcels are scored
// in parallel over at most workers goroutines.
func Apply(ctx context.Context, t parcel.Table, workers int) (parcel.Table, Totals, error) {
	rows := t.Rows()
	err := spatial.ForEachChunk(ctx, len(rows), workers, func(start, end int) error {
		for i := start; i < end; i++ {
			e := Evaluate(FeaturesOf(&rows[i]))
			rows[i].ExpectedUnitsLow = parcel.Float(e.UnitsLow)
			rows[i].ExpectedUnitsHigh = parcel.Float(e.UnitsHigh)
		}
		return nil
	})
	if err != nil {
		return parcel.Table{}, Totals{}, eris.Wrap(err, "units: score parcels")
	}

	var tot Totals
	for i := range rows {
		tot.Low += *rows[i].ExpectedUnitsLow
		tot.High += *rows[i].ExpectedUnitsHigh
	}
	return parcel.NewTable(rows), tot, nil
}
