package pipeline

import (
	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// Uncalculable counts, per analysis neighborhood, the parcels still missing
// a model input after every fill has run. Parcels without a neighborhood are
// counted under "".
func Uncalculable(t parcel.Table) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		p := t.At(i)
		if missingModelInput(&p) {
			counts[p.Neighborhood()]++
		}
	}
	return counts
}

func missingModelInput(p *parcel.Parcel) bool {
	return p.HeightFt == nil ||
		p.Area1000 == nil ||
		p.Envelope == nil ||
		p.BldgSqFt1000 == nil ||
		p.ResDummy == nil ||
		p.Historic == nil ||
		p.SDB == nil
}
