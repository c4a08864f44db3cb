package enrich

import (
	"sync"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
)

// PublicAccumulator collects parcels newly classified as public (open space
// or non-housing) during a run. It starts from the ids already present in the
// public-parcels artifact, dedupes by mapblklot, and is flushed once after
// the last stage. Safe for concurrent use.
type PublicAccumulator struct {
	mu    sync.Mutex
	known map[string]bool
	added []parcel.Parcel
}

// NewPublicAccumulator seeds the accumulator with existing mapblklots.
func NewPublicAccumulator(existing []string) *PublicAccumulator {
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		if id != "" {
			known[id] = true
		}
	}
	return &PublicAccumulator{known: known}
}

// Contains reports whether id is public, either from the artifact or added
// during this run.
func (a *PublicAccumulator) Contains(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.known[id]
}

// Add records p unless its mapblklot is already known. It reports whether p
// was added.
func (a *PublicAccumulator) Add(p parcel.Parcel) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.known[p.MapBlkLot] {
		return false
	}
	a.known[p.MapBlkLot] = true
	a.added = append(a.added, p)
	return true
}

// Added returns the parcels added during this run, in insertion order.
func (a *PublicAccumulator) Added() []parcel.Parcel {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]parcel.Parcel, len(a.added))
	copy(out, a.added)
	return out
}
