package spatial

import (
	"context"
	"runtime"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/sfhousing/parcel-enrich/internal/crs"
)

// Locator computes representative points and memoizes them per geometry.
// A parcel's geometry is shared across table snapshots, so every join in a
// run projects each parcel once. Safe for concurrent use.
type Locator struct {
	proj crs.Projection

	mu    sync.Mutex
	cache map[geom.T]located
}

type located struct {
	pt Point
	ok bool
}

// NewLocator returns a Locator computing centroids in proj.
func NewLocator(proj crs.Projection) *Locator {
	return &Locator{proj: proj, cache: make(map[geom.T]located)}
}

// Locate returns the representative point of g: its centroid in the planar
// system, converted back to lon/lat.
func (l *Locator) Locate(g geom.T) (Point, bool, error) {
	if g == nil {
		return Point{}, false, nil
	}
	l.mu.Lock()
	hit, found := l.cache[g]
	l.mu.Unlock()
	if found {
		return hit.pt, hit.ok, nil
	}

	pt, ok, err := Centroid(g, l.proj)
	if err != nil {
		return Point{}, false, err
	}

	l.mu.Lock()
	l.cache[g] = located{pt: pt, ok: ok}
	l.mu.Unlock()
	return pt, ok, nil
}

// Match is the result of joining one geometry against a layer.
type Match struct {
	ID    int
	Value string
	OK    bool
}

// Join resolves each of geoms against layer by representative point. A nil
// entry in geoms is skipped and reported unmatched. Work is split into
// contiguous chunks over at most workers goroutines (GOMAXPROCS when
// workers <= 0); results are positional.
func Join(ctx context.Context, layer *Layer, loc *Locator, geoms []geom.T, workers int) ([]Match, error) {
	out := make([]Match, len(geoms))
	if len(geoms) == 0 {
		return out, nil
	}
	err := ForEachChunk(ctx, len(geoms), workers, func(start, end int) error {
		for i := start; i < end; i++ {
			if geoms[i] == nil {
				continue
			}
			pt, ok, err := loc.Locate(geoms[i])
			if err != nil {
				return eris.Wrapf(err, "spatial: join %s", layer.Name())
			}
			if !ok {
				continue
			}
			if id, found := layer.FindContaining(pt.Lon, pt.Lat); found {
				out[i] = Match{ID: id, Value: layer.Value(id), OK: true}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ForEachChunk splits [0, n) into contiguous ranges and runs fn over them on
// a bounded errgroup. The first error cancels the remaining chunks.
func ForEachChunk(ctx context.Context, n, workers int, fn func(start, end int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		return nil
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(start, end)
		})
	}
	return g.Wait()
}
