package layout

import (
	"errors"
	"fmt"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/rng"
)

// ErrPlacementExhausted is returned when the resolver runs out of attempts.
var ErrPlacementExhausted = errors.New("layout: no collision-free position found")

// Resolver re-draws one slot's position until it keeps MinDist of clearance
// from every other object.
type Resolver struct {
	MinDist float64
	Extent  float64 // candidates are uniform on [-Extent, Extent]²
	Limit   int     // maximum attempts; 0 retries until a position fits
}

// Place draws candidates for slot and writes the first one that fits into
// l. It returns the number of attempts used. l is left untouched on error.
func (r Resolver) Place(src rng.Source, l *dataset.SceneLayout, slot int) (int, error) {
	if slot < 0 || slot >= len(l.Objects) {
		return 0, fmt.Errorf("layout: slot %d out of range [0, %d)", slot, len(l.Objects))
	}

	for attempt := 1; r.Limit == 0 || attempt <= r.Limit; attempt++ {
		x := rng.Uniform(src, -r.Extent, r.Extent)
		y := rng.Uniform(src, -r.Extent, r.Extent)
		if r.Fits(l, slot, x, y) {
			l.Objects[slot].X = x
			l.Objects[slot].Y = y
			return attempt, nil
		}
	}
	return r.Limit, fmt.Errorf("%w: image %d slot %d after %d attempts", ErrPlacementExhausted, l.Image, slot, r.Limit)
}

// Fits reports whether slot could move to (x, y) without coming closer than
// MinDist to any other object.
func (r Resolver) Fits(l *dataset.SceneLayout, slot int, x, y float64) bool {
	cand := l.Objects[slot]
	cand.X, cand.Y = x, y
	for j, other := range l.Objects {
		if j == slot {
			continue
		}
		if dataset.Clearance(cand, other) < r.MinDist {
			return false
		}
	}
	return true
}
