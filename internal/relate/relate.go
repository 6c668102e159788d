// Package relate infers left/right/front/behind relationships between the
// objects of one scene.
package relate

import (
	"errors"
	"fmt"
	"slices"

	"clevr-scenegen/internal/camera"
	"clevr-scenegen/internal/mathutil"
)

// Epsilon is how far along a direction one object must be from another to
// count as lying in that direction.
const Epsilon = 0.2

// ErrInconsistent is returned by Check for tables that break the relation
// invariants.
var ErrInconsistent = errors.New("relate: inconsistent relationship table")

// Table maps a direction to, per object index i, the sorted indices j that
// lie in that direction from i.
type Table map[camera.Direction][][]int

// Compute builds the table over the horizontal directions. j is related to
// i in direction d when (pos[j] - pos[i]) · d > Epsilon.
func Compute(positions []mathutil.Vec3, dirs camera.Directions) Table {
	t := make(Table, len(camera.Horizontal))
	for _, d := range camera.Horizontal {
		vec := dirs[d]
		rows := make([][]int, len(positions))
		for i, from := range positions {
			related := []int{}
			for j, to := range positions {
				if i == j {
					continue
				}
				if to.Sub(from).Dot(vec) > Epsilon {
					related = append(related, j)
				}
			}
			rows[i] = related
		}
		t[d] = rows
	}
	return t
}

// Related reports whether j lies in direction d from i.
func (t Table) Related(d camera.Direction, i, j int) bool {
	rows, ok := t[d]
	if !ok || i < 0 || i >= len(rows) {
		return false
	}
	_, found := slices.BinarySearch(rows[i], j)
	return found
}

// Names returns the table keyed by direction name, the shape written to the
// scenes document.
func (t Table) Names() map[string][][]int {
	out := make(map[string][][]int, len(t))
	for d, rows := range t {
		out[d.String()] = rows
	}
	return out
}

// FromNames is the inverse of Names.
func FromNames(m map[string][][]int) (Table, error) {
	t := make(Table, len(m))
	for name, rows := range m {
		d, err := camera.ParseDirection(name)
		if err != nil {
			return nil, err
		}
		t[d] = rows
	}
	return t, nil
}

// Check verifies that t covers n objects in every horizontal direction,
// that rows are sorted and irreflexive, and that no pair is related in both
// a direction and its opposite.
func Check(t Table, n int) error {
	for _, d := range camera.Horizontal {
		rows, ok := t[d]
		if !ok {
			return fmt.Errorf("%w: missing direction %s", ErrInconsistent, d)
		}
		if len(rows) != n {
			return fmt.Errorf("%w: %s has %d rows for %d objects", ErrInconsistent, d, len(rows), n)
		}
		for i, row := range rows {
			if !slices.IsSorted(row) {
				return fmt.Errorf("%w: %s row %d is not sorted", ErrInconsistent, d, i)
			}
			for _, j := range row {
				if j == i {
					return fmt.Errorf("%w: object %d is %s of itself", ErrInconsistent, i, d)
				}
				if j < 0 || j >= n {
					return fmt.Errorf("%w: %s row %d references object %d", ErrInconsistent, d, i, j)
				}
				if t.Related(d.Opposite(), i, j) {
					return fmt.Errorf("%w: object %d is both %s and %s of %d", ErrInconsistent, j, d, d.Opposite(), i)
				}
			}
		}
	}
	return nil
}
