package camera

import (
	"errors"
	"fmt"

	"clevr-scenegen/internal/mathutil"
)

// Direction names one of the six axis-aligned scene directions.
type Direction int

const (
	Behind Direction = iota
	Front
	Left
	Right
	Above
	Below
)

var directionNames = [...]string{"behind", "front", "left", "right", "above", "below"}

func (d Direction) String() string {
	if d < Behind || d > Below {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps a name back to its Direction.
func ParseDirection(name string) (Direction, error) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("camera: unknown direction %q", name)
}

// Horizontal lists the directions relationships are computed for. Objects
// sit on one plane, so above/below are left out.
var Horizontal = []Direction{Behind, Front, Left, Right}

// AllDirections lists all six directions in output order.
var AllDirections = []Direction{Behind, Front, Left, Right, Above, Below}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Behind:
		return Front
	case Front:
		return Behind
	case Left:
		return Right
	case Right:
		return Left
	case Above:
		return Below
	default:
		return Above
	}
}

// Directions holds one world-space unit vector per Direction.
type Directions [6]mathutil.Vec3

// ErrDegenerateDirection is returned when a direction cannot be normalized,
// e.g. a camera looking straight down has no horizontal "behind".
var ErrDegenerateDirection = errors.New("camera: degenerate direction vector")

// unitTolerance bounds |len-1| for a direction to count as unit length.
const unitTolerance = 1e-6

// NewDirections builds the six directions from behind, left and above; the
// other three are their negations.
func NewDirections(behind, left, above mathutil.Vec3) (Directions, error) {
	var d Directions
	d[Behind] = behind
	d[Front] = behind.Neg()
	d[Left] = left
	d[Right] = left.Neg()
	d[Above] = above
	d[Below] = above.Neg()
	if err := d.Validate(); err != nil {
		return Directions{}, err
	}
	return d, nil
}

// Validate checks that every direction is a unit vector.
func (d Directions) Validate() error {
	for _, dir := range AllDirections {
		if !d[dir].IsUnit(unitTolerance) {
			return fmt.Errorf("%w: %s has length %.6f", ErrDegenerateDirection, dir, d[dir].Len())
		}
	}
	return nil
}

// Map returns the directions keyed by name.
func (d Directions) Map() map[string][3]float64 {
	m := make(map[string][3]float64, len(d))
	for _, dir := range AllDirections {
		m[dir.String()] = d[dir]
	}
	return m
}

// DirectionsFromMap is the inverse of Map. All six names must be present.
func DirectionsFromMap(m map[string][3]float64) (Directions, error) {
	var d Directions
	for _, dir := range AllDirections {
		v, ok := m[dir.String()]
		if !ok {
			return Directions{}, fmt.Errorf("%w: %s missing", ErrDegenerateDirection, dir)
		}
		d[dir] = v
	}
	return d, d.Validate()
}
