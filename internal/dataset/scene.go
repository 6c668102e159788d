package dataset

import (
	"math"

	"clevr-scenegen/internal/camera"
	"clevr-scenegen/internal/mathutil"
)

// CubeShape is the display name whose radius gets the diagonal correction.
const CubeShape = "cube"

// ObjectSpec is one object slot of one image.
type ObjectSpec struct {
	Shape            string // display name, e.g. "cube"
	ShapeInternal    string // asset name, e.g. "SmoothCube_v2"
	Material         string
	MaterialInternal string
	Size             string
	Radius           float64
	Color            string
	Rotation         float64 // degrees, [0, 360)
	X, Y             float64 // ground-plane position
}

// Position3D is where the host places the object: resting on the ground,
// so its center sits one radius up.
func (o ObjectSpec) Position3D() mathutil.Vec3 {
	return mathutil.Vec3{o.X, o.Y, o.Radius}
}

// Clearance is the gap between the surfaces of a and b on the ground plane.
func Clearance(a, b ObjectSpec) float64 {
	return mathutil.Dist2D(a.X, a.Y, b.X, b.Y) - a.Radius - b.Radius
}

// CubeRadius scales a catalog radius for cubes: their diagonal is √2 times
// their edge, so a cube's extent is normalized by it.
func CubeRadius(r float64) float64 {
	return r / math.Sqrt2
}

// NoFreeSlot marks a layout where no object was freely placed.
const NoFreeSlot = -1

// SceneLayout is the generated arrangement of one image.
type SceneLayout struct {
	Image           int
	Objects         []ObjectSpec
	CameraOffset    mathutil.Vec3
	KeyLightOffset  mathutil.Vec3
	FillLightOffset mathutil.Vec3
	BackLightOffset mathutil.Vec3
	FreeSlot        int
	EyesSameColor   bool
}

// Positions returns the 3D position of every object in slot order.
func (l *SceneLayout) Positions() []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(l.Objects))
	for i, o := range l.Objects {
		out[i] = o.Position3D()
	}
	return out
}

// Clone returns a deep copy of l.
func (l SceneLayout) Clone() SceneLayout {
	c := l
	c.Objects = append([]ObjectSpec(nil), l.Objects...)
	return c
}

// ObjectRecord is one object as seen by the camera.
type ObjectRecord struct {
	Shape    string
	Size     string
	Material string
	Color    string
	Coords   mathutil.Vec3
	Rotation float64
	Pixel    camera.Pixel
}

// SceneRecord is the ground truth of one image once positions are final
// and projected.
type SceneRecord struct {
	Split      string
	Image      int
	Filename   string
	Directions camera.Directions
	Objects    []ObjectRecord
}
