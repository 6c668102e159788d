// Package camera is the boundary to the rendering host: per-image cardinal
// directions and the world-to-pixel projection. The rest of the pipeline
// only sees the Adapter and View interfaces.
package camera

import (
	"errors"

	"clevr-scenegen/internal/mathutil"
)

// ErrBehindCamera is returned when a point cannot be projected because it
// lies on or behind the image plane.
var ErrBehindCamera = errors.New("camera: point is behind the camera")

// Pixel is a projected point: integer image coordinates (origin top-left)
// and a depth that orders points by distance from the camera.
type Pixel struct {
	X     int
	Y     int
	Depth float64
}

// Adapter places the camera for one image.
type Adapter interface {
	// View returns the camera placed at its base location plus offset.
	View(offset mathutil.Vec3) (View, error)
}

// View is a placed camera.
type View interface {
	Location() mathutil.Vec3
	Directions() Directions
	Project(p mathutil.Vec3) (Pixel, error)
}
