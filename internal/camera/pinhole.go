package camera

import (
	"fmt"
	"math"

	"clevr-scenegen/internal/mathutil"
)

// Optics describes the output frame and lens of a perspective camera.
type Optics struct {
	Width       int     // pixels before percentage scaling
	Height      int     // pixels before percentage scaling
	Percent     int     // resolution percentage, 1..100
	Lens        float64 // focal length, mm
	SensorWidth float64 // sensor size along the fitted axis, mm
}

// Pinhole is a software perspective camera that always looks at Target.
// It stands in for the host renderer's camera.
type Pinhole struct {
	Base   mathutil.Vec3
	Target mathutil.Vec3
	Optics Optics
}

// NewPinhole returns a camera at base looking at the world origin.
func NewPinhole(base mathutil.Vec3, optics Optics) *Pinhole {
	return &Pinhole{Base: base, Optics: optics}
}

// View places the camera at Base+offset.
func (c *Pinhole) View(offset mathutil.Vec3) (View, error) {
	if c.Optics.Width <= 0 || c.Optics.Height <= 0 || c.Optics.Percent <= 0 || c.Optics.Lens <= 0 || c.Optics.SensorWidth <= 0 {
		return nil, fmt.Errorf("camera: invalid optics %+v", c.Optics)
	}

	loc := c.Base.Add(offset)
	forward := c.Target.Sub(loc).Normalize()
	right := forward.Cross(mathutil.WorldUp).Normalize()
	if forward == (mathutil.Vec3{}) || right == (mathutil.Vec3{}) {
		return nil, fmt.Errorf("%w: camera at %v cannot look at %v", ErrDegenerateDirection, loc, c.Target)
	}
	up := right.Cross(forward)

	// Camera-local axes: +X right, +Y up, looking down -Z.
	rot := mathutil.Mat3FromCols(right, up, forward.Neg())

	n := mathutil.GroundNormal
	behind := forward.Reject(n).Normalize()
	left := right.Neg().Reject(n).Normalize()
	above := up.Project(n).Normalize()
	dirs, err := NewDirections(behind, left, above)
	if err != nil {
		return nil, err
	}

	scale := float64(c.Optics.Percent) / 100.0
	w := int(scale * float64(c.Optics.Width))
	h := int(scale * float64(c.Optics.Height))

	// The sensor spans the larger image axis.
	fx := c.Optics.Lens / c.Optics.SensorWidth
	fy := fx
	if w >= h {
		fy = fx * float64(w) / float64(h)
	} else {
		fx = fy * float64(h) / float64(w)
	}

	return &pinholeView{
		loc:     loc,
		toLocal: mathutil.RigidInverse(rot, loc),
		dirs:    dirs,
		w:       w,
		h:       h,
		fx:      fx,
		fy:      fy,
	}, nil
}

type pinholeView struct {
	loc     mathutil.Vec3
	toLocal mathutil.Mat4
	dirs    Directions
	w, h    int
	fx, fy  float64
}

func (v *pinholeView) Location() mathutil.Vec3 { return v.loc }

func (v *pinholeView) Directions() Directions { return v.dirs }

// Project maps p to normalized frame coordinates ([0,1] across the frame,
// Y up), then to pixels with Y down. Rounding is half-to-even.
func (v *pinholeView) Project(p mathutil.Vec3) (Pixel, error) {
	local := v.toLocal.MulPoint(p)
	depth := -local[2]
	if depth <= 0 {
		return Pixel{}, fmt.Errorf("%w: %v", ErrBehindCamera, p)
	}

	x := local[0]/depth*v.fx + 0.5
	y := local[1]/depth*v.fy + 0.5

	w := float64(v.w)
	h := float64(v.h)
	return Pixel{
		X:     int(math.RoundToEven(x * w)),
		Y:     int(math.RoundToEven(h - y*h)),
		Depth: depth,
	}, nil
}
