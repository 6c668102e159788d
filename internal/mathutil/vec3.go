package mathutil

import "math"

// Vec3 is a 3-component world-space vector (value type, stack-allocated).
// Z is up; the ground plane is Z = 0.
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than Epsilon.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Project returns the component of v along n.
func (v Vec3) Project(n Vec3) Vec3 {
	nn := n.Dot(n)
	if nn < Epsilon {
		return Vec3{}
	}
	return n.Scale(v.Dot(n) / nn)
}

// Reject returns the component of v perpendicular to n, i.e. v flattened
// onto the plane with normal n.
func (v Vec3) Reject(n Vec3) Vec3 {
	return v.Sub(v.Project(n))
}

// IsUnit reports whether |v| is 1 within tol.
func (v Vec3) IsUnit(tol float64) bool {
	return math.Abs(v.Len()-1) <= tol
}

// Dist2D is the ground-plane distance between (ax, ay) and (bx, by).
func Dist2D(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}
