package preview

import (
	"math"

	"clevr-scenegen/internal/mathutil"
)

// fillTriangle fills a flat triangle at height z. Vertices are in pixel
// space; pixel centers are sampled.
func fillTriangle(fb *FrameBuffer, p0, p1, p2 [2]float64, z float64, c [4]uint8) {
	x0, y0 := p0[0], p0[1]
	x1, y1 := p1[0], p1[1]
	x2, y2 := p2[0], p2[1]

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, fb.Width-1), min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := (dy12*(px-x2) + dx21*(py-y2)) * invDet
			w1 := (dy20*(px-x2) + dx02*(py-y2)) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			fb.Plot(x, y, z, c)
		}
	}
}

// fillDisc fills a disc of pixel radius r centered at (cx, cy). shade maps
// the offset from the center, in units of r, to a height and color, or
// reports false to leave the pixel alone.
func fillDisc(fb *FrameBuffer, cx, cy, r float64, shade func(dx, dy float64) (float64, [4]uint8, bool)) {
	minX := max(int(math.Floor(cx-r)), 0)
	maxX := min(int(math.Ceil(cx+r)), fb.Width-1)
	minY := max(int(math.Floor(cy-r)), 0)
	maxY := min(int(math.Ceil(cy+r)), fb.Height-1)

	for y := minY; y <= maxY; y++ {
		dy := (float64(y) + 0.5 - cy) / r
		for x := minX; x <= maxX; x++ {
			dx := (float64(x) + 0.5 - cx) / r
			if dx*dx+dy*dy > 1 {
				continue
			}
			if z, c, ok := shade(dx, dy); ok {
				fb.Plot(x, y, z, c)
			}
		}
	}
}

// strokeRing draws a ring between radii r0 and r1 at ground height.
func strokeRing(fb *FrameBuffer, cx, cy, r0, r1 float64, c [4]uint8) {
	fillDisc(fb, cx, cy, r1, func(dx, dy float64) (float64, [4]uint8, bool) {
		return 0, c, math.Hypot(dx, dy)*r1 >= r0
	})
}

// domeNormal is the world-space normal of a hemisphere seen from above at
// pixel offset (dx, dy) from its center. Pixel columns run along world +Y
// and rows along world +X.
func domeNormal(dx, dy float64) mathutil.Vec3 {
	dz := math.Sqrt(math.Max(0, 1-dx*dx-dy*dy))
	return mathutil.Vec3{dy, dx, dz}
}
