// Package preview draws a top-down schematic of a scene layout so a
// generated split can be inspected without the rendering host. The camera
// sits at the bottom of the picture: image rows run along world +X and
// columns along world +Y.
package preview

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/mathutil"
)

// Options control the schematic.
type Options struct {
	Size        int     // output width and height in pixels
	Supersample int     // drawing scale before downsampling
	Extent      float64 // half-width of the ground shown, world units
	Labels      bool    // print slot indices
	Format      Format
}

// DefaultOptions shows the free-placement square with some margin.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Extent: 3, Labels: true, Format: WebP}
}

var (
	groundColor = color.NRGBA{R: 118, G: 118, B: 118, A: 255}
	gridColor   = [4]uint8{104, 104, 104, 255}
	boundColor  = [4]uint8{150, 150, 150, 255}
	ringColor   = [4]uint8{250, 250, 250, 255}
)

// Renderer draws layouts of one dataset.
type Renderer struct {
	opts   Options
	extent float64 // free-placement half-width
	colors map[string][3]int
	lc     LightConfig
}

// NewRenderer binds a renderer to cfg's colors and free-placement extent.
func NewRenderer(cfg *dataset.Config, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	if opts.Extent <= 0 {
		opts.Extent = def.Extent
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}

	p := cfg.Params()
	colors := make(map[string][3]int, len(p.Colors))
	for _, c := range p.Colors {
		colors[c.Name] = c.RGB
	}
	return &Renderer{
		opts:   opts,
		extent: p.FreePlaceExtent,
		colors: colors,
		lc:     DefaultLightConfig(),
	}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// ToPixel maps a ground position to output pixel coordinates.
func (r *Renderer) ToPixel(x, y float64) (float64, float64) {
	return r.toPixel(x, y, float64(r.opts.Size))
}

func (r *Renderer) toPixel(x, y, size float64) (float64, float64) {
	e := r.opts.Extent
	return (y + e) / (2 * e) * size, (x + e) / (2 * e) * size
}

// Render draws l.
func (r *Renderer) Render(l dataset.SceneLayout) *image.NRGBA {
	size := r.opts.Size * r.opts.Supersample
	s := float64(size)
	scale := s / (2 * r.opts.Extent)
	fb := NewFrameBuffer(size, size, groundColor)

	r.drawGround(fb, s, scale)

	// Lowest first so taller objects win overlaps even on equal heights.
	order := make([]int, len(l.Objects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return l.Objects[order[a]].Radius < l.Objects[order[b]].Radius
	})

	if l.FreeSlot >= 0 && l.FreeSlot < len(l.Objects) {
		o := l.Objects[l.FreeSlot]
		cx, cy := r.toPixel(o.X, o.Y, s)
		rr := o.Radius * scale
		if o.Shape == dataset.CubeShape {
			rr *= math.Sqrt2
		}
		strokeRing(fb, cx, cy, rr*1.15, rr*1.35, ringColor)
	}
	for _, i := range order {
		r.drawObject(fb, l.Objects[i], s, scale)
	}

	img := fb.Image()
	if r.opts.Supersample > 1 {
		img = Downsample(img, r.opts.Size, r.opts.Size)
	}
	if r.opts.Labels {
		r.drawLabels(img, l)
	}
	return img
}

func (r *Renderer) drawGround(fb *FrameBuffer, s, scale float64) {
	e := r.opts.Extent
	line := max(1, int(scale/60))

	// Unit grid
	for v := math.Ceil(-e); v <= e; v++ {
		p, _ := r.toPixel(0, v, s)
		for k := 0; k < line; k++ {
			for t := 0; t < fb.Width; t++ {
				fb.Plot(int(p)+k, t, math.Inf(-1), gridColor)
				fb.Plot(t, int(p)+k, math.Inf(-1), gridColor)
			}
		}
	}

	// Free-placement square
	lo, _ := r.toPixel(0, -r.extent, s)
	hi, _ := r.toPixel(0, r.extent, s)
	for k := 0; k < line; k++ {
		for t := int(lo); t <= int(hi); t++ {
			fb.Plot(int(lo)+k, t, math.Inf(-1), boundColor)
			fb.Plot(int(hi)-k, t, math.Inf(-1), boundColor)
			fb.Plot(t, int(lo)+k, math.Inf(-1), boundColor)
			fb.Plot(t, int(hi)-k, math.Inf(-1), boundColor)
		}
	}
}

func (r *Renderer) drawObject(fb *FrameBuffer, o dataset.ObjectSpec, s, scale float64) {
	rgb, ok := r.colors[o.Color]
	if !ok {
		rgb = [3]int{200, 0, 200}
	}
	metal := o.MaterialInternal == "MyMetal" || o.Material == "metal"
	cx, cy := r.toPixel(o.X, o.Y, s)
	top := 2 * o.Radius

	switch o.Shape {
	case dataset.CubeShape:
		c := r.lc.Shade(rgb, mathutil.GroundNormal, metal)
		rot := mathutil.RotZ(mathutil.Deg2Rad(o.Rotation))
		var corners [4][2]float64
		for k, d := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			w := rot.MulVec3(mathutil.Vec3{d[0] * o.Radius, d[1] * o.Radius, 0})
			corners[k][0], corners[k][1] = r.toPixel(o.X+w[0], o.Y+w[1], s)
		}
		fillTriangle(fb, corners[0], corners[1], corners[2], top, c)
		fillTriangle(fb, corners[0], corners[2], corners[3], top, c)
	case "sphere":
		fillDisc(fb, cx, cy, o.Radius*scale, func(dx, dy float64) (float64, [4]uint8, bool) {
			n := domeNormal(dx, dy)
			return o.Radius * (1 + n[2]), r.lc.Shade(rgb, n, metal), true
		})
	default:
		c := r.lc.Shade(rgb, mathutil.GroundNormal, metal)
		fillDisc(fb, cx, cy, o.Radius*scale, func(float64, float64) (float64, [4]uint8, bool) {
			return top, c, true
		})
	}
}

func (r *Renderer) drawLabels(img *image.NRGBA, l dataset.SceneLayout) {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	for i, o := range l.Objects {
		label := strconv.Itoa(i)
		x, y := r.ToPixel(o.X, o.Y)
		width := font.MeasureString(face, label).Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(int(x) - width/2),
				Y: fixed.I(int(y) + ascent/2),
			},
		}
		d.DrawString(label)
	}
}
