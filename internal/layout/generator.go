// Package layout draws the per-image object arrangement: attributes for
// every slot, the jittered face template, and one freely placed object on
// odd images.
package layout

import (
	"fmt"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/rng"
)

// Generator turns a stream of draws into scene layouts. Draws are consumed
// in a fixed order per image:
//
//  1. per axis: camera, key light, fill light, back light jitter
//     (skipped when the magnitude is zero)
//  2. per slot: rotation, material, shape, color, size
//  3. per slot: X jitter, Y jitter
//  4. odd images: free slot index, then X/Y candidate pairs
type Generator struct {
	p        dataset.Params
	src      rng.Source
	resolver Resolver
	shapes   map[string]dataset.Entry
	colors   []string
}

// NewGenerator binds a generator to cfg and src.
func NewGenerator(cfg *dataset.Config, src rng.Source) *Generator {
	p := cfg.Params()
	shapes := make(map[string]dataset.Entry, len(p.Shapes))
	for _, s := range p.Shapes {
		shapes[s.Name] = s
	}
	colors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = c.Name
	}
	return &Generator{
		p:   p,
		src: src,
		resolver: Resolver{
			MinDist: p.MinDist,
			Extent:  p.FreePlaceExtent,
			Limit:   p.PlacementLimit,
		},
		shapes: shapes,
		colors: colors,
	}
}

// Generate draws the layout of image. Images must be requested in order
// when the generator shares one stream across a split.
func (g *Generator) Generate(image int) (dataset.SceneLayout, error) {
	n := g.p.NObjects
	l := dataset.SceneLayout{
		Image:    image,
		Objects:  make([]dataset.ObjectSpec, n),
		FreeSlot: dataset.NoFreeSlot,
	}

	for axis := 0; axis < 3; axis++ {
		l.CameraOffset[axis] = g.jitter(g.p.CameraJitter)
		l.KeyLightOffset[axis] = g.jitter(g.p.KeyLightJitter)
		l.FillLightOffset[axis] = g.jitter(g.p.FillLightJitter)
		l.BackLightOffset[axis] = g.jitter(g.p.BackLightJitter)
	}

	for i := range l.Objects {
		g.drawAttributes(&l.Objects[i])
	}
	if n >= 2 {
		l.EyesSameColor = l.Objects[0].Color == l.Objects[1].Color
	}

	for i := range l.Objects {
		l.Objects[i].X = g.p.FaceX[i] + rng.Jitter(g.src, g.p.PosJitter)
		l.Objects[i].Y = g.p.FaceY[i] + rng.Jitter(g.src, g.p.PosJitter)
	}

	if image%2 == 1 {
		slot := g.src.Intn(n)
		if _, err := g.resolver.Place(g.src, &l, slot); err != nil {
			return dataset.SceneLayout{}, fmt.Errorf("layout: image %d: %w", image, err)
		}
		l.FreeSlot = slot
	}

	return l, nil
}

// jitter draws only for positive magnitudes, so disabled jitter leaves the
// stream untouched.
func (g *Generator) jitter(mag float64) float64 {
	if mag <= 0 {
		return 0
	}
	return rng.Jitter(g.src, mag)
}

func (g *Generator) drawAttributes(o *dataset.ObjectSpec) {
	o.Rotation = 360.0 * g.src.Float64()

	mat := g.p.Materials[g.src.Intn(len(g.p.Materials))]
	o.Material, o.MaterialInternal = mat.Name, mat.Internal

	if len(g.p.ShapeColorCombos) == 0 {
		shape := g.p.Shapes[g.src.Intn(len(g.p.Shapes))]
		o.Shape, o.ShapeInternal = shape.Name, shape.Internal
		o.Color = g.colors[g.src.Intn(len(g.colors))]
	} else {
		combo := g.p.ShapeColorCombos[g.src.Intn(len(g.p.ShapeColorCombos))]
		o.Shape = combo.Shape
		o.Color = combo.Colors[g.src.Intn(len(combo.Colors))]
		o.ShapeInternal = g.shapes[combo.Shape].Internal
	}

	size := g.p.Sizes[g.src.Intn(len(g.p.Sizes))]
	o.Size, o.Radius = size.Name, size.Radius
	if o.Shape == dataset.CubeShape {
		o.Radius = dataset.CubeRadius(o.Radius)
	}
}

// GenerateAll draws every image of cfg from the split's single stream.
func GenerateAll(cfg *dataset.Config) ([]dataset.SceneLayout, error) {
	gen := NewGenerator(cfg, rng.New(cfg.Seed()))
	layouts := make([]dataset.SceneLayout, cfg.NImages())
	for i := range layouts {
		l, err := gen.Generate(i)
		if err != nil {
			return nil, err
		}
		layouts[i] = l
	}
	return layouts, nil
}
