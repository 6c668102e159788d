package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/rng"
)

const tol = 1e-9

func referenceConfig(t *testing.T, split string, mutate func(p *dataset.Params)) *dataset.Config {
	t.Helper()
	p := dataset.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	cfg, err := dataset.New(split, p)
	require.NoError(t, err)
	return cfg
}

// recorder logs every draw so tests can check consumption order.
type recorder struct {
	src   rng.Source
	calls []string
}

func (r *recorder) Float64() float64 {
	r.calls = append(r.calls, "f")
	return r.src.Float64()
}

func (r *recorder) Intn(n int) int {
	r.calls = append(r.calls, fmt.Sprintf("i%d", n))
	return r.src.Intn(n)
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := referenceConfig(t, "trnsimple", nil)
	a, err := GenerateAll(cfg)
	require.NoError(t, err)
	b, err := GenerateAll(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := GenerateAll(referenceConfig(t, "tstsimple", nil))
	require.NoError(t, err)
	assert.NotEqual(t, a[0].Objects, other[0].Objects)
}

func TestDrawOrder(t *testing.T) {
	cfg := referenceConfig(t, "trnsimple", nil)
	rec := &recorder{src: rng.New(cfg.Seed())}
	gen := NewGenerator(cfg, rec)

	_, err := gen.Generate(0)
	require.NoError(t, err)

	var want []string
	for i := 0; i < 12; i++ {
		want = append(want, "f")
	}
	for slot := 0; slot < 6; slot++ {
		want = append(want, "f", "i2", "i3", "i3", "i2")
	}
	for i := 0; i < 12; i++ {
		want = append(want, "f")
	}
	assert.Equal(t, want, rec.calls)

	rec.calls = nil
	_, err = gen.Generate(1)
	require.NoError(t, err)
	require.Greater(t, len(rec.calls), len(want))
	assert.Equal(t, want, rec.calls[:len(want)])
	assert.Equal(t, "i6", rec.calls[len(want)])
	tail := rec.calls[len(want)+1:]
	assert.NotEmpty(t, tail)
	assert.Zero(t, len(tail)%2, "candidates are drawn as X/Y pairs")
}

func TestDisabledJitterDrawsNothing(t *testing.T) {
	cfg := referenceConfig(t, "trnsimple", func(p *dataset.Params) {
		p.CameraJitter = 0
		p.KeyLightJitter = 0
		p.FillLightJitter = 0
		p.BackLightJitter = 0
	})
	rec := &recorder{src: rng.New(cfg.Seed())}
	l, err := NewGenerator(cfg, rec).Generate(0)
	require.NoError(t, err)

	assert.Equal(t, 6*5+12, len(rec.calls))
	assert.Zero(t, l.CameraOffset)
	assert.Zero(t, l.BackLightOffset)
}

func TestReferenceScenario(t *testing.T) {
	cfg := referenceConfig(t, "trnsimple", nil)
	p := cfg.Params()
	layouts, err := GenerateAll(cfg)
	require.NoError(t, err)
	require.Len(t, layouts, 100)

	const j = 0.05
	first := layouts[0].Objects[0]
	assert.True(t, first.Rotation >= 0 && first.Rotation < 360)
	assert.True(t, first.X >= -2-j && first.X <= -2+j, first.X)
	assert.True(t, first.Y >= -1.5-j && first.Y <= -1.5+j, first.Y)

	second := layouts[1]
	require.NotEqual(t, dataset.NoFreeSlot, second.FreeSlot)
	moved := 0
	for i, o := range second.Objects {
		inTemplate := o.X >= p.FaceX[i]-j && o.X <= p.FaceX[i]+j &&
			o.Y >= p.FaceY[i]-j && o.Y <= p.FaceY[i]+j
		if i == second.FreeSlot {
			assert.True(t, o.X >= -2.5 && o.X <= 2.5 && o.Y >= -2.5 && o.Y <= 2.5)
			if !inTemplate {
				moved++
			}
			continue
		}
		assert.True(t, inTemplate, "slot %d left the template", i)
	}
	assert.LessOrEqual(t, moved, 1)
}

func TestLayoutInvariants(t *testing.T) {
	for _, split := range rng.Splits() {
		cfg := referenceConfig(t, split, nil)
		p := cfg.Params()
		layouts, err := GenerateAll(cfg)
		require.NoError(t, err)

		for _, l := range layouts {
			require.Len(t, l.Objects, 6)
			assert.Equal(t, l.Objects[0].Color == l.Objects[1].Color, l.EyesSameColor)

			for axis := 0; axis < 3; axis++ {
				assert.LessOrEqual(t, abs(l.CameraOffset[axis]), p.CameraJitter)
				assert.LessOrEqual(t, abs(l.KeyLightOffset[axis]), p.KeyLightJitter)
			}

			for i, o := range l.Objects {
				assert.True(t, o.Rotation >= 0 && o.Rotation < 360)
				assert.NotEmpty(t, o.ShapeInternal)
				assert.NotEmpty(t, o.MaterialInternal)
				catalog := radiusFor(p, o.Size)
				if o.Shape == dataset.CubeShape {
					assert.InDelta(t, dataset.CubeRadius(catalog), o.Radius, tol)
				} else {
					assert.Equal(t, catalog, o.Radius)
				}
				if i == l.FreeSlot {
					continue
				}
				assert.InDelta(t, p.FaceX[i], o.X, p.PosJitter+tol)
				assert.InDelta(t, p.FaceY[i], o.Y, p.PosJitter+tol)
			}

			if l.Image%2 == 0 {
				assert.Equal(t, dataset.NoFreeSlot, l.FreeSlot)
				continue
			}
			require.GreaterOrEqual(t, l.FreeSlot, 0)
			free := l.Objects[l.FreeSlot]
			for j, other := range l.Objects {
				if j == l.FreeSlot {
					continue
				}
				assert.GreaterOrEqual(t, dataset.Clearance(free, other), p.MinDist-tol,
					"image %d slot %d too close to %d", l.Image, l.FreeSlot, j)
			}
		}
	}
}

func TestShapeColorCombos(t *testing.T) {
	cfg := referenceConfig(t, "tstsimple", func(p *dataset.Params) {
		p.ShapeColorCombos = []dataset.Combo{
			{Shape: "cube", Colors: []string{"red"}},
			{Shape: "sphere", Colors: []string{"blue", "green"}},
		}
	})
	layouts, err := GenerateAll(cfg)
	require.NoError(t, err)

	shapes := make(map[string]bool)
	for _, l := range layouts {
		for _, o := range l.Objects {
			shapes[o.Shape] = true
			switch o.Shape {
			case "cube":
				assert.Equal(t, "red", o.Color)
				assert.Equal(t, "SmoothCube_v2", o.ShapeInternal)
			case "sphere":
				assert.Contains(t, []string{"blue", "green"}, o.Color)
				assert.Equal(t, "Sphere", o.ShapeInternal)
			default:
				t.Fatalf("shape %q is not in any combo", o.Shape)
			}
		}
	}
	assert.Len(t, shapes, 2)
}

func TestResolverExhaustion(t *testing.T) {
	cfg := referenceConfig(t, "trnsimple", func(p *dataset.Params) {
		p.MinDist = 10
		p.PlacementLimit = 50
	})
	gen := NewGenerator(cfg, rng.New(cfg.Seed()))

	_, err := gen.Generate(0)
	require.NoError(t, err, "even images never free place")

	_, err = gen.Generate(1)
	assert.ErrorIs(t, err, ErrPlacementExhausted)
}

func TestResolverLeavesLayoutOnFailure(t *testing.T) {
	l := dataset.SceneLayout{Objects: []dataset.ObjectSpec{
		{X: 0, Y: 0, Radius: 0.3},
		{X: 1, Y: 1, Radius: 0.3},
	}}
	before := l.Clone()

	r := Resolver{MinDist: 100, Extent: 2.5, Limit: 10}
	attempts, err := r.Place(rng.New(1), &l, 1)
	assert.ErrorIs(t, err, ErrPlacementExhausted)
	assert.Equal(t, 10, attempts)
	assert.Equal(t, before, l)

	_, err = r.Place(rng.New(1), &l, 5)
	assert.Error(t, err)
}

func TestResolverUnbounded(t *testing.T) {
	l := dataset.SceneLayout{Objects: []dataset.ObjectSpec{
		{X: 0, Y: 0, Radius: 0.35},
		{X: 0, Y: 0, Radius: 0.25},
	}}
	r := Resolver{MinDist: 0.25, Extent: 2.5}
	attempts, err := r.Place(rng.New(3), &l, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 1)
	assert.GreaterOrEqual(t, dataset.Clearance(l.Objects[0], l.Objects[1]), 0.25)
	assert.True(t, r.Fits(&l, 1, l.Objects[1].X, l.Objects[1].Y))
}

func TestResolverIgnoresOwnOldPosition(t *testing.T) {
	l := dataset.SceneLayout{Objects: []dataset.ObjectSpec{
		{X: 0, Y: 0, Radius: 0.3},
		{X: 2, Y: 2, Radius: 0.3},
	}}
	r := Resolver{MinDist: 0.25, Extent: 2.5}
	assert.True(t, r.Fits(&l, 0, 0.01, 0.01))
	assert.False(t, r.Fits(&l, 0, 1.9, 1.9))
}

func radiusFor(p dataset.Params, size string) float64 {
	for _, s := range p.Sizes {
		if s.Name == size {
			return s.Radius
		}
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
