package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clevr-scenegen/internal/rng"
)

func TestNewReferenceConfig(t *testing.T) {
	cfg, err := New("trnsimple", DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "trnsimple", cfg.Split())
	assert.Equal(t, int64(100), cfg.Seed())
	assert.Equal(t, 100, cfg.NImages())
	assert.Equal(t, 6, cfg.NObjects())
	assert.Equal(t, 0.25, cfg.MinDist())
	assert.Equal(t, "customclevr_trnsimple_000042.png", cfg.ImageFilename(42))

	rgb, ok := cfg.ColorRGB("blue")
	assert.True(t, ok)
	assert.Equal(t, [3]int{42, 75, 215}, rgb)
	_, ok = cfg.ColorRGB("gray")
	assert.False(t, ok)
}

func TestNewUnknownSplit(t *testing.T) {
	_, err := New("valsimple", DefaultParams())
	assert.ErrorIs(t, err, rng.ErrUnknownSplit)
}

func TestNewRejectsInconsistentParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"template shorter than object count", func(p *Params) { p.NObjects = 7 }},
		{"facey mismatch", func(p *Params) { p.FaceY = p.FaceY[:5] }},
		{"faceparts mismatch", func(p *Params) { p.FaceParts = []string{"eye"} }},
		{"no images", func(p *Params) { p.NImages = 0 }},
		{"empty shapes", func(p *Params) { p.Shapes = nil }},
		{"empty sizes", func(p *Params) { p.Sizes = nil }},
		{"empty materials", func(p *Params) { p.Materials = nil }},
		{"empty colors", func(p *Params) { p.Colors = nil }},
		{"duplicate shape", func(p *Params) { p.Shapes = append(p.Shapes, p.Shapes[0]) }},
		{"zero radius", func(p *Params) { p.Sizes[0].Radius = 0 }},
		{"color out of range", func(p *Params) { p.Colors[0].RGB[1] = 256 }},
		{"combo unknown shape", func(p *Params) {
			p.ShapeColorCombos = []Combo{{Shape: "cone", Colors: []string{"red"}}}
		}},
		{"combo unknown color", func(p *Params) {
			p.ShapeColorCombos = []Combo{{Shape: "cube", Colors: []string{"gray"}}}
		}},
		{"combo without colors", func(p *Params) {
			p.ShapeColorCombos = []Combo{{Shape: "cube"}}
		}},
		{"negative jitter", func(p *Params) { p.PosJitter = -1 }},
		{"negative limit", func(p *Params) { p.PlacementLimit = -1 }},
		{"no extent", func(p *Params) { p.FreePlaceExtent = 0 }},
		{"bad render", func(p *Params) { p.Render.Percent = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			_, err := New("trnsimple", p)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestConfigIsFrozen(t *testing.T) {
	p := DefaultParams()
	cfg, err := New("tstsimple", p)
	require.NoError(t, err)

	p.FaceX[0] = 99
	p.Colors[0].Name = "pink"
	got := cfg.Params()
	assert.Equal(t, -2.0, got.FaceX[0])
	assert.Equal(t, "red", got.Colors[0].Name)

	got.FaceY[0] = 99
	assert.Equal(t, -1.5, cfg.Params().FaceY[0])
}

func TestCubeRadius(t *testing.T) {
	assert.InDelta(t, 0.35/math.Sqrt(2), CubeRadius(0.35), 1e-15)
	assert.InDelta(t, 0.25/math.Sqrt(2), CubeRadius(0.25), 1e-15)
}

func TestClearanceAndPositions(t *testing.T) {
	a := ObjectSpec{X: 0, Y: 0, Radius: 0.25}
	b := ObjectSpec{X: 3, Y: 4, Radius: 0.35}
	assert.InDelta(t, 4.4, Clearance(a, b), 1e-12)
	assert.Equal(t, Clearance(a, b), Clearance(b, a))

	l := SceneLayout{Objects: []ObjectSpec{a, b}}
	pos := l.Positions()
	assert.Equal(t, 0.25, pos[0][2])
	assert.Equal(t, 3.0, pos[1][0])

	c := l.Clone()
	c.Objects[0].X = 10
	assert.Equal(t, 0.0, l.Objects[0].X)
}
