package dataset

import (
	"errors"
	"fmt"

	"clevr-scenegen/internal/rng"
)

// ErrConfig marks an unusable dataset configuration.
var ErrConfig = errors.New("dataset: invalid configuration")

// Config is the frozen configuration of one split. Build it with New; the
// accessors return copies so a Config never changes after construction.
type Config struct {
	split  string
	seed   int64
	params Params
}

// New binds params to split and checks the cross-field invariants struct
// tags cannot express.
func New(split string, p Params) (*Config, error) {
	seed, err := rng.SeedForSplit(split)
	if err != nil {
		return nil, err
	}
	if err := check(p); err != nil {
		return nil, err
	}
	return &Config{split: split, seed: seed, params: p.Clone()}, nil
}

func check(p Params) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
	}

	if p.NImages <= 0 {
		return fail("n_images must be positive, got %d", p.NImages)
	}
	if p.NObjects <= 0 {
		return fail("n_objects must be positive, got %d", p.NObjects)
	}
	if len(p.FaceX) != p.NObjects || len(p.FaceY) != p.NObjects {
		return fail("face template has %d×%d offsets for %d objects", len(p.FaceX), len(p.FaceY), p.NObjects)
	}
	if len(p.FaceParts) != 0 && len(p.FaceParts) != p.NObjects {
		return fail("faceparts has %d entries for %d objects", len(p.FaceParts), p.NObjects)
	}
	if len(p.Shapes) == 0 || len(p.Materials) == 0 || len(p.Sizes) == 0 || len(p.Colors) == 0 {
		return fail("shape, material, size and color catalogs must be non-empty")
	}
	if p.FreePlaceExtent <= 0 {
		return fail("free_place_extent must be positive")
	}
	if p.MinDist < 0 || p.PlacementLimit < 0 {
		return fail("min_dist and placement_attempt_limit must be non-negative")
	}
	for _, j := range []float64{p.CameraJitter, p.KeyLightJitter, p.FillLightJitter, p.BackLightJitter, p.PosJitter} {
		if j < 0 {
			return fail("jitter magnitudes must be non-negative")
		}
	}

	shapes := make(map[string]bool, len(p.Shapes))
	for _, s := range p.Shapes {
		if s.Name == "" || s.Internal == "" || shapes[s.Name] {
			return fail("bad or duplicate shape %q", s.Name)
		}
		shapes[s.Name] = true
	}
	seen := make(map[string]bool, len(p.Materials))
	for _, m := range p.Materials {
		if m.Name == "" || m.Internal == "" || seen[m.Name] {
			return fail("bad or duplicate material %q", m.Name)
		}
		seen[m.Name] = true
	}
	for _, s := range p.Sizes {
		if s.Name == "" || s.Radius <= 0 {
			return fail("bad size %q radius %v", s.Name, s.Radius)
		}
	}
	colors := make(map[string]bool, len(p.Colors))
	for _, c := range p.Colors {
		if c.Name == "" || colors[c.Name] {
			return fail("bad or duplicate color %q", c.Name)
		}
		for _, v := range c.RGB {
			if v < 0 || v > 255 {
				return fail("color %q component %d out of range", c.Name, v)
			}
		}
		colors[c.Name] = true
	}
	for _, combo := range p.ShapeColorCombos {
		if !shapes[combo.Shape] {
			return fail("combo references unknown shape %q", combo.Shape)
		}
		if len(combo.Colors) == 0 {
			return fail("combo for %q has no colors", combo.Shape)
		}
		for _, c := range combo.Colors {
			if !colors[c] {
				return fail("combo for %q references unknown color %q", combo.Shape, c)
			}
		}
	}

	r := p.Render
	if r.Width <= 0 || r.Height <= 0 || r.Percent <= 0 || r.Percent > 100 || r.Lens <= 0 || r.SensorWidth <= 0 {
		return fail("invalid render settings %+v", r)
	}
	return nil
}

func (c *Config) Split() string    { return c.split }
func (c *Config) Seed() int64      { return c.seed }
func (c *Config) NImages() int     { return c.params.NImages }
func (c *Config) NObjects() int    { return c.params.NObjects }
func (c *Config) MinDist() float64 { return c.params.MinDist }

// Params returns a copy of every parameter.
func (c *Config) Params() Params { return c.params.Clone() }

// ImageFilename is the file the host writes image i to.
func (c *Config) ImageFilename(i int) string {
	return ImageFilename(c.split, i)
}

// ImageFilename is the file the host writes image i of split to.
func ImageFilename(split string, i int) string {
	return fmt.Sprintf("customclevr_%s_%06d.png", split, i)
}

// ColorRGB looks up a color by name.
func (c *Config) ColorRGB(name string) ([3]int, bool) {
	for _, col := range c.params.Colors {
		if col.Name == name {
			return col.RGB, true
		}
	}
	return [3]int{}, false
}
