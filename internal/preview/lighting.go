package preview

import (
	"math"

	"clevr-scenegen/internal/mathutil"
)

// LightConfig holds precomputed lighting for the top-down view.
type LightConfig struct {
	LightDir mathutil.Vec3
	HalfDir  mathutil.Vec3 // Blinn-Phong half-vector, viewer straight above
	Ambient  float64
	Direct   float64
	Exposure float64
	InvGamma float64

	// Specular response per material class
	RubberSpec, RubberPow float64
	MetalSpec, MetalPow   float64
}

// DefaultLightConfig returns a key light from behind-left of the camera.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{-0.4, -0.3, 1}.Normalize()
	return LightConfig{
		LightDir:   lightDir,
		HalfDir:    lightDir.Add(mathutil.GroundNormal).Normalize(),
		Ambient:    0.45,
		Direct:     0.80,
		Exposure:   1.05,
		InvGamma:   1.0 / 2.2,
		RubberSpec: 0.05,
		RubberPow:  4,
		MetalSpec:  0.90,
		MetalPow:   24,
	}
}

// Shade lights an sRGB base color seen along normal and returns the
// tone-mapped sRGB result.
func (lc *LightConfig) Shade(rgb [3]int, normal mathutil.Vec3, metal bool) [4]uint8 {
	ndl := normal.Dot(lc.LightDir)
	if ndl < 0 {
		ndl = 0
	}
	diffuse := lc.Ambient + ndl*lc.Direct

	specInt, specPow := lc.RubberSpec, lc.RubberPow
	if metal {
		specInt, specPow = lc.MetalSpec, lc.MetalPow
	}
	ndh := normal.Dot(lc.HalfDir)
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, specPow) * specInt

	var out [4]uint8
	for k := 0; k < 3; k++ {
		c := rgb[k]
		if c < 0 {
			c = 0
		} else if c > 255 {
			c = 255
		}
		lin := (srgbToLinear[c]*diffuse + spec) * lc.Exposure
		v := math.Pow(ACESTonemap(lin), lc.InvGamma)
		out[k] = clamp8(v * 255)
	}
	out[3] = 255
	return out
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
