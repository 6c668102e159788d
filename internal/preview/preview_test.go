package preview

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/layout"
	"clevr-scenegen/internal/mathutil"
	"clevr-scenegen/internal/sink"
)

func testConfig(t *testing.T) *dataset.Config {
	t.Helper()
	cfg, err := dataset.New("trnsimple", dataset.DefaultParams())
	require.NoError(t, err)
	return cfg
}

func at(img *image.NRGBA, x, y int) [4]uint8 {
	i := img.PixOffset(x, y)
	return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func single(o dataset.ObjectSpec) dataset.SceneLayout {
	return dataset.SceneLayout{Objects: []dataset.ObjectSpec{o}, FreeSlot: dataset.NoFreeSlot}
}

func TestRenderSphereColorAndGround(t *testing.T) {
	r := NewRenderer(testConfig(t), Options{Size: 128, Supersample: 2, Extent: 3})
	img := r.Render(single(dataset.ObjectSpec{
		Shape: "sphere", Material: "rubber", MaterialInternal: "Rubber",
		Color: "red", Radius: 0.35,
	}))
	require.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds())

	center := at(img, 64, 64)
	assert.Greater(t, center[0], center[1])
	assert.Greater(t, center[0], center[2])

	ground := at(img, 32, 32)
	assert.InDelta(t, 118, int(ground[0]), 1)
	assert.InDelta(t, 118, int(ground[2]), 1)
	assert.Equal(t, uint8(255), ground[3])
}

func TestToPixelOrientation(t *testing.T) {
	r := NewRenderer(testConfig(t), Options{Size: 120, Extent: 3})
	x, y := r.ToPixel(0, 0)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 60.0, y)

	// Toward the camera (+X) is down, right (+Y) is right.
	x, y = r.ToPixel(3, 0)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 120.0, y)
	x, y = r.ToPixel(0, -3)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 60.0, y)
}

func TestRenderCubeRotation(t *testing.T) {
	cfg := testConfig(t)
	r := NewRenderer(cfg, Options{Size: 128, Supersample: 1, Extent: 3})
	cube := dataset.ObjectSpec{Shape: dataset.CubeShape, Material: "rubber", Color: "blue", Radius: 0.5}
	rgb, ok := cfg.ColorRGB("blue")
	require.True(t, ok)
	want := r.lc.Shade(rgb, mathutil.GroundNormal, false)

	// Pixel (66, 75) sits at about x=0.54, y=0.12.
	assert.NotEqual(t, want, at(r.Render(single(cube)), 66, 75))
	cube.Rotation = 45
	assert.Equal(t, want, at(r.Render(single(cube)), 66, 75))
}

func TestRenderFreeSlotRing(t *testing.T) {
	r := NewRenderer(testConfig(t), Options{Size: 120, Supersample: 1, Extent: 3})
	l := single(dataset.ObjectSpec{Shape: "cylinder", Material: "metal", Color: "green", Radius: 0.5})

	// Ring spans 1.15r..1.35r, i.e. 11.5..13.5 px from the center.
	assert.NotEqual(t, ringColor, at(r.Render(l), 60, 72))
	l.FreeSlot = 0
	assert.Equal(t, ringColor, at(r.Render(l), 60, 72))
}

func TestRenderGeneratedLayout(t *testing.T) {
	cfg := testConfig(t)
	layouts, err := layout.GenerateAll(cfg)
	require.NoError(t, err)

	r := NewRenderer(cfg, DefaultOptions())
	for _, l := range layouts[:4] {
		img := r.Render(l)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	}
	assert.Equal(t, WebP, r.Options().Format)
}

func TestEncode(t *testing.T) {
	img := NewRenderer(testConfig(t), Options{Size: 64, Supersample: 2}).Render(single(dataset.ObjectSpec{
		Shape: "sphere", Color: "green", Radius: 0.25,
	}))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, WebP))
	decoded, err := nativewebp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, TGA))
	decoded, err = tga.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	assert.Error(t, Encode(&buf, img, Format("png")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".WebP")
	require.NoError(t, err)
	assert.Equal(t, WebP, f)
	assert.Equal(t, ".webp", f.Ext())

	f, err = ParseFormat("tga")
	require.NoError(t, err)
	assert.Equal(t, TGA, f)

	_, err = ParseFormat("bmp")
	assert.Error(t, err)
}

func TestDownsampleKeepsSmallImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, img, Downsample(img, 20, 20))
	assert.Equal(t, image.Rect(0, 0, 5, 5), Downsample(img, 5, 5).Bounds())
}

func TestWriterWriteAll(t *testing.T) {
	cfg := testConfig(t)
	layouts, err := layout.GenerateAll(cfg)
	require.NoError(t, err)
	layouts = layouts[:3]

	dir := t.TempDir()
	w := &Writer{
		Renderer: NewRenderer(cfg, Options{Size: 64, Supersample: 1, Format: TGA}),
		Sink:     sink.Dir{Root: dir},
		Dir:      "previews",
		Workers:  2,
	}
	entries, err := w.WriteAll(context.Background(), "trnsimple", layouts)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "previews/trnsimple/000001.tga", entries[1].Preview)
	assert.Equal(t, layouts[1].FreeSlot, entries[1].FreeSlot)
	assert.Empty(t, entries[1].Error)

	data, err := os.ReadFile(filepath.Join(dir, "previews", "trnsimple", "000002.tga"))
	require.NoError(t, err)
	img, err := tga.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	_, err = os.Stat(filepath.Join(dir, "previews", "trnsimple", "manifest.json"))
	assert.NoError(t, err)
}
