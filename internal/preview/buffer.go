package preview

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the drawing target as flat slices for cache locality.
// ZBuf stores the height of the topmost surface drawn at each pixel.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // height per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a buffer filled with bg and an empty z-buffer.
func NewFrameBuffer(w, h int, bg color.NRGBA) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	pix := make([]uint8, n*4)
	for i := 0; i < n; i++ {
		pix[i*4] = bg.R
		pix[i*4+1] = bg.G
		pix[i*4+2] = bg.B
		pix[i*4+3] = bg.A
	}
	return &FrameBuffer{Width: w, Height: h, Color: pix, ZBuf: zbuf}
}

// Plot writes c at (x, y) when z is at least as high as what is there.
func (fb *FrameBuffer) Plot(x, y int, z float64, c [4]uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := y*fb.Width + x
	if z < fb.ZBuf[i] {
		return
	}
	fb.ZBuf[i] = z
	copy(fb.Color[i*4:i*4+4], c[:])
}

// Image copies the buffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
