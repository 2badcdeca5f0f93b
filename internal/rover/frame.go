package rover

import (
	"image"
	"image/color"
)

// CameraFrame is a single RGB camera image. Pix holds interleaved R, G, B
// bytes in row-major order, 3*Width bytes per row. Frames are discarded once a
// tick has been processed.
type CameraFrame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewCameraFrame allocates a black frame.
func NewCameraFrame(width, height int) *CameraFrame {
	return &CameraFrame{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// FrameFromImage copies any image.Image into a CameraFrame.
func FrameFromImage(img image.Image) *CameraFrame {
	b := img.Bounds()
	f := NewCameraFrame(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			f.Set(x, y, c.R, c.G, c.B)
		}
	}
	return f
}

// At returns the RGB triple at column x, row y.
func (f *CameraFrame) At(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set writes the RGB triple at column x, row y.
func (f *CameraFrame) Set(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Mask is a single-channel binary image with the same addressing as
// CameraFrame. A non-zero byte marks a set pixel.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At reports whether the pixel at column x, row y is set. Out-of-bounds
// coordinates read as unset.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks the pixel at column x, row y.
func (m *Mask) Set(x, y int) {
	m.Pix[y*m.Width+x] = 1
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// ClassMasks bundles one mask per terrain class for a single frame.
type ClassMasks struct {
	Navigable *Mask
	Sample    *Mask
	Obstacle  *Mask
}

// Image renders the masks as an RGB picture in camera orientation: obstacle
// in red, sample in green, navigable in blue. Nil masks leave their channel
// dark.
func (m ClassMasks) Image() *image.RGBA {
	w, h := 0, 0
	for _, mask := range []*Mask{m.Navigable, m.Sample, m.Obstacle} {
		if mask != nil {
			w, h = mask.Width, mask.Height
			break
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	lit := func(mask *Mask, x, y int) uint8 {
		if mask != nil && mask.At(x, y) {
			return 255
		}
		return 0
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: lit(m.Obstacle, x, y),
				G: lit(m.Sample, x, y),
				B: lit(m.Navigable, x, y),
				A: 255,
			})
		}
	}
	return img
}
