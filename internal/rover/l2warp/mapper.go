package l2warp

import (
	"fmt"
	"math"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover"
)

// DestinationPoints returns the overhead-frame square the calibration grid
// maps onto: a 2*destSize square centred horizontally and bottomOffset pixels
// above the bottom edge. The corner order matches the calibrated source
// points (bottom-left, bottom-right, top-right, top-left).
func DestinationPoints(width, height int, destSize, bottomOffset float64) [4]Point {
	w, h := float64(width), float64(height)
	left, right := w/2-destSize, w/2+destSize
	bottom, top := h-bottomOffset, h-2*destSize-bottomOffset
	return [4]Point{{left, bottom}, {right, bottom}, {right, top}, {left, top}}
}

// Mapper rectifies camera-frame masks into the overhead frame. The transform
// is derived once and reused for every mask.
type Mapper struct {
	forward Homography
	inverse Homography
}

// NewMapper derives the rectifying transform from a src -> dst correspondence.
func NewMapper(src, dst [4]Point) (*Mapper, error) {
	h, err := NewHomography(src, dst)
	if err != nil {
		return nil, err
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}
	return &Mapper{forward: h, inverse: inv}, nil
}

// MapperFromTuning builds a Mapper for frames of the given size using the
// calibrated source points and destination square from cfg.
func MapperFromTuning(cfg *config.TuningConfig, width, height int) (*Mapper, error) {
	var src [4]Point
	for i, p := range cfg.GetSourcePoints() {
		src[i] = Point{X: p[0], Y: p[1]}
	}
	dst := DestinationPoints(width, height, cfg.GetDestSize(), cfg.GetBottomOffset())
	m, err := NewMapper(src, dst)
	if err != nil {
		return nil, fmt.Errorf("perspective calibration: %w", err)
	}
	return m, nil
}

// Homography returns the camera-to-overhead transform.
func (m *Mapper) Homography() Homography {
	return m.forward
}

// Warp returns the overhead rectification of mask with the same dimensions.
// Each output pixel is bilinearly sampled from the source; samples outside the
// source frame read as background, and a pixel is set when the interpolated
// value reaches one half.
func (m *Mapper) Warp(mask *rover.Mask) *rover.Mask {
	out := rover.NewMask(mask.Width, mask.Height)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			sx, sy, ok := m.inverse.Apply(float64(x), float64(y))
			if !ok {
				continue
			}
			if sample(mask, sx, sy) >= 0.5 {
				out.Set(x, y)
			}
		}
	}
	return out
}

// WarpAll rectifies all three class masks with the same transform.
func (m *Mapper) WarpAll(masks rover.ClassMasks) rover.ClassMasks {
	return rover.ClassMasks{
		Navigable: m.Warp(masks.Navigable),
		Sample:    m.Warp(masks.Sample),
		Obstacle:  m.Warp(masks.Obstacle),
	}
}

// sample bilinearly interpolates mask at a fractional coordinate.
func sample(mask *rover.Mask, sx, sy float64) float64 {
	if sx <= -1 || sy <= -1 || sx >= float64(mask.Width) || sy >= float64(mask.Height) {
		return 0
	}
	x0, y0 := math.Floor(sx), math.Floor(sy)
	fx, fy := sx-x0, sy-y0
	ix, iy := int(x0), int(y0)

	v := func(x, y int) float64 {
		if mask.At(x, y) {
			return 1
		}
		return 0
	}

	top := v(ix, iy)*(1-fx) + v(ix+1, iy)*fx
	bottom := v(ix, iy+1)*(1-fx) + v(ix+1, iy+1)*fx
	return top*(1-fy) + bottom*fy
}
