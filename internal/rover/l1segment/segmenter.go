package l1segment

import (
	"fmt"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover"
)

// ColorSpace selects which channels the thresholds are applied to.
type ColorSpace string

const (
	// ColorSpaceHLS converts each pixel to 8-bit HLS before thresholding.
	ColorSpaceHLS ColorSpace = "hls"
	// ColorSpaceRaw thresholds the camera's RGB channels unchanged.
	ColorSpaceRaw ColorSpace = "raw"
)

// Band is a closed per-channel [Min, Max] interval.
type Band struct {
	Min [3]uint8
	Max [3]uint8
}

// Contains reports whether all three channels fall within the band.
func (b Band) Contains(c0, c1, c2 uint8) bool {
	return c0 >= b.Min[0] && c0 <= b.Max[0] &&
		c1 >= b.Min[1] && c1 <= b.Max[1] &&
		c2 >= b.Min[2] && c2 <= b.Max[2]
}

// Config holds the calibrated segmentation parameters.
type Config struct {
	ColorSpace ColorSpace
	Navigable  Band
	Sample     Band
	Obstacle   Band
	// HorizonRow discards navigable pixels on rows above it (sky).
	// Sample and obstacle classes keep every row.
	HorizonRow int
}

// ConfigFromTuning builds a segmentation Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ColorSpace: ColorSpace(cfg.GetColorSpace()),
		Navigable:  bandFrom(cfg.GetNavigableThreshMin(), cfg.GetNavigableThreshMax()),
		Sample:     bandFrom(cfg.GetSampleThreshMin(), cfg.GetSampleThreshMax()),
		Obstacle:   bandFrom(cfg.GetObstacleThreshMin(), cfg.GetObstacleThreshMax()),
		HorizonRow: cfg.GetHorizonRow(),
	}
}

// bandFrom narrows validated config thresholds to bytes.
func bandFrom(lo, hi config.Threshold) Band {
	var b Band
	for i := 0; i < 3; i++ {
		b.Min[i] = uint8(lo[i])
		b.Max[i] = uint8(hi[i])
	}
	return b
}

// Validate checks that every band is well formed.
func (c Config) Validate() error {
	switch c.ColorSpace {
	case ColorSpaceHLS, ColorSpaceRaw:
	default:
		return fmt.Errorf("unknown colour space %q", c.ColorSpace)
	}
	for name, b := range map[string]Band{"navigable": c.Navigable, "sample": c.Sample, "obstacle": c.Obstacle} {
		for i := 0; i < 3; i++ {
			if b.Min[i] > b.Max[i] {
				return fmt.Errorf("%s band channel %d: min %d exceeds max %d", name, i, b.Min[i], b.Max[i])
			}
		}
	}
	if c.HorizonRow < 0 {
		return fmt.Errorf("HorizonRow must be non-negative, got %d", c.HorizonRow)
	}
	return nil
}

// Segmenter classifies camera pixels into terrain classes.
type Segmenter struct {
	cfg Config
}

// NewSegmenter validates cfg and returns a Segmenter.
func NewSegmenter(cfg Config) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmentation config: %w", err)
	}
	return &Segmenter{cfg: cfg}, nil
}

// Segment produces one mask per class. Classes are evaluated independently
// so a pixel may appear in more than one mask.
func (s *Segmenter) Segment(frame *rover.CameraFrame) rover.ClassMasks {
	masks := rover.ClassMasks{
		Navigable: rover.NewMask(frame.Width, frame.Height),
		Sample:    rover.NewMask(frame.Width, frame.Height),
		Obstacle:  rover.NewMask(frame.Width, frame.Height),
	}

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c0, c1, c2 := frame.At(x, y)
			if s.cfg.ColorSpace == ColorSpaceHLS {
				c0, c1, c2 = RGBToHLS(c0, c1, c2)
			}

			if y >= s.cfg.HorizonRow && s.cfg.Navigable.Contains(c0, c1, c2) {
				masks.Navigable.Set(x, y)
			}
			if s.cfg.Sample.Contains(c0, c1, c2) {
				masks.Sample.Set(x, y)
			}
			if s.cfg.Obstacle.Contains(c0, c1, c2) {
				masks.Obstacle.Set(x, y)
			}
		}
	}

	return masks
}
