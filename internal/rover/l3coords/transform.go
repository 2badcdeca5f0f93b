package l3coords

import (
	"fmt"
	"math"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover"
)

// RoverPoints are detected pixels in the rover-centric frame: Forward grows
// away from the rover, Left grows to its left.
type RoverPoints struct {
	Forward []float64
	Left    []float64
}

// Len returns the number of points.
func (p RoverPoints) Len() int {
	return len(p.Forward)
}

// WorldPoints are clamped world map cell indices.
type WorldPoints struct {
	X []int
	Y []int
}

// Len returns the number of points.
func (p WorldPoints) Len() int {
	return len(p.X)
}

// ToRoverCoords maps every set pixel of a rectified mask to rover
// coordinates, with the rover at the bottom centre of the frame. Points are
// emitted in row-major order.
func ToRoverCoords(mask *rover.Mask) RoverPoints {
	n := mask.Count()
	pts := RoverPoints{Forward: make([]float64, 0, n), Left: make([]float64, 0, n)}
	h, halfW := float64(mask.Height), float64(mask.Width)/2
	for row := 0; row < mask.Height; row++ {
		for col := 0; col < mask.Width; col++ {
			if mask.Pix[row*mask.Width+col] == 0 {
				continue
			}
			pts.Forward = append(pts.Forward, h-float64(row))
			pts.Left = append(pts.Left, halfW-float64(col))
		}
	}
	return pts
}

// ToPolar returns the distance and angle (radians, positive to the left) of
// each rover point.
func ToPolar(pts RoverPoints) (dists, angles []float64) {
	dists = make([]float64, pts.Len())
	angles = make([]float64, pts.Len())
	for i := range pts.Forward {
		f, l := pts.Forward[i], pts.Left[i]
		dists[i] = math.Hypot(f, l)
		angles[i] = math.Atan2(l, f)
	}
	return dists, angles
}

// RotateTranslate rotates rover points by yaw (degrees), divides by scale and
// translates by the rover's world position. No clamping is applied.
func RotateTranslate(pts RoverPoints, pose rover.Pose, scale float64) (xs, ys []float64) {
	a := pose.Yaw * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)

	xs = make([]float64, pts.Len())
	ys = make([]float64, pts.Len())
	for i := range pts.Forward {
		f, l := pts.Forward[i], pts.Left[i]
		xs[i] = (f*cos-l*sin)/scale + pose.X
		ys[i] = (f*sin+l*cos)/scale + pose.Y
	}
	return xs, ys
}

// ClampToGrid truncates world coordinates toward zero and clamps them to
// [0, worldSize-1]. Out-of-range points land on the map edge.
func ClampToGrid(xs, ys []float64, worldSize int) WorldPoints {
	out := WorldPoints{X: make([]int, len(xs)), Y: make([]int, len(ys))}
	for i := range xs {
		out.X[i] = clampCell(xs[i], worldSize)
		out.Y[i] = clampCell(ys[i], worldSize)
	}
	return out
}

func clampCell(v float64, worldSize int) int {
	if math.IsNaN(v) {
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= float64(worldSize-1) {
		return worldSize - 1
	}
	return int(v)
}

// Config holds the world grid geometry shared with the map.
type Config struct {
	WorldSize int
	// Scale is rover pixels per world cell.
	Scale float64
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{WorldSize: cfg.GetWorldSize(), Scale: cfg.GetWorldScale()}
}

// Validate checks the grid geometry.
func (c Config) Validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("WorldSize must be positive, got %d", c.WorldSize)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("Scale must be positive, got %f", c.Scale)
	}
	return nil
}

// Transformer converts rover points to world cells for a fixed grid.
type Transformer struct {
	cfg Config
}

// NewTransformer validates cfg and returns a Transformer.
func NewTransformer(cfg Config) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world grid config: %w", err)
	}
	return &Transformer{cfg: cfg}, nil
}

// ToWorld applies the rover-to-world transform and clamps to the grid.
func (t *Transformer) ToWorld(pts RoverPoints, pose rover.Pose) WorldPoints {
	xs, ys := RotateTranslate(pts, pose, t.cfg.Scale)
	return ClampToGrid(xs, ys, t.cfg.WorldSize)
}
