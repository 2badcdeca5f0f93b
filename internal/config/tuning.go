package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Threshold is a channel-wise triple used for colour band limits.
type Threshold [3]int

// Point2 is an (x, y) image coordinate.
type Point2 [2]float64

// TuningConfig represents the root configuration for rover tuning parameters.
// Every field is optional; the Get* accessors supply defaults for nil fields
// so partial JSON files are safe.
type TuningConfig struct {
	// Colour segmentation
	ColorSpace         *string    `json:"color_space,omitempty"` // "hls" or "raw"
	NavigableThreshMin *Threshold `json:"navigable_thresh_min,omitempty"`
	NavigableThreshMax *Threshold `json:"navigable_thresh_max,omitempty"`
	SampleThreshMin    *Threshold `json:"sample_thresh_min,omitempty"`
	SampleThreshMax    *Threshold `json:"sample_thresh_max,omitempty"`
	ObstacleThreshMin  *Threshold `json:"obstacle_thresh_min,omitempty"`
	ObstacleThreshMax  *Threshold `json:"obstacle_thresh_max,omitempty"`
	HorizonRow         *int       `json:"horizon_row,omitempty"`

	// Perspective rectification
	SourcePoints *[4]Point2 `json:"source_points,omitempty"`
	DestSize     *float64   `json:"dest_size,omitempty"`
	BottomOffset *float64   `json:"bottom_offset,omitempty"`

	// World map
	WorldSize       *int     `json:"world_size,omitempty"`
	WorldScale      *float64 `json:"world_scale,omitempty"`
	MapIntensity    *int     `json:"map_intensity,omitempty"`
	SampleMinPixels *int     `json:"sample_min_pixels,omitempty"`

	// Navigation
	BlockedThresh     *int     `json:"blocked_thresh,omitempty"`
	ClearedPathThresh *int     `json:"cleared_path_thresh,omitempty"`
	Throttle          *float64 `json:"throttle,omitempty"`
	CrawlThrottle     *float64 `json:"crawl_throttle,omitempty"`
	Brake             *float64 `json:"brake,omitempty"`
	MaxVel            *float64 `json:"max_vel,omitempty"`
	StopVel           *float64 `json:"stop_vel,omitempty"`
	SteerLimit        *float64 `json:"steer_limit,omitempty"`
	TurnSteer         *float64 `json:"turn_steer,omitempty"`

	// Stuck detection and recovery
	RecoveryThrottle *float64 `json:"recovery_throttle,omitempty"`
	RecoverySteer    *float64 `json:"recovery_steer,omitempty"`
	IdleTimeout      *string  `json:"idle_timeout,omitempty"` // duration string like "2s"
	StuckMoveDist    *float64 `json:"stuck_move_dist,omitempty"`
	StuckYawDeg      *float64 `json:"stuck_yaw_deg,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64       { return &v }
func ptrString(v string) *string          { return &v }
func ptrInt(v int) *int                   { return &v }
func ptrThreshold(v Threshold) *Threshold { return &v }
func ptrPoints(v [4]Point2) *[4]Point2    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		ColorSpace:         ptrString(e.GetColorSpace()),
		NavigableThreshMin: ptrThreshold(e.GetNavigableThreshMin()),
		NavigableThreshMax: ptrThreshold(e.GetNavigableThreshMax()),
		SampleThreshMin:    ptrThreshold(e.GetSampleThreshMin()),
		SampleThreshMax:    ptrThreshold(e.GetSampleThreshMax()),
		ObstacleThreshMin:  ptrThreshold(e.GetObstacleThreshMin()),
		ObstacleThreshMax:  ptrThreshold(e.GetObstacleThreshMax()),
		HorizonRow:         ptrInt(e.GetHorizonRow()),
		SourcePoints:       ptrPoints(e.GetSourcePoints()),
		DestSize:           ptrFloat64(e.GetDestSize()),
		BottomOffset:       ptrFloat64(e.GetBottomOffset()),
		WorldSize:          ptrInt(e.GetWorldSize()),
		WorldScale:         ptrFloat64(e.GetWorldScale()),
		MapIntensity:       ptrInt(e.GetMapIntensity()),
		SampleMinPixels:    ptrInt(e.GetSampleMinPixels()),
		BlockedThresh:      ptrInt(e.GetBlockedThresh()),
		ClearedPathThresh:  ptrInt(e.GetClearedPathThresh()),
		Throttle:           ptrFloat64(e.GetThrottle()),
		CrawlThrottle:      ptrFloat64(e.GetCrawlThrottle()),
		Brake:              ptrFloat64(e.GetBrake()),
		MaxVel:             ptrFloat64(e.GetMaxVel()),
		StopVel:            ptrFloat64(e.GetStopVel()),
		SteerLimit:         ptrFloat64(e.GetSteerLimit()),
		TurnSteer:          ptrFloat64(e.GetTurnSteer()),
		RecoveryThrottle:   ptrFloat64(e.GetRecoveryThrottle()),
		RecoverySteer:      ptrFloat64(e.GetRecoverySteer()),
		IdleTimeout:        ptrString(e.GetIdleTimeout().String()),
		StuckMoveDist:      ptrFloat64(e.GetStuckMoveDist()),
		StuckYawDeg:        ptrFloat64(e.GetStuckYawDeg()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/rover/l5decision/
		"../../../../" + DefaultConfigPath, // from internal/rover/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ColorSpace != nil {
		switch *c.ColorSpace {
		case "hls", "raw":
		default:
			return fmt.Errorf("color_space must be \"hls\" or \"raw\", got %q", *c.ColorSpace)
		}
	}

	bands := []struct {
		name     string
		min, max Threshold
	}{
		{"navigable", c.GetNavigableThreshMin(), c.GetNavigableThreshMax()},
		{"sample", c.GetSampleThreshMin(), c.GetSampleThreshMax()},
		{"obstacle", c.GetObstacleThreshMin(), c.GetObstacleThreshMax()},
	}
	for _, b := range bands {
		for i := 0; i < 3; i++ {
			if b.min[i] < 0 || b.max[i] > 255 {
				return fmt.Errorf("%s threshold channel %d must be within [0, 255], got [%d, %d]", b.name, i, b.min[i], b.max[i])
			}
			if b.min[i] > b.max[i] {
				return fmt.Errorf("%s threshold channel %d min %d exceeds max %d", b.name, i, b.min[i], b.max[i])
			}
		}
	}

	if c.HorizonRow != nil && *c.HorizonRow < 0 {
		return fmt.Errorf("horizon_row must be non-negative, got %d", *c.HorizonRow)
	}
	if c.DestSize != nil && *c.DestSize <= 0 {
		return fmt.Errorf("dest_size must be positive, got %f", *c.DestSize)
	}
	if c.WorldSize != nil && *c.WorldSize <= 0 {
		return fmt.Errorf("world_size must be positive, got %d", *c.WorldSize)
	}
	if c.WorldScale != nil && *c.WorldScale <= 0 {
		return fmt.Errorf("world_scale must be positive, got %f", *c.WorldScale)
	}
	if c.MapIntensity != nil && (*c.MapIntensity < 1 || *c.MapIntensity > 255) {
		return fmt.Errorf("map_intensity must be in [1, 255], got %d", *c.MapIntensity)
	}
	if c.SampleMinPixels != nil && *c.SampleMinPixels < 0 {
		return fmt.Errorf("sample_min_pixels must be non-negative, got %d", *c.SampleMinPixels)
	}
	if c.BlockedThresh != nil && *c.BlockedThresh < 0 {
		return fmt.Errorf("blocked_thresh must be non-negative, got %d", *c.BlockedThresh)
	}
	if c.ClearedPathThresh != nil && *c.ClearedPathThresh < 0 {
		return fmt.Errorf("cleared_path_thresh must be non-negative, got %d", *c.ClearedPathThresh)
	}
	if c.MaxVel != nil && *c.MaxVel <= 0 {
		return fmt.Errorf("max_vel must be positive, got %f", *c.MaxVel)
	}
	if c.StopVel != nil && *c.StopVel < 0 {
		return fmt.Errorf("stop_vel must be non-negative, got %f", *c.StopVel)
	}
	if c.SteerLimit != nil && *c.SteerLimit <= 0 {
		return fmt.Errorf("steer_limit must be positive, got %f", *c.SteerLimit)
	}

	if c.IdleTimeout != nil && *c.IdleTimeout != "" {
		if _, err := time.ParseDuration(*c.IdleTimeout); err != nil {
			return fmt.Errorf("invalid idle_timeout '%s': %w", *c.IdleTimeout, err)
		}
	}

	return nil
}

// GetColorSpace returns the segmentation colour space or the default ("hls").
func (c *TuningConfig) GetColorSpace() string {
	if c.ColorSpace == nil || *c.ColorSpace == "" {
		return "hls"
	}
	return *c.ColorSpace
}

// GetNavigableThreshMin returns the navigable terrain lower band.
func (c *TuningConfig) GetNavigableThreshMin() Threshold {
	if c.NavigableThreshMin == nil {
		return Threshold{0, 100, 70}
	}
	return *c.NavigableThreshMin
}

// GetNavigableThreshMax returns the navigable terrain upper band.
func (c *TuningConfig) GetNavigableThreshMax() Threshold {
	if c.NavigableThreshMax == nil {
		return Threshold{255, 255, 255}
	}
	return *c.NavigableThreshMax
}

// GetSampleThreshMin returns the rock sample lower band.
func (c *TuningConfig) GetSampleThreshMin() Threshold {
	if c.SampleThreshMin == nil {
		return Threshold{0, 100, 0}
	}
	return *c.SampleThreshMin
}

// GetSampleThreshMax returns the rock sample upper band.
func (c *TuningConfig) GetSampleThreshMax() Threshold {
	if c.SampleThreshMax == nil {
		return Threshold{255, 255, 70}
	}
	return *c.SampleThreshMax
}

// GetObstacleThreshMin returns the obstacle lower band.
func (c *TuningConfig) GetObstacleThreshMin() Threshold {
	if c.ObstacleThreshMin == nil {
		return Threshold{0, 0, 0}
	}
	return *c.ObstacleThreshMin
}

// GetObstacleThreshMax returns the obstacle upper band.
func (c *TuningConfig) GetObstacleThreshMax() Threshold {
	if c.ObstacleThreshMax == nil {
		return Threshold{255, 100, 255}
	}
	return *c.ObstacleThreshMax
}

// GetHorizonRow returns the row above which navigable pixels are discarded.
func (c *TuningConfig) GetHorizonRow() int {
	if c.HorizonRow == nil {
		return 70
	}
	return *c.HorizonRow
}

// GetSourcePoints returns the camera-frame quadrilateral for rectification,
// calibrated against a 320x160 frame.
func (c *TuningConfig) GetSourcePoints() [4]Point2 {
	if c.SourcePoints == nil {
		return [4]Point2{{14, 140}, {301, 140}, {200, 96}, {118, 96}}
	}
	return *c.SourcePoints
}

// GetDestSize returns half the side of the destination square in pixels.
func (c *TuningConfig) GetDestSize() float64 {
	if c.DestSize == nil {
		return 5
	}
	return *c.DestSize
}

// GetBottomOffset returns the destination square offset from the frame bottom.
func (c *TuningConfig) GetBottomOffset() float64 {
	if c.BottomOffset == nil {
		return 6
	}
	return *c.BottomOffset
}

// GetWorldSize returns the world map side length in cells.
func (c *TuningConfig) GetWorldSize() int {
	if c.WorldSize == nil {
		return 200
	}
	return *c.WorldSize
}

// GetWorldScale returns the rover pixels per world cell.
func (c *TuningConfig) GetWorldScale() float64 {
	if c.WorldScale == nil {
		return 30
	}
	return *c.WorldScale
}

// GetMapIntensity returns the value written to detected world map cells.
func (c *TuningConfig) GetMapIntensity() int {
	if c.MapIntensity == nil {
		return 255
	}
	return *c.MapIntensity
}

// GetSampleMinPixels returns the rectified pixel count a sample must exceed
// before it overrides the steering target.
func (c *TuningConfig) GetSampleMinPixels() int {
	if c.SampleMinPixels == nil {
		return 3
	}
	return *c.SampleMinPixels
}

// GetBlockedThresh returns the navigable pixel count below which the path is blocked.
func (c *TuningConfig) GetBlockedThresh() int {
	if c.BlockedThresh == nil {
		return 300
	}
	return *c.BlockedThresh
}

// GetClearedPathThresh returns the navigable pixel count needed to resume driving.
func (c *TuningConfig) GetClearedPathThresh() int {
	if c.ClearedPathThresh == nil {
		return 200
	}
	return *c.ClearedPathThresh
}

// GetThrottle returns the cruise throttle.
func (c *TuningConfig) GetThrottle() float64 {
	if c.Throttle == nil {
		return 0.2
	}
	return *c.Throttle
}

// GetCrawlThrottle returns the throttle used while a sample is in view.
func (c *TuningConfig) GetCrawlThrottle() float64 {
	if c.CrawlThrottle == nil {
		return 0.1
	}
	return *c.CrawlThrottle
}

// GetBrake returns the brake value applied when stopping.
func (c *TuningConfig) GetBrake() float64 {
	if c.Brake == nil {
		return 10
	}
	return *c.Brake
}

// GetMaxVel returns the velocity at which throttle is cut.
func (c *TuningConfig) GetMaxVel() float64 {
	if c.MaxVel == nil {
		return 2.0
	}
	return *c.MaxVel
}

// GetStopVel returns the velocity below which the rover counts as halted.
func (c *TuningConfig) GetStopVel() float64 {
	if c.StopVel == nil {
		return 0.2
	}
	return *c.StopVel
}

// GetSteerLimit returns the symmetric steering clamp in degrees.
func (c *TuningConfig) GetSteerLimit() float64 {
	if c.SteerLimit == nil {
		return 15
	}
	return *c.SteerLimit
}

// GetTurnSteer returns the in-place turn steering angle in degrees.
func (c *TuningConfig) GetTurnSteer() float64 {
	if c.TurnSteer == nil {
		return -15
	}
	return *c.TurnSteer
}

// GetRecoveryThrottle returns the throttle applied by the stuck recovery nudge.
func (c *TuningConfig) GetRecoveryThrottle() float64 {
	if c.RecoveryThrottle == nil {
		return -0.2
	}
	return *c.RecoveryThrottle
}

// GetRecoverySteer returns the steering angle applied by the stuck recovery nudge.
func (c *TuningConfig) GetRecoverySteer() float64 {
	if c.RecoverySteer == nil {
		return -15
	}
	return *c.RecoverySteer
}

// GetIdleTimeout parses and returns the IdleTimeout as a time.Duration.
func (c *TuningConfig) GetIdleTimeout() time.Duration {
	if c.IdleTimeout == nil || *c.IdleTimeout == "" {
		return 2 * time.Second // default
	}
	d, err := time.ParseDuration(*c.IdleTimeout)
	if err != nil {
		return 2 * time.Second // default on parse error
	}
	return d
}

// GetStuckMoveDist returns the displacement that counts as progress.
func (c *TuningConfig) GetStuckMoveDist() float64 {
	if c.StuckMoveDist == nil {
		return 2
	}
	return *c.StuckMoveDist
}

// GetStuckYawDeg returns the heading change in degrees that counts as progress.
func (c *TuningConfig) GetStuckYawDeg() float64 {
	if c.StuckYawDeg == nil {
		return 2
	}
	return *c.StuckYawDeg
}
