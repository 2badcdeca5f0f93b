package l5decision

import (
	"fmt"
	"time"

	"github.com/banshee-data/rover.nav/internal/config"
)

// Config holds the navigation thresholds and command constants.
type Config struct {
	BlockedThresh     int     // navigable pixels below which the path is blocked
	ClearedPathThresh int     // navigable pixels needed to resume from Stop
	Throttle          float64 // cruise throttle
	CrawlThrottle     float64 // throttle while a sample is in view
	Brake             float64 // brake applied when stopping
	MaxVel            float64 // throttle is cut at or above this velocity
	StopVel           float64 // velocity at or below which the rover counts as halted
	SteerLimit        float64 // steering clamp, degrees either side
	TurnSteer         float64 // in-place turn angle while re-scanning

	RecoveryThrottle float64       // throttle for the single-tick stuck nudge
	RecoverySteer    float64       // steering for the single-tick stuck nudge
	IdleTimeout      time.Duration // time without progress before declaring stuck
	StuckMoveDist    float64       // displacement that counts as progress
	StuckYawDeg      float64       // heading change that counts as progress
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BlockedThresh:     cfg.GetBlockedThresh(),
		ClearedPathThresh: cfg.GetClearedPathThresh(),
		Throttle:          cfg.GetThrottle(),
		CrawlThrottle:     cfg.GetCrawlThrottle(),
		Brake:             cfg.GetBrake(),
		MaxVel:            cfg.GetMaxVel(),
		StopVel:           cfg.GetStopVel(),
		SteerLimit:        cfg.GetSteerLimit(),
		TurnSteer:         cfg.GetTurnSteer(),
		RecoveryThrottle:  cfg.GetRecoveryThrottle(),
		RecoverySteer:     cfg.GetRecoverySteer(),
		IdleTimeout:       cfg.GetIdleTimeout(),
		StuckMoveDist:     cfg.GetStuckMoveDist(),
		StuckYawDeg:       cfg.GetStuckYawDeg(),
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.BlockedThresh < 0 {
		return fmt.Errorf("BlockedThresh must be non-negative, got %d", c.BlockedThresh)
	}
	if c.ClearedPathThresh < 0 {
		return fmt.Errorf("ClearedPathThresh must be non-negative, got %d", c.ClearedPathThresh)
	}
	if c.MaxVel <= 0 {
		return fmt.Errorf("MaxVel must be positive, got %f", c.MaxVel)
	}
	if c.StopVel < 0 {
		return fmt.Errorf("StopVel must be non-negative, got %f", c.StopVel)
	}
	if c.SteerLimit <= 0 {
		return fmt.Errorf("SteerLimit must be positive, got %f", c.SteerLimit)
	}
	if c.TurnSteer < -c.SteerLimit || c.TurnSteer > c.SteerLimit {
		return fmt.Errorf("TurnSteer %f outside steering limit ±%f", c.TurnSteer, c.SteerLimit)
	}
	if c.RecoverySteer < -c.SteerLimit || c.RecoverySteer > c.SteerLimit {
		return fmt.Errorf("RecoverySteer %f outside steering limit ±%f", c.RecoverySteer, c.SteerLimit)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IdleTimeout must be positive, got %v", c.IdleTimeout)
	}
	if c.StuckMoveDist < 0 || c.StuckYawDeg < 0 {
		return fmt.Errorf("stuck thresholds must be non-negative, got dist=%f yaw=%f", c.StuckMoveDist, c.StuckYawDeg)
	}
	return nil
}
