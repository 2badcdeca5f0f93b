package l5decision

import (
	"math"
	"time"

	"github.com/banshee-data/rover.nav/internal/rover"
)

// recordMovement updates the movement memory. Progress is a displacement
// above StuckMoveDist or a heading change above StuckYawDeg since the last
// recorded pose. Holding near a sample or picking up restarts the idle timer.
func (c *Controller) recordMovement(s *rover.RoverState, now time.Time) {
	mv := &s.Movement
	if !mv.Initialized || s.NearSample || s.PickingUp {
		mv.Initialized = true
		mv.LastPose = s.Pose
		mv.LastMoved = now
		mv.Moved = true
		return
	}

	dist := math.Hypot(s.Pose.X-mv.LastPose.X, s.Pose.Y-mv.LastPose.Y)
	if dist > c.Cfg.StuckMoveDist || yawDelta(s.Pose.Yaw, mv.LastPose.Yaw) > c.Cfg.StuckYawDeg {
		mv.LastPose = s.Pose
		mv.LastMoved = now
		mv.Moved = true
		return
	}
	mv.Moved = false
}

// isStuck reports whether the rover is commanded to move but is not moving,
// or has made no progress for longer than IdleTimeout. Never true near a
// sample.
func (c *Controller) isStuck(s *rover.RoverState, now time.Time) bool {
	if s.NearSample {
		return false
	}
	if s.Vel == 0 && s.Command.Throttle != 0 {
		return true
	}
	return now.Sub(s.Movement.LastMoved) > c.Cfg.IdleTimeout
}

// yawDelta returns the smallest angle in degrees between two headings.
func yawDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
