package l5decision

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/banshee-data/rover.nav/internal/monitoring"
	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/timeutil"
)

// Transition records what one Step did to the mode. Evaluated is the mode
// after the stuck and near-sample overrides, before the state's own logic ran.
type Transition struct {
	From      rover.Mode
	Evaluated rover.Mode
	To        rover.Mode
	// Decided is false when the tick was skipped for lack of a vision fix.
	Decided bool
	// PickupRequested is true when this tick raised SendPickup.
	PickupRequested bool
}

// Controller implements the Forward/Stop/Stuck state machine.
type Controller struct {
	Cfg   Config
	clock timeutil.Clock
	log   zerolog.Logger
}

// NewController constructs a controller with the given configuration. The
// clock times stuck detection.
func NewController(cfg Config, clock timeutil.Clock) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid navigation config: %w", err)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Controller{Cfg: cfg, clock: clock, log: monitoring.Component("decision")}, nil
}

// Step decides the command for the current tick and updates s in place.
func (c *Controller) Step(s *rover.RoverState) Transition {
	tr := Transition{From: s.Mode, Evaluated: s.Mode, To: s.Mode}

	// No vision fix yet: keep the previous command.
	if !s.Perception.Valid || !s.HasPose {
		return tr
	}
	tr.Decided = true

	now := c.clock.Now()
	c.recordMovement(s, now)

	if c.isStuck(s, now) {
		s.Mode = rover.ModeStuck
	}
	if s.NearSample {
		s.Mode = rover.ModeStop
	}
	tr.Evaluated = s.Mode

	steer := clamp(s.Perception.MeanAngle, -c.Cfg.SteerLimit, c.Cfg.SteerLimit)
	switch s.Mode {
	case rover.ModeForward:
		c.forward(s, steer)
	case rover.ModeStop:
		c.stop(s, steer)
	case rover.ModeStuck:
		c.recover(s)
	}

	if s.NearSample && s.Vel == 0 && !s.PickingUp {
		s.SendPickup = true
		tr.PickupRequested = true
	}

	tr.To = s.Mode
	if tr.From != tr.To || tr.Evaluated != tr.From {
		c.log.Debug().
			Str("from", tr.From.String()).
			Str("evaluated", tr.Evaluated.String()).
			Str("to", tr.To.String()).
			Int("ground_pixels", s.Perception.GroundPixels).
			Float64("vel", s.Vel).
			Msg("mode transition")
	}
	if tr.PickupRequested {
		c.log.Info().Float64("x", s.Pose.X).Float64("y", s.Pose.Y).Msg("requesting sample pickup")
	}
	return tr
}

// forward drives toward the steering target while the path is clear.
func (c *Controller) forward(s *rover.RoverState, steer float64) {
	if s.Perception.GroundPixels < c.Cfg.BlockedThresh {
		s.Command = rover.Command{Throttle: 0, Steer: 0, Brake: c.Cfg.Brake}
		s.Mode = rover.ModeStop
		return
	}

	throttle := 0.0
	if s.Vel < c.Cfg.MaxVel {
		throttle = c.Cfg.Throttle
	}
	if s.Perception.FoundSample {
		throttle = c.Cfg.CrawlThrottle
	}
	s.Command = rover.Command{Throttle: throttle, Steer: steer, Brake: 0}
}

// stop brakes to a halt, then turns in place until the path clears.
func (c *Controller) stop(s *rover.RoverState, steer float64) {
	if s.Vel > c.Cfg.StopVel || s.NearSample {
		s.Command = rover.Command{Throttle: 0, Steer: 0, Brake: c.Cfg.Brake}
		return
	}

	if s.Perception.GroundPixels < c.Cfg.ClearedPathThresh {
		s.Command = rover.Command{Throttle: 0, Steer: c.Cfg.TurnSteer, Brake: 0}
		return
	}

	s.Command = rover.Command{Throttle: c.Cfg.Throttle, Steer: steer, Brake: 0}
	s.Mode = rover.ModeForward
}

// recover applies a single-tick nudge and hands back to Forward.
func (c *Controller) recover(s *rover.RoverState) {
	s.Command = rover.Command{Throttle: c.Cfg.RecoveryThrottle, Steer: c.Cfg.RecoverySteer, Brake: 0}
	s.Mode = rover.ModeForward
}

// clamp keeps value inside [lo, hi].
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
