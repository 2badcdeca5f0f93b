package rover

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the navigation state machine's current state.
type Mode int

const (
	ModeForward Mode = iota
	ModeStop
	ModeStuck
)

func (m Mode) String() string {
	switch m {
	case ModeForward:
		return "forward"
	case ModeStop:
		return "stop"
	case ModeStuck:
		return "stuck"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "forward":
		return ModeForward, nil
	case "stop":
		return ModeStop, nil
	case "stuck":
		return ModeStuck, nil
	default:
		return ModeForward, fmt.Errorf("unknown mode %q", value)
	}
}

// Pose is the rover's world position and heading in degrees.
type Pose struct {
	X   float64
	Y   float64
	Yaw float64
}

// Command is the driving output for one control tick. Steer is in degrees.
type Command struct {
	Throttle float64
	Steer    float64
	Brake    float64
}

// Telemetry is what the simulator reports alongside each camera frame.
// A nil Pose means the simulator has no fix yet.
type Telemetry struct {
	Pose       *Pose
	Vel        float64
	NearSample bool
	PickingUp  bool
}

// Perception is the per-tick summary the pipeline hands to the controller.
// MeanDist and MeanAngle describe navigable terrain, or the sample when
// FoundSample is set. MeanAngle is in degrees.
type Perception struct {
	Valid        bool
	GroundPixels int
	SamplePixels int
	MeanDist     float64
	MeanAngle    float64
	FoundSample  bool
}

// Movement is the stuck detector's memory of the last pose that counted as
// progress.
type Movement struct {
	Initialized bool
	LastPose    Pose
	LastMoved   time.Time
	Moved       bool
}

// RoverState is owned by the control loop and mutated once per tick.
type RoverState struct {
	Pose    Pose
	HasPose bool
	Vel     float64

	// Command is the last command issued; it stays in effect when a tick
	// makes no decision.
	Command Command
	Mode    Mode

	Perception Perception

	NearSample bool
	PickingUp  bool
	// SendPickup is raised by the controller and cleared by whoever executes
	// the pickup.
	SendPickup bool

	Movement Movement
}

// NewRoverState returns a state in ModeForward with no pose.
func NewRoverState() *RoverState {
	return &RoverState{Mode: ModeForward}
}

// ApplyTelemetry copies a tick's telemetry into the state. Without a pose the
// previous pose is kept and HasPose is cleared.
func (s *RoverState) ApplyTelemetry(t Telemetry) {
	if t.Pose != nil {
		s.Pose = *t.Pose
		s.HasPose = true
	} else {
		s.HasPose = false
	}
	s.Vel = t.Vel
	s.NearSample = t.NearSample
	s.PickingUp = t.PickingUp
}
