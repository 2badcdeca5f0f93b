package pipeline

import (
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/monitoring"
	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/rover/l1segment"
	"github.com/banshee-data/rover.nav/internal/rover/l2warp"
	"github.com/banshee-data/rover.nav/internal/rover/l3coords"
	"github.com/banshee-data/rover.nav/internal/rover/l4worldmap"
	"github.com/banshee-data/rover.nav/internal/rover/l5decision"
	"github.com/banshee-data/rover.nav/internal/timeutil"
)

// TickResult describes what a single tick decided.
type TickResult struct {
	Command    rover.Command
	Transition l5decision.Transition
	Perception rover.Perception
	Pose       rover.Pose
	HasPose    bool
	Vel        float64
	SendPickup bool
}

// Rover owns the rover state and the stage instances that update it.
// Tick is safe to call from one goroutine while others read WorldMap,
// Vision or State.
type Rover struct {
	mu sync.Mutex

	cfg         *config.TuningConfig
	segmenter   *l1segment.Segmenter
	mapper      *l2warp.Mapper
	mapperW     int
	mapperH     int
	transformer *l3coords.Transformer
	accumulator *l4worldmap.Accumulator
	controller  *l5decision.Controller

	sampleMinPixels int

	state  *rover.RoverState
	vision *image.RGBA
	last   TickResult
	log    zerolog.Logger
}

// NewRover builds every stage from cfg. width and height are the expected
// camera frame size; frames of another size re-derive the perspective
// calibration on arrival.
func NewRover(cfg *config.TuningConfig, width, height int, clock timeutil.Clock) (*Rover, error) {
	if cfg == nil {
		cfg = config.DefaultTuningConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}

	segmenter, err := l1segment.NewSegmenter(l1segment.ConfigFromTuning(cfg))
	if err != nil {
		return nil, err
	}
	mapper, err := l2warp.MapperFromTuning(cfg, width, height)
	if err != nil {
		return nil, err
	}
	transformer, err := l3coords.NewTransformer(l3coords.ConfigFromTuning(cfg))
	if err != nil {
		return nil, err
	}
	accumulator, err := l4worldmap.AccumulatorFromTuning(cfg)
	if err != nil {
		return nil, err
	}
	controller, err := l5decision.NewController(l5decision.ConfigFromTuning(cfg), clock)
	if err != nil {
		return nil, err
	}

	return &Rover{
		cfg:             cfg,
		segmenter:       segmenter,
		mapper:          mapper,
		mapperW:         width,
		mapperH:         height,
		transformer:     transformer,
		accumulator:     accumulator,
		controller:      controller,
		sampleMinPixels: cfg.GetSampleMinPixels(),
		state:           rover.NewRoverState(),
		log:             monitoring.Component("pipeline"),
	}, nil
}

// Tick runs one perception pass and one decision pass and returns the
// command to send for this frame.
func (r *Rover) Tick(frame *rover.CameraFrame, t rover.Telemetry) rover.Command {
	return r.Step(frame, t).Command
}

// Step is Tick with the full per-tick outcome.
func (r *Rover) Step(frame *rover.CameraFrame, t rover.Telemetry) TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	s.ApplyTelemetry(t)
	r.perceive(frame)
	tr := r.controller.Step(s)

	r.last = TickResult{
		Command:    s.Command,
		Transition: tr,
		Perception: s.Perception,
		Pose:       s.Pose,
		HasPose:    s.HasPose,
		Vel:        s.Vel,
		SendPickup: s.SendPickup,
	}
	return r.last
}

// perceive updates the world map, vision image and perception summary from
// one frame. A frame that cannot be rectified leaves the summary invalid so
// the controller keeps its previous command.
func (r *Rover) perceive(frame *rover.CameraFrame) {
	s := r.state
	s.Perception = rover.Perception{}
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return
	}
	if err := r.ensureMapper(frame.Width, frame.Height); err != nil {
		r.log.Warn().Err(err).Int("width", frame.Width).Int("height", frame.Height).Msg("skipping frame")
		return
	}

	warped := r.mapper.WarpAll(r.segmenter.Segment(frame))
	r.vision = warped.Image()

	navigable := l3coords.ToRoverCoords(warped.Navigable)
	sample := l3coords.ToRoverCoords(warped.Sample)
	obstacle := l3coords.ToRoverCoords(warped.Obstacle)

	if s.HasPose {
		r.accumulator.Update(l4worldmap.Observations{
			Navigable: r.transformer.ToWorld(navigable, s.Pose),
			Sample:    r.transformer.ToWorld(sample, s.Pose),
			Obstacle:  r.transformer.ToWorld(obstacle, s.Pose),
		})
	}

	s.Perception = l3coords.Summarize(navigable, sample, r.sampleMinPixels)
	if s.Perception.FoundSample {
		r.log.Debug().
			Int("sample_pixels", s.Perception.SamplePixels).
			Float64("dist", s.Perception.MeanDist).
			Float64("angle", s.Perception.MeanAngle).
			Msg("sample in view")
	}
}

func (r *Rover) ensureMapper(width, height int) error {
	if r.mapper != nil && width == r.mapperW && height == r.mapperH {
		return nil
	}
	m, err := l2warp.MapperFromTuning(r.cfg, width, height)
	if err != nil {
		return err
	}
	r.mapper, r.mapperW, r.mapperH = m, width, height
	return nil
}

// SetMode overrides the navigation mode, e.g. to resume a run in Stop.
func (r *Rover) SetMode(m rover.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Mode = m
}

// ClearPickup lowers the pickup request once the pickup has been sent.
func (r *Rover) ClearPickup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SendPickup = false
}

// State returns a copy of the current rover state.
func (r *Rover) State() rover.RoverState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.state
}

// Last returns the most recent tick outcome.
func (r *Rover) Last() TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// WorldMap returns a snapshot of the accumulated world map.
func (r *Rover) WorldMap() *l4worldmap.WorldMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accumulator.Map()
}

// Vision returns a copy of the last rectified vision image, or nil before the
// first frame.
func (r *Rover) Vision() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vision == nil {
		return nil
	}
	cp := *r.vision
	cp.Pix = append([]uint8(nil), r.vision.Pix...)
	return &cp
}
