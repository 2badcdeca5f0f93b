package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/monitoring"
	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/rover/monitor"
	"github.com/banshee-data/rover.nav/internal/rover/pipeline"
	"github.com/banshee-data/rover.nav/internal/rover/storage/sqlite"
	"github.com/banshee-data/rover.nav/internal/security"
	"github.com/banshee-data/rover.nav/internal/timeutil"
)

// replayEpoch anchors simulator elapsed seconds to wall-clock time in the
// tick log.
var replayEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// telemetryRecord is one line of the replay file. Position is null before the
// simulator has a fix.
type telemetryRecord struct {
	Elapsed    float64     `json:"elapsed"`
	Image      string      `json:"image"`
	Position   *[2]float64 `json:"position"`
	Yaw        float64     `json:"yaw"`
	Speed      float64     `json:"speed"`
	NearSample int         `json:"near_sample"`
	PickingUp  int         `json:"picking_up"`
}

func (r telemetryRecord) telemetry() rover.Telemetry {
	t := rover.Telemetry{
		Vel:        r.Speed,
		NearSample: r.NearSample != 0,
		PickingUp:  r.PickingUp != 0,
	}
	if r.Position != nil {
		t.Pose = &rover.Pose{X: r.Position[0], Y: r.Position[1], Yaw: r.Yaw}
	}
	return t
}

type replayOptions struct {
	TelemetryPath string
	FramesDir     string
	DBPath        string
	PlotDir       string
	Width         int
	Height        int
	Notes         string
	StartMode     string
}

type replaySummary struct {
	RunID      string
	Ticks      int
	Pickups    int
	StuckTicks int
	Files      []string
}

func replay(ctx context.Context, cfg *config.TuningConfig, opts replayOptions) (*replaySummary, error) {
	log := monitoring.Component("replay")

	clock := timeutil.NewManualClock(replayEpoch)
	r, err := pipeline.NewRover(cfg, opts.Width, opts.Height, clock)
	if err != nil {
		return nil, err
	}
	if opts.StartMode != "" {
		mode, err := rover.ParseMode(opts.StartMode)
		if err != nil {
			return nil, fmt.Errorf("start mode: %w", err)
		}
		r.SetMode(mode)
	}

	f, err := os.Open(opts.TelemetryPath)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	defer f.Close()

	summary := &replaySummary{}

	var store *sqlite.TickStore
	if opts.DBPath != "" {
		db, err := sqlite.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		store = sqlite.NewTickStore(db)
		summary.RunID, err = store.StartRun(opts.Notes)
		if err != nil {
			return nil, err
		}
		log.Info().Str("run_id", summary.RunID).Str("db", opts.DBPath).Msg("recording ticks")
	}

	plotter := monitor.NewMapPlotter()
	if opts.PlotDir != "" {
		if err := plotter.Start(opts.PlotDir); err != nil {
			return nil, err
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("ticks", summary.Ticks).Msg("replay interrupted")
			break
		}
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var rec telemetryRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", line, err)
		}

		var frame *rover.CameraFrame
		if rec.Image != "" {
			framePath, err := security.ResolveWithinDirectory(opts.FramesDir, rec.Image)
			if err != nil {
				return nil, fmt.Errorf("telemetry line %d: %w", line, err)
			}
			img, err := monitor.ReadPNG(framePath)
			if err != nil {
				return nil, fmt.Errorf("telemetry line %d: %w", line, err)
			}
			frame = rover.FrameFromImage(img)
		}

		clock.SetElapsed(replayEpoch, rec.Elapsed)
		res := r.Step(frame, rec.telemetry())

		if res.Transition.Evaluated == rover.ModeStuck {
			summary.StuckTicks++
		}
		if res.SendPickup {
			// The simulator executes the pickup; the request is one-shot.
			summary.Pickups++
			log.Info().Int("line", line).Msg("pickup sent")
			r.ClearPickup()
		}
		if res.HasPose {
			plotter.RecordPose(res.Pose)
		}

		if store != nil {
			if err := store.RecordTick(summary.RunID, tickRecord(summary.Ticks, clock.Now(), res)); err != nil {
				return nil, err
			}
		}
		log.Debug().
			Int("line", line).
			Str("mode", res.Transition.To.String()).
			Float64("throttle", res.Command.Throttle).
			Float64("steer", res.Command.Steer).
			Float64("brake", res.Command.Brake).
			Msg("tick")
		summary.Ticks++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}

	if store != nil {
		if err := store.EndRun(summary.RunID); err != nil {
			return nil, err
		}
	}

	if plotter.IsEnabled() {
		files, err := plotter.Generate(r.WorldMap())
		if err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, files...)
		if vision := r.Vision(); vision != nil {
			visionFile := filepath.Join(opts.PlotDir, "vision.png")
			if err := monitor.WriteVisionPNG(vision, visionFile); err != nil {
				return nil, err
			}
			summary.Files = append(summary.Files, visionFile)
		}
		log.Info().Strs("files", summary.Files).Msg("wrote plots")
	}

	return summary, nil
}

func tickRecord(seq int, now time.Time, res pipeline.TickResult) sqlite.TickRecord {
	return sqlite.TickRecord{
		Seq:           seq,
		TimestampNs:   now.UnixNano(),
		HasPose:       res.HasPose,
		X:             res.Pose.X,
		Y:             res.Pose.Y,
		Yaw:           res.Pose.Yaw,
		Vel:           res.Vel,
		ModeFrom:      res.Transition.From.String(),
		ModeEvaluated: res.Transition.Evaluated.String(),
		ModeTo:        res.Transition.To.String(),
		GroundPixels:  res.Perception.GroundPixels,
		SamplePixels:  res.Perception.SamplePixels,
		MeanDist:      res.Perception.MeanDist,
		MeanAngle:     res.Perception.MeanAngle,
		FoundSample:   res.Perception.FoundSample,
		Throttle:      res.Command.Throttle,
		Steer:         res.Command.Steer,
		Brake:         res.Command.Brake,
		SendPickup:    res.SendPickup,
	}
}
