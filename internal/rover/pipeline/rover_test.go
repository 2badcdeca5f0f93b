package pipeline

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/rover/l4worldmap"
	"github.com/banshee-data/rover.nav/internal/testutil"
	"github.com/banshee-data/rover.nav/internal/timeutil"
)

const (
	frameW = 320
	frameH = 160
)

func newTestRover(t *testing.T) (*Rover, *timeutil.ManualClock) {
	t.Helper()
	clock := testutil.NewClock()
	r, err := NewRover(testutil.RawTuningConfig(), frameW, frameH, clock)
	require.NoError(t, err)
	return r, clock
}

func pose(x, y, yaw float64) *rover.Pose {
	return &rover.Pose{X: x, Y: y, Yaw: yaw}
}

func TestNewRoverRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultTuningConfig()
	bad := "lab"
	cfg.ColorSpace = &bad
	_, err := NewRover(cfg, frameW, frameH, nil)
	assert.Error(t, err)
}

func TestNewRoverDefaultsConfig(t *testing.T) {
	r, err := NewRover(nil, frameW, frameH, nil)
	require.NoError(t, err)
	assert.Equal(t, rover.ModeForward, r.State().Mode)
	assert.Nil(t, r.Vision())
}

func TestTickOpenGroundDrivesForward(t *testing.T) {
	r, _ := newTestRover(t)

	cmd := r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Sand), rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})

	last := r.Last()
	require.True(t, last.Transition.Decided)
	assert.GreaterOrEqual(t, last.Perception.GroundPixels, 300)
	assert.False(t, last.Perception.FoundSample)
	assert.Equal(t, rover.ModeForward, last.Transition.To)
	assert.Equal(t, 0.2, cmd.Throttle)
	assert.Equal(t, 0.0, cmd.Brake)
	assert.LessOrEqual(t, cmd.Steer, 15.0)
	assert.GreaterOrEqual(t, cmd.Steer, -15.0)

	m := r.WorldMap()
	assert.Greater(t, m.Count(l4worldmap.ChannelNavigable), 0)
	assert.Equal(t, 0, m.Count(l4worldmap.ChannelObstacle))

	vision := r.Vision()
	require.NotNil(t, vision)
	assert.Equal(t, frameW, vision.Bounds().Dx())
	assert.Equal(t, frameH, vision.Bounds().Dy())
}

func TestTickDefaultHLSOpenGround(t *testing.T) {
	r, err := NewRover(config.DefaultTuningConfig(), frameW, frameH, testutil.NewClock())
	require.NoError(t, err)

	// Sand (200,150,100) is HLS (15,150,121): navigable, not sample or obstacle.
	sand := color.RGBA{R: 200, G: 150, B: 100, A: 255}
	cmd := r.Tick(testutil.SolidFrame(frameW, frameH, sand), rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})

	last := r.Last()
	require.True(t, last.Transition.Decided)
	assert.GreaterOrEqual(t, last.Perception.GroundPixels, 300)
	assert.Zero(t, last.Perception.SamplePixels)
	assert.Equal(t, rover.ModeForward, last.Transition.To)
	assert.Equal(t, 0.2, cmd.Throttle)
	assert.Equal(t, 0.0, cmd.Brake)

	m := r.WorldMap()
	assert.Greater(t, m.Count(l4worldmap.ChannelNavigable), 0)
	assert.Equal(t, 0, m.Count(l4worldmap.ChannelObstacle))
	assert.Equal(t, 0, m.Count(l4worldmap.ChannelSample))
}

func TestSetMode(t *testing.T) {
	r, _ := newTestRover(t)
	r.SetMode(rover.ModeStop)
	assert.Equal(t, rover.ModeStop, r.State().Mode)
}

func TestTickBlockedStops(t *testing.T) {
	r, _ := newTestRover(t)

	cmd := r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Rock), rover.Telemetry{Pose: pose(100, 100, 0), Vel: 1.0})

	testutil.AssertCommand(t, cmd, rover.Command{Throttle: 0, Steer: 0, Brake: 10})
	assert.Equal(t, rover.ModeStop, r.State().Mode)
	assert.Equal(t, 0, r.Last().Perception.GroundPixels)
	assert.Greater(t, r.WorldMap().Count(l4worldmap.ChannelObstacle), 0)
}

func TestTickSampleInView(t *testing.T) {
	r, _ := newTestRover(t)

	r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Gold), rover.Telemetry{Pose: pose(50, 60, 90), Vel: 0.5})

	last := r.Last()
	assert.True(t, last.Perception.FoundSample)
	assert.Greater(t, last.Perception.SamplePixels, 3)
	assert.Greater(t, r.WorldMap().Count(l4worldmap.ChannelSample), 0)
}

func TestTickWithoutPoseSkipsMapAndDecision(t *testing.T) {
	r, _ := newTestRover(t)

	cmd := r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Sand), rover.Telemetry{Vel: 0.5})

	assert.Equal(t, rover.Command{}, cmd)
	assert.False(t, r.Last().Transition.Decided)
	assert.Equal(t, 0, r.WorldMap().Count(l4worldmap.ChannelNavigable))
	assert.NotNil(t, r.Vision(), "vision image is still produced")
}

func TestTickNilFrameKeepsCommand(t *testing.T) {
	r, _ := newTestRover(t)
	first := r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Sand), rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})

	cmd := r.Tick(nil, rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})
	assert.Equal(t, first, cmd)
	assert.False(t, r.Last().Transition.Decided)
}

func TestTickRebuildsCalibrationForNewFrameSize(t *testing.T) {
	r, _ := newTestRover(t)

	r.Tick(testutil.SolidFrame(160, 80, testutil.Sand), rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})
	assert.True(t, r.Last().Transition.Decided)
	assert.Equal(t, 160, r.Vision().Bounds().Dx())
}

func TestStalledRoverRecovers(t *testing.T) {
	r, clock := newTestRover(t)
	frame := testutil.SolidFrame(frameW, frameH, testutil.Sand)

	cmd := r.Tick(frame, rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0.5})
	require.Equal(t, 0.2, cmd.Throttle)

	clock.Advance(100 * time.Millisecond)
	cmd = r.Tick(frame, rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0})

	last := r.Last()
	assert.Equal(t, rover.ModeStuck, last.Transition.Evaluated)
	assert.Equal(t, rover.ModeForward, last.Transition.To)
	assert.Equal(t, rover.Command{Throttle: -0.2, Steer: -15, Brake: 0}, cmd)
}

func TestPickupRequestAndClear(t *testing.T) {
	r, _ := newTestRover(t)
	frame := testutil.SolidFrame(frameW, frameH, testutil.Gold)

	r.Tick(frame, rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0, NearSample: true})
	require.True(t, r.Last().SendPickup)
	assert.Equal(t, rover.ModeStop, r.State().Mode)

	r.ClearPickup()
	assert.False(t, r.State().SendPickup)

	r.Tick(frame, rover.Telemetry{Pose: pose(100, 100, 0), Vel: 0, NearSample: true, PickingUp: true})
	assert.False(t, r.Last().SendPickup)
}

func TestVisionIsCopy(t *testing.T) {
	r, _ := newTestRover(t)
	r.Tick(testutil.SolidFrame(frameW, frameH, testutil.Sand), rover.Telemetry{Pose: pose(100, 100, 0)})

	v := r.Vision()
	for i := range v.Pix {
		v.Pix[i] = 7
	}
	assert.NotEqual(t, v.Pix, r.Vision().Pix)
}
