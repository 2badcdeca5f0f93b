package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rover.nav/internal/rover/storage/sqlite"
	"github.com/banshee-data/rover.nav/internal/testutil"
)

func setupReplay(t *testing.T, lines []string) replayOptions {
	t.Helper()
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	require.NoError(t, os.MkdirAll(frames, 0755))
	testutil.WriteSolidPNG(t, filepath.Join(frames, "open.png"), 320, 160, testutil.Sand)
	testutil.WriteSolidPNG(t, filepath.Join(frames, "rock.png"), 320, 160, testutil.Rock)
	testutil.WriteSolidPNG(t, filepath.Join(frames, "gold.png"), 320, 160, testutil.Gold)

	telemetry := filepath.Join(dir, "telemetry.jsonl")
	require.NoError(t, os.WriteFile(telemetry, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	return replayOptions{
		TelemetryPath: telemetry,
		FramesDir:     frames,
		DBPath:        filepath.Join(dir, "ticks.db"),
		PlotDir:       filepath.Join(dir, "plots"),
		Width:         320,
		Height:        160,
		Notes:         "test replay",
	}
}

func TestReplayRecordsTicksAndPlots(t *testing.T) {
	opts := setupReplay(t, []string{
		`{"elapsed": 0.0, "image": "open.png", "position": null, "yaw": 0, "speed": 0}`,
		`{"elapsed": 0.1, "image": "open.png", "position": [100, 100], "yaw": 0, "speed": 0.5}`,
		`{"elapsed": 0.2, "image": "open.png", "position": [100.1, 100], "yaw": 0, "speed": 0}`,
		``,
		`{"elapsed": 0.3, "image": "rock.png", "position": [100.1, 100], "yaw": 0, "speed": 1.0}`,
		`{"elapsed": 0.4, "image": "gold.png", "position": [100.1, 100], "yaw": 0, "speed": 0, "near_sample": 1}`,
		`{"elapsed": 0.5, "image": "gold.png", "position": [100.1, 100], "yaw": 0, "speed": 0, "near_sample": 1, "picking_up": 1}`,
	})

	summary, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Ticks)
	assert.Equal(t, 1, summary.Pickups)
	assert.Equal(t, 1, summary.StuckTicks)
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Files, 3)
	for _, f := range summary.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}

	db, err := sqlite.Open(opts.DBPath)
	require.NoError(t, err)
	defer db.Close()
	store := sqlite.NewTickStore(db)

	ticks, err := store.ListTicks(summary.RunID)
	require.NoError(t, err)
	require.Len(t, ticks, 6)

	assert.False(t, ticks[0].HasPose)
	assert.Equal(t, "forward", ticks[1].ModeTo)
	assert.Equal(t, 0.2, ticks[1].Throttle)
	assert.Equal(t, "stuck", ticks[2].ModeEvaluated)
	assert.Equal(t, -0.2, ticks[2].Throttle)
	assert.Equal(t, "stop", ticks[3].ModeTo)
	assert.Equal(t, 10.0, ticks[3].Brake)
	assert.True(t, ticks[4].SendPickup)
	assert.True(t, ticks[4].FoundSample)
	assert.False(t, ticks[5].SendPickup, "pickup request is cleared once sent")

	run, err := store.GetRun(summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, 6, run.TickCount)
	assert.Equal(t, "test replay", run.Notes)
	assert.NotNil(t, run.EndedAtNs)
}

func TestReplayWithoutOutputs(t *testing.T) {
	opts := setupReplay(t, []string{
		`{"elapsed": 0.0, "image": "open.png", "position": [10, 10], "yaw": 45, "speed": 0.5}`,
	})
	opts.DBPath = ""
	opts.PlotDir = ""

	summary, err := replay(context.Background(), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ticks)
	assert.Empty(t, summary.RunID)
	assert.Empty(t, summary.Files)
}

func TestReplayErrors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		opts := setupReplay(t, []string{`{"elapsed": `})
		_, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
		assert.ErrorContains(t, err, "telemetry line 1")
	})

	t.Run("missing frame", func(t *testing.T) {
		opts := setupReplay(t, []string{`{"elapsed": 0, "image": "nope.png"}`})
		_, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
		assert.Error(t, err)
	})

	t.Run("frame outside frames dir", func(t *testing.T) {
		opts := setupReplay(t, []string{`{"elapsed": 0, "image": "../telemetry.jsonl"}`})
		_, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
		assert.ErrorContains(t, err, "path traversal")
	})

	t.Run("missing telemetry", func(t *testing.T) {
		opts := setupReplay(t, nil)
		opts.TelemetryPath = filepath.Join(t.TempDir(), "absent.jsonl")
		_, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
		assert.Error(t, err)
	})
}

func TestReplayStopsOnCancel(t *testing.T) {
	opts := setupReplay(t, []string{
		`{"elapsed": 0.0, "image": "open.png", "position": [10, 10]}`,
		`{"elapsed": 0.1, "image": "open.png", "position": [10, 10]}`,
	})
	opts.PlotDir = ""
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := replay(ctx, testutil.RawTuningConfig(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Ticks)
}

func TestReplayStartMode(t *testing.T) {
	// Halted on open ground: Stop resumes Forward with cruise throttle.
	opts := setupReplay(t, []string{
		`{"elapsed": 0.0, "image": "open.png", "position": [100, 100], "yaw": 0, "speed": 0}`,
	})
	opts.StartMode = "stop"

	summary, err := replay(context.Background(), testutil.RawTuningConfig(), opts)
	require.NoError(t, err)

	db, err := sqlite.Open(opts.DBPath)
	require.NoError(t, err)
	defer db.Close()
	ticks, err := sqlite.NewTickStore(db).ListTicks(summary.RunID)
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, "stop", ticks[0].ModeFrom)
	assert.Equal(t, "forward", ticks[0].ModeTo)

	opts.StartMode = "reverse"
	_, err = replay(context.Background(), testutil.RawTuningConfig(), opts)
	assert.ErrorContains(t, err, "start mode")
}

func TestTelemetryRecordConversion(t *testing.T) {
	rec := telemetryRecord{Position: &[2]float64{3, 4}, Yaw: 90, Speed: 1.5, NearSample: 1}
	tel := rec.telemetry()
	require.NotNil(t, tel.Pose)
	assert.Equal(t, 3.0, tel.Pose.X)
	assert.Equal(t, 4.0, tel.Pose.Y)
	assert.Equal(t, 90.0, tel.Pose.Yaw)
	assert.True(t, tel.NearSample)
	assert.False(t, tel.PickingUp)

	assert.Nil(t, telemetryRecord{}.telemetry().Pose)
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "rover_ticks.db", *dbPath)
	assert.Equal(t, "info", *logLevel)
	assert.Equal(t, 320, *frameWidth)
	assert.Equal(t, 160, *frameHeight)
	assert.Empty(t, *telemetryPath)
	assert.Equal(t, "forward", *startMode)
	assert.Contains(t, flag.Lookup("config").Usage, "built-in defaults")
}
