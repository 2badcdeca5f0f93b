// Command rover replays recorded simulator telemetry and camera frames
// through the perception and decision pipeline, logging every tick to SQLite
// and rendering the accumulated world map at the end of the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/monitoring"
	"github.com/banshee-data/rover.nav/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to tuning config JSON (built-in defaults when empty)")
	telemetryPath = flag.String("telemetry", "", "Telemetry JSONL file to replay")
	framesDir     = flag.String("frames", ".", "Directory holding the PNG frames named in the telemetry")
	dbPath        = flag.String("db", "rover_ticks.db", "Path to the SQLite tick log (empty disables recording)")
	plotDir       = flag.String("plot-dir", "", "Directory for the world map plot and final vision image (empty disables)")
	logLevel      = flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	frameWidth    = flag.Int("width", 320, "Expected camera frame width")
	frameHeight   = flag.Int("height", 160, "Expected camera frame height")
	notes         = flag.String("notes", "", "Free-form notes stored with the run")
	startMode     = flag.String("start-mode", "forward", "Initial navigation mode: forward, stop or stuck")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	monitoring.SetLevel(*logLevel)
	log := monitoring.Component("rover")
	log.Info().Str("version", version.Version).Str("git_sha", version.GitSHA).Msg("starting replay")

	if *telemetryPath == "" {
		log.Fatal().Msg("-telemetry is required")
	}

	var cfg *config.TuningConfig
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load tuning config")
		}
	} else {
		cfg = config.DefaultTuningConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := replayOptions{
		TelemetryPath: *telemetryPath,
		FramesDir:     *framesDir,
		DBPath:        *dbPath,
		PlotDir:       *plotDir,
		Width:         *frameWidth,
		Height:        *frameHeight,
		Notes:         *notes,
		StartMode:     *startMode,
	}
	summary, err := replay(ctx, cfg, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("replay failed")
	}

	log.Info().
		Str("run_id", summary.RunID).
		Int("ticks", summary.Ticks).
		Int("pickups", summary.Pickups).
		Int("stuck", summary.StuckTicks).
		Msg("replay complete")
}
