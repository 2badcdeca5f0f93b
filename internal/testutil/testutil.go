// Package testutil provides shared test fixtures for the rover packages:
// synthetic camera frames, a deterministic clock and a raw-RGB tuning config.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/timeutil"
)

// Epoch is the start time of every test clock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Common frame colours, chosen so that under RawTuningConfig each one falls
// into exactly one class band.
var (
	Sand = color.RGBA{R: 200, G: 200, B: 200, A: 255} // navigable
	Rock = color.RGBA{A: 255}                         // obstacle
	Gold = color.RGBA{R: 200, G: 200, B: 20, A: 255}  // sample
)

// NewClock returns a manual clock set to Epoch.
func NewClock() *timeutil.ManualClock {
	return timeutil.NewManualClock(Epoch)
}

// RawTuningConfig returns the default tuning with raw-RGB thresholding so
// that test frame colours map directly onto class bands.
func RawTuningConfig() *config.TuningConfig {
	cfg := config.DefaultTuningConfig()
	raw := "raw"
	cfg.ColorSpace = &raw
	return cfg
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// SolidFrame returns a w×h camera frame filled with c.
func SolidFrame(w, h int, c color.RGBA) *rover.CameraFrame {
	return rover.FrameFromImage(SolidImage(w, h, c))
}

// WriteSolidPNG writes a w×h PNG filled with c to path.
func WriteSolidPNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, SolidImage(w, h, c)); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// AssertCommand checks a command field by field.
func AssertCommand(t testing.TB, got, want rover.Command) {
	t.Helper()
	if got != want {
		t.Errorf("command = %+v, want %+v", got, want)
	}
}
