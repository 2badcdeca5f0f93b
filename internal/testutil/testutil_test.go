package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/rover/l1segment"
)

func TestFixtureColoursAreSingleClass(t *testing.T) {
	// Frames are taller than the horizon row so navigable pixels survive.
	seg, err := l1segment.NewSegmenter(l1segment.ConfigFromTuning(RawTuningConfig()))
	require.NoError(t, err)

	tests := []struct {
		name                       string
		frame                      *rover.CameraFrame
		navigable, sample, obstacle bool
	}{
		{"sand", SolidFrame(4, 80, Sand), true, false, false},
		{"rock", SolidFrame(4, 80, Rock), false, false, true},
		{"gold", SolidFrame(4, 80, Gold), false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seg.Segment(tt.frame)
			assert.Equal(t, tt.navigable, m.Navigable.Count() > 0)
			assert.Equal(t, tt.sample, m.Sample.Count() > 0)
			assert.Equal(t, tt.obstacle, m.Obstacle.Count() > 0)
		})
	}
}

func TestSolidFrame(t *testing.T) {
	f := SolidFrame(3, 2, Gold)
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, 2, f.Height)
	r, g, b := f.At(2, 1)
	assert.Equal(t, [3]uint8{200, 200, 20}, [3]uint8{r, g, b})
}

func TestWriteSolidPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sand.png")
	WriteSolidPNG(t, path, 5, 5, Sand)
	assert.FileExists(t, path)
}

func TestNewClock(t *testing.T) {
	assert.Equal(t, Epoch, NewClock().Now())
}

// recordingTB captures failures instead of failing the enclosing test.
type recordingTB struct {
	testing.TB
	errors []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestAssertCommand(t *testing.T) {
	rec := &recordingTB{TB: t}
	AssertCommand(rec, rover.Command{Throttle: 0.2}, rover.Command{Throttle: 0.2})
	assert.Empty(t, rec.errors)

	AssertCommand(rec, rover.Command{Throttle: 0.2}, rover.Command{Brake: 10})
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "Brake:10")
}
