package monitoring

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	assert.True(t, called, "custom logger was not called")

	// nil installs a no-op that must not call the previous logger
	called = false
	SetLogger(nil)
	Logf("test message")
	assert.False(t, called, "no-op logger should not have triggered callback")
}

func TestLogf_Default(t *testing.T) {
	originalLogger := Logger
	originalLogf := Logf
	defer func() {
		Logger = originalLogger
		Logf = originalLogf
	}()

	var buf bytes.Buffer
	Logger = zerolog.New(&buf)
	Logf = defaultLogf

	Logf("test message: %s", "value")
	assert.Contains(t, buf.String(), "test message: value")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetLevel(tt.name))
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestComponent(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	var buf bytes.Buffer
	Logger = zerolog.New(&buf)
	log := Component("decision")
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"decision"`)
}
