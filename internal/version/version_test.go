package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := [3]string{Version, GitSHA, BuildTime}
	t.Cleanup(func() { Version, GitSHA, BuildTime = orig[0], orig[1], orig[2] })

	Version, GitSHA, BuildTime = "v0.3.1", "abc123", "2024-05-01T10:00:00Z"
	assert.Equal(t, "rover v0.3.1 (abc123, built 2024-05-01T10:00:00Z)", String())
}
