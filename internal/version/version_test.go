package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldV, oldSHA, oldTime := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldV, oldSHA, oldTime })

	assert.Equal(t, "shieldsim dev (commit unknown, built unknown)", String("shieldsim"))

	Version = "v0.3.0"
	GitSHA = "0123456789abcdef0123"
	BuildTime = "2026-10-01T12:00:00Z"
	assert.Equal(t, "shieldview v0.3.0 (commit 0123456789ab, built 2026-10-01T12:00:00Z)", String("shieldview"))
}
