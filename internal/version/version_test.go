package version

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLdflagsOverride(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version = "v1.2.0"
	GitCommit = "abcdef0123456"
	BuildTime = "2024-03-01T10:00:00Z"

	info := GetBuildInfo()
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "abcdef0123456", info.GitCommit)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), info.BuildTime)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.True(t, IsRelease())

	out := info.String()
	assert.Contains(t, out, "Version: v1.2.0")
	assert.Contains(t, out, "Commit: abcdef0123456")
	assert.Contains(t, out, "Built: 2024-03-01T10:00:00Z")
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("").IsZero())
	assert.False(t, parseBuildTime("2024-03-01 10:00:00").IsZero())
}
