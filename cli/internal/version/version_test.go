package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get("mikac")

	assert.Equal(t, "mikac", info.Tool)
	assert.Equal(t, "1.1.0", info.Version)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "/usr/local/include/mika", info.RuntimeDir)
	assert.True(t, strings.HasPrefix(info.String(), "mikac version 1.1.0 ("))
	assert.Contains(t, info.FullString(), "Runtime Dir: /usr/local/include/mika")
}

func TestApplyBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}}

	info := Info{GitCommit: unknown, BuildDate: unknown}
	info.applyBuildInfo(bi)

	assert.Equal(t, "0123456789ab", info.GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildDate)
	assert.True(t, info.Modified)
	assert.Contains(t, info.FullString(), "Git Commit: 0123456789ab (modified)")
}

func TestApplyBuildInfoKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffffffffff"},
	}}

	info := Info{GitCommit: "release-1", BuildDate: "today"}
	info.applyBuildInfo(bi)

	assert.Equal(t, "release-1", info.GitCommit)
	assert.Equal(t, "today", info.BuildDate)
	assert.False(t, info.Modified)
}
