package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "dev", info.Version)
}

func TestInfoString(t *testing.T) {
	dev := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-01", Version: "dev"}
	assert.False(t, dev.Release())
	assert.Equal(t, "almanac dev (commit 0123456, built 2026-01-01)", dev.String())

	tagged := Info{CommitHash: "abc", BuildTime: "2026-01-01", Version: "v1.2.0"}
	assert.True(t, tagged.Release())
	assert.Equal(t, "almanac v1.2.0 (commit abc, built 2026-01-01)", tagged.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
