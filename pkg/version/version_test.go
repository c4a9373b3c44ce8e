package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShort_IsDevOrSemver(t *testing.T) {
	v := Short()
	require.NotEmpty(t, v)
	if v == "dev" {
		return
	}
	semver := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	assert.Regexp(t, semver, v)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	str := String()

	assert.Contains(t, str, "srcfind ")
	assert.Contains(t, str, "commit: ")
	assert.Contains(t, str, runtime.Version())
	assert.Contains(t, str, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestGetInfo_PrefersLdflags(t *testing.T) {
	// Given: values injected at build time
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
	Version, Commit, Date = "1.2.3", "abc1234", "2026-01-02T00:00:00Z"

	// When / Then: they win over build metadata
	info := GetInfo()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.Equal(t, "2026-01-02T00:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, "1.2.3", Short())
}

func TestGetInfo_IsJSONSerializable(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, parsed, key)
	}
}
