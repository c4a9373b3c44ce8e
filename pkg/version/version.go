// Package version provides build and version information for srcfind.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information, set via ldflags:
//
//	-X github.com/Aman-CERP/srcfind/pkg/version.Version=$(VERSION)
//	-X github.com/Aman-CERP/srcfind/pkg/version.Commit=$(COMMIT)
//	-X github.com/Aman-CERP/srcfind/pkg/version.Date=$(DATE)
var (
	// Version is the release version, or "dev".
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns structured version information. Builds made with
// `go install` carry no ldflags, so the module version and VCS stamp from
// the binary are used when the variables were not set.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String returns a formatted version string with all build info.
func String() string {
	info := GetInfo()
	return fmt.Sprintf("srcfind %s (commit: %s, built: %s, go: %s, %s/%s)",
		info.Version, info.Commit, info.Date, info.GoVersion, info.OS, info.Arch)
}

// Short returns just the version string.
func Short() string {
	return GetInfo().Version
}
