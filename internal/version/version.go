// Package version reports the veriguard build version.
package version

import (
	"runtime/debug"
)

// Version is set at release time via
// -ldflags "-X github.com/veriguard/veriguard/internal/version.Version=v1.2.3".
// When empty, the module build info is consulted instead.
var Version = ""

// Swappable for testing
var readBuildInfo = debug.ReadBuildInfo

// BuildVersion returns the release version, the module version, or "dev"
// if neither is available.
func BuildVersion() string {
	if Version != "" {
		return Version
	}

	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
