// Package version reports the build version of the media-variables command
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X bennypowers.dev/mediavars/internal/version.Version=v1.0.0"
var (
	Version = "dev"
	Commit  = ""
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// String returns the release version. Without ldflags it falls back to the
// module version recorded by go install, then to "dev".
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// Full returns the version with the VCS revision when one is known
func Full() string {
	revision, dirty := vcs()
	if revision == "" {
		return String()
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s)", String(), revision)
}

// vcs returns the commit, preferring the ldflags value over build settings
func vcs() (revision string, dirty bool) {
	if Commit != "" {
		return Commit, false
	}
	info, ok := readBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return revision, dirty
}
