// Package version reports the devteam release.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionContent string

// Override is set at link time: -ldflags "-X .../internal/version.Override=v1.2.3".
var Override string

// Get returns the release number, preferring a link-time override.
func Get() string {
	if Override != "" {
		return strings.TrimPrefix(Override, "v")
	}
	return strings.TrimSpace(versionContent)
}

// Commit returns the VCS revision recorded in the binary, shortened, or "".
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// String is the version line printed by the CLI.
func String() string {
	if c := Commit(); c != "" {
		return Get() + " (" + c + ")"
	}
	return Get()
}
