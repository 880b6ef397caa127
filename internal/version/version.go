// Package version holds build metadata injected at link time.
package version

// Version is set with -ldflags "-X git.home.luguber.info/inful/specreplay/internal/version.Version=v0.3.0".
var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build metadata for --version output.
func String() string {
	return Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
