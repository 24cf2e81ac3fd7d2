// Package version carries build metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.0" ./cmd/hotspot
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("hotspot %s (%s, built %s)", Version, GitSHA, BuildTime)
}
