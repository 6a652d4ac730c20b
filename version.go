package id3tag

import "runtime"

// Version is the semantic version of the id3tag library.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string
	// TagVersion is the ID3v2 major version the library reads and writes
	TagVersion byte
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string
	// BuildTime is the build timestamp (set via ldflags at build time)
	BuildTime string
	// GoVersion is the Go version used to build
	GoVersion string
}

// GetVersionInfo returns detailed version information.
//
// GitCommit, BuildTime, and GoVersion are populated at build time via -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/id3tag.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/id3tag.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}

	return VersionInfo{
		Version:    Version,
		TagVersion: TagVersion,
		GitCommit:  gitCommit,
		BuildTime:  buildTime,
		GoVersion:  goVer,
	}
}

// Variables populated at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
