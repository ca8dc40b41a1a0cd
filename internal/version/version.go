// Package version reports which sysproxy build is running.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at link time, e.g.
// -ldflags "-X github.com/rennerdo30/sysproxy/internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String is the one-line build description.
func String() string {
	return fmt.Sprintf("sysproxy %s (%s) built %s", Version, GitCommit, BuildTime)
}

// Full is String followed by the toolchain and target, as printed by
// "sysproxy version".
func Full() string {
	return fmt.Sprintf("%s - Go %s %s", String(), runtime.Version(), platform())
}

// UserAgent identifies "sysproxy ctl" requests to a running API.
func UserAgent() string {
	return "sysproxy/" + Version + " (" + platform() + ")"
}

// Info is the body of GET /api/v1/version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	// Supported is false where the system proxy cannot be managed.
	Supported bool `json:"proxy_supported"`
}

// GetInfo fills Info for this build.
func GetInfo(supported bool) Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  platform(),
		Supported: supported,
	}
}
