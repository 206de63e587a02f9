package common

import (
	"runtime/debug"
)

// ModulePath is this SDK's module path as it appears in build info.
const ModulePath = "github.com/thand-io/britive"

// Version and GitCommit can be set via ldflags at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// GetModuleBuildInfo reports the SDK version. When the SDK is a dependency
// of another program the version comes from that program's module list,
// otherwise from the main module and its vcs settings.
func GetModuleBuildInfo() (string, string, bool) {
	if Version != "dev" {
		return Version, GitCommit, true
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}

	for _, dep := range info.Deps {
		if dep.Path == ModulePath {
			return dep.Version, dep.Sum, true
		}
	}

	var gitCommit string
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			gitCommit = setting.Value
			break
		}
	}

	return info.Main.Version, gitCommit, true
}
