// Package version carries build identification stamped in with -ldflags, e.g.
//
//	-X git.home.luguber.info/inful/pagetree/internal/version.Version=v0.3.0
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String renders the version line printed by the CLI. Missing ldflags
// values fall back to the module build info when it is available.
func String() string {
	version, commit, built := Version, GitCommit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}
	return format(version, commit, built)
}

func format(version, commit, built string) string {
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("pagetree %s (commit %s, built %s)", version, commit, built)
}
