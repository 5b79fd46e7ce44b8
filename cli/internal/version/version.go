// Package version reports the build of the mika tools.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/satishbabariya/mika-go/support"
	"github.com/satishbabariya/mika-go/translator"
)

const unknown = "unknown"

var (
	// Version is the version of both tools; it follows the translator.
	Version = translator.Version
	// BuildDate is set with -ldflags "-X .../version.BuildDate=...".
	BuildDate = unknown
	// GitCommit is set with -ldflags, or read from the VCS stamp.
	GitCommit = unknown
)

// Info holds version information
type Info struct {
	Tool       string
	Version    string
	BuildDate  string
	GitCommit  string
	Modified   bool
	GoVersion  string
	Platform   string
	RuntimeDir string
}

// Get returns version information for tool
func Get(tool string) Info {
	info := Info{
		Tool:       tool,
		Version:    Version,
		BuildDate:  BuildDate,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		RuntimeDir: support.DefaultDir,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.applyBuildInfo(bi)
	}
	return info
}

// applyBuildInfo fills in what ldflags left unset from the VCS stamp.
func (i *Info) applyBuildInfo(bi *debug.BuildInfo) {
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == unknown {
				i.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if i.BuildDate == unknown {
				i.BuildDate = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("%s version %s (%s %s)", i.Tool, i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	commit := i.GitCommit
	if i.Modified {
		commit += " (modified)"
	}
	return fmt.Sprintf(`%s version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s
Runtime Dir: %s`, i.Tool, i.Version, i.BuildDate, commit, i.Platform, i.GoVersion, i.RuntimeDir)
}
