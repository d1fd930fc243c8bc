// Package version reports the build of the flp tools.
package version

import (
	"runtime/debug"
	"strings"
)

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/flpkit/flp/version.Version=$(git describe --dirty)" ./cmd/...
var Version string

// Hash is the short VCS revision recorded in the build info, with a -dirty
// suffix for builds from a modified tree.
var Hash = revision(debug.ReadBuildInfo())

// String is Version if set, otherwise Hash, otherwise "devel".
func String() string {
	switch {
	case Version != "":
		return Version
	case Hash != "":
		return Hash
	}
	return "devel"
}

func revision(info *debug.BuildInfo, ok bool) string {
	if !ok {
		return ""
	}
	var rev string
	var dirty bool
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
	return strings.TrimSpace(rev)
}
