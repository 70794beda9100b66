// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sitebuilder/internal/version.Version=v0.3.0 \
//	  -X git.home.luguber.info/inful/sitebuilder/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	Version = "unknown"
	Commit  = ""
	Date    = ""
)

// String formats the metadata for --version.
func String() string {
	s := Version
	if Commit != "" {
		s += " (" + Commit + ")"
	}
	if Date != "" {
		s = fmt.Sprintf("%s built %s", s, Date)
	}
	return s
}
