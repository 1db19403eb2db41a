// Package version provides build and version information for ProektSite.
package version

// Version is the current release version. It can be overridden at build time:
//
//	go build -ldflags "-X github.com/Raiwe17/ProektSite/internal/version.Version=x.y.z"
var Version = "0.3.0"
