// Package version holds build information.
package version

// Version is set at build time via -ldflags "-X github.com/erieironllc/erieiron-public-common/internal/version.Version=<value>".
var Version = "dev"
