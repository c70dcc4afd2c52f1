// Package version reports the build identity of the statplot binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X github.com/Sumatoshi-tech/statplot/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns "statplot VERSION (commit: COMMIT, built: DATE)". A dev
// build reports the module version recorded by the Go toolchain, if any.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}

	return fmt.Sprintf("statplot %s (commit: %s, built: %s)", v, Commit, Date)
}
