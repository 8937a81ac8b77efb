// Package version holds build metadata, set via ldflags.
package version

import "fmt"

var (
	Version   = "1.6.0"
	BuildDate = "unknown"
)

// String returns the formatted version line shown in the UI and --version.
func String() string {
	return fmt.Sprintf("scopeshot v%s (%s)", Version, BuildDate)
}
