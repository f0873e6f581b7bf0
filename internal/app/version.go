package app

import "fmt"

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/heartmarshall/studybuddy/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns a formatted version string for the startup log, the
// REPL banner and -version.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}

// userAgent tags the configured product name with the build version, so the
// remote service sees e.g. "studybuddy-cli/1.0.0". An empty product sends no
// User-Agent of our own.
func userAgent(product string) string {
	if product == "" {
		return ""
	}
	return product + "/" + Version
}
