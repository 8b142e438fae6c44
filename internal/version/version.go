// Package version holds build information for pks.
package version

// Overridden at build time:
// go build -ldflags "-X pks/internal/version.Version=1.0.0 -X pks/internal/version.Commit=abc123"
var (
	// Version is the semantic version of pks
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns every piece of build information, one per line.
func Full() string {
	return "pks version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
