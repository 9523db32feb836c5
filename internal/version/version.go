// Package version carries build metadata injected at link time.
package version

var (
	// Version is the semantic version, overridden via -ldflags.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
)

// String renders the version line printed by the version command.
func String() string {
	return Version + " (" + Commit + ")"
}
