package version

var (
	// Version is the semantic version (injected at build time).
	Version = "dev"
	// Commit is the git commit SHA (injected at build time).
	Commit = "unknown"
	// BuildDate is the build timestamp (injected at build time).
	BuildDate = "unknown"
)

// Info returns formatted version information, e.g. "dev (unknown, built unknown)".
func Info() string {
	return Version + " (" + Commit + ", built " + BuildDate + ")"
}

// Banner is the line printed by the version command.
func Banner(binary string) string {
	return binary + " " + Info()
}
