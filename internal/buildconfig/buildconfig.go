package buildconfig

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash
func Commit() string {
	return commit
}

// BuildDate returns the build timestamp
func BuildDate() string {
	return buildDate
}

// VersionInfo returns full version information. calcVersion is the
// calculation version the running process stamps on contracts; it is
// independent of the binary version.
func VersionInfo(calcVersion string) map[string]string {
	return map[string]string{
		"version":      version,
		"commit":       commit,
		"build_date":   buildDate,
		"calc_version": calcVersion,
	}
}
