// Package version reports the build version injected via ldflags.
package version

//nolint:gochecknoglobals // set with -ldflags "-X .../pkg/version.version=..."
var (
	version = "dev"
	buildID = "dev"
)

func GetVersion() string {
	return version
}

func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID
func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}
