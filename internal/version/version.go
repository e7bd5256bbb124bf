package version

// Version is the service current released version.
// Semantic versioning: https://semver.org/
var Version = "0.3.0"

// DevVersion is the service current development version.
var DevVersion = "0.3.0"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}
