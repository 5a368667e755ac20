package version

// Version is the current version of the fxlab binary.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/fxlab-research/fxlab/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// ReportSchemaVersion is the schema version stamped into every validation
// report. Bump the minor on additive changes, the major on breaking ones.
const ReportSchemaVersion = "1.0.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
