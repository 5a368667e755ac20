package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckSchemaCompatibility checks whether a report written at writtenVersion
// can be read by a binary expecting readerVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - The written minor version must not exceed the reader's
//   - Patch versions can differ
func CheckSchemaCompatibility(writtenVersion, readerVersion string) error {
	writtenVersion = strings.TrimPrefix(writtenVersion, "v")
	readerVersion = strings.TrimPrefix(readerVersion, "v")

	if writtenVersion == "main" || readerVersion == "main" {
		return nil
	}

	written, err := semver.NewVersion(writtenVersion)
	if err != nil {
		return fmt.Errorf("invalid report schema version '%s': %w", writtenVersion, err)
	}

	reader, err := semver.NewVersion(readerVersion)
	if err != nil {
		return fmt.Errorf("invalid reader schema version '%s': %w", readerVersion, err)
	}

	if written.Major() != reader.Major() {
		return fmt.Errorf("schema major version mismatch: report is %d.x.x but reader expects %d.x.x",
			written.Major(), reader.Major())
	}

	if written.Minor() > reader.Minor() {
		return fmt.Errorf("report schema %d.%d.x is newer than reader schema %d.%d.x",
			written.Major(), written.Minor(), reader.Major(), reader.Minor())
	}

	return nil
}
