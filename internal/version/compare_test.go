package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchemaCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		written       string
		reader        string
		expectError   bool
		errorContains string
	}{
		{
			name:    "exact match",
			written: "1.0.0",
			reader:  "1.0.0",
		},
		{
			name:    "patch differs",
			written: "1.0.3",
			reader:  "1.0.0",
		},
		{
			name:    "older minor report readable",
			written: "1.0.0",
			reader:  "1.2.0",
		},
		{
			name:          "newer minor report unreadable",
			written:       "1.3.0",
			reader:        "1.2.0",
			expectError:   true,
			errorContains: "newer than reader",
		},
		{
			name:          "major mismatch",
			written:       "2.0.0",
			reader:        "1.0.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:    "dev build skips check",
			written: "main",
			reader:  "1.0.0",
		},
		{
			name:    "v prefix accepted",
			written: "v1.0.0",
			reader:  "1.0.0",
		},
		{
			name:          "invalid written version",
			written:       "not-a-version",
			reader:        "1.0.0",
			expectError:   true,
			errorContains: "invalid report schema version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchemaCompatibility(tt.written, tt.reader)

			if tt.expectError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
