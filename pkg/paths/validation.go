package paths

import (
	"path/filepath"
	"strings"

	"github.com/datawerks/dataroot/pkg/errors"
)

// ValidateDest checks a relative destination path for a synthetic tree
// entry. Destinations must:
// - Not be empty or "."
// - Not be absolute
// - Not escape the tree via ".." elements
// - Not contain null bytes
func ValidateDest(dest string) error {
	if dest == "" {
		return errors.New(errors.ErrInvalidDest, "destination cannot be empty")
	}

	if strings.Contains(dest, "\x00") {
		return errors.New(errors.ErrInvalidDest, "destination contains null bytes")
	}

	if filepath.IsAbs(dest) {
		return errors.Newf(errors.ErrInvalidDest,
			"destination must be relative: %s", dest)
	}

	cleaned := filepath.Clean(dest)
	if cleaned == "." {
		return errors.Newf(errors.ErrInvalidDest,
			"destination does not name an entry: %s", dest)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrInvalidDest,
			"destination escapes the tree: %s", dest)
	}

	return nil
}

// ValidateDatasetName ensures a dataset type name is valid for use in
// paths, config keys and environment variables. Names must:
// - Not be empty
// - Not contain path separators
// - Not contain dots (the config layer treats them as key delimiters)
// - Not contain control characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "dataset name cannot be empty")
	}

	// Check for path separators
	if strings.ContainsAny(name, "/\\") {
		return errors.New(errors.ErrInvalidInput, "dataset name cannot contain path separators")
	}

	if strings.Contains(name, ".") {
		return errors.New(errors.ErrInvalidInput, "dataset name cannot contain dots")
	}

	// Check for control characters
	for _, r := range name {
		if r < 32 {
			return errors.New(errors.ErrInvalidInput,
				"dataset name contains control characters")
		}
	}

	return nil
}

// SourceEnvVar returns the per-dataset source override variable name,
// e.g. "raw-events" becomes DATAROOT_SRC_RAW_EVENTS.
func SourceEnvVar(dataset string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, dataset)
	return EnvSourcePrefix + mapped
}
