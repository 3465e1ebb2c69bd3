package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// lpModeRegex matches LP mode labels such as "LP01", "LP11a", "LP21b".
// The first digit is the azimuthal number, the second the radial number;
// an optional a/b suffix selects a degenerate orientation.
var lpModeRegex = regexp.MustCompile(`^LP[0-9][1-9][ab]?$`)

// ValidateModeLabel validates an LP mode label string.
// Labels must follow the LPlm[a|b] convention with a non-zero radial number.
func ValidateModeLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidModeConfig, "mode label cannot be empty")
	}
	if !lpModeRegex.MatchString(label) {
		return New(ErrCodeInvalidModeConfig, "invalid LP mode label: %q", label)
	}
	return nil
}

// ValidateDesignFilename validates a design output filename.
// It ensures the filename is a simple basename without path components
// and carries the .ind extension expected by the external CAD tool.
func ValidateDesignFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "design filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "design filename cannot contain path separators")
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "design filename contains invalid control characters")
		}
	}
	if !strings.HasSuffix(filename, ".ind") {
		return New(ErrCodeInvalidInput, "design filename must end in .ind: %q", filename)
	}
	return nil
}

// ValidatePositive validates that a named scalar parameter is strictly positive.
func ValidatePositive(name string, value float64) error {
	if value <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %g", name, value)
	}
	return nil
}

// ValidateNonNegative validates that a named scalar parameter is zero or greater.
func ValidateNonNegative(name string, value float64) error {
	if value < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %g", name, value)
	}
	return nil
}

// paramPathRegex matches dotted configuration parameter paths such as
// "pl_params.Num_Cores_Ring".
var paramPathRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_.]*)+$`)

// ValidateParamPath validates a dotted configuration override path.
func ValidateParamPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "parameter path cannot be empty")
	}
	if !paramPathRegex.MatchString(path) {
		return New(ErrCodeInvalidConfig, "invalid parameter path: %q", path)
	}
	return nil
}
