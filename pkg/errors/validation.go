package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates one segment of a package coordinate.
// It rejects names that could be used for path traversal or injection attacks
// once they are turned into registry URLs or store keys.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
//
// Ecosystem-specific rules are left to the registry clients.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPURL, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPURL, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPURL, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPURL, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// sourceSchemes lists the URI schemes accepted for location fields.
// The "git+" forms follow the SPDX download location convention.
var sourceSchemes = []string{
	"http://", "https://",
	"git+https://", "git+http://", "git+ssh://", "git+file://", "git://",
	"file://",
}

// ValidateLocation validates a source or download location URI.
func ValidateLocation(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidValue, "location cannot be empty")
	}
	for _, r := range raw {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidValue, "location contains invalid characters")
		}
	}
	for _, s := range sourceSchemes {
		if strings.HasPrefix(raw, s) {
			return nil
		}
	}
	return New(ErrCodeInvalidValue, "unsupported location scheme in %q", raw)
}

// ValidatePath validates a file path reported by a scanner, relative to the
// root of the scanned tree.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
