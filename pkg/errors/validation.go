package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches the six-digit hex colors accepted for backgrounds.
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateHexColor validates a "#rrggbb" color string.
func ValidateHexColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rrggbb)", color)
	}
	return nil
}

// ValidateScale validates a scale multiplier. It must be finite and positive.
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return New(ErrCodeInvalidScale, "scale must be finite")
	}
	if scale <= 0 {
		return New(ErrCodeInvalidScale, "scale must be positive, got %g", scale)
	}
	return nil
}

// classPrefixRegex matches a CSS class name that is safe to splice into a
// selector without escaping.
var classPrefixRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]{0,63}$`)

// ValidateClassPrefix validates the class prefix of exported markup.
func ValidateClassPrefix(prefix string) error {
	if !classPrefixRegex.MatchString(prefix) {
		return New(ErrCodeInvalidInput, "invalid class prefix %q (letters, digits, - and _, starting with a letter)", prefix)
	}
	return nil
}

// ValidateFilename validates an image filename used in exported markup.
// It must be a basename without control characters or path separators.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "filename cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidInput, "filename too long (max 255 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filename contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "filename cannot contain path separators")
	}
	return nil
}

// ValidatePath validates a relative file path referenced from a composition
// document. It prevents path traversal out of the document directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
