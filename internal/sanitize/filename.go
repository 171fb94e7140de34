package sanitize

import (
	"path/filepath"
	"strings"
	"unicode"

	"mediabank/internal/constants"
)

// Characters forbidden in filenames on common filesystems.
const illegalFilenameChars = `<>:"|?*`

// Filename sanitizes a raw client-supplied filename: path components,
// control characters and filesystem-illegal characters are removed or
// replaced. Returns an empty string when nothing usable remains.
func Filename(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ReplaceAll(raw, "\x00", "")
	// Normalize backslashes so filepath.Base strips Windows-style paths
	// on Linux too.
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "." || s == ".." || s == "/" {
		return ""
	}
	s = strings.TrimLeft(s, ".")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || strings.ContainsRune(illegalFilenameChars, r) {
			b.WriteString(constants.FilenameReplacementChar)
		} else {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if len(s) > constants.MaxFilenameLength {
		s = s[:constants.MaxFilenameLength]
	}
	return s
}

// Extension extracts and normalizes the extension of a filename:
// lowercase, no leading dot, alphanumeric only.
func Extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	ext = strings.TrimLeft(ext, ".")

	var b strings.Builder
	b.Grow(len(ext))
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	result := b.String()
	if len(result) > constants.MaxExtensionLength {
		result = result[:constants.MaxExtensionLength]
	}
	return result
}

// ContentDispositionFilename sanitizes a filename for use in a
// Content-Disposition header, dropping characters that would break the
// header or enable injection.
func ContentDispositionFilename(raw string) string {
	s := Filename(raw)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"', '\\', '\r', '\n':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPathTraversal reports whether a stored-file handle contains path
// traversal indicators, including percent-encoded bypass variants.
func IsPathTraversal(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "\x00") {
		return true
	}
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	if strings.Contains(s, "..") {
		return true
	}

	lower := strings.ToLower(s)
	for _, pattern := range []string{"%2f", "%5c", "%2e", "%00"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
