package utils

import "regexp"

const maxURLSafeLength = 128

var urlSafePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// IsURLSafe reports whether value can be used as one path segment of a storage key or URL.
func IsURLSafe(value string) bool {
	if value == "" || len(value) > maxURLSafeLength {
		return false
	}
	return urlSafePattern.MatchString(value)
}
