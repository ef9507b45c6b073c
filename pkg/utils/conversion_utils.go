package utils

import "strconv"

// ParsePositiveInt converts s to an int, returning fallback for empty,
// malformed or non-positive input. Used for page/limit query params.
func ParsePositiveInt(s string, fallback int) int {
	num, err := strconv.Atoi(s)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// ParseOptionalBool returns nil when s is empty or not a boolean.
func ParseOptionalBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
