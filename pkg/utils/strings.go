package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9 -]+`)
	slugDashRe    = regexp.MustCompile(`-+`)
)

// GenerateSlug converts a string into a URL-friendly slug.
// e.g. "GEEKBAR X 25K" -> "geekbar-x-25k"
func GenerateSlug(input string) string {
	s := strings.ToLower(input)
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseInt64 is ParseInt for identifiers.
func ParseInt64(s string, defaultVal int64) int64 {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultVal
	}
	return val
}
