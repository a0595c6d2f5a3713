package catalog

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity coerces a snapshot quantity cell to a non-negative count.
// Thousands separators are ignored, fractions truncated, junk reads as 0.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
