package backend

import (
	"fmt"
	"regexp"
	"strconv"
)

var expiresInPattern = regexp.MustCompile(`^(\d+)([dhm]?)$`)

// ParseExpiresIn converts the backend's expiresIn strings to seconds.
// The format is an integer with an optional single-letter unit suffix:
// "7d" (days), "12h" (hours), "30m" (minutes). A bare integer is raw seconds.
func ParseExpiresIn(s string) (int64, error) {
	m := expiresInPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid expiresIn value %q", s)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiresIn value %q: %w", s, err)
	}

	switch m[2] {
	case "d":
		return n * 86400, nil
	case "h":
		return n * 3600, nil
	case "m":
		return n * 60, nil
	}

	return n, nil
}
