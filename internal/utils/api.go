package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseTime parses an ISO 8601 timestamp as returned by the MBTA v3 API
// (e.g. "2026-08-23T10:00:00-04:00"). The second return value reports
// whether the input was a parseable, non-empty timestamp.
func ParseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// JoinIDs joins a list of upstream IDs into the comma-separated form the
// MBTA v3 API expects for filter parameters.
func JoinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

// ContainsFold reports whether any element of haystack equals needle,
// ignoring case.
func ContainsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// FormatCountdown converts a number of seconds into a human-readable
// countdown such as "3 min", "1h 12m" or "2d 4h 30m".
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		return ""
	}
	minutes := (seconds / 60) % 60
	hours := (seconds / 3600) % 24
	days := seconds / 86400

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 1:
		return fmt.Sprintf("%d min", minutes)
	default:
		return "1 min"
	}
}
