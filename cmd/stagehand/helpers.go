package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// staleMarker flags songs that have sat in one stage past the configured
// threshold.
func staleMarker(days, threshold int) string {
	if threshold > 0 && days >= threshold {
		return " (stale)"
	}
	return ""
}

func formatTimestamp(value string) string {
	if value == "" {
		return "-"
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
