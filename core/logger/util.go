package logger

import (
	"fmt"
	"strings"
	"time"
)

// Took is the time since start rounded to milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to milliseconds. Negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview joins at most limit values and notes how many were left out,
// e.g. "a, b (+3)".
func Preview(values []string, limit int) string {
	if len(values) == 0 {
		return ""
	}
	if limit <= 0 {
		return fmt.Sprintf("(+%d)", len(values))
	}
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(values[:limit], ", "), len(values)-limit)
}
