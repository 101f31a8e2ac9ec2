package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders d in its largest whole unit: 42s, 3m, 2h.
// Negative durations are rendered by magnitude.
func FormatRoundedUnit(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatIdleSeconds renders a sample's idle time.
func FormatIdleSeconds(seconds float64) string {
	return FormatRoundedUnit(time.Duration(seconds * float64(time.Second)))
}
