package util

import (
	"fmt"
	"time"
)

// FormatClockDuration renders a second count as H:MM:SS, or M:SS under an hour.
func FormatClockDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPublishedDate renders an RFC3339 timestamp as "January 02, 2006".
// Unparseable inputs are returned unchanged.
func FormatPublishedDate(published string) string {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return published
	}
	return t.Format("January 02, 2006")
}
