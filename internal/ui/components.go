package ui

import (
	"fmt"
	"strings"
	"time"
)

// kickFlash is how many frames the kick marker stays lit.
const kickFlash = 6

func renderVolumePercent(level float64) string {
	return fmt.Sprintf("vol %3d%%", int(level*100))
}

func renderCadence(rate float64) string {
	return fmt.Sprintf("%.1f win/s", rate)
}

// padLines prefixes every line with the page margin.
func padLines(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}

// formatDuration formats a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
