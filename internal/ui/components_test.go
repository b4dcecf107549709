package ui

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{61*time.Second + 900*time.Millisecond, "1:01"},
		{62 * time.Minute, "62:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderVolumePercent(t *testing.T) {
	if got := renderVolumePercent(0.5); got != "vol  50%" {
		t.Fatalf("unexpected volume text %q", got)
	}
}

func TestPadLines(t *testing.T) {
	if got := padLines("a\nb"); got != "  a\n  b" {
		t.Fatalf("unexpected padding %q", got)
	}
}
