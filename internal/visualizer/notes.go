package visualizer

import (
	"fmt"
	"strings"

	"github.com/olivier-w/sugarviz/internal/analysis"
)

var hbarChars = []rune(" ▏▎▍▌▋▊▉█")

// peakRelease is the per-frame decay of the normalisation peak.
const peakRelease = 0.995

type noteRow struct {
	label string
	band  analysis.Band
	pow   float64
	hue   float64
	note  func(s analysis.Snapshot) analysis.Note
}

var noteRows = []noteRow{
	{"bass", analysis.BassBand, analysis.BassPow, 0.0, func(s analysis.Snapshot) analysis.Note { return s.BassNote }},
	{"mids", analysis.MidsBand, analysis.MidsPow, 0.33, func(s analysis.Snapshot) analysis.Note { return s.MidsNotes[0] }},
	{"mids", analysis.MidsBand, analysis.MidsPow, 0.38, func(s analysis.Snapshot) analysis.Note { return s.MidsNotes[1] }},
	{"high", analysis.HighBand, analysis.HighPow, 0.6, func(s analysis.Snapshot) analysis.Note { return s.HighNotes[0] }},
	{"high", analysis.HighBand, analysis.HighPow, 0.65, func(s analysis.Snapshot) analysis.Note { return s.HighNotes[1] }},
}

// Notes renders one horizontal bar per band note.
type Notes struct {
	levels [5]float64
	peaks  [5]float64
	output string
}

func NewNotes() *Notes {
	return &Notes{}
}

func (n *Notes) Name() string { return "notes" }

func (n *Notes) Update(f Frame, width, height int) {
	const labelWidth = 16
	barWidth := max(1, width-2-labelWidth)

	var out strings.Builder
	color := newANSIState()
	for i, r := range noteRows {
		note := r.note(f.Snapshot)
		n.peaks[i] = max(note.Mag, n.peaks[i]*peakRelease, 1e-3)
		// Exponential smoothing
		n.levels[i] = n.levels[i]*0.4 + note.Mag/n.peaks[i]*0.6

		if i > 0 {
			out.WriteByte('\n')
		}
		label := fmt.Sprintf("%s %7.0f Hz ", r.label, r.band.Hz(note.Freq))
		if note.Mag == 0 {
			label = fmt.Sprintf("%s %7s    ", r.label, "-")
		}
		out.WriteString(label)

		color.set(&out, rgbFromHSV(r.hue, 0.7, 0.5+0.5*clamp01(n.levels[i])))
		out.WriteString(hbar(n.levels[i], barWidth))
		color.reset(&out)
	}
	for i := 0; i < max(0, height-len(noteRows)); i++ {
		out.WriteByte('\n')
	}
	n.output = out.String()
}

// hbar renders level in [0, 1] as a bar of width cells with 1/8 precision.
func hbar(level float64, width int) string {
	eighths := int(clamp01(level) * float64(width*8))
	full, part := eighths/8, eighths%8
	var b strings.Builder
	b.WriteString(strings.Repeat(string(hbarChars[8]), full))
	if part > 0 && full < width {
		b.WriteRune(hbarChars[part])
		full++
	}
	b.WriteString(strings.Repeat(" ", width-full))
	return b.String()
}

func (n *Notes) View() string {
	return n.output
}
