package visualizer

import (
	"strings"

	"github.com/olivier-w/sugarviz/internal/analysis"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Spectrum renders the snapshot's display bins as vertical bars.
type Spectrum struct {
	bins   [analysis.DisplayBins]float64
	peak   float64
	output string
}

// NewSpectrum creates a new spectrum visualizer.
func NewSpectrum() *Spectrum {
	return &Spectrum{}
}

func (s *Spectrum) Name() string { return "spectrum" }

func (s *Spectrum) Update(f Frame, width, height int) {
	// Exponential smoothing
	const decay = 0.3
	for i, v := range f.Snapshot.Spectrum.Bins {
		s.bins[i] = s.bins[i]*decay + v*(1-decay)
	}

	if height < 1 {
		height = 1
	}
	cols := min(analysis.DisplayBins, max(1, width-2))
	bands := groupBins(s.bins[:], cols)

	// Normalise against a slowly falling peak so quiet passages stay visible
	maxVal := 0.01
	for _, v := range bands {
		maxVal = max(maxVal, v)
	}
	s.peak = max(maxVal, s.peak*peakRelease)

	colWidth := max(1, (width-2)/cols)
	rows := make([]string, height)
	color := newANSIState()
	for row := 0; row < height; row++ {
		var line strings.Builder
		rowFromBottom := float64(height - 1 - row)
		for b, v := range bands {
			level := v / s.peak * float64(height)
			charIdx := 0
			if level > rowFromBottom+1 {
				charIdx = len(barChars) - 1
			} else if level > rowFromBottom {
				frac := level - rowFromBottom
				charIdx = int(frac * float64(len(barChars)-1))
			}
			if charIdx > 0 {
				color.set(&line, heatColor(float64(b)/float64(len(bands))))
			}
			ch := barChars[charIdx]
			for i := 0; i < colWidth; i++ {
				line.WriteRune(ch)
			}
		}
		color.reset(&line)
		rows[row] = line.String()
	}

	s.output = strings.Join(rows, "\n")
}

// groupBins sums adjacent bins down to n columns.
func groupBins(bins []float64, n int) []float64 {
	out := make([]float64, n)
	for i, v := range bins {
		out[i*n/len(bins)] += v
	}
	return out
}

func (s *Spectrum) View() string {
	return s.output
}
