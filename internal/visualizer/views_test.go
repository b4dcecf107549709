package visualizer

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivier-w/sugarviz/curve"
	"github.com/olivier-w/sugarviz/internal/analysis"
)

func TestModes(t *testing.T) {
	modes := Modes()
	require.Len(t, modes, 4)
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.Name()
	}
	assert.Equal(t, []string{"scope", "notes", "spectrum", "trails"}, names)

	i, ok := ModeIndex("notes")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = ModeIndex("waterfall")
	assert.False(t, ok)
}

func TestBrailleCanvas(t *testing.T) {
	var c brailleCanvas
	c.reset(2, 1)
	w, h := c.dotSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	c.plot(0, 0, 0.1)
	c.plot(1, 3, 0.9)
	c.plot(-1, 0, 1)
	c.plot(0, 4, 1)
	assert.Equal(t, "⢁ ", c.render(nil))
	assert.Equal(t, 0.9, c.heat[0])

	c.reset(1, 2)
	c.plot(1, 4, 0.5)
	assert.Equal(t, " \n⠈", c.render(nil))
}

func TestRotation(t *testing.T) {
	m := rotation(curve.Point3{Z: 1}, math.Pi/2)
	p := m.apply(curve.Point3{X: 1})
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Z, 1e-9)

	id := rotation(curve.Point3{Y: 1}, 0)
	assert.Equal(t, curve.Point3{X: 0.3, Y: -0.2, Z: 0.1}, id.apply(curve.Point3{X: 0.3, Y: -0.2, Z: 0.1}))
}

func TestScopeFillsGrid(t *testing.T) {
	s := NewScope()
	r, _ := newTestReactor(make(chan analysis.Snapshot))
	s.Update(r.Poll(), 42, 12)

	lines := strings.Split(s.View(), "\n")
	require.Len(t, lines, 12)
	plotted := 0
	for _, line := range lines {
		assert.Equal(t, 40, utf8.RuneCountInString(line))
		plotted += len(strings.TrimSpace(line))
	}
	assert.Positive(t, plotted)
}

func TestSpectrumBars(t *testing.T) {
	var f Frame
	for i := range f.Snapshot.Spectrum.Bins {
		f.Snapshot.Spectrum.Bins[i] = float64(i + 1)
	}
	s := NewSpectrum()
	s.Update(f, 34, 4)

	lines := strings.Split(s.View(), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		runes := []rune(line)
		require.Len(t, runes, 32)
		assert.Equal(t, '█', runes[31], "loudest column is full height")
	}
	assert.Equal(t, ' ', []rune(lines[0])[0])
}

func TestGroupBins(t *testing.T) {
	assert.Equal(t, []float64{3, 7}, groupBins([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{10}, groupBins([]float64{1, 2, 3, 4}, 1))
}

func TestNotesRows(t *testing.T) {
	var f Frame
	f.Snapshot.BassNote = analysis.Note{Freq: 0.5, Mag: 2}
	n := NewNotes()
	n.Update(f, 40, 5)

	lines := strings.Split(n.View(), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "bass     140 Hz "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "mids       -    "), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "high"), lines[3])
	for _, line := range lines {
		assert.Equal(t, 38, utf8.RuneCountInString(line))
	}
}

func TestHBar(t *testing.T) {
	tests := []struct {
		level float64
		width int
		want  string
	}{
		{0, 4, "    "},
		{1, 4, "████"},
		{0.5, 4, "██  "},
		{0.0625, 2, "▏ "},
		{2, 2, "██"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hbar(tt.level, tt.width))
	}
}

func TestHeatColorEnds(t *testing.T) {
	assert.Equal(t, heatStops[0].Hex(), heatColor(-1).Hex())
	assert.Equal(t, heatStops[len(heatStops)-1].Hex(), heatColor(1).Hex())
	assert.Equal(t, heatStops[2].Hex(), heatColor(0.5).Hex())
}

func TestTrailsFollowNotesAndFade(t *testing.T) {
	tr := NewTrails()
	var f Frame
	f.Snapshot.BassNote = analysis.Note{Freq: 0.3, Mag: 4}
	f.Snapshot.HighNotes[0] = analysis.Note{Freq: 0.7, Mag: 1}
	tr.Update(f, 40, 10)
	require.Len(t, tr.trail, 2)

	lines := strings.Split(tr.View(), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		assert.Equal(t, 38, utf8.RuneCountInString(line))
	}
	assert.Contains(t, tr.View(), "✹", "newest point uses the brightest glyph")

	tr.Update(Frame{}, 40, 10)
	assert.Len(t, tr.trail, 1, "an empty frame trims the tail")
	tr.Update(Frame{}, 40, 10)
	assert.Empty(t, tr.trail)
	assert.NotContains(t, tr.View(), "✹")
}
