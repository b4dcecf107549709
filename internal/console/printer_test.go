package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivier-w/sugarviz/internal/analysis"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{0, ' '},
		{0.2, ' '},
		{0.21, '_'},
		{1, '_'},
		{1.5, '*'},
		{3, '*'},
		{3.01, '#'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(Glyph(tt.in)), "Glyph(%v)", tt.in)
	}
}

func testSnapshot() analysis.Snapshot {
	var s analysis.Snapshot
	s.Spectrum.Bins[0] = 5
	s.Spectrum.Bins[1] = 2
	s.Spectrum.Bins[2] = 0.5
	s.Spectrum.Volume = 7.5
	s.Spectrum.PeakHz = 86.13
	return s
}

func TestLine(t *testing.T) {
	line := Line(testSnapshot())
	want := "#*_" + strings.Repeat(" ", analysis.DisplayBins-3) + " Volume:  8 Freq:   86Hz"
	assert.Equal(t, want, line)
}

func TestPrinterWritesPlainLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	s := testSnapshot()
	require.NoError(t, p.Print(s))
	s.Kick = &analysis.Kick{Strength: 0.25}
	require.NoError(t, p.Print(s))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Line(s), lines[0])
	assert.Equal(t, Line(s)+" KICK 0.25", lines[1])
}

func TestPrinterRunUntilClosed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	ch := make(chan analysis.Snapshot, 3)
	for i := 0; i < 3; i++ {
		ch <- analysis.Snapshot{Seq: uint64(i + 1)}
	}
	close(ch)

	n, err := p.Run(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestPrinterRunCancelled(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := p.Run(ctx, make(chan analysis.Snapshot))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrinterReportsWriteErrors(t *testing.T) {
	p := NewPrinter(failingWriter{}, false)
	err := p.Print(analysis.Snapshot{Seq: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot 9")
}
