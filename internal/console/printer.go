// Package console prints snapshots as text lines for headless use.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/olivier-w/sugarviz/internal/analysis"
)

// Glyph returns the character for one display bin.
func Glyph(v float64) byte {
	switch {
	case v > 3:
		return '#'
	case v > 1:
		return '*'
	case v > 0.2:
		return '_'
	}
	return ' '
}

// Line renders a snapshot's display spectrum followed by its total volume and
// loudest frequency.
func Line(s analysis.Snapshot) string {
	var b strings.Builder
	for _, v := range s.Spectrum.Bins {
		b.WriteByte(Glyph(v))
	}
	fmt.Fprintf(&b, " Volume:%3.0f Freq:%5.0fHz", s.Spectrum.Volume, s.Spectrum.PeakHz)
	return b.String()
}

// Printer writes one line per snapshot.
type Printer struct {
	w      io.Writer
	glyphs map[byte]*color.Color
	stats  *color.Color
	kick   *color.Color
}

// NewPrinter writes to w, colouring output only when useColor is set.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		w: w,
		glyphs: map[byte]*color.Color{
			'#': color.New(color.FgHiRed, color.Bold),
			'*': color.New(color.FgYellow),
			'_': color.New(color.FgCyan),
		},
		stats: color.New(color.FgHiBlack),
		kick:  color.New(color.FgHiMagenta, color.Bold),
	}
	if !useColor {
		for _, c := range p.glyphs {
			c.DisableColor()
		}
		p.stats.DisableColor()
		p.kick.DisableColor()
	}
	return p
}

// Print writes s as a single line. Kicks are marked after the columns.
func (p *Printer) Print(s analysis.Snapshot) error {
	line := Line(s)
	bins := len(s.Spectrum.Bins)

	var b strings.Builder
	for i := 0; i < bins; i++ {
		g := line[i]
		if c, ok := p.glyphs[g]; ok {
			b.WriteString(c.Sprint(string(g)))
		} else {
			b.WriteByte(g)
		}
	}
	b.WriteString(p.stats.Sprint(line[bins:]))
	if s.Kick != nil {
		b.WriteString(p.kick.Sprintf(" KICK %.2f", s.Kick.Strength))
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return fmt.Errorf("writing snapshot %d: %w", s.Seq, err)
	}
	return nil
}

// Run prints snapshots until the channel closes or ctx is cancelled, and
// returns how many lines were written.
func (p *Printer) Run(ctx context.Context, snapshots <-chan analysis.Snapshot) (int, error) {
	printed := 0
	for {
		select {
		case <-ctx.Done():
			return printed, ctx.Err()
		case s, ok := <-snapshots:
			if !ok {
				logrus.WithFields(logrus.Fields{
					"function": "Printer.Run",
					"printed":  printed,
				}).Debug("Snapshot channel closed")
				return printed, nil
			}
			if err := p.Print(s); err != nil {
				return printed, err
			}
			printed++
		}
	}
}
