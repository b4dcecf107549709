package visualizer

import (
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

var (
	profileOnce sync.Once
	profile     termenv.Profile
	seqCache    sync.Map
)

// currentColorProfile honours NO_COLOR and CLICOLOR_FORCE and falls back to
// no colour when stdout is not a terminal.
func currentColorProfile() termenv.Profile {
	profileOnce.Do(func() {
		profile = termenv.EnvColorProfile()
	})
	return profile
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func hex(s string) colorful.Color {
	c, _ := colorful.Hex(s)
	return c
}

// rgbFromHSV takes a hue in turns rather than degrees.
func rgbFromHSV(h, s, v float64) colorful.Color {
	h -= float64(int(h))
	if h < 0 {
		h++
	}
	return colorful.Hsv(h*360, clamp01(s), clamp01(v))
}

var heatStops = []colorful.Color{
	hex("#101946"),
	hex("#00aeff"),
	hex("#14ffa1"),
	hex("#ffe65c"),
	hex("#ff503c"),
}

// heatColor maps t in [0, 1] from deep blue through green to red.
func heatColor(t float64) colorful.Color {
	t = clamp01(t) * float64(len(heatStops)-1)
	i := min(int(t), len(heatStops)-2)
	return heatStops[i].BlendRgb(heatStops[i+1], t-float64(i)).Clamped()
}

// ansiState writes a foreground sequence only when the colour changes.
type ansiState struct {
	profile termenv.Profile
	current string
}

func newANSIState() ansiState {
	return ansiState{profile: currentColorProfile()}
}

func (s *ansiState) set(sb *strings.Builder, c colorful.Color) {
	if s.profile == termenv.Ascii {
		return
	}
	seq := colorSequence(s.profile, c)
	if seq == s.current {
		return
	}
	sb.WriteString(seq)
	s.current = seq
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.current == "" {
		return
	}
	sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	s.current = ""
}

func colorSequence(p termenv.Profile, c colorful.Color) string {
	r, g, b := c.RGB255()
	key := uint32(p)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	seq := p.Color(c.Hex()).Sequence(false)
	if seq != "" {
		seq = termenv.CSI + seq + "m"
	}
	seqCache.Store(key, seq)
	return seq
}
