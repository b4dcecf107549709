package visualizer

import (
	"strings"

	"github.com/olivier-w/sugarviz/curve"
	"github.com/olivier-w/sugarviz/internal/analysis"
)

var trailGlyphs = []rune{'·', '•', '✶', '✹'}

const (
	trailLatticePoints = 256
	trailLatticeDepth  = 3
)

type trailPoint struct {
	x, y float64
	hue  float64
}

// Trails plots every band note on the square curve and leaves a fading trail
// behind it, over a faint outline of the curve itself.
type Trails struct {
	lattice  []curve.Point2
	trail    []trailPoint
	maxTrail int
	output   string
}

func NewTrails() *Trails {
	return &Trails{lattice: curve.SquareLattice(trailLatticePoints, trailLatticeDepth)}
}

func (t *Trails) Name() string { return "trails" }

func (t *Trails) Update(f Frame, width, height int) {
	cols := max(8, width-2)
	rows := max(2, height)
	t.maxTrail = max(32, cols*2)

	added := 0
	for _, r := range noteRows {
		note := r.note(f.Snapshot)
		if note.Mag == 0 {
			continue
		}
		v := analysis.MapNoteToSquare(note, r.pow)
		t.trail = append(t.trail, trailPoint{x: (v.X + 1) / 2, y: (v.Y + 1) / 2, hue: r.hue})
		added++
	}
	// Without new notes the trail shrinks from its tail.
	if added == 0 && len(t.trail) > 0 {
		t.trail = t.trail[max(1, len(t.trail)/16):]
	}
	if len(t.trail) > t.maxTrail {
		t.trail = t.trail[len(t.trail)-t.maxTrail:]
	}

	chars := make([][]rune, rows)
	fresh := make([][]float64, rows)
	hues := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		chars[r] = make([]rune, cols)
		fresh[r] = make([]float64, cols)
		hues[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			chars[r][c] = ' '
			fresh[r][c] = -1
		}
	}

	cell := func(x, y float64) (int, int) {
		return int(clamp01(x) * float64(cols-1)), int((1 - clamp01(y)) * float64(rows-1))
	}
	for _, p := range t.lattice {
		c, r := cell((p.X+1)/2, (p.Y+1)/2)
		chars[r][c] = '.'
	}
	for i, p := range t.trail {
		c, r := cell(p.x, p.y)
		age := float64(len(t.trail)-1-i) / float64(max(1, len(t.trail)-1))
		chars[r][c] = trailGlyphs[min(len(trailGlyphs)-1, int((1-age)*float64(len(trailGlyphs)-1)))]
		if 1-age > fresh[r][c] {
			fresh[r][c] = 1 - age
			hues[r][c] = p.hue
		}
	}

	var out strings.Builder
	color := newANSIState()
	for r := 0; r < rows; r++ {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := 0; c < cols; c++ {
			ch := chars[r][c]
			switch {
			case ch == ' ':
				color.reset(&out)
			case fresh[r][c] < 0:
				color.set(&out, heatColor(0))
			default:
				color.set(&out, rgbFromHSV(hues[r][c]+fresh[r][c]*0.1, 0.78, 0.3+0.7*fresh[r][c]))
			}
			out.WriteRune(ch)
		}
		color.reset(&out)
	}

	t.output = out.String()
}

func (t *Trails) View() string {
	return t.output
}
