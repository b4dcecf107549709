package visualizer

import (
	"math"

	"github.com/olivier-w/sugarviz/curve"
)

const (
	scopePoints  = 1536
	pullStrength = 0.55

	// spinGain exaggerates the reactor's slow rotation for a terminal.
	spinGain = 6.0
)

// Scope projects a lattice of points along the cube curve, pulled toward the
// reactive attractors and rotated by the kick spin.
type Scope struct {
	lattice []curve.Point3
	canvas  brailleCanvas
	output  string
}

func NewScope() *Scope {
	return &Scope{lattice: curve.CubeLattice(scopePoints, curve.DefaultCubeDepth)}
}

func (s *Scope) Name() string { return "scope" }

func (s *Scope) Update(f Frame, width, height int) {
	cols := max(2, width-2)
	rows := max(1, height)
	s.canvas.reset(cols, rows)

	w, h := s.canvas.dotSize()
	radius := 0.45 * float64(min(w, h))
	cx, cy := float64(w-1)/2, float64(h-1)/2

	level := f.Level()
	rot := rotation(f.SpinAxis, f.Angle*spinGain)
	attractors := [3]curve.Point3{f.Bass, f.Mids, f.High}

	for _, p := range s.lattice {
		q := p
		for _, a := range attractors {
			d := curve.Point3{X: a.X - p.X, Y: a.Y - p.Y, Z: a.Z - p.Z}
			k := pullStrength * level / (1 + 4*(d.X*d.X+d.Y*d.Y+d.Z*d.Z))
			q.X += d.X * k
			q.Y += d.Y * k
			q.Z += d.Z * k
		}
		r := rot.apply(q)
		x := int(math.Round(cx + r.X*radius))
		y := int(math.Round(cy - r.Y*radius))
		s.canvas.plot(x, y, clamp01((r.Z+1)/2*0.6+level*0.4))
	}

	s.output = s.canvas.render(heatColor)
}

func (s *Scope) View() string {
	return s.output
}

type matrix3 [3][3]float64

// rotation builds the rotation by angle radians about a unit axis.
func rotation(axis curve.Point3, angle float64) matrix3 {
	c, sn := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	return matrix3{
		{t*x*x + c, t*x*y - sn*z, t*x*z + sn*y},
		{t*x*y + sn*z, t*y*y + c, t*y*z - sn*x},
		{t*x*z - sn*y, t*y*z + sn*x, t*z*z + c},
	}
}

func (m matrix3) apply(p curve.Point3) curve.Point3 {
	return curve.Point3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}
