package visualizer

import (
	"github.com/charmbracelet/harmonica"

	"github.com/olivier-w/sugarviz/curve"
)

// springField eases a set of 3D points toward per-frame targets.
type springField struct {
	spring harmonica.Spring
	pos    []curve.Point3
	vel    []curve.Point3
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]curve.Point3, n)
	s.vel = make([]curve.Point3, n)
}

// place moves point i to p at rest.
func (s *springField) place(i int, p curve.Point3) {
	s.pos[i] = p
	s.vel[i] = curve.Point3{}
}

func (s *springField) step(i int, target curve.Point3) curve.Point3 {
	p, v := s.pos[i], s.vel[i]
	p.X, v.X = s.spring.Update(p.X, v.X, target.X)
	p.Y, v.Y = s.spring.Update(p.Y, v.Y, target.Y)
	p.Z, v.Z = s.spring.Update(p.Z, v.Z, target.Z)
	s.pos[i] = p
	s.vel[i] = v
	return p
}
