package analysis

import (
	"math"

	"github.com/olivier-w/sugarviz/curve"
)

// Exponents applied to band fractions before mapping so that movement along
// the curve feels closer to linear in pitch.
const (
	BassPow = 0.84
	MidsPow = 0.75
	HighPow = 0.445
)

// reactiveDepth is the curve depth for per-window attractor positions.
const reactiveDepth = 6

// Vec4 is a position with a weight, used for 2D and 3D attractors.
type Vec4 struct {
	X, Y, Z, W float64
}

// MapFreqToCube places a band fraction on the cube curve.
func MapFreqToCube(freq, pow float64) curve.Point3 {
	return curve.ToCube(math.Pow(freq, pow), reactiveDepth)
}

// MapNoteToSquare places a note on the square curve, slightly inset, with the
// note magnitude as weight.
func MapNoteToSquare(n Note, pow float64) Vec4 {
	p := curve.ToSquare(math.Pow(n.Freq, pow), 5).Scale(0.95)
	return Vec4{X: p.X, Y: p.Y, W: n.Mag}
}

// MapNoteToCube places a note on the cube curve, inset, with the note
// magnitude as weight.
func MapNoteToCube(n Note, pow float64) Vec4 {
	p := MapFreqToCube(n.Freq, pow).Scale(0.9)
	return Vec4{X: p.X, Y: p.Y, Z: p.Z, W: n.Mag}
}
