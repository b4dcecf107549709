// Package curve maps a scalar in [0, 1] onto a self-similar space-filling
// curve inside the centered square [-1, 1]^2 or cube [-1, 1]^3.
//
// Nearby inputs land on nearby points for any fixed depth, which is what makes
// the curve useful for turning a frequency into a smoothly moving position.
// The functions are pure and safe for concurrent use.
package curve

const (
	// DefaultSquareDepth is the recursion depth used for static 2D lattices.
	DefaultSquareDepth = 6
	// DefaultCubeDepth is the recursion depth used for static 3D lattices.
	DefaultCubeDepth = 5
)

// Point2 is a position in the square [-1, 1]^2.
type Point2 struct {
	X, Y float64
}

// Point3 is a position in the cube [-1, 1]^3.
type Point3 struct {
	X, Y, Z float64
}

// Scale returns p multiplied by s.
func (p Point2) Scale(s float64) Point2 { return Point2{p.X * s, p.Y * s} }

// Scale returns p multiplied by s.
func (p Point3) Scale(s float64) Point3 { return Point3{p.X * s, p.Y * s, p.Z * s} }

// cell splits x into the index of one of n equal intervals and the position
// of x inside that interval rescaled to [0, 1]. x = 1 belongs to the last cell.
func cell(x float64, n int) (int, float64) {
	x = clampUnit(x)
	scaled := x * float64(n)
	i := int(scaled)
	if i >= n {
		i = n - 1
	}
	return i, scaled - float64(i)
}

// edge interpolates the two-segment path start→mid→end at t in [0, 1].
func edge(start, mid, end, t float64) float64 {
	if t < 0.5 {
		return start + (mid-start)*t*2
	}
	return mid + (end-mid)*(t-0.5)*2
}

func clampUnit(x float64) float64 {
	switch {
	case x > 1:
		return 1
	case x >= 0:
		return x
	default: // negative or NaN
		return 0
	}
}
