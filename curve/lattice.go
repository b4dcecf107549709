package curve

// SquareLattice returns n points spread evenly along the square curve at the
// given depth. The first point is ToSquare(0) and the last ToSquare(1).
func SquareLattice(n, depth int) []Point2 {
	if n <= 0 {
		return nil
	}
	points := make([]Point2, n)
	for i := range points {
		points[i] = ToSquare(latticeStep(i, n), depth)
	}
	return points
}

// CubeLattice is SquareLattice for the cube curve.
func CubeLattice(n, depth int) []Point3 {
	if n <= 0 {
		return nil
	}
	points := make([]Point3, n)
	for i := range points {
		points[i] = ToCube(latticeStep(i, n), depth)
	}
	return points
}

func latticeStep(i, n int) float64 {
	if n == 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
