package curve

// squareCorners are the four corners visited in curve order.
var squareCorners = [4]Point2{
	{1, 1},
	{1, -1},
	{-1, -1},
	{-1, 1},
}

// squarePaths holds, per corner, the offsets from the corner at the start,
// middle and end of the depth-0 edge path.
var squarePaths = [4][3]Point2{
	{{0, 0}, {0, -0.5}, {0, -1}},
	{{0, 1}, {0, 0}, {-1, 0}},
	{{1, 0}, {0, 0}, {0, 1}},
	{{0, -1}, {0, -0.5}, {0, 0}},
}

// squareTurns are the rotations applied to a sub-curve before it is placed in
// a corner cell, chosen so consecutive cells join end to start.
var squareTurns = [4][2][2]float64{
	{{0, 1}, {1, 0}},
	{{1, 0}, {0, 1}},
	{{1, 0}, {0, 1}},
	{{0, -1}, {-1, 0}},
}

// ToSquare maps x in [0, 1] to a point on the curve filling [-1, 1]^2 after
// depth levels of subdivision. Values of x outside [0, 1] are clamped.
func ToSquare(x float64, depth int) Point2 {
	i, rest := cell(x, len(squareCorners))
	corner := squareCorners[i]
	if depth <= 0 {
		path := squarePaths[i]
		return Point2{
			X: corner.X + edge(path[0].X, path[1].X, path[2].X, rest),
			Y: corner.Y + edge(path[0].Y, path[1].Y, path[2].Y, rest),
		}
	}

	p := ToSquare(rest, depth-1)
	m := squareTurns[i]
	return Point2{
		X: 0.5 * (corner.X + m[0][0]*p.X + m[0][1]*p.Y),
		Y: 0.5 * (corner.Y + m[1][0]*p.X + m[1][1]*p.Y),
	}
}
