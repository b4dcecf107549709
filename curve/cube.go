package curve

var cubeCorners = [8]Point3{
	{1, 1, -1},
	{1, -1, -1},
	{-1, -1, -1},
	{-1, 1, -1},
	{-1, 1, 1},
	{-1, -1, 1},
	{1, -1, 1},
	{1, 1, 1},
}

// cubePaths holds, per corner, the start, middle and end offsets of the
// depth-0 edge path.
var cubePaths = [8][3]Point3{
	{{0, 0, 0}, {0, -0.5, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 0}, {-1, 0, 0}},
	{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}},
	{{0, -1, 0}, {0, 0, 0}, {0, 0, 1}},
	{{0, 0, -1}, {0, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 0}, {1, 0, 0}},
	{{-1, 0, 0}, {0, 0, 0}, {0, 1, 0}},
	{{0, -1, 0}, {0, -0.5, 0}, {0, 0, 0}},
}

type rotation [3][3]float64

var (
	turnYZX  = rotation{{0, 1, 0}, {0, 0, -1}, {-1, 0, 0}}
	turnZXY  = rotation{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}}
	turnFlip = rotation{{-1, 0, 0}, {0, -1, 0}, {0, 0, 1}}
	turnCycR = rotation{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}}
	turnCycL = rotation{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}
)

// cubeTurns pairs every corner cell with the rotation of its sub-curve.
var cubeTurns = [8]*rotation{
	&turnYZX,
	&turnZXY,
	&turnZXY,
	&turnFlip,
	&turnFlip,
	&turnCycR,
	&turnCycR,
	&turnCycL,
}

func (m *rotation) apply(p Point3) Point3 {
	return Point3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// ToCube maps x in [0, 1] to a point on the curve filling [-1, 1]^3 after
// depth levels of subdivision. Values of x outside [0, 1] are clamped.
func ToCube(x float64, depth int) Point3 {
	i, rest := cell(x, len(cubeCorners))
	corner := cubeCorners[i]
	if depth <= 0 {
		path := cubePaths[i]
		return Point3{
			X: corner.X + edge(path[0].X, path[1].X, path[2].X, rest),
			Y: corner.Y + edge(path[0].Y, path[1].Y, path[2].Y, rest),
			Z: corner.Z + edge(path[0].Z, path[1].Z, path[2].Z, rest),
		}
	}

	p := cubeTurns[i].apply(ToCube(rest, depth-1))
	return Point3{
		X: 0.5 * (corner.X + p.X),
		Y: 0.5 * (corner.Y + p.Y),
		Z: 0.5 * (corner.Z + p.Z),
	}
}
