package curve

import (
	"math"
	"testing"
)

func TestToSquareKnownPoints(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		depth int
		want  Point2
	}{
		{"start", 0, 0, Point2{1, 1}},
		{"end", 1, 0, Point2{-1, 1}},
		{"middle depth zero", 0.5, 0, Point2{0, -1}},
		{"middle depth three", 0.5, 3, Point2{0, 0}},
		{"start deep", 0, 6, Point2{1, 1}},
		{"end deep", 1, 6, Point2{-1, 1}},
		{"below range clamps", -3, 2, Point2{1, 1}},
		{"above range clamps", 7, 2, Point2{-1, 1}},
		{"NaN clamps to start", math.NaN(), 1, Point2{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToSquare(tt.x, tt.depth)
			if !near2(got, tt.want) {
				t.Fatalf("ToSquare(%v, %d) = %+v, want %+v", tt.x, tt.depth, got, tt.want)
			}
		})
	}
}

func TestToCubeKnownPoints(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		depth int
		want  Point3
	}{
		{"start", 0, 0, Point3{1, 1, -1}},
		{"end", 1, 0, Point3{1, 1, 1}},
		{"middle depth zero", 0.5, 0, Point3{-1, 1, 0}},
		{"middle depth two", 0.5, 2, Point3{-1, 0, 0}},
		{"start deep", 0, 6, Point3{1, 1, -1}},
		{"end deep", 1, 6, Point3{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCube(tt.x, tt.depth)
			if !near3(got, tt.want) {
				t.Fatalf("ToCube(%v, %d) = %+v, want %+v", tt.x, tt.depth, got, tt.want)
			}
		})
	}
}

func TestOutputsStayInsideUnitBox(t *testing.T) {
	for depth := 0; depth <= 6; depth++ {
		for i := 0; i <= 4000; i++ {
			x := float64(i) / 4000
			p := ToSquare(x, depth)
			if math.Abs(p.X) > 1 || math.Abs(p.Y) > 1 {
				t.Fatalf("ToSquare(%v, %d) = %+v outside [-1,1]^2", x, depth, p)
			}
			q := ToCube(x, depth)
			if math.Abs(q.X) > 1 || math.Abs(q.Y) > 1 || math.Abs(q.Z) > 1 {
				t.Fatalf("ToCube(%v, %d) = %+v outside [-1,1]^3", x, depth, q)
			}
		}
	}
}

// Each level shrinks cells by 4 (8) while halving distances, so the curves are
// Lipschitz with constants 8·2^d and 16·4^d. Any jump at a cell boundary would
// break the bound.
func TestCurvesAreContinuous(t *testing.T) {
	const steps = 50000
	const dx = 1.0 / steps
	for depth := 0; depth <= 5; depth++ {
		squareBound := 8*math.Pow(2, float64(depth))*dx + 1e-9
		cubeBound := 16*math.Pow(4, float64(depth))*dx + 1e-9

		prevSquare := ToSquare(0, depth)
		prevCube := ToCube(0, depth)
		for i := 1; i <= steps; i++ {
			x := float64(i) * dx
			s := ToSquare(x, depth)
			if d := math.Hypot(s.X-prevSquare.X, s.Y-prevSquare.Y); d > squareBound {
				t.Fatalf("square depth %d jumps %v at x=%v (bound %v)", depth, d, x, squareBound)
			}
			c := ToCube(x, depth)
			if d := dist3(c, prevCube); d > cubeBound {
				t.Fatalf("cube depth %d jumps %v at x=%v (bound %v)", depth, d, x, cubeBound)
			}
			prevSquare, prevCube = s, c
		}
	}
}

func TestCurvesAreDeterministic(t *testing.T) {
	for _, x := range []float64{0.1, 0.3333, 0.77, 0.999} {
		if ToSquare(x, 5) != ToSquare(x, 5) {
			t.Fatalf("ToSquare(%v, 5) not deterministic", x)
		}
		if ToCube(x, 5) != ToCube(x, 5) {
			t.Fatalf("ToCube(%v, 5) not deterministic", x)
		}
	}
}

func TestNegativeDepthActsAsZero(t *testing.T) {
	if got, want := ToSquare(0.3, -2), ToSquare(0.3, 0); got != want {
		t.Fatalf("ToSquare(0.3, -2) = %+v, want %+v", got, want)
	}
	if got, want := ToCube(0.3, -1), ToCube(0.3, 0); got != want {
		t.Fatalf("ToCube(0.3, -1) = %+v, want %+v", got, want)
	}
}

func TestLattices(t *testing.T) {
	if SquareLattice(0, 3) != nil {
		t.Fatal("expected nil lattice for n=0")
	}
	sq := SquareLattice(9, 4)
	if len(sq) != 9 {
		t.Fatalf("len(SquareLattice(9, 4)) = %d, want 9", len(sq))
	}
	if sq[0] != ToSquare(0, 4) || sq[8] != ToSquare(1, 4) {
		t.Fatalf("square lattice endpoints = %+v, %+v", sq[0], sq[8])
	}
	if got := SquareLattice(1, 4); got[0] != ToSquare(0, 4) {
		t.Fatalf("single-point lattice = %+v, want curve start", got[0])
	}

	cube := CubeLattice(5, 3)
	if len(cube) != 5 {
		t.Fatalf("len(CubeLattice(5, 3)) = %d, want 5", len(cube))
	}
	if cube[2] != ToCube(0.5, 3) {
		t.Fatalf("cube lattice midpoint = %+v, want %+v", cube[2], ToCube(0.5, 3))
	}
}

func near2(a, b Point2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func near3(a, b Point3) bool {
	return dist3(a, b) < 1e-9
}

func dist3(a, b Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
