package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olivier-w/sugarviz/curve"
)

func TestMapNoteToSquare(t *testing.T) {
	n := Note{Freq: 0.3, Mag: 2.5}
	got := MapNoteToSquare(n, MidsPow)
	want := curve.ToSquare(math.Pow(0.3, MidsPow), 5).Scale(0.95)

	assert.InDelta(t, want.X, got.X, 1e-12)
	assert.InDelta(t, want.Y, got.Y, 1e-12)
	assert.Zero(t, got.Z)
	assert.Equal(t, 2.5, got.W)
	assert.LessOrEqual(t, math.Abs(got.X), 0.95)
	assert.LessOrEqual(t, math.Abs(got.Y), 0.95)
}

func TestMapNoteToCube(t *testing.T) {
	n := Note{Freq: 0.7, Mag: 1}
	got := MapNoteToCube(n, HighPow)
	want := MapFreqToCube(0.7, HighPow).Scale(0.9)

	assert.InDelta(t, want.X, got.X, 1e-12)
	assert.InDelta(t, want.Y, got.Y, 1e-12)
	assert.InDelta(t, want.Z, got.Z, 1e-12)
	assert.Equal(t, 1.0, got.W)
}

func TestMapFreqToCubeEnds(t *testing.T) {
	assert.Equal(t, curve.ToCube(0, reactiveDepth), MapFreqToCube(0, BassPow))
	assert.Equal(t, curve.ToCube(1, reactiveDepth), MapFreqToCube(1, BassPow))
}
