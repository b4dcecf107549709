package analysis

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorConservesSamples(t *testing.T) {
	const size = 64
	rng := rand.New(rand.NewSource(7))
	in := make(chan []float64, 1024)

	var sent []float64
	for i := 0; i < 200; i++ {
		chunk := make([]float64, rng.Intn(50))
		for i := range chunk {
			chunk[i] = float64(len(sent) + i)
		}
		sent = append(sent, chunk...)
		in <- chunk
	}
	close(in)

	acc := NewAccumulator(size, in)
	window := make([]complex128, size)
	var consumed []float64
	for {
		err := acc.Next(context.Background(), window)
		if err != nil {
			require.ErrorIs(t, err, ErrSourceClosed)
			break
		}
		for _, c := range window {
			assert.Zero(t, imag(c))
			consumed = append(consumed, real(c))
		}
	}

	require.Less(t, len(sent)-len(consumed), size, "at most one partial window left over")
	assert.Equal(t, sent[:len(consumed)], consumed)
	assert.Equal(t, len(sent)-len(consumed), acc.Buffered())
}

func TestAccumulatorKeepsRemainderInOrder(t *testing.T) {
	in := make(chan []float64, 2)
	in <- []float64{1, 2, 3}
	in <- []float64{4, 5, 6, 7}
	acc := NewAccumulator(4, in)
	window := make([]complex128, 4)

	require.NoError(t, acc.Next(context.Background(), window))
	assert.Equal(t, []complex128{1, 2, 3, 4}, window)
	assert.Equal(t, 3, acc.Buffered())

	in <- []float64{8}
	require.NoError(t, acc.Next(context.Background(), window))
	assert.Equal(t, []complex128{5, 6, 7, 8}, window)
	assert.Zero(t, acc.Buffered())
}

func TestAccumulatorHonoursContext(t *testing.T) {
	acc := NewAccumulator(4, make(chan []float64))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := acc.Next(ctx, make([]complex128, 4))
	assert.ErrorIs(t, err, context.Canceled)
}
