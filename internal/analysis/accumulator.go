package analysis

import (
	"context"
	"errors"
)

// ErrSourceClosed is returned when the sample queue is closed before a full
// window could be assembled.
var ErrSourceClosed = errors.New("analysis: audio source closed")

// Accumulator collects mono chunks until a full analysis window is available.
// Windows are rectangular and do not overlap.
type Accumulator struct {
	size int
	in   <-chan []float64
	buf  []float64
}

// NewAccumulator returns an Accumulator producing windows of size samples.
func NewAccumulator(size int, in <-chan []float64) *Accumulator {
	return &Accumulator{
		size: size,
		in:   in,
		buf:  make([]float64, 0, size+1024),
	}
}

// Buffered returns the number of samples waiting for the next window.
func (a *Accumulator) Buffered() int { return len(a.buf) }

// Next blocks until size samples are buffered, copies them into window as
// real values and keeps any remainder, in order, for the next call.
func (a *Accumulator) Next(ctx context.Context, window []complex128) error {
	for len(a.buf) < a.size {
		select {
		case chunk, ok := <-a.in:
			if !ok {
				return ErrSourceClosed
			}
			a.buf = append(a.buf, chunk...)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for i, v := range a.buf[:a.size] {
		window[i] = complex(v, 0)
	}
	n := copy(a.buf, a.buf[a.size:])
	a.buf = a.buf[:n]
	return nil
}
