package analysis

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// QueueDepth is the number of mono chunks that may wait between the capture
// callback and the analyzer.
const QueueDepth = 4

// Downmixer averages interleaved multi-channel chunks to mono and forwards
// them to the analyzer. Push is meant to be called from the capture callback.
type Downmixer struct {
	channels int
	out      chan<- []float64
	gone     <-chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewDownmixer returns a Downmixer for the given channel count writing to
// out. Once gone is closed, chunks are dropped instead of sent.
func NewDownmixer(channels int, out chan<- []float64, gone <-chan struct{}) *Downmixer {
	if channels < 1 {
		channels = 1
	}
	return &Downmixer{channels: channels, out: out, gone: gone}
}

// Downmix averages each frame of an interleaved chunk. Samples of a trailing
// partial frame are ignored.
func Downmix(chunk []float32, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(chunk) / channels
	mono := make([]float64, frames)
	for i := range mono {
		var sum float64
		for _, s := range chunk[i*channels : (i+1)*channels] {
			sum += float64(s)
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Push downmixes chunk and forwards it. It blocks while the queue is full and
// the analyzer is still running. Push never panics on a stopped pipeline; the
// chunk is logged and dropped instead.
func (d *Downmixer) Push(chunk []float32) {
	if len(chunk) < d.channels {
		return
	}
	if d.closed.Load() {
		d.drop("downmixer closed")
		return
	}

	mono := Downmix(chunk, d.channels)
	select {
	case d.out <- mono:
	case <-d.gone:
		d.drop("analyzer stopped")
	}
}

func (d *Downmixer) drop(reason string) {
	if d.dropped.Add(1) == 1 {
		logrus.WithFields(logrus.Fields{
			"function": "Downmixer.Push",
			"reason":   reason,
		}).Warn("Audio receiver disconnected, dropping chunks")
	}
}

// Dropped returns how many chunks were discarded because nobody was
// listening.
func (d *Downmixer) Dropped() uint64 { return d.dropped.Load() }

// Close closes the queue, which tells the analyzer no more audio is coming.
// The capture source must have stopped calling Push before Close is called.
func (d *Downmixer) Close() {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.out)
	})
}
