// Package capture delivers interleaved float32 audio from a live input device
// or a decoded file.
package capture

import "errors"

var (
	// ErrUnsupportedFormat is returned for files no decoder understands.
	ErrUnsupportedFormat = errors.New("capture: unsupported format")
	// ErrNoInputDevice is returned when no matching input device exists.
	ErrNoInputDevice = errors.New("capture: no input device")
)

// Source produces interleaved float32 chunks with samples in [-1, 1].
type Source interface {
	SampleRate() float64
	ChannelCount() int
	// Start begins delivery. sink is called from the source's own goroutine
	// or audio callback and must not keep the chunk after it returns.
	Start(sink func(chunk []float32)) error
	// Close stops delivery. sink is not called after Close returns.
	Close() error
	// Describe names the source for display.
	Describe() string
}
