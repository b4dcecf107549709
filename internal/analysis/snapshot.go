// Package analysis turns a live PCM stream into per-window spectral peaks,
// bass kicks and curve-mapped attractor positions.
//
// Data moves between goroutines only by channel: the capture callback feeds a
// Downmixer, the analyzer goroutine (Pipeline.Run) owns every buffer it works
// on, and each finished Snapshot is handed to the consumer through a
// latest-wins Publisher.
package analysis

import (
	"time"

	"github.com/olivier-w/sugarviz/curve"
)

// Note is a spectral peak: frequency as a fraction of its band and a
// unit-less magnitude.
type Note struct {
	Freq float64
	Mag  float64
}

// FrequencyAnalysis is the result of analyzing one band.
type FrequencyAnalysis struct {
	// Loudest holds exactly the band's Count notes, loudest first.
	Loudest []Note
	// TotalVolume is the sum of unweighted scaled magnitudes over the band.
	TotalVolume float64
}

// Kick is a one-shot bass transient: a direction on the cube curve and a
// strength.
type Kick struct {
	X, Y, Z  float64
	Strength float64
}

// DisplaySpectrum is a coarse view of the spectrum for on-screen meters.
type DisplaySpectrum struct {
	Bins   [DisplayBins]float64
	Volume float64
	PeakHz float64
}

// Snapshot is everything the analyzer learned from one window. A snapshot is
// never modified after it is published.
type Snapshot struct {
	Seq  uint64
	Time time.Time

	Volume    float64
	BassNote  Note
	MidsNotes [2]Note
	HighNotes [2]Note

	// Kick is nil unless a transient fired in this window.
	Kick *Kick

	ReactiveBass curve.Point3
	ReactiveMids curve.Point3
	ReactiveHigh curve.Point3

	Spectrum DisplaySpectrum
}
