package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DisplayBins is the number of coarse bins in a DisplaySpectrum.
const DisplayBins = 64

const (
	displayLowHz  = 30
	displayHighHz = 12_000
)

// WindowSize returns the analysis window length for a sample rate. Rates
// above 48 kHz get a longer window so the bin width stays comparable.
func WindowSize(sampleRate float64) int {
	if sampleRate > 48_000 {
		return 4096
	}
	return 2048
}

// Spectrum is the per-window output of an Analyzer.
type Spectrum struct {
	Bass FrequencyAnalysis
	Mids FrequencyAnalysis
	High FrequencyAnalysis

	// CurrentBass is the weighted magnitude of each bass bin.
	CurrentBass []float64

	Display DisplaySpectrum
}

// Volume is the combined volume of the three bands.
func (s Spectrum) Volume() float64 {
	return s.Bass.TotalVolume + s.Mids.TotalVolume + s.High.TotalVolume
}

// Analyzer runs the FFT and band analysis for fixed-size windows.
type Analyzer struct {
	size       int
	sampleRate float64
	scale      float64
	resolution float64
	bass       Band
	mids       Band
	high       Band
}

// NewAnalyzer creates an Analyzer for the given sample rate using the
// standard bass, mids and high bands.
func NewAnalyzer(sampleRate float64) *Analyzer {
	if !(sampleRate > 0) {
		panic(fmt.Sprintf("analysis: invalid sample rate %v", sampleRate))
	}
	for _, b := range []Band{BassBand, MidsBand, HighBand} {
		if err := b.validate(); err != nil {
			panic("analysis: " + err.Error())
		}
	}
	size := WindowSize(sampleRate)
	return &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		scale:      1 / math.Sqrt(float64(size)),
		resolution: sampleRate / float64(size),
		bass:       BassBand,
		mids:       MidsBand,
		high:       HighBand,
	}
}

// Size returns the window length N.
func (a *Analyzer) Size() int { return a.size }

// Resolution returns the width of one FFT bin in Hz.
func (a *Analyzer) Resolution() float64 { return a.resolution }

// SampleRate returns the sample rate the analyzer was built for.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// BandHz converts a note frequency fraction in band b back to Hz, using the
// same bin mapping as the analysis.
func (a *Analyzer) BandHz(b Band, frac float64) float64 {
	start, end := b.bins(a.size, a.resolution)
	return (float64(start) + frac*float64(end-start)) * a.resolution
}

// Analyze transforms one window and extracts the notes of every band. The
// window must hold Size() samples and is not modified.
func (a *Analyzer) Analyze(window []complex128) Spectrum {
	if len(window) != a.size {
		panic(fmt.Sprintf("analysis: window has %d samples, want %d", len(window), a.size))
	}
	spectrum := fft.FFT(window)

	bass, currentBass := analyzeBand(spectrum, a.scale, a.resolution, a.bass)
	mids, _ := analyzeBand(spectrum, a.scale, a.resolution, a.mids)
	high, _ := analyzeBand(spectrum, a.scale, a.resolution, a.high)
	checkCount(a.bass, bass)
	checkCount(a.mids, mids)
	checkCount(a.high, high)

	return Spectrum{
		Bass:        bass,
		Mids:        mids,
		High:        high,
		CurrentBass: currentBass,
		Display:     a.display(spectrum),
	}
}

func checkCount(b Band, fa FrequencyAnalysis) {
	if len(fa.Loudest) != b.Count {
		panic(fmt.Sprintf("analysis: band %s returned %d notes, want %d", b.Name, len(fa.Loudest), b.Count))
	}
}

// display sums bins into DisplayBins groups between 30 Hz and 12 kHz.
func (a *Analyzer) display(spectrum []complex128) DisplaySpectrum {
	var d DisplaySpectrum
	start := hertzToIndex(displayLowHz, a.size, a.resolution)
	end := hertzToIndex(displayHighHz, a.size, a.resolution)
	width := (end - start) / DisplayBins

	peakBin, peakMag := start, 0.0
	for i := range d.Bins {
		first := start + i*width
		var sum float64
		for k := first; k < first+width; k++ {
			v := cmplx.Abs(spectrum[k])
			sum += v
			if v > peakMag {
				peakBin, peakMag = k, v
			}
		}
		d.Bins[i] = a.scale * sum
		d.Volume += d.Bins[i]
	}
	d.PeakHz = float64(peakBin) * a.resolution
	return d
}
