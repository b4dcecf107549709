package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Band describes one frequency range and how its peaks are picked.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
	// Count is the number of notes always returned for the band.
	Count int
	// Delta is the full width, in band fractions, suppressed around a peak.
	Delta     float64
	MinVolume float64
	// FreqScale weights magnitudes by FreqScale^frac, favouring the top of
	// the band when choosing peaks.
	FreqScale float64
}

var (
	BassBand = Band{Name: "bass", LowHz: 30, HighHz: 250, Count: 1, Delta: 1, MinVolume: 0.2, FreqScale: 1.825}
	MidsBand = Band{Name: "mids", LowHz: 250, HighHz: 1800, Count: 2, Delta: 0.1, MinVolume: 0.025, FreqScale: 3}
	HighBand = Band{Name: "high", LowHz: 1800, HighHz: 16000, Count: 2, Delta: 0.1, MinVolume: 0.005, FreqScale: 8}
)

// Hz approximates the frequency of a band fraction by linear interpolation
// over the band's range. Analyzer.BandHz gives the bin-exact value.
func (b Band) Hz(frac float64) float64 {
	return b.LowHz + frac*(b.HighHz-b.LowHz)
}

func (b Band) validate() error {
	switch {
	case b.Count < 1:
		return fmt.Errorf("band %s: count %d < 1", b.Name, b.Count)
	case b.HighHz <= b.LowHz:
		return fmt.Errorf("band %s: empty range %v-%v Hz", b.Name, b.LowHz, b.HighHz)
	case b.Delta < 0 || b.FreqScale <= 0:
		return fmt.Errorf("band %s: invalid delta %v or scale %v", b.Name, b.Delta, b.FreqScale)
	}
	return nil
}

// bins returns the half-open bin range [start, end) covered by the band.
func (b Band) bins(size int, resolution float64) (int, int) {
	start := hertzToIndex(b.LowHz, size, resolution)
	end := hertzToIndex(b.HighHz, size, resolution)
	if end < start {
		end = start
	}
	return start, end
}

// hertzToIndex converts a frequency to the nearest FFT bin, clamped to
// [0, size-1].
func hertzToIndex(hz float64, size int, resolution float64) int {
	return clampIndex(math.Round(hz/resolution), size)
}

// fractionToIndex converts a fraction in [0, 1] to an index into a slice of
// the given length.
func fractionToIndex(f float64, size int) int {
	return clampIndex(math.Round(float64(size-1)*f), size)
}

func clampIndex(v float64, size int) int {
	if !(v > 0) {
		return 0
	}
	if v >= float64(size-1) {
		return size - 1
	}
	return int(v)
}

// analyzeBand extracts the loudest notes of a band from an FFT result. It also
// returns the weighted magnitudes of every bin in the band, indexed by
// position within the band.
func analyzeBand(spectrum []complex128, scale, resolution float64, band Band) (FrequencyAnalysis, []float64) {
	start, end := band.bins(len(spectrum), resolution)
	n := end - start

	var total float64
	weighted := make([]float64, n)
	candidates := make([]Note, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n)
		v := scale * cmplx.Abs(spectrum[start+i])
		total += v
		weighted[i] = math.Pow(band.FreqScale, frac) * v
		candidates[i] = Note{Freq: frac, Mag: weighted[i]}
	}

	return FrequencyAnalysis{
		Loudest:     pickPeaks(candidates, band.Count, band.Delta, band.MinVolume),
		TotalVolume: total,
	}, weighted
}

// pickPeaks greedily takes the loudest remaining candidate and discards every
// candidate within delta/2 of it, until count notes are chosen. Peaks quieter
// than minVolume keep their slot with zero magnitude. If candidates run out
// the result is padded with silent notes at the last chosen frequency, so the
// length is always count. candidates is reused as scratch space.
func pickPeaks(candidates []Note, count int, delta, minVolume float64) []Note {
	half := delta / 2
	loudest := make([]Note, 0, count)
	for len(candidates) > 0 && len(loudest) < count {
		best := 0
		for i, c := range candidates {
			if c.Mag > candidates[best].Mag {
				best = i
			}
		}
		peak := candidates[best]

		kept := candidates[:0]
		for _, c := range candidates {
			if math.Abs(peak.Freq-c.Freq) > half {
				kept = append(kept, c)
			}
		}
		candidates = kept

		if peak.Mag < minVolume {
			peak.Mag = 0
		}
		loudest = append(loudest, peak)
	}

	for len(loudest) < count {
		var pad Note
		if n := len(loudest); n > 0 {
			pad.Freq = loudest[n-1].Freq
		}
		loudest = append(loudest, pad)
	}
	return loudest
}
