package analysis

import (
	"math"
	"time"

	"github.com/olivier-w/sugarviz/curve"
)

const (
	bassHistoryLen = 16

	kickStrengthScale = 0.05
	kickMinInterval   = 800 * time.Millisecond
	kickDepth         = 6
)

// TransientDetector decides when the bass is surging hard enough, relative to
// its recent history, to count as a kick. It is owned by the analyzer
// goroutine and is not safe for concurrent use.
type TransientDetector struct {
	now      func() time.Time
	lastKick time.Time
	next     int
	history  [bassHistoryLen][]float64
}

// NewTransientDetector returns a detector using the wall clock. The first kick
// can fire no sooner than the minimum interval after creation.
func NewTransientDetector() *TransientDetector {
	return newTransientDetector(time.Now)
}

func newTransientDetector(now func() time.Time) *TransientDetector {
	return &TransientDetector{now: now, lastKick: now()}
}

// Update feeds one window's bass analysis and weighted bass spectrum to the
// detector. It returns the kick and true if one fired in this window. The
// detector keeps current; callers must not modify it afterwards.
func (d *TransientDetector) Update(bass FrequencyAnalysis, current []float64) (Kick, bool) {
	var kick Kick
	fired := false

	loudest := bass.Loudest[0]
	elapsed := d.now().Sub(d.lastKick).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if (loudest.Mag > 4 || loudest.Mag*elapsed > 8) &&
		elapsed > kickMinInterval.Seconds() &&
		loudest.Mag > 1.25 &&
		loudest.Mag > 3*d.averageAt(loudest.Freq) {
		p := curve.ToCube(math.Pow(loudest.Freq, BassPow), kickDepth)
		kick = Kick{
			X:        p.X,
			Y:        p.Y,
			Z:        p.Z,
			Strength: kickStrengthScale * math.Sqrt(bass.TotalVolume),
		}
		fired = true
		d.lastKick = d.now()
	}

	d.history[d.next] = current
	d.next = (d.next + 1) % bassHistoryLen
	return kick, fired
}

// averageAt returns the mean historic magnitude at band fraction freq. Slots
// not yet written count as silence.
func (d *TransientDetector) averageAt(freq float64) float64 {
	var sum float64
	for _, slot := range d.history {
		if len(slot) > 0 {
			sum += slot[fractionToIndex(freq, len(slot))]
		}
	}
	return sum / bassHistoryLen
}
