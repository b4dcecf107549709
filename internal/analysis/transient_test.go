package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivier-w/sugarviz/curve"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func bassNote(freq, mag, total float64) FrequencyAnalysis {
	return FrequencyAnalysis{Loudest: []Note{{Freq: freq, Mag: mag}}, TotalVolume: total}
}

func TestTransientFiresAfterMinimumInterval(t *testing.T) {
	clock := newFakeClock()
	d := newTransientDetector(clock.Now)
	quiet := make([]float64, 11)

	clock.Advance(500 * time.Millisecond)
	_, fired := d.Update(bassNote(0.5, 5, 100), quiet)
	assert.False(t, fired, "too soon after start")

	clock.Advance(500 * time.Millisecond)
	kick, fired := d.Update(bassNote(0.5, 5, 100), quiet)
	require.True(t, fired)

	want := curve.ToCube(math.Pow(0.5, BassPow), 6)
	assert.InDelta(t, want.X, kick.X, 1e-12)
	assert.InDelta(t, want.Y, kick.Y, 1e-12)
	assert.InDelta(t, want.Z, kick.Z, 1e-12)
	assert.InDelta(t, 0.5, kick.Strength, 1e-12)
}

func TestTransientConditions(t *testing.T) {
	tests := []struct {
		name    string
		wait    time.Duration
		mag     float64
		history float64
		want    bool
	}{
		{"loud", time.Second, 4.5, 0, true},
		{"moderate but long wait", 3 * time.Second, 3, 0, true},
		{"moderate short wait", 2 * time.Second, 3, 0, false},
		{"below floor", 10 * time.Second, 1.2, 0, false},
		{"not above history", time.Second, 5, 2, false},
		{"above history", time.Second, 7, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			d := newTransientDetector(clock.Now)
			hist := make([]float64, 11)
			hist[5] = tt.history
			for i := 0; i < bassHistoryLen; i++ {
				d.Update(bassNote(0, 0, 0), hist)
			}
			clock.Advance(tt.wait)
			_, fired := d.Update(bassNote(0.5, tt.mag, 1), hist)
			assert.Equal(t, tt.want, fired)
		})
	}
}

func TestTransientNeverFiresTwiceWithinInterval(t *testing.T) {
	clock := newFakeClock()
	d := newTransientDetector(clock.Now)
	silent := make([]float64, 11)

	var fires []time.Time
	for i := 0; i < 2000; i++ {
		clock.Advance(10 * time.Millisecond)
		if _, ok := d.Update(bassNote(0.9, 1e9, 1e9), silent); ok {
			fires = append(fires, clock.Now())
		}
	}
	require.Greater(t, len(fires), 10)
	for i := 1; i < len(fires); i++ {
		assert.Greater(t, fires[i].Sub(fires[i-1]), kickMinInterval)
	}
}

func TestTransientSilenceNeverFires(t *testing.T) {
	clock := newFakeClock()
	d := newTransientDetector(clock.Now)
	for i := 0; i < 200; i++ {
		clock.Advance(100 * time.Millisecond)
		_, fired := d.Update(bassNote(0, 0, 0), make([]float64, 11))
		require.False(t, fired)
	}
}

func TestTransientHistoryWraps(t *testing.T) {
	d := newTransientDetector(time.Now)
	for i := 0; i < bassHistoryLen+3; i++ {
		d.Update(bassNote(0, 0, 0), []float64{float64(i)})
	}
	assert.Equal(t, 3, d.next)
	assert.Equal(t, []float64{16}, d.history[0])
	assert.Equal(t, []float64{18}, d.history[2])
	assert.Equal(t, []float64{3}, d.history[3])
}

func TestTransientAverageReindexesPerSlot(t *testing.T) {
	d := newTransientDetector(time.Now)
	d.history[0] = []float64{0, 0, 8}
	d.history[1] = []float64{0, 0, 0, 0, 8}
	d.history[2] = nil
	assert.InDelta(t, 1.0, d.averageAt(1), 1e-12)
	assert.InDelta(t, 0.0, d.averageAt(0), 1e-12)
}
