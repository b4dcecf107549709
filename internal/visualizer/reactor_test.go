package visualizer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivier-w/sugarviz/curve"
	"github.com/olivier-w/sugarviz/internal/analysis"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestReactor(in <-chan analysis.Snapshot) (*Reactor, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	return newReactor(in, 30, 500*time.Millisecond, clock.Now), clock
}

func TestReactorStartsIdle(t *testing.T) {
	r, _ := newTestReactor(make(chan analysis.Snapshot))
	f := r.Poll()

	assert.True(t, f.Stale)
	assert.False(t, f.Closed)
	assert.Zero(t, f.Received)
	assert.Zero(t, f.Volume)
	assert.Zero(t, f.Level())
	assert.InDelta(t, idleBass.X, f.Bass.X, 1e-9)
	assert.InDelta(t, idleHigh.Z, f.High.Z, 1e-9)
}

func TestReactorAppliesSnapshot(t *testing.T) {
	in := make(chan analysis.Snapshot, 1)
	r, clock := newTestReactor(in)

	target := curve.Point3{X: 0.5, Y: -0.5, Z: 0.25}
	in <- analysis.Snapshot{
		Seq:          1,
		Volume:       10,
		ReactiveBass: target,
		Kick:         &analysis.Kick{X: 0, Y: 0, Z: 2, Strength: 0.5},
	}

	f := r.Poll()
	require.Equal(t, uint64(1), f.Received)
	assert.False(t, f.Stale)
	assert.True(t, f.Kicked)
	assert.Equal(t, curve.Point3{Z: 1}, f.SpinAxis, "kick axis is normalised")
	assert.Greater(t, f.Spin, baseSpin)
	assert.Less(t, f.Spin, 0.5)
	assert.InDelta(t, 10*(1-math.Exp(-volumeRate/30)), f.Volume, 1e-9)

	// No new snapshot: keep easing toward the last one.
	for i := 0; i < 10; i++ {
		clock.Advance(33 * time.Millisecond)
		f = r.Poll()
	}
	assert.False(t, f.Kicked, "a kick is reported once")
	assert.False(t, f.Stale)
	assert.Equal(t, uint64(1), f.Received)
	assert.Greater(t, f.Volume, 3.0)
	assert.Less(t, f.Volume, 10.0)
	assert.Less(t, math.Abs(f.Bass.X-target.X), math.Abs(idleBass.X-target.X)+1e-9)
}

func TestReactorSpinDecaysToBase(t *testing.T) {
	in := make(chan analysis.Snapshot, 1)
	r, clock := newTestReactor(in)
	in <- analysis.Snapshot{Volume: 1, Kick: &analysis.Kick{Y: 1, Strength: 1}}
	r.Poll()

	clock.Advance(20 * time.Second)
	f := r.Poll()
	assert.InDelta(t, baseSpin, f.Spin, 1e-3)
}

func TestReactorDecaysWhenStale(t *testing.T) {
	in := make(chan analysis.Snapshot, 1)
	r, clock := newTestReactor(in)

	in <- analysis.Snapshot{Volume: 20}
	r.Poll()
	clock.Advance(400 * time.Millisecond)
	f := r.Poll()
	require.False(t, f.Stale)
	peak := f.Volume

	clock.Advance(200 * time.Millisecond)
	f = r.Poll()
	assert.True(t, f.Stale)
	assert.Less(t, f.Volume, peak)
	assert.Equal(t, analysis.Snapshot{}, f.Snapshot)

	clock.Advance(10 * time.Second)
	f = r.Poll()
	assert.InDelta(t, 0, f.Volume, 1e-3)
}

func TestReactorObservesClose(t *testing.T) {
	in := make(chan analysis.Snapshot, 1)
	r, _ := newTestReactor(in)
	in <- analysis.Snapshot{Volume: 5}
	close(in)

	f := r.Poll()
	assert.Equal(t, uint64(1), f.Received)
	assert.False(t, f.Closed)

	f = r.Poll()
	assert.True(t, f.Closed)
	assert.True(t, f.Stale)

	// Further polls stay closed without blocking.
	f = r.Poll()
	assert.True(t, f.Closed)
}

func TestFrameLevel(t *testing.T) {
	assert.Zero(t, Frame{Volume: -1}.Level())
	assert.InDelta(t, 1, Frame{Volume: volumeCeiling}.Level(), 1e-9)
	assert.InDelta(t, 1, Frame{Volume: 1e6}.Level(), 1e-9)
	mid := Frame{Volume: 8}.Level()
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 1.0)
}

func TestApproach(t *testing.T) {
	assert.Equal(t, 5.0, approach(5, 5, 1.8, 1))
	assert.InDelta(t, 10*(1-math.Exp(-1.8)), approach(0, 10, 1.8, 1), 1e-9)
	assert.Equal(t, 3.0, approach(3, 7, 1.8, 0))
}
