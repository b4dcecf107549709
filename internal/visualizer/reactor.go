package visualizer

import (
	"math"
	"time"

	"github.com/olivier-w/sugarviz/curve"
	"github.com/olivier-w/sugarviz/internal/analysis"
)

const (
	// volumeRate and spinDecay are exponential approach rates per second.
	volumeRate = 1.8
	spinDecay  = 0.375
	// baseSpin is the resting angular velocity in radians per second.
	baseSpin = 0.02
	// volumeCeiling maps raw snapshot volume onto Level's [0, 1].
	volumeCeiling = 64.0

	// DefaultStaleAfter is how long the reactor keeps the last snapshot
	// before decaying to its idle state.
	DefaultStaleAfter = 750 * time.Millisecond
)

// Idle attractor positions shown when no audio is arriving.
var (
	idleBass = curve.ToCube(0.2, curve.DefaultCubeDepth).Scale(0.5)
	idleMids = curve.ToCube(0.5, curve.DefaultCubeDepth).Scale(0.5)
	idleHigh = curve.ToCube(0.8, curve.DefaultCubeDepth).Scale(0.5)
)

// Frame is the smoothed state the views render from.
type Frame struct {
	// Snapshot is the latest analysis, or the zero value when stale.
	Snapshot analysis.Snapshot

	Volume           float64
	Bass, Mids, High curve.Point3

	SpinAxis curve.Point3
	Spin     float64
	Angle    float64
	// Kicked reports a kick arrived since the previous frame.
	Kicked bool

	Stale    bool
	Closed   bool
	Received uint64
}

// Level is the smoothed volume mapped logarithmically onto [0, 1].
func (f Frame) Level() float64 {
	if f.Volume <= 0 {
		return 0
	}
	return clamp01(math.Log1p(f.Volume) / math.Log1p(volumeCeiling))
}

// Reactor consumes snapshots without blocking, once per rendered frame.
type Reactor struct {
	in         <-chan analysis.Snapshot
	staleAfter time.Duration
	now        func() time.Time

	springs  springField
	frame    Frame
	lastPoll time.Time
	lastRecv time.Time
	fps      int
}

// NewReactor polls in at the given frame rate.
func NewReactor(in <-chan analysis.Snapshot, fps int) *Reactor {
	return newReactor(in, fps, DefaultStaleAfter, time.Now)
}

func newReactor(in <-chan analysis.Snapshot, fps int, staleAfter time.Duration, now func() time.Time) *Reactor {
	if fps < 1 {
		fps = 1
	}
	r := &Reactor{
		in:         in,
		staleAfter: staleAfter,
		now:        now,
		springs:    newSpringField(fps, 5.0, 0.6),
		fps:        fps,
	}
	r.springs.resize(3)
	r.frame.Stale = true
	r.frame.SpinAxis = curve.Point3{Y: 1}
	r.frame.Spin = baseSpin
	r.frame.Bass, r.frame.Mids, r.frame.High = idleBass, idleMids, idleHigh
	for i, p := range []curve.Point3{idleBass, idleMids, idleHigh} {
		r.springs.place(i, p)
	}
	return r
}

// Poll takes at most one pending snapshot and advances the smoothed state by
// the time since the previous call.
func (r *Reactor) Poll() Frame {
	now := r.now()
	dt := 1 / float64(r.fps)
	if !r.lastPoll.IsZero() {
		dt = now.Sub(r.lastPoll).Seconds()
	}
	r.lastPoll = now

	f := &r.frame
	f.Kicked = false
	if r.in != nil {
		select {
		case s, ok := <-r.in:
			if !ok {
				r.in = nil
				f.Closed = true
				break
			}
			r.lastRecv = now
			f.Received++
			f.Snapshot = s
			if s.Kick != nil {
				f.SpinAxis = normalize(curve.Point3{X: s.Kick.X, Y: s.Kick.Y, Z: s.Kick.Z})
				f.Spin = s.Kick.Strength
				f.Kicked = true
			}
		default:
		}
	}

	f.Stale = f.Closed || r.lastRecv.IsZero() || now.Sub(r.lastRecv) > r.staleAfter
	targetVolume := f.Snapshot.Volume
	targets := [3]curve.Point3{f.Snapshot.ReactiveBass, f.Snapshot.ReactiveMids, f.Snapshot.ReactiveHigh}
	if f.Stale {
		f.Snapshot = analysis.Snapshot{}
		targetVolume = 0
		targets = [3]curve.Point3{idleBass, idleMids, idleHigh}
	}

	f.Volume = approach(f.Volume, targetVolume, volumeRate, dt)
	f.Angle = math.Mod(f.Angle+f.Spin*dt, 2*math.Pi)
	f.Spin = approach(f.Spin, baseSpin, spinDecay, dt)

	f.Bass = r.springs.step(0, targets[0])
	f.Mids = r.springs.step(1, targets[1])
	f.High = r.springs.step(2, targets[2])
	return *f
}

// approach moves cur toward target, closing the gap by a factor of
// exp(-rate*dt).
func approach(cur, target, rate, dt float64) float64 {
	return target + (cur-target)*math.Exp(-rate*dt)
}

func normalize(p curve.Point3) curve.Point3 {
	l := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	if l == 0 {
		return curve.Point3{Y: 1}
	}
	return p.Scale(1 / l)
}
