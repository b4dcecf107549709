package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pipeline wires the analysis stages together:
//
//	capture → Downmixer → queue → Accumulator → Analyzer → TransientDetector → Publisher
//
// Everything after the queue runs on the goroutine calling Run.
type Pipeline struct {
	analyzer    *Analyzer
	detector    *TransientDetector
	accumulator *Accumulator
	downmixer   *Downmixer
	publisher   *Publisher

	done    chan struct{}
	now     func() time.Time
	windows atomic.Uint64
	onKick  func(Snapshot)
}

// NewPipeline builds a pipeline for a source with the given format.
func NewPipeline(sampleRate float64, channels int) *Pipeline {
	return newPipeline(sampleRate, channels, time.Now)
}

func newPipeline(sampleRate float64, channels int, now func() time.Time) *Pipeline {
	analyzer := NewAnalyzer(sampleRate)
	queue := make(chan []float64, QueueDepth)
	done := make(chan struct{})
	return &Pipeline{
		analyzer:    analyzer,
		detector:    newTransientDetector(now),
		accumulator: NewAccumulator(analyzer.Size(), queue),
		downmixer:   NewDownmixer(channels, queue, done),
		publisher:   NewPublisher(),
		done:        done,
		now:         now,
	}
}

// Downmixer returns the capture-side entry point. Its Push method is the
// sink for capture chunks; its Close method shuts the pipeline down.
func (p *Pipeline) Downmixer() *Downmixer { return p.downmixer }

// Publisher returns the consumer-side handle.
func (p *Pipeline) Publisher() *Publisher { return p.publisher }

// Snapshots is shorthand for Publisher().Snapshots().
func (p *Pipeline) Snapshots() <-chan Snapshot { return p.publisher.Snapshots() }

// Analyzer returns the pipeline's analyzer.
func (p *Pipeline) Analyzer() *Analyzer { return p.analyzer }

// OnKick registers fn to be called on the analyzer goroutine with every
// snapshot that carries a kick, before it is published. fn must not block.
// OnKick must be called before Run.
func (p *Pipeline) OnKick(fn func(Snapshot)) { p.onKick = fn }

// Done is closed when Run has returned.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Windows returns the number of windows analyzed so far.
func (p *Pipeline) Windows() uint64 { return p.windows.Load() }

// Run analyzes windows until the downmixer is closed, which returns nil, or
// ctx is cancelled, which returns ctx.Err(). The snapshot channel is closed
// on return. Run must be called once.
func (p *Pipeline) Run(ctx context.Context) error {
	defer close(p.done)
	defer p.publisher.Close()

	logrus.WithFields(logrus.Fields{
		"function":    "Pipeline.Run",
		"sample_rate": p.analyzer.SampleRate(),
		"window_size": p.analyzer.Size(),
		"resolution":  p.analyzer.Resolution(),
	}).Info("Starting audio analysis")

	window := make([]complex128, p.analyzer.Size())
	for {
		if err := p.accumulator.Next(ctx, window); err != nil {
			if errors.Is(err, ErrSourceClosed) {
				logrus.WithFields(logrus.Fields{
					"function": "Pipeline.Run",
					"windows":  p.windows.Load(),
					"leftover": p.accumulator.Buffered(),
				}).Info("Audio source closed, stopping analysis")
				return nil
			}
			return err
		}
		s := p.process(window)
		if s.Kick != nil && p.onKick != nil {
			p.onKick(s)
		}
		p.publisher.Publish(s)
	}
}

// process analyzes one window and builds its snapshot.
func (p *Pipeline) process(window []complex128) Snapshot {
	spec := p.analyzer.Analyze(window)

	s := Snapshot{
		Seq:          p.windows.Add(1),
		Time:         p.now(),
		Volume:       spec.Volume(),
		BassNote:     spec.Bass.Loudest[0],
		MidsNotes:    [2]Note{spec.Mids.Loudest[0], spec.Mids.Loudest[1]},
		HighNotes:    [2]Note{spec.High.Loudest[0], spec.High.Loudest[1]},
		ReactiveBass: MapFreqToCube(spec.Bass.Loudest[0].Freq, BassPow),
		ReactiveMids: MapFreqToCube(spec.Mids.Loudest[0].Freq, MidsPow),
		ReactiveHigh: MapFreqToCube(spec.High.Loudest[0].Freq, HighPow),
		Spectrum:     spec.Display,
	}
	if kick, ok := p.detector.Update(spec.Bass, spec.CurrentBass); ok {
		s.Kick = &kick
		logrus.WithFields(logrus.Fields{
			"function": "Pipeline.process",
			"seq":      s.Seq,
			"strength": kick.Strength,
		}).Debug("Bass kick detected")
	}
	return s
}
