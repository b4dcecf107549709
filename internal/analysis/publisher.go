package analysis

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Publisher hands snapshots to a single consumer. The channel holds at most
// one snapshot; publishing replaces one the consumer has not picked up yet, so
// a slow consumer always sees the newest state and never builds a backlog.
//
// Publish and Close must be called from one goroutine.
type Publisher struct {
	ch         chan Snapshot
	detached   chan struct{}
	detachOnce sync.Once
	closeOnce  sync.Once
	superseded atomic.Uint64
	published  atomic.Uint64
	warned     bool
}

// NewPublisher returns a Publisher with an empty channel.
func NewPublisher() *Publisher {
	return &Publisher{
		ch:       make(chan Snapshot, 1),
		detached: make(chan struct{}),
	}
}

// Snapshots returns the consumer side. It is closed when the producer stops.
func (p *Publisher) Snapshots() <-chan Snapshot { return p.ch }

// Publish offers s to the consumer without blocking. It reports whether s was
// queued; it is false only after the consumer detached.
func (p *Publisher) Publish(s Snapshot) bool {
	select {
	case <-p.detached:
		if !p.warned {
			p.warned = true
			logrus.WithFields(logrus.Fields{
				"function": "Publisher.Publish",
				"seq":      s.Seq,
			}).Warn("Snapshot consumer disconnected, continuing without it")
		}
		return false
	default:
	}

	select {
	case p.ch <- s:
		p.published.Add(1)
		return true
	default:
	}

	// Full: take back the stale snapshot. The consumer may have taken it in
	// the meantime, in which case there is nothing to replace.
	select {
	case <-p.ch:
		p.superseded.Add(1)
	default:
	}
	p.ch <- s
	p.published.Add(1)
	return true
}

// Detach tells the publisher the consumer has gone away. It is safe to call
// from the consumer goroutine, more than once.
func (p *Publisher) Detach() {
	p.detachOnce.Do(func() { close(p.detached) })
}

// Published returns the number of snapshots queued so far.
func (p *Publisher) Published() uint64 { return p.published.Load() }

// Superseded returns how many snapshots were replaced before the consumer
// read them.
func (p *Publisher) Superseded() uint64 { return p.superseded.Load() }

// Close closes the snapshot channel. Undelivered snapshots stay readable.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() { close(p.ch) })
}
