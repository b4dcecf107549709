package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherLatestWins(t *testing.T) {
	p := NewPublisher()
	for i := uint64(1); i <= 5; i++ {
		require.True(t, p.Publish(Snapshot{Seq: i}))
	}

	got := <-p.Snapshots()
	assert.Equal(t, uint64(5), got.Seq)
	assert.Equal(t, uint64(4), p.Superseded())
	assert.Equal(t, uint64(5), p.Published())

	select {
	case s := <-p.Snapshots():
		t.Fatalf("unexpected extra snapshot %d", s.Seq)
	default:
	}
}

func TestPublisherDeliversInOrder(t *testing.T) {
	p := NewPublisher()
	var last uint64
	for i := uint64(1); i <= 10; i++ {
		p.Publish(Snapshot{Seq: i})
		if i%3 == 0 {
			s := <-p.Snapshots()
			assert.Greater(t, s.Seq, last)
			last = s.Seq
		}
	}
}

func TestPublisherDetachedConsumer(t *testing.T) {
	p := NewPublisher()
	p.Detach()
	p.Detach()
	assert.False(t, p.Publish(Snapshot{Seq: 1}))
	assert.False(t, p.Publish(Snapshot{Seq: 2}))
	assert.Zero(t, p.Published())
}

func TestPublisherCloseKeepsPending(t *testing.T) {
	p := NewPublisher()
	p.Publish(Snapshot{Seq: 9})
	p.Close()
	p.Close()

	s, ok := <-p.Snapshots()
	require.True(t, ok)
	assert.Equal(t, uint64(9), s.Seq)
	_, ok = <-p.Snapshots()
	assert.False(t, ok)
}
