package store

import (
	"context"
	"sync"
)

// Subscription delivers snapshots of one collection. Only the latest undelivered
// snapshot is kept, so a slow reader skips intermediate states but never goes back
// to an older one.
type Subscription struct {
	mu      sync.Mutex
	ch      chan Snapshot
	err     error
	closed  bool
	lastSeq uint64
	hasSeq  bool

	once      sync.Once
	onStop    func()
	stopAfter func() bool
}

func newSubscription(ctx context.Context, onStop func()) *Subscription {
	s := &Subscription{
		ch:     make(chan Snapshot, 1),
		onStop: onStop,
	}
	s.stopAfter = context.AfterFunc(ctx, s.Stop)
	return s
}

// C returns the delivery channel. It is closed after Stop or a terminal failure.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Err reports the terminal error, if the subscription failed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the subscription. Pending snapshots are discarded and nothing is
// delivered afterwards.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		if s.stopAfter != nil {
			s.stopAfter()
		}
		if s.onStop != nil {
			s.onStop()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.closed = true
		select {
		case <-s.ch:
		default:
		}
		close(s.ch)
	})
}

// deliver offers a snapshot, replacing an unread older one. Snapshots that are not
// newer than the last delivered one are dropped.
func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.hasSeq && snap.Seq <= s.lastSeq {
		return
	}
	s.lastSeq = snap.Seq
	s.hasSeq = true
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// fail ends the subscription with a terminal error.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.err = err
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.once.Do(func() {
		if s.stopAfter != nil {
			s.stopAfter()
		}
		if s.onStop != nil {
			s.onStop()
		}
	})
}
