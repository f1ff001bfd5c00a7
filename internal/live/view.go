// Package live mirrors a store collection into an in-process, ordered, typed list
// that is replaced wholesale on every delivered snapshot.
package live

import (
	"context"
	"sync"

	"pub_pos_backend/internal/store"
	"pub_pos_backend/pkg/utils"
)

// Subscriber is the store capability a view needs.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string, order *store.OrderBy) (*store.Subscription, error)
}

// Decoder converts a stored document into a typed record.
type Decoder[T any] func(store.Document) T

// State is a consistent read of a view.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     error
	Seq     uint64
}

// View is a live, ordered mirror of one collection. It starts empty and loading;
// every delivery replaces the whole list. A terminal error is reported separately
// from the loading flag.
type View[T any] struct {
	collection string

	mu      sync.RWMutex
	items   []T
	loading bool
	err     error
	seq     uint64
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
	changes   chan struct{}
	endOnce   sync.Once

	sub  *store.Subscription
	done chan struct{}
}

// Watch opens a view on collection. Subscription failures are not returned; they
// surface through Err so one broken collection never takes down the caller.
func Watch[T any](ctx context.Context, src Subscriber, collection string, order *store.OrderBy, decode Decoder[T]) *View[T] {
	v := newView[T](collection)
	sub, err := src.Subscribe(ctx, collection, order)
	if err != nil {
		utils.LogError(err, "live.Watch: subscription failed for "+collection)
		v.finish(err)
		close(v.done)
		return v
	}
	v.sub = sub

	go v.run(decode)
	return v
}

func newView[T any](collection string) *View[T] {
	return &View[T]{
		collection: collection,
		items:      []T{},
		loading:    true,
		ready:      make(chan struct{}),
		changes:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (v *View[T]) run(decode Decoder[T]) {
	defer close(v.done)

	for snap := range v.sub.C() {
		items := make([]T, len(snap.Docs))
		for i, doc := range snap.Docs {
			items[i] = decode(doc)
		}

		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			return
		}
		v.items = items
		v.loading = false
		v.seq = snap.Seq
		v.mu.Unlock()

		v.markReady()
		v.notify()
	}

	if err := v.sub.Err(); err != nil {
		utils.LogError(err, "live.View: subscription ended for "+v.collection)
		v.finish(err)
		return
	}
	v.finish(nil)
}

func (v *View[T]) finish(err error) {
	v.mu.Lock()
	if !v.closed {
		v.closed = true
		v.loading = false
		v.err = err
	}
	v.mu.Unlock()
	v.markReady()
	v.end()
}

func (v *View[T]) end() {
	v.endOnce.Do(func() { close(v.changes) })
}

func (v *View[T]) markReady() {
	v.readyOnce.Do(func() { close(v.ready) })
}

func (v *View[T]) notify() {
	select {
	case v.changes <- struct{}{}:
	default:
	}
}

// Items returns a copy of the current ordered list.
func (v *View[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]T(nil), v.items...)
}

func (v *View[T]) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Err is the terminal subscription error, if any.
func (v *View[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// State returns items, loading flag, error and sequence from the same delivery.
func (v *View[T]) State() State[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return State[T]{
		Items:   append([]T(nil), v.items...),
		Loading: v.loading,
		Err:     v.err,
		Seq:     v.seq,
	}
}

// Changes receives a signal after each delivery and is closed when the view ends.
// Signals coalesce: a slow reader sees one pending signal, then reads State.
func (v *View[T]) Changes() <-chan struct{} {
	return v.changes
}

// Wait blocks until the first delivery, a terminal error or ctx is done.
func (v *View[T]) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return v.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the subscription. When it returns, no further delivery is applied.
func (v *View[T]) Close() {
	v.mu.Lock()
	already := v.closed
	v.closed = true
	v.loading = false
	v.mu.Unlock()

	if v.sub != nil {
		v.sub.Stop()
	}
	<-v.done
	if !already {
		v.markReady()
	}
	v.end()
}
