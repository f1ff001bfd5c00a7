package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pub_pos_backend/pkg/utils"
)

var ErrCartNotFound = errors.New("cart not found")

type entry struct {
	cart     *Cart
	lastSeen time.Time
}

// Registry keeps carts for browsing and staff sessions, keyed by a generated id.
// Carts idle for longer than the TTL are evicted.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		carts: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create registers an empty cart.
func (r *Registry) Create() (string, *Cart) {
	id := uuid.NewString()
	c := New()

	r.mu.Lock()
	r.carts[id] = &entry{cart: c, lastSeen: r.now()}
	r.mu.Unlock()
	return id, c
}

// Get returns the cart and refreshes its idle timer.
func (r *Registry) Get(id string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.carts, id)
		return nil, ErrCartNotFound
	}
	e.lastSeen = now
	return e.cart, nil
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.carts, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Sweep evicts idle carts and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.carts {
		if r.expired(e, now) {
			delete(r.carts, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				utils.LogDebug("Evicted idle carts", map[string]interface{}{"count": n})
			}
		}
	}
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}
