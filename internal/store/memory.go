package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. It serves tests and single
// process deployments; nothing survives a restart.
type MemoryStore struct {
	mu          sync.Mutex
	allowed     map[string]bool
	collections map[string]map[string]Document
	subs        map[string]map[*Subscription]*OrderBy
	seq         uint64
	lastTime    time.Time
	closed      bool
	now         func() time.Time
}

// NewMemoryStore creates an empty store. When collections are given, every other
// collection name is rejected with ErrUnknownCollection.
func NewMemoryStore(collections ...string) *MemoryStore {
	m := &MemoryStore{
		collections: map[string]map[string]Document{},
		subs:        map[string]map[*Subscription]*OrderBy{},
		now:         time.Now,
	}
	if len(collections) > 0 {
		m.allowed = map[string]bool{}
		for _, c := range collections {
			m.allowed[c] = true
		}
	}
	return m
}

func (m *MemoryStore) check(collection string) error {
	if m.closed {
		return ErrClosed
	}
	if m.allowed != nil && !m.allowed[collection] {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}

// timestamp returns a creation time strictly after the previous one.
func (m *MemoryStore) timestamp() time.Time {
	t := m.now().UTC().Truncate(time.Microsecond)
	if !t.After(m.lastTime) {
		t = m.lastTime.Add(time.Microsecond)
	}
	m.lastTime = t
	return t
}

func (m *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	clean, err := normalize(data)
	if err != nil {
		return Document{}, err
	}

	m.mu.Lock()
	if err := m.check(collection); err != nil {
		m.mu.Unlock()
		return Document{}, err
	}
	doc := Document{ID: uuid.NewString(), Data: clean, CreatedAt: m.timestamp()}
	docs := m.collections[collection]
	if docs == nil {
		docs = map[string]Document{}
		m.collections[collection] = docs
	}
	docs[doc.ID] = doc
	out := cloneDocument(doc)
	m.notifyLocked(collection)
	m.mu.Unlock()
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return Document{}, err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return cloneDocument(doc), nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := normalize(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	merged := cloneDocument(doc)
	for k, v := range clean {
		merged.Data[k] = v
	}
	m.collections[collection][id] = merged
	m.notifyLocked(collection)
	return nil
}

// UpdateIf merges fields only while field still equals expect.
func (m *MemoryStore) UpdateIf(ctx context.Context, collection, id, field string, expect any, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want, err := normalizeValue(expect)
	if err != nil {
		return err
	}
	clean, err := normalize(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if !valuesEqual(doc.Data[field], want) {
		return fmt.Errorf("%w: %s/%s.%s", ErrConflict, collection, id, field)
	}
	merged := cloneDocument(doc)
	for k, v := range clean {
		merged.Data[k] = v
	}
	m.collections[collection][id] = merged
	m.notifyLocked(collection)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return err
	}
	if _, ok := m.collections[collection][id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(m.collections[collection], id)
	m.notifyLocked(collection)
	return nil
}

// Increment adds delta to a numeric field. A missing field counts as zero.
func (m *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return err
	}
	doc, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	current, ok := toNumber(doc.Data[field])
	if !ok {
		return fmt.Errorf("%w: %s/%s.%s", ErrNotNumeric, collection, id, field)
	}
	updated := cloneDocument(doc)
	updated.Data[field] = current + delta
	m.collections[collection][id] = updated
	m.notifyLocked(collection)
	return nil
}

// Query returns documents whose field equals value, oldest first. An empty field
// matches every document; limit <= 0 means no limit.
func (m *MemoryStore) Query(ctx context.Context, collection, field string, value any, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalizeValue(value)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if err := m.check(collection); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	var out []Document
	for _, doc := range m.collections[collection] {
		if field == "" || valuesEqual(doc.Data[field], want) {
			out = append(out, cloneDocument(doc))
		}
	}
	m.mu.Unlock()

	SortDocuments(out, &OrderBy{Field: FieldCreatedAt})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Subscribe delivers the current snapshot immediately and a new one after every change.
func (m *MemoryStore) Subscribe(ctx context.Context, collection string, order *OrderBy) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(collection); err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(ctx, func() {
		m.mu.Lock()
		delete(m.subs[collection], sub)
		m.mu.Unlock()
	})
	if m.subs[collection] == nil {
		m.subs[collection] = map[*Subscription]*OrderBy{}
	}
	m.subs[collection][sub] = order
	sub.deliver(m.snapshotLocked(collection, order))
	return sub, nil
}

// Interrupt fails every open subscription of a collection with err, the way a
// revoked permission ends a remote listener.
func (m *MemoryStore) Interrupt(collection string, err error) {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs[collection]))
	for sub := range m.subs[collection] {
		subs = append(subs, sub)
	}
	delete(m.subs, collection)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.fail(err)
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	var subs []*Subscription
	for _, set := range m.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	m.subs = map[string]map[*Subscription]*OrderBy{}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.fail(ErrClosed)
	}
	return nil
}

func (m *MemoryStore) snapshotLocked(collection string, order *OrderBy) Snapshot {
	docs := make([]Document, 0, len(m.collections[collection]))
	for _, doc := range m.collections[collection] {
		docs = append(docs, cloneDocument(doc))
	}
	SortDocuments(docs, order)
	return Snapshot{Docs: docs, Seq: m.seq}
}

// notifyLocked must be called with m.mu held. Deliveries happen under the lock so
// every subscriber sees changes in commit order.
func (m *MemoryStore) notifyLocked(collection string) {
	m.seq++
	for sub, order := range m.subs[collection] {
		sub.deliver(m.snapshotLocked(collection, order))
	}
}
