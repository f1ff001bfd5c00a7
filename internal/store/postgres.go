package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pub_pos_backend/pkg/utils"
)

// ChangeChannel is the NOTIFY channel the documents trigger publishes collection names on.
const ChangeChannel = "documents_changed"

// PostgresStore keeps every collection in a single JSONB table and turns the
// trigger's notifications into snapshot deliveries.
type PostgresStore struct {
	db       *sql.DB
	listener *pq.Listener

	mu     sync.Mutex
	subs   map[string]map[*Subscription]*OrderBy
	closed bool

	// refreshMu serializes query-and-deliver so snapshot sequence numbers follow read order.
	refreshMu sync.Mutex
	seq       uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewPostgresStore starts listening for change notifications on dsn. The schema must
// already exist (see database.EnsureSchema).
func NewPostgresStore(db *sql.DB, dsn string) (*PostgresStore, error) {
	s := &PostgresStore{
		db:   db,
		subs: map[string]map[*Subscription]*OrderBy{},
		done: make(chan struct{}),
	}

	s.listener = pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			utils.LogWarn(err, "PostgresStore: listener event", map[string]interface{}{"event": int(ev)})
		}
	})
	if err := s.listener.Listen(ChangeChannel); err != nil {
		s.listener.Close()
		return nil, fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *PostgresStore) run() {
	defer s.wg.Done()
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-s.done:
			return
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnected: notifications may have been missed.
				for _, c := range s.activeCollections() {
					s.refresh(c, nil)
				}
				continue
			}
			s.refresh(n.Extra, nil)
		case <-ping.C:
			if err := s.listener.Ping(); err != nil {
				utils.LogWarn(err, "PostgresStore: listener ping failed")
			}
		}
	}
}

func (s *PostgresStore) activeCollections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subs))
	for c, set := range s.subs {
		if len(set) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// refresh re-reads a collection and delivers it to only, or to every subscriber when only is nil.
func (s *PostgresStore) refresh(collection string, only *Subscription) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	targets := map[*Subscription]*OrderBy{}
	for sub, order := range s.subs[collection] {
		if only == nil || sub == only {
			targets[sub] = order
		}
	}
	s.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	docs, err := s.list(ctx, collection, "", nil, 0)
	if err != nil {
		utils.LogError(err, "PostgresStore: snapshot query failed for "+collection)
		for sub := range targets {
			sub.fail(err)
		}
		return
	}

	s.seq++
	for sub, order := range targets {
		ordered := make([]Document, len(docs))
		for i, d := range docs {
			ordered[i] = cloneDocument(d)
		}
		SortDocuments(ordered, order)
		sub.deliver(Snapshot{Docs: ordered, Seq: s.seq})
	}
}

func (s *PostgresStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data map[string]any) (Document, error) {
	if s.isClosed() {
		return Document{}, ErrClosed
	}
	clean, err := normalize(data)
	if err != nil {
		return Document{}, err
	}
	raw, _ := json.Marshal(clean)

	doc := Document{ID: uuid.NewString(), Data: clean}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb) RETURNING created_at`,
		collection, doc.ID, string(raw),
	).Scan(&doc.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("insert %s: %w", collection, err)
	}
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if s.isClosed() {
		return Document{}, ErrClosed
	}
	var (
		raw []byte
		doc = Document{ID: id}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if s.isClosed() {
		return ErrClosed
	}
	clean, err := normalize(fields)
	if err != nil {
		return err
	}
	raw, _ := json.Marshal(clean)
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(raw),
	)
	return affected(res, err, collection, id)
}

// UpdateIf is a single conditional UPDATE. When no row matches, a follow-up read
// tells a missing document from a failed guard.
func (s *PostgresStore) UpdateIf(ctx context.Context, collection, id, field string, expect any, fields map[string]any) error {
	if s.isClosed() {
		return ErrClosed
	}
	want, err := normalizeValue(expect)
	if err != nil {
		return err
	}
	clean, err := normalize(fields)
	if err != nil {
		return err
	}
	raw, _ := json.Marshal(clean)
	guard, _ := json.Marshal(want)
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb
		WHERE collection = $1 AND id = $2 AND data->$4::text = $5::jsonb`,
		collection, id, string(raw), field, string(guard),
	)
	err = affected(res, err, collection, id)
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, getErr := s.Get(ctx, collection, id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("%w: %s/%s.%s", ErrConflict, collection, id, field)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if s.isClosed() {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return affected(res, err, collection, id)
}

// Increment runs as a single UPDATE, so concurrent increments never lose writes.
func (s *PostgresStore) Increment(ctx context.Context, collection, id, field string, delta float64) error {
	if s.isClosed() {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET data = jsonb_set(data, ARRAY[$3::text], to_jsonb(COALESCE((data->>$3::text)::numeric, 0) + $4::numeric))
		WHERE collection = $1 AND id = $2`,
		collection, id, field, delta,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
			return fmt.Errorf("%w: %s/%s.%s", ErrNotNumeric, collection, id, field)
		}
	}
	return affected(res, err, collection, id)
}

func (s *PostgresStore) Query(ctx context.Context, collection, field string, value any, limit int) ([]Document, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.list(ctx, collection, field, value, limit)
}

func (s *PostgresStore) list(ctx context.Context, collection, field string, value any, limit int) ([]Document, error) {
	query := `SELECT id, data, created_at FROM documents WHERE collection = $1`
	args := []any{collection}
	if field != "" {
		want, err := normalizeValue(value)
		if err != nil {
			return nil, err
		}
		raw, _ := json.Marshal(want)
		query += ` AND data->$2::text = $3::jsonb`
		args = append(args, field, string(raw))
	}
	query += ` ORDER BY created_at, id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, collection string, order *OrderBy) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	var sub *Subscription
	sub = newSubscription(ctx, func() {
		s.mu.Lock()
		delete(s.subs[collection], sub)
		s.mu.Unlock()
	})
	if s.subs[collection] == nil {
		s.subs[collection] = map[*Subscription]*OrderBy{}
	}
	s.subs[collection][sub] = order
	s.mu.Unlock()

	s.refresh(collection, sub)
	return sub, nil
}

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var subs []*Subscription
	for _, set := range s.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	s.subs = map[string]map[*Subscription]*OrderBy{}
	s.mu.Unlock()

	close(s.done)
	err := s.listener.Close()
	s.wg.Wait()
	for _, sub := range subs {
		sub.fail(ErrClosed)
	}
	return err
}

func affected(res sql.Result, err error, collection, id string) error {
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}
