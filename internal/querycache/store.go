package querycache

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is an immutable snapshot of a cache entry. Data is present iff
// Status is StatusSuccess; Err is present iff Status is StatusError.
type Entry struct {
	Key       Key
	Status    Status
	Data      any
	Err       error
	FetchedAt time.Time
}

// Loader produces the payload for one resource fetch. It runs on its own
// goroutine; a failed load settles the entry in error status.
type Loader func(ctx context.Context) (any, error)

// StoreOption configures Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	maxEntries int
}

// WithMaxEntries caps the number of entries kept before settled entries
// are evicted.
func WithMaxEntries(n int) StoreOption {
	return func(c *storeConfig) {
		c.maxEntries = n
	}
}

type record struct {
	key       Key
	status    Status
	data      any
	err       error
	fetchedAt time.Time
	inFlight  uint64 // token of the outstanding request, 0 = none
	touched   time.Time
}

// Store maps logical queries to asynchronous results. It deduplicates
// concurrent identical requests, supports invalidation and prefetch, and
// pushes status transitions to subscribers.
//
// Guarantees per key: at most one outstanding loader at a time, and status
// moves strictly idle -> pending -> (success|error) for each issued
// request. Invalidation never aborts an in-flight loader; its result is
// still written when it completes, and when an invalidated key is
// re-fetched before the old loader finishes, the loader that completes
// last wins.
type Store struct {
	mu        sync.Mutex
	entries   map[Key]*record
	max       int
	nextToken uint64
	closed    bool
	broker    *broker
}

// NewStore creates a query cache store.
func NewStore(opts ...StoreOption) *Store {
	cfg := &storeConfig{maxEntries: 256}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Store{
		entries: make(map[Key]*record),
		max:     cfg.maxEntries,
		broker:  newBroker(),
	}
}

// Get returns the current snapshot for key without blocking. A key that
// was never fetched reads as idle.
func (s *Store) Get(key Key) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[key]
	if !ok {
		return Entry{Key: key, Status: StatusIdle}
	}
	rec.touched = time.Now()
	return snapshot(rec)
}

// EnsureFetching starts a fetch for key unless one is already outstanding
// or the entry already settled. Calling it twice before the first loader
// resolves invokes the loader exactly once.
func (s *Store) EnsureFetching(ctx context.Context, key Key, loader Loader) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	rec, ok := s.entries[key]
	if !ok {
		s.evictIfFull()
		rec = &record{key: key, status: StatusIdle}
		s.entries[key] = rec
	}
	if rec.status != StatusIdle {
		// Pending: a request is outstanding, dedupe. Settled: data is
		// fresh until somebody invalidates it.
		s.mu.Unlock()
		return
	}

	s.nextToken++
	token := s.nextToken
	rec.inFlight = token
	rec.status = StatusPending
	rec.touched = time.Now()
	s.mu.Unlock()

	s.broker.publish(Event{Key: key, Status: StatusPending})

	go s.runLoader(ctx, key, token, loader)
}

// Prefetch warms the entry for key before any view reads it. Semantics are
// identical to EnsureFetching.
func (s *Store) Prefetch(ctx context.Context, key Key, loader Loader) {
	s.EnsureFetching(ctx, key, loader)
}

func (s *Store) runLoader(ctx context.Context, key Key, token uint64, loader Loader) {
	data, err := loader(ctx)

	s.mu.Lock()
	rec, ok := s.entries[key]
	if !ok {
		// Entry evicted mid-flight: the result has nowhere to go.
		s.mu.Unlock()
		return
	}

	// A completed result is always written, even if the entry was
	// invalidated mid-flight. When a newer request raced us after an
	// invalidation, it will overwrite this on its own completion
	// (last writer by completion order).
	if err != nil {
		rec.status = StatusError
		rec.err = err
		rec.data = nil
	} else {
		rec.status = StatusSuccess
		rec.data = data
		rec.err = nil
	}
	rec.fetchedAt = time.Now()
	rec.touched = rec.fetchedAt
	if rec.inFlight == token {
		rec.inFlight = 0
	}
	status := rec.status
	s.mu.Unlock()

	s.broker.publish(Event{Key: key, Status: status})
}

// Invalidate marks every entry whose key matches pred as idle without
// refetching. In-flight loaders for matched keys are not aborted; their
// results are written when they complete.
func (s *Store) Invalidate(pred func(Key) bool) {
	s.mu.Lock()
	var events []Event
	for key, rec := range s.entries {
		if !pred(key) {
			continue
		}
		if rec.status == StatusIdle {
			continue
		}
		rec.status = StatusIdle
		events = append(events, Event{Key: key, Status: StatusIdle})
	}
	s.mu.Unlock()

	for _, evt := range events {
		s.broker.publish(evt)
	}
}

// Subscribe registers a status-transition listener. The channel is
// buffered; events to slow subscribers are dropped.
func (s *Store) Subscribe() (int64, <-chan Event) {
	return s.broker.subscribe()
}

// Unsubscribe removes a listener and closes its channel.
func (s *Store) Unsubscribe(id int64) {
	s.broker.unsubscribe(id)
}

// Len reports the number of entries currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close drops all entries and closes subscriber channels. In-flight
// loaders finish but their results are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.entries = make(map[Key]*record)
	s.mu.Unlock()
	s.broker.close()
}

// evictIfFull removes the least recently touched settled entry when the
// cap is reached. Pending entries are never evicted so in-flight results
// keep their home. Caller holds s.mu.
func (s *Store) evictIfFull() {
	if len(s.entries) < s.max {
		return
	}

	var oldestKey Key
	var oldest time.Time
	found := false
	for key, rec := range s.entries {
		if rec.status == StatusPending {
			continue
		}
		if !found || rec.touched.Before(oldest) {
			oldest = rec.touched
			oldestKey = key
			found = true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}

func snapshot(rec *record) Entry {
	return Entry{
		Key:       rec.key,
		Status:    rec.status,
		Data:      rec.data,
		Err:       rec.err,
		FetchedAt: rec.fetchedAt,
	}
}
