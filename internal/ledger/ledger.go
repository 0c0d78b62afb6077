// Package ledger keeps a bounded, order-preserving record of recently
// searched symbols, persisted to durable key-value storage across
// sessions. Storage trouble never reaches the caller: the ledger degrades
// to in-memory operation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"StockPulse/internal/querycache"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

// Capacity is the maximum number of symbols retained.
const Capacity = 12

const defaultStorageKey = "recent_symbols"

// Option configures Ledger.
type Option func(*Ledger)

// WithStorageKey overrides the key the ledger persists under.
func WithStorageKey(key string) Option {
	return func(l *Ledger) {
		l.storageKey = key
	}
}

// Ledger is a most-recent-first list of unique symbols.
type Ledger struct {
	mu         sync.Mutex
	symbols    []string
	store      cache.Service
	storageKey string
	logger     *logger.Logger
}

// New creates a ledger and rehydrates it from storage. A nil store means
// in-memory only; missing or corrupt storage yields an empty ledger.
func New(store cache.Service, log *logger.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	l := &Ledger{
		store:      store,
		storageKey: defaultStorageKey,
		logger:     log,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.symbols = l.load(context.Background())
	return l
}

// Record normalizes symbol, moves it to the front, truncates to Capacity
// and persists. An empty symbol after normalization is ignored.
func (l *Ledger) Record(ctx context.Context, symbol string) {
	symbol = querycache.NormalizeSymbol(symbol)
	if symbol == "" {
		return
	}

	l.mu.Lock()
	next := make([]string, 0, len(l.symbols)+1)
	next = append(next, symbol)
	for _, s := range l.symbols {
		if s != symbol {
			next = append(next, s)
		}
	}
	if len(next) > Capacity {
		next = next[:Capacity]
	}
	l.symbols = next
	snapshot := append([]string(nil), next...)
	l.mu.Unlock()

	l.persist(ctx, snapshot)
}

// Recent returns the symbols most-recent-first.
func (l *Ledger) Recent() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.symbols...)
}

// Len reports the number of symbols held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.symbols)
}

// load reads the persisted ordering. Any read or parse failure yields an
// empty sequence, never an error.
func (l *Ledger) load(ctx context.Context) []string {
	if l.store == nil {
		return nil
	}

	var raw string
	if err := l.store.Get(ctx, l.storageKey, &raw); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.logger.Warn("ledger: storage read failed, starting empty", logger.Error(err))
		}
		return nil
	}

	var symbols []string
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		l.logger.Warn("ledger: corrupt storage, starting empty", logger.Error(err))
		return nil
	}

	// Re-apply the invariants in case storage was written by hand.
	seen := make(map[string]struct{}, len(symbols))
	clean := make([]string, 0, Capacity)
	for _, s := range symbols {
		s = querycache.NormalizeSymbol(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		clean = append(clean, s)
		if len(clean) == Capacity {
			break
		}
	}
	return clean
}

// persist writes the ordering to storage. Failures are logged and
// swallowed so the ledger keeps working in memory.
func (l *Ledger) persist(ctx context.Context, symbols []string) {
	if l.store == nil {
		return
	}

	raw, err := json.Marshal(symbols)
	if err != nil {
		l.logger.Warn("ledger: marshal failed", logger.Error(err))
		return
	}
	if err := l.store.Set(ctx, l.storageKey, string(raw), 0); err != nil {
		l.logger.Warn("ledger: storage write failed, continuing in memory", logger.Error(err))
	}
}
