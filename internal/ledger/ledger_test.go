package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

func TestRecordDeduplicatesCaseInsensitively(t *testing.T) {
	l := New(nil, logger.Nop())

	l.Record(context.Background(), "aapl")
	l.Record(context.Background(), "AAPL")

	got := l.Recent()
	if len(got) != 1 || got[0] != "AAPL" {
		t.Fatalf("expected single normalized entry, got %v", got)
	}
}

func TestRecordMovesExistingToFront(t *testing.T) {
	l := New(nil, logger.Nop())

	l.Record(context.Background(), "AAPL")
	l.Record(context.Background(), "MSFT")
	l.Record(context.Background(), "AAPL")

	got := l.Recent()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if got[0] != "AAPL" || got[1] != "MSFT" {
		t.Fatalf("expected [AAPL MSFT], got %v", got)
	}
}

func TestRecordIgnoresBlankSymbol(t *testing.T) {
	l := New(nil, logger.Nop())
	l.Record(context.Background(), "   ")
	if l.Len() != 0 {
		t.Fatalf("blank symbol must be ignored, got %v", l.Recent())
	}
}

func TestCapacityKeepsTwelveMostRecent(t *testing.T) {
	l := New(nil, logger.Nop())

	for i := 0; i < 20; i++ {
		l.Record(context.Background(), fmt.Sprintf("SY%c", 'A'+i))
	}

	got := l.Recent()
	if len(got) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(got))
	}
	// Most recent first: SYT down to SYI.
	if got[0] != "SYT" {
		t.Fatalf("expected most recent first, got %v", got)
	}
	if got[Capacity-1] != "SYI" {
		t.Fatalf("expected oldest retained SYI, got %v", got)
	}
}

func TestPersistAndRehydrate(t *testing.T) {
	store := cache.NewMemoryCache(cache.WithMemoryCleanup(time.Hour))
	defer store.Close()

	l := New(store, logger.Nop())
	l.Record(context.Background(), "AAPL")
	l.Record(context.Background(), "MSFT")

	reborn := New(store, logger.Nop())
	got := reborn.Recent()
	if len(got) != 2 || got[0] != "MSFT" || got[1] != "AAPL" {
		t.Fatalf("rehydrated ledger mismatch: %v", got)
	}
}

func TestCorruptStorageYieldsEmptyLedger(t *testing.T) {
	store := cache.NewMemoryCache(cache.WithMemoryCleanup(time.Hour))
	defer store.Close()

	if err := store.Set(context.Background(), defaultStorageKey, "{not json", 0); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	l := New(store, logger.Nop())
	if l.Len() != 0 {
		t.Fatalf("corrupt storage must yield empty ledger, got %v", l.Recent())
	}
}

type failingStore struct{}

func (failingStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("disk on fire")
}

func (failingStore) Get(context.Context, string, interface{}) error {
	return errors.New("disk on fire")
}

func (failingStore) Delete(context.Context, ...string) error { return nil }

func (failingStore) Exists(context.Context, ...string) (bool, error) { return false, nil }

func (failingStore) Close() error { return nil }

func TestStorageFailureDegradesToMemory(t *testing.T) {
	l := New(failingStore{}, logger.Nop())

	l.Record(context.Background(), "AAPL")
	got := l.Recent()
	if len(got) != 1 || got[0] != "AAPL" {
		t.Fatalf("ledger must keep working in memory, got %v", got)
	}
}

func TestRehydrationReappliesInvariants(t *testing.T) {
	store := cache.NewMemoryCache(cache.WithMemoryCleanup(time.Hour))
	defer store.Close()

	raw := `["aapl","AAPL","msft","","GOOG"]`
	if err := store.Set(context.Background(), defaultStorageKey, raw, 0); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	l := New(store, logger.Nop())
	got := l.Recent()
	want := []string{"AAPL", "MSFT", "GOOG"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
