package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// InsightFetcher is the transport boundary to the three analytical
// backends. Implementations fail with a transport error on non-success
// responses or network faults; they never panic.
type InsightFetcher interface {
	Forecast(ctx context.Context, symbol string, days int) (*models.Forecast, error)
	Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error)
	Risk(ctx context.Context, symbol string, days int) (*models.Risk, error)
}

// Metrics records dashboard observability counters.
type Metrics interface {
	RecordFetchStarted(kind string)
	RecordFetchSettled(kind, status string)
	RecordFetchDeduped(kind string)
	RecordInvalidation(reason string)
	RecordFetchLatency(kind string, seconds float64)
	RecordLedgerSize(n int)
	RecordCacheEntries(n int)
}

// EventSink publishes dashboard activity for downstream consumers. It is
// a pure sink: the core never reads back and failures are non-fatal.
type EventSink interface {
	PublishSearch(ctx context.Context, symbol string, days int) error
	PublishStatus(ctx context.Context, kind, symbol, status string) error
	Close() error
}
