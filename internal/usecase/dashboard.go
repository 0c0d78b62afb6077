package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/ledger"
	"StockPulse/internal/querycache"
	"StockPulse/internal/series"
	"StockPulse/pkg/logger"
)

// DefaultHorizon is the forecast horizon used before any search set one.
const DefaultHorizon = 7

var (
	ErrEmptySymbol    = errors.New("dashboard: empty symbol")
	ErrNoActiveSearch = errors.New("dashboard: no active search to change horizon for")
)

// Option configures Dashboard.
type Option func(*Dashboard)

// WithEventSink attaches an activity sink. Searches are published to it
// best-effort; publish failures are logged and never fail the search.
func WithEventSink(sink repository.EventSink) Option {
	return func(d *Dashboard) {
		d.events = sink
	}
}

// Dashboard orchestrates a search submission: it records the symbol in
// the ledger, invalidates stale horizon-dependent entries, and prefetches
// the three analytical resources independently. It never waits for the
// fetches; consumers read cache snapshots and subscribe to transitions.
type Dashboard struct {
	cache   *querycache.Store
	ledger  *ledger.Ledger
	fetcher repository.InsightFetcher
	metrics repository.Metrics
	events  repository.EventSink
	logger  *logger.Logger

	mu         sync.Mutex
	lastSymbol string
	lastDays   int
}

// NewDashboard creates the dashboard controller.
func NewDashboard(
	cache *querycache.Store,
	led *ledger.Ledger,
	fetcher repository.InsightFetcher,
	metrics repository.Metrics,
	log *logger.Logger,
	opts ...Option,
) *Dashboard {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dashboard{
		cache:   cache,
		ledger:  led,
		fetcher: fetcher,
		metrics: metrics,
		logger:  log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SubmitSearch handles a user search for (symbol, days). The three
// resources are prefetched concurrently; they resolve in any order and a
// failure of one never blocks the others.
func (d *Dashboard) SubmitSearch(ctx context.Context, symbol string, days int) error {
	symbol = querycache.NormalizeSymbol(symbol)
	if symbol == "" {
		return ErrEmptySymbol
	}
	if days <= 0 {
		days = DefaultHorizon
	}

	d.ledger.Record(ctx, symbol)
	d.metrics.RecordLedgerSize(d.ledger.Len())

	d.mu.Lock()
	prevDays := d.lastDays
	d.lastSymbol = symbol
	d.lastDays = days
	d.mu.Unlock()

	// A changed horizon leaves entries for the old parameter behind;
	// they would never be read again, so flush them to idle.
	if prevDays != 0 && prevDays != days {
		d.cache.Invalidate(func(k querycache.Key) bool {
			return (k.Kind == querycache.KindForecast || k.Kind == querycache.KindRisk) &&
				k.Horizon == prevDays
		})
		d.metrics.RecordInvalidation("horizon_change")
	}

	d.prefetchAll(ctx, symbol, days)
	d.metrics.RecordCacheEntries(d.cache.Len())

	if d.events != nil {
		if err := d.events.PublishSearch(ctx, symbol, days); err != nil {
			d.logger.Warn("search event publish failed", logger.Error(err))
		}
	}

	d.logger.Info("search submitted",
		logger.String("symbol", symbol),
		logger.Int("days", days),
	)
	return nil
}

// ChangeHorizon re-issues the horizon-dependent resources for the current
// symbol. Sentiment has no horizon parameter and its entry stays
// untouched.
func (d *Dashboard) ChangeHorizon(ctx context.Context, days int) error {
	if days <= 0 {
		days = DefaultHorizon
	}

	d.mu.Lock()
	symbol := d.lastSymbol
	prevDays := d.lastDays
	d.lastDays = days
	d.mu.Unlock()

	if symbol == "" {
		return ErrNoActiveSearch
	}
	if prevDays == days {
		return nil
	}

	d.cache.Invalidate(func(k querycache.Key) bool {
		return (k.Kind == querycache.KindForecast || k.Kind == querycache.KindRisk) &&
			k.Symbol == symbol && k.Horizon == prevDays
	})
	d.metrics.RecordInvalidation("horizon_change")

	d.prefetch(ctx, querycache.NewKey(querycache.KindForecast, symbol, days))
	d.prefetch(ctx, querycache.NewKey(querycache.KindRisk, symbol, days))

	d.logger.Info("horizon changed",
		logger.String("symbol", symbol),
		logger.Int("days", days),
	)
	return nil
}

// Get returns the current cache snapshot for a resource.
func (d *Dashboard) Get(key querycache.Key) querycache.Entry {
	return d.cache.Get(key)
}

// Recent returns the recently searched symbols, most recent first.
func (d *Dashboard) Recent() []string {
	return d.ledger.Recent()
}

// Horizon returns the active forecast horizon.
func (d *Dashboard) Horizon() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastDays == 0 {
		return DefaultHorizon
	}
	return d.lastDays
}

// Subscribe exposes cache status transitions to presentation consumers.
func (d *Dashboard) Subscribe() (int64, <-chan querycache.Event) {
	return d.cache.Subscribe()
}

// Unsubscribe releases a subscription.
func (d *Dashboard) Unsubscribe(id int64) {
	d.cache.Unsubscribe(id)
}

// AlignedForecast feeds the cached forecast payload for symbol through
// the alignment engine. Anything short of a valid, settled payload
// yields a no-data dataset the caller can render as a placeholder.
func (d *Dashboard) AlignedForecast(symbol string, thin bool) series.Aligned {
	key := querycache.NewKey(querycache.KindForecast, symbol, d.Horizon())

	entry := d.cache.Get(key)
	if entry.Status != querycache.StatusSuccess {
		return series.Aligned{}
	}
	payload, ok := entry.Data.(*models.Forecast)
	if !ok || !payload.Valid() {
		return series.Aligned{}
	}

	opts := []series.Option{}
	if thin {
		opts = append(opts, series.WithThinning())
	}
	return series.Align(
		payload.HistoricalDates, payload.HistoricalPrices,
		payload.PredictionDates, payload.Predictions,
		opts...,
	)
}

func (d *Dashboard) prefetchAll(ctx context.Context, symbol string, days int) {
	d.prefetch(ctx, querycache.NewKey(querycache.KindForecast, symbol, days))
	d.prefetch(ctx, querycache.NewKey(querycache.KindSentiment, symbol, 0))
	d.prefetch(ctx, querycache.NewKey(querycache.KindRisk, symbol, days))
}

// prefetch warms one entry, wiring the transport loader and metrics for
// its resource kind.
func (d *Dashboard) prefetch(ctx context.Context, key querycache.Key) {
	kind := string(key.Kind)

	if d.cache.Get(key).Status == querycache.StatusPending {
		d.metrics.RecordFetchDeduped(kind)
	}

	d.cache.Prefetch(ctx, key, func(ctx context.Context) (any, error) {
		d.metrics.RecordFetchStarted(kind)
		start := time.Now()

		data, err := d.load(ctx, key)

		d.metrics.RecordFetchLatency(kind, time.Since(start).Seconds())
		if err != nil {
			d.metrics.RecordFetchSettled(kind, string(querycache.StatusError))
			d.logger.Warn("resource fetch failed",
				logger.String("key", key.String()),
				logger.Error(err),
			)
			return nil, err
		}
		d.metrics.RecordFetchSettled(kind, string(querycache.StatusSuccess))
		return data, nil
	})
}

func (d *Dashboard) load(ctx context.Context, key querycache.Key) (any, error) {
	switch key.Kind {
	case querycache.KindForecast:
		return d.fetcher.Forecast(ctx, key.Symbol, key.Horizon)
	case querycache.KindSentiment:
		return d.fetcher.Sentiment(ctx, key.Symbol)
	case querycache.KindRisk:
		return d.fetcher.Risk(ctx, key.Symbol, key.Horizon)
	default:
		return nil, errors.New("dashboard: unknown resource kind")
	}
}
