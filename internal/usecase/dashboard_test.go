package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/ledger"
	"StockPulse/internal/querycache"
	"StockPulse/pkg/logger"
)

type fakeFetcher struct {
	mu             sync.Mutex
	forecastCalls  int
	sentimentCalls int
	riskCalls      int
	riskErr        error
}

func (f *fakeFetcher) Forecast(_ context.Context, symbol string, _ int) (*models.Forecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forecastCalls++
	return &models.Forecast{
		Ticker:           symbol,
		CurrentPrice:     20,
		HistoricalDates:  []string{"2026-08-27", "2026-08-28"},
		HistoricalPrices: []float64{10, 20},
		PredictionDates:  []string{"2026-08-29"},
		Predictions:      []float64{30},
	}, nil
}

func (f *fakeFetcher) Sentiment(_ context.Context, symbol string) (*models.Sentiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentimentCalls++
	return &models.Sentiment{Ticker: symbol}, nil
}

func (f *fakeFetcher) Risk(_ context.Context, symbol string, _ int) (*models.Risk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.riskCalls++
	if f.riskErr != nil {
		return nil, f.riskErr
	}
	return &models.Risk{Ticker: symbol, Recommendation: "Hold"}, nil
}

func (f *fakeFetcher) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forecastCalls, f.sentimentCalls, f.riskCalls
}

type nopMetrics struct{}

func (nopMetrics) RecordFetchStarted(string)          {}
func (nopMetrics) RecordFetchSettled(string, string)  {}
func (nopMetrics) RecordFetchDeduped(string)          {}
func (nopMetrics) RecordInvalidation(string)          {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordLedgerSize(int)               {}
func (nopMetrics) RecordCacheEntries(int)             {}

func newTestDashboard(t *testing.T, fetcher *fakeFetcher, opts ...Option) *Dashboard {
	t.Helper()
	store := querycache.NewStore()
	t.Cleanup(store.Close)
	led := ledger.New(nil, logger.Nop())
	return NewDashboard(store, led, fetcher, nopMetrics{}, logger.Nop(), opts...)
}

func waitSettled(t *testing.T, d *Dashboard, key querycache.Key) querycache.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entry := d.Get(key)
		if entry.Status == querycache.StatusSuccess || entry.Status == querycache.StatusError {
			return entry
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("entry %s never settled", key)
	return querycache.Entry{}
}

func TestSubmitSearchPrefetchesAllResources(t *testing.T) {
	f := &fakeFetcher{}
	d := newTestDashboard(t, f)

	if err := d.SubmitSearch(context.Background(), "aapl", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}

	forecast := waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))
	if forecast.Status != querycache.StatusSuccess {
		t.Fatalf("forecast status = %s, err = %v", forecast.Status, forecast.Err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindSentiment, "AAPL", 0))
	waitSettled(t, d, querycache.NewKey(querycache.KindRisk, "AAPL", 7))

	recent := d.Recent()
	if len(recent) != 1 || recent[0] != "AAPL" {
		t.Fatalf("ledger mismatch: %v", recent)
	}
}

func TestSubmitSearchRejectsEmptySymbol(t *testing.T) {
	d := newTestDashboard(t, &fakeFetcher{})
	if err := d.SubmitSearch(context.Background(), "   ", 7); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("expected ErrEmptySymbol, got %v", err)
	}
}

func TestChangeHorizonWithoutSearchFails(t *testing.T) {
	d := newTestDashboard(t, &fakeFetcher{})
	if err := d.ChangeHorizon(context.Background(), 14); !errors.Is(err, ErrNoActiveSearch) {
		t.Fatalf("expected ErrNoActiveSearch, got %v", err)
	}
}

func TestHorizonChangeLeavesSentimentUntouched(t *testing.T) {
	f := &fakeFetcher{}
	d := newTestDashboard(t, f)

	if err := d.SubmitSearch(context.Background(), "AAPL", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))
	waitSettled(t, d, querycache.NewKey(querycache.KindSentiment, "AAPL", 0))
	waitSettled(t, d, querycache.NewKey(querycache.KindRisk, "AAPL", 7))

	if err := d.ChangeHorizon(context.Background(), 14); err != nil {
		t.Fatalf("change horizon: %v", err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 14))
	waitSettled(t, d, querycache.NewKey(querycache.KindRisk, "AAPL", 14))

	forecasts, sentiments, risks := f.calls()
	if sentiments != 1 {
		t.Fatalf("sentiment must not refetch on horizon change, got %d calls", sentiments)
	}
	if forecasts != 2 || risks != 2 {
		t.Fatalf("expected forecast/risk refetched once each, got %d/%d", forecasts, risks)
	}
	if d.Horizon() != 14 {
		t.Fatalf("horizon = %d", d.Horizon())
	}
}

func TestSameHorizonChangeIsNoop(t *testing.T) {
	f := &fakeFetcher{}
	d := newTestDashboard(t, f)

	if err := d.SubmitSearch(context.Background(), "AAPL", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))

	if err := d.ChangeHorizon(context.Background(), 7); err != nil {
		t.Fatalf("change horizon: %v", err)
	}
	forecasts, _, _ := f.calls()
	if forecasts != 1 {
		t.Fatalf("unchanged horizon must not refetch, got %d forecast calls", forecasts)
	}
}

func TestFailedRiskDoesNotAffectOthers(t *testing.T) {
	f := &fakeFetcher{riskErr: errors.New("backend down")}
	d := newTestDashboard(t, f)

	if err := d.SubmitSearch(context.Background(), "AAPL", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}

	risk := waitSettled(t, d, querycache.NewKey(querycache.KindRisk, "AAPL", 7))
	if risk.Status != querycache.StatusError {
		t.Fatalf("risk should settle in error, got %s", risk.Status)
	}
	forecast := waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))
	if forecast.Status != querycache.StatusSuccess {
		t.Fatalf("forecast should succeed independently, got %s", forecast.Status)
	}
	sentiment := waitSettled(t, d, querycache.NewKey(querycache.KindSentiment, "AAPL", 0))
	if sentiment.Status != querycache.StatusSuccess {
		t.Fatalf("sentiment should succeed independently, got %s", sentiment.Status)
	}
}

func TestAlignedForecastFromCache(t *testing.T) {
	f := &fakeFetcher{}
	d := newTestDashboard(t, f)

	if got := d.AlignedForecast("AAPL", false); !got.Empty() {
		t.Fatalf("cold cache must yield empty dataset, got %+v", got)
	}

	if err := d.SubmitSearch(context.Background(), "AAPL", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))

	got := d.AlignedForecast("AAPL", false)
	if got.Empty() {
		t.Fatalf("settled forecast must align")
	}
	if len(got.Labels) != 3 {
		t.Fatalf("expected 3 labels, got %v", got.Labels)
	}
	// Bridge point: last historical value repeats at the seam.
	if got.Predicted[1] == nil || *got.Predicted[1] != 20 {
		t.Fatalf("expected bridge value 20, got %v", got.Predicted[1])
	}
}

type captureSink struct {
	mu       sync.Mutex
	searches []string
	statuses []string
}

func (c *captureSink) PublishSearch(_ context.Context, symbol string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = append(c.searches, symbol)
	return nil
}

func (c *captureSink) PublishStatus(_ context.Context, kind, _, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, kind+":"+status)
	return nil
}

func (c *captureSink) Close() error { return nil }

func TestSearchEventsReachSink(t *testing.T) {
	sink := &captureSink{}
	f := &fakeFetcher{}
	d := newTestDashboard(t, f, WithEventSink(sink))

	if err := d.SubmitSearch(context.Background(), "AAPL", 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitSettled(t, d, querycache.NewKey(querycache.KindForecast, "AAPL", 7))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.searches) != 1 || sink.searches[0] != "AAPL" {
		t.Fatalf("expected one search event, got %v", sink.searches)
	}
}

func TestActivityRelayForwardsTransitions(t *testing.T) {
	sink := &captureSink{}
	store := querycache.NewStore()
	defer store.Close()

	relay := NewActivityRelay(store, sink, logger.Nop())
	relay.Start(context.Background())

	key := querycache.NewKey(querycache.KindForecast, "AAPL", 7)
	store.EnsureFetching(context.Background(), key, func(context.Context) (any, error) {
		return "ok", nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sink.mu.Lock()
		n := len(sink.statuses)
		sink.mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	relay.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.statuses) < 2 {
		t.Fatalf("expected pending and settled events, got %v", sink.statuses)
	}
	if sink.statuses[0] != "forecast:pending" {
		t.Fatalf("first event should be pending, got %v", sink.statuses)
	}
	if sink.statuses[1] != "forecast:success" {
		t.Fatalf("second event should be success, got %v", sink.statuses)
	}
}
