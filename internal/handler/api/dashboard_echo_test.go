package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/ledger"
	"StockPulse/internal/querycache"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubFetcher struct{}

func (stubFetcher) Forecast(_ context.Context, symbol string, _ int) (*models.Forecast, error) {
	return &models.Forecast{
		Ticker:           symbol,
		CurrentPrice:     20,
		HistoricalDates:  []string{"2026-08-27", "2026-08-28"},
		HistoricalPrices: []float64{10, 20},
		PredictionDates:  []string{"2026-08-29"},
		Predictions:      []float64{30},
	}, nil
}

func (stubFetcher) Sentiment(_ context.Context, symbol string) (*models.Sentiment, error) {
	return &models.Sentiment{Ticker: symbol}, nil
}

func (stubFetcher) Risk(_ context.Context, symbol string, _ int) (*models.Risk, error) {
	return &models.Risk{Ticker: symbol, Recommendation: "Hold"}, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordFetchStarted(string)          {}
func (stubMetrics) RecordFetchSettled(string, string)  {}
func (stubMetrics) RecordFetchDeduped(string)          {}
func (stubMetrics) RecordInvalidation(string)          {}
func (stubMetrics) RecordFetchLatency(string, float64) {}
func (stubMetrics) RecordLedgerSize(int)               {}
func (stubMetrics) RecordCacheEntries(int)             {}

func newTestServer(t *testing.T) (*echo.Echo, *usecase.Dashboard) {
	t.Helper()
	store := querycache.NewStore()
	t.Cleanup(store.Close)

	dash := usecase.NewDashboard(store, ledger.New(nil, logger.Nop()), stubFetcher{}, stubMetrics{}, logger.Nop())
	h := NewDashboardEchoHandler(logger.Nop(), dash)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, dash
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return rec, envelope
}

func waitEntrySettled(t *testing.T, dash *usecase.Dashboard, key querycache.Key) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status := dash.Get(key).Status
		if status == querycache.StatusSuccess || status == querycache.StatusError {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("entry %s never settled", key)
}

func TestSearchAcceptsAndWarmsCache(t *testing.T) {
	e, dash := newTestServer(t)

	_, envelope := doJSON(t, e, http.MethodPost, "/api/search", `{"ticker":"aapl","days":7}`)
	if envelope.Status != http.StatusAccepted {
		t.Fatalf("expected 202 envelope, got %d", envelope.Status)
	}

	key := querycache.NewKey(querycache.KindForecast, "AAPL", 7)
	waitEntrySettled(t, dash, key)

	_, envelope = doJSON(t, e, http.MethodGet, "/api/entry?kind=forecast&ticker=AAPL&days=7", "")
	if envelope.Status != http.StatusOK {
		t.Fatalf("entry envelope status = %d", envelope.Status)
	}
	view, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape %T", envelope.Data)
	}
	if view["status"] != "success" {
		t.Fatalf("entry status = %v", view["status"])
	}
}

func TestSearchRejectsNonAlphaTicker(t *testing.T) {
	e, _ := newTestServer(t)

	_, envelope := doJSON(t, e, http.MethodPost, "/api/search", `{"ticker":"AAPL123"}`)
	if envelope.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope, got %d", envelope.Status)
	}
}

func TestEntryForUnknownKeyReadsIdle(t *testing.T) {
	e, _ := newTestServer(t)

	_, envelope := doJSON(t, e, http.MethodGet, "/api/entry?kind=risk&ticker=MSFT&days=7", "")
	view, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape %T", envelope.Data)
	}
	if view["status"] != "idle" {
		t.Fatalf("unknown key must read idle, got %v", view["status"])
	}
}

func TestHorizonWithoutSearchIsRejected(t *testing.T) {
	e, _ := newTestServer(t)

	_, envelope := doJSON(t, e, http.MethodPost, "/api/horizon", `{"days":14}`)
	if envelope.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope, got %d", envelope.Status)
	}
}

func TestChartReturnsAlignedDataset(t *testing.T) {
	e, dash := newTestServer(t)

	doJSON(t, e, http.MethodPost, "/api/search", `{"ticker":"AAPL","days":7}`)
	waitEntrySettled(t, dash, querycache.NewKey(querycache.KindForecast, "AAPL", 7))

	_, envelope := doJSON(t, e, http.MethodGet, "/api/chart?ticker=AAPL", "")
	view, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape %T", envelope.Data)
	}
	labels, ok := view["labels"].([]any)
	if !ok || len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %v", view["labels"])
	}
	predicted, ok := view["predicted"].([]any)
	if !ok || len(predicted) != 3 {
		t.Fatalf("expected 3 predicted points, got %v", view["predicted"])
	}
	if predicted[0] != nil {
		t.Fatalf("leading predicted point must be null, got %v", predicted[0])
	}
}

func TestRecentListsSearchedSymbols(t *testing.T) {
	e, _ := newTestServer(t)

	doJSON(t, e, http.MethodPost, "/api/search", `{"ticker":"AAPL","days":7}`)
	doJSON(t, e, http.MethodPost, "/api/search", `{"ticker":"MSFT","days":7}`)

	_, envelope := doJSON(t, e, http.MethodGet, "/api/recent", "")
	view, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape %T", envelope.Data)
	}
	symbols, ok := view["symbols"].([]any)
	if !ok || len(symbols) != 2 {
		t.Fatalf("expected 2 recent symbols, got %v", view["symbols"])
	}
	if symbols[0] != "MSFT" || symbols[1] != "AAPL" {
		t.Fatalf("expected most recent first, got %v", symbols)
	}
}
