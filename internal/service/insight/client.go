// Package insight talks to the external analytical backends that compute
// price forecasts, news sentiment, and risk reports. It is the only
// package that performs network I/O for resource fetches; payloads are
// normalized into typed models here so nothing downstream branches on
// untyped data.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
)

// ErrTransport marks network/HTTP failures from the fetch boundary. The
// underlying message is preserved for display.
var ErrTransport = errors.New("insight: transport error")

const (
	defaultTimeout      = 15 * time.Second
	defaultNewsLimit    = 10
	defaultNewsDaysBack = 7
)

// Client fetches the three analytical resources over HTTP.
type Client struct {
	baseURL      string
	client       *xhttp.Client
	attempts     int
	newsLimit    int
	newsDaysBack int
}

// NewClient builds an insight client from config.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Insight.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.Insight.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	newsLimit := cfg.Insight.NewsLimit
	if newsLimit <= 0 {
		newsLimit = defaultNewsLimit
	}
	newsDaysBack := cfg.Insight.NewsDaysBack
	if newsDaysBack <= 0 {
		newsDaysBack = defaultNewsDaysBack
	}

	return &Client{
		baseURL:      cfg.Insight.BaseURL,
		client:       xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts:     attempts,
		newsLimit:    newsLimit,
		newsDaysBack: newsDaysBack,
	}
}

// Forecast fetches the price forecast for symbol over a days horizon.
func (c *Client) Forecast(ctx context.Context, symbol string, days int) (*models.Forecast, error) {
	var payload models.Forecast
	params := map[string][]string{
		"ticker": {symbol},
		"days":   {strconv.Itoa(days)},
	}
	if err := c.getJSON(ctx, "/api/predict", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Sentiment fetches scored news headlines for symbol. The sentiment
// backend has no horizon parameter; article window settings come from
// config.
func (c *Client) Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error) {
	var payload models.Sentiment
	params := map[string][]string{
		"ticker":    {symbol},
		"limit":     {strconv.Itoa(c.newsLimit)},
		"days_back": {strconv.Itoa(c.newsDaysBack)},
	}
	if err := c.getJSON(ctx, "/api/sentiment", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// minRiskDays is the smallest window the risk backend accepts.
const minRiskDays = 7

// Risk fetches the risk report for symbol over a days window. Windows
// below the backend's floor are clamped rather than rejected.
func (c *Client) Risk(ctx context.Context, symbol string, days int) (*models.Risk, error) {
	if days < minRiskDays {
		days = minRiskDays
	}
	var payload models.Risk
	params := map[string][]string{
		"ticker": {symbol},
		"days":   {strconv.Itoa(days)},
	}
	if err := c.getJSON(ctx, "/api/risk", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// getJSON issues a GET with retries for transient failures. All failures
// come back wrapped in ErrTransport.
func (c *Client) getJSON(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL + path,
			QueryParams: params,
		}, dest)
		if err == nil {
			return nil
		}
		if i == c.attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		}
	}
	return fmt.Errorf("%w: get %s: %v", ErrTransport, path, err)
}

var _ repository.InsightFetcher = (*Client)(nil)
