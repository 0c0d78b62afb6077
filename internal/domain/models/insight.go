package models

// Forecast is the normalized payload of the price-forecast backend. Dates
// are the backend's own label strings (YYYY-MM-DD); they are treated as
// opaque axis labels, never parsed.
type Forecast struct {
	Ticker           string    `json:"ticker"`
	CurrentPrice     float64   `json:"current_price"`
	HistoricalDates  []string  `json:"historical_dates"`
	HistoricalPrices []float64 `json:"historical_prices"`
	PredictionDates  []string  `json:"prediction_dates"`
	Predictions      []float64 `json:"predictions"`
}

// Valid reports whether the payload is usable by the alignment engine.
func (f *Forecast) Valid() bool {
	if f == nil {
		return false
	}
	return len(f.HistoricalDates) == len(f.HistoricalPrices) &&
		len(f.PredictionDates) == len(f.Predictions)
}

// ArticleSentiment is one scored headline.
type ArticleSentiment struct {
	Title       string  `json:"title"`
	Source      string  `json:"source,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
}

// OverallSentiment aggregates the per-article scores. Label and Score are
// pointers because the backend reports null when no articles were found.
type OverallSentiment struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}

// Sentiment is the normalized payload of the news-sentiment backend.
type Sentiment struct {
	Ticker     string             `json:"ticker"`
	PerArticle []ArticleSentiment `json:"per_article"`
	Overall    OverallSentiment   `json:"overall"`
	Message    string             `json:"message,omitempty"`
}

// Risk is the normalized payload of the risk backend. Volatility and
// trend are pointers: the backend reports null when it had no prices.
type Risk struct {
	Ticker             string   `json:"ticker"`
	CurrentPrice       *float64 `json:"current_price"`
	Volatility         *float64 `json:"volatility"`
	RiskLevel          *string  `json:"risk_level"`
	ShortTermTrend     *float64 `json:"short_term_trend"`
	Recommendation     string   `json:"recommendation"`
	SentimentScoreUsed *float64 `json:"sentiment_score_used"`
}
