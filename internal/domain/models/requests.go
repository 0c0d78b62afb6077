package models

// SearchRequest triggers a dashboard search. Ticker rules follow the
// upstream API: letters only, at most ten characters. Horizon is bounded
// to the forecast backend's accepted range.
type SearchRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,alpha,max=10"`
	Days   int    `query:"days" json:"days" default:"7" validate:"min=1,max=30"`
}

// HorizonRequest changes the forecast horizon for the current symbol.
type HorizonRequest struct {
	Days int `query:"days" json:"days" validate:"required,min=1,max=30"`
}

// EntryRequest reads one cache entry snapshot.
type EntryRequest struct {
	Kind   string `query:"kind" validate:"required,oneof=forecast sentiment risk"`
	Ticker string `query:"ticker" validate:"required,alpha,max=10"`
	Days   int    `query:"days" default:"7" validate:"min=1,max=30"`
}

// ChartRequest reads the aligned forecast dataset for a symbol.
type ChartRequest struct {
	Ticker string `query:"ticker" validate:"required,alpha,max=10"`
	Thin   bool   `query:"thin"`
}
