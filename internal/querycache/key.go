package querycache

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three analytical resources served by the
// insight backends.
type Kind string

const (
	KindForecast  Kind = "forecast"
	KindSentiment Kind = "sentiment"
	KindRisk      Kind = "risk"
)

// Key identifies a cache entry. Keys are compared structurally: two keys
// with equal fields address the same entry.
type Key struct {
	Kind    Kind   `json:"kind"`
	Symbol  string `json:"symbol"`
	Horizon int    `json:"horizon,omitempty"`
}

// NewKey builds a normalized key. Symbols are trimmed and uppercased so a
// symbol is never cached under an un-normalized form. Sentiment has no
// horizon parameter, so its horizon is always forced to zero.
func NewKey(kind Kind, symbol string, horizon int) Key {
	if kind == KindSentiment {
		horizon = 0
	}
	return Key{
		Kind:    kind,
		Symbol:  NormalizeSymbol(symbol),
		Horizon: horizon,
	}
}

// NormalizeSymbol trims whitespace and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// String renders the key as "kind:symbol:horizon" for logging and metrics.
func (k Key) String() string {
	if k.Horizon > 0 {
		return fmt.Sprintf("%s:%s:%d", k.Kind, k.Symbol, k.Horizon)
	}
	return fmt.Sprintf("%s:%s", k.Kind, k.Symbol)
}
