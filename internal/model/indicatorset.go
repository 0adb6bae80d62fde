package model

import (
	"encoding/json"
	"time"
)

// IndicatorSet is one consistent snapshot of computed indicators for a
// symbol. Every set is tagged with exactly the symbol it was computed
// for; the sync layer relies on that tag to reject cross-symbol mixups.
type IndicatorSet struct {
	Symbol          string    `json:"symbol"`
	CurrentPrice    float64   `json:"current_price"`
	RSI             Value     `json:"rsi"`
	MACD            Value     `json:"macd"`
	MACDSignal      Value     `json:"macd_signal"`
	MACDHistogram   Value     `json:"macd_histogram"`
	SMA20           Value     `json:"sma_20"`
	SMA50           Value     `json:"sma_50"`
	EMA12           Value     `json:"ema_12"`
	EMA26           Value     `json:"ema_26"`
	BollingerUpper  Value     `json:"bollinger_upper"`
	BollingerMiddle Value     `json:"bollinger_middle"`
	BollingerLower  Value     `json:"bollinger_lower"`
	Source          string    `json:"source"`
	Fallback        bool      `json:"fallback"`
	ComputedAt      time.Time `json:"timestamp"`
}

// JSON returns the JSON-encoded set (ignoring errors for hot-path usage).
func (s *IndicatorSet) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}

// Result is the user-visible envelope for indicator requests. Consumers
// never see a partial set: either Success with Data, or an error string.
type Result struct {
	Success bool          `json:"success"`
	Data    *IndicatorSet `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// CacheStatus reports the freshness cache contents.
type CacheStatus struct {
	Size       int       `json:"size"`
	Symbols    []string  `json:"symbols"`
	LastUpdate time.Time `json:"last_update"`
}
