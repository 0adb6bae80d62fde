package indicator

import (
	"strings"
	"time"

	"stockpulse/internal/model"
)

// Compute derives the full IndicatorSet for a symbol from a canonical
// series, taking the latest value of each indicator line. Indicators
// whose minimum window exceeds the series length come out missing, not
// partially computed. Source and Fallback tagging is left to the
// caller, which knows where the bars came from.
func Compute(symbol string, ts model.TimeSeries) model.IndicatorSet {
	closes := ts.Closes()

	line, signal, histogram := MACD(closes, EMAFastPeriod, EMASlowPeriod, MACDSignal)
	upper, middle, lower := Bollinger(closes, BollingerPeriod, BollingerK)

	set := model.IndicatorSet{
		Symbol:          strings.ToUpper(symbol),
		RSI:             last(RSI(closes, RSIPeriod)),
		MACD:            last(line),
		MACDSignal:      last(signal),
		MACDHistogram:   last(histogram),
		SMA20:           last(SMA(closes, SMAFastPeriod)),
		SMA50:           last(SMA(closes, SMASlowPeriod)),
		EMA12:           last(EMA(closes, EMAFastPeriod)),
		EMA26:           last(EMA(closes, EMASlowPeriod)),
		BollingerUpper:  last(upper),
		BollingerMiddle: last(middle),
		BollingerLower:  last(lower),
		ComputedAt:      time.Now().UTC(),
	}
	if b, ok := ts.Last(); ok {
		set.CurrentPrice = b.Close
	}
	return set
}
