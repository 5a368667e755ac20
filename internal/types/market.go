package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV observation for a fixed time interval. Prices are decimal
// so long backtests do not accumulate floating-point drift.
type Bar struct {
	Time   time.Time       `csv:"time" yaml:"time" validate:"required"`
	Open   decimal.Decimal `csv:"open" yaml:"open"`
	High   decimal.Decimal `csv:"high" yaml:"high"`
	Low    decimal.Decimal `csv:"low" yaml:"low"`
	Close  decimal.Decimal `csv:"close" yaml:"close"`
	Volume float64         `csv:"volume" yaml:"volume"`
	// Spread is the quoted bid/ask spread in price units. Zero when the
	// feed does not carry it; the spread-proportional slippage model
	// requires it.
	Spread decimal.Decimal `csv:"spread" yaml:"spread"`
}

// MidSpread returns half the quoted spread, the per-side cost of crossing it.
func (b Bar) MidSpread() decimal.Decimal {
	return b.Spread.Div(decimal.NewFromInt(2))
}
