package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one mark-to-market observation. One is produced per bar;
// the ordered sequence forms the equity curve. Equity is never computed from
// bars after Time.
type EquityPoint struct {
	Time          time.Time       `csv:"time" yaml:"time"`
	RealizedPnL   decimal.Decimal `csv:"realized_pnl" yaml:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `csv:"unrealized_pnl" yaml:"unrealized_pnl"`
	Equity        decimal.Decimal `csv:"equity" yaml:"equity"`
}
