package slippage

import (
	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
)

var tenThousand = decimal.NewFromInt(10000)

// FixedBps adjusts the price by a fixed number of basis points.
type FixedBps struct {
	bps decimal.Decimal
}

// NewFixedBps creates a fixed-basis-point slippage model.
func NewFixedBps(bps float64) Model {
	return &FixedBps{
		bps: decimal.NewFromFloat(bps),
	}
}

// Apply implements Model.
func (m *FixedBps) Apply(bar types.Bar, side types.Side) decimal.Decimal {
	adjustment := bar.Close.Mul(m.bps).Div(tenThousand).Mul(directionSign(side))

	return bar.Close.Add(adjustment)
}
