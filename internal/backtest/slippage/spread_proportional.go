package slippage

import (
	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
)

// SpreadProportional pays a configured fraction of the quoted half-spread
// per side. Bars without a spread column execute at the reference price.
type SpreadProportional struct {
	fraction decimal.Decimal
}

// NewSpreadProportional creates a spread-proportional slippage model.
func NewSpreadProportional(fraction float64) Model {
	return &SpreadProportional{
		fraction: decimal.NewFromFloat(fraction),
	}
}

// Apply implements Model.
func (m *SpreadProportional) Apply(bar types.Bar, side types.Side) decimal.Decimal {
	adjustment := bar.MidSpread().Mul(m.fraction).Mul(directionSign(side))

	return bar.Close.Add(adjustment)
}
