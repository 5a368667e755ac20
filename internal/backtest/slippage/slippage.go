// Package slippage models the difference between the reference price and the
// simulated execution price. The model set is closed and selected by
// configuration; there is no runtime plugin loading.
package slippage

import (
	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Model adjusts the bar's close for a simulated execution. Buys pay up,
// sells receive less; the adjustment is never in the trader's favor.
type Model interface {
	Apply(bar types.Bar, side types.Side) decimal.Decimal
}

type Kind string

const (
	KindFixedBps           Kind = "fixed_bps"
	KindSpreadProportional Kind = "spread_proportional"
)

var AllKinds = []any{
	KindFixedBps,
	KindSpreadProportional,
}

// Config selects and parameterizes a slippage model.
type Config struct {
	Kind Kind `yaml:"kind" json:"kind" jsonschema:"enum=fixed_bps,enum=spread_proportional"`
	// Bps is the fixed adjustment in basis points (fixed_bps only).
	Bps float64 `yaml:"bps" json:"bps" validate:"gte=0"`
	// SpreadFraction is the fraction of the quoted spread paid per side
	// (spread_proportional only). 1.0 means crossing the full half-spread.
	SpreadFraction float64 `yaml:"spread_fraction" json:"spread_fraction" validate:"gte=0"`
}

// GetModel returns the configured slippage model.
func GetModel(config Config) (Model, error) {
	switch config.Kind {
	case KindFixedBps:
		return NewFixedBps(config.Bps), nil
	case KindSpreadProportional:
		return NewSpreadProportional(config.SpreadFraction), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidSlippageModel, "unknown slippage model: %s", config.Kind)
	}
}

// directionSign returns +1 for buys and -1 for sells.
func directionSign(side types.Side) decimal.Decimal {
	if side == types.SideSell {
		return decimal.NewFromInt(-1)
	}

	return decimal.NewFromInt(1)
}
