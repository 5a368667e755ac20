package types

import (
	"github.com/shopspring/decimal"
)

// Position is derived state: net size and average entry price, recomputable
// by replaying the ledger. NetSize is signed (long positive, short negative).
type Position struct {
	Symbol        string          `csv:"symbol" yaml:"symbol"`
	NetSize       decimal.Decimal `csv:"net_size" yaml:"net_size"`
	AvgEntryPrice decimal.Decimal `csv:"avg_entry_price" yaml:"avg_entry_price"`
}

// IsFlat reports whether the position has no exposure.
func (p Position) IsFlat() bool {
	return p.NetSize.IsZero()
}

// Direction returns the direction implied by the current net size.
func (p Position) Direction() Direction {
	switch {
	case p.NetSize.IsPositive():
		return DirectionLong
	case p.NetSize.IsNegative():
		return DirectionShort
	default:
		return DirectionFlat
	}
}

// UnrealizedPnL marks the open position against the given price.
func (p Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.NetSize.IsZero() {
		return decimal.Zero
	}

	return price.Sub(p.AvgEntryPrice).Mul(p.NetSize)
}

// ApplyFill mutates the position with a fill and returns the realized P&L
// of the closing portion, if any. Increasing fills blend the average entry
// price; reducing fills realize against it. A fill larger than the open
// position closes it and re-opens the remainder at the fill price.
func (p *Position) ApplyFill(fill Fill) decimal.Decimal {
	signed := fill.SignedSize()
	if signed.IsZero() {
		return decimal.Zero
	}

	// Same direction (or opening from flat): blend the entry price.
	if p.NetSize.IsZero() || p.NetSize.Sign() == signed.Sign() {
		newSize := p.NetSize.Add(signed)
		cost := p.AvgEntryPrice.Mul(p.NetSize.Abs()).Add(fill.Price.Mul(signed.Abs()))
		p.AvgEntryPrice = cost.Div(newSize.Abs())
		p.NetSize = newSize

		return decimal.Zero
	}

	// Opposite direction: realize against the average entry.
	closeQty := decimal.Min(signed.Abs(), p.NetSize.Abs())
	sideSign := decimal.NewFromInt(int64(p.NetSize.Sign()))
	realized := fill.Price.Sub(p.AvgEntryPrice).Mul(closeQty).Mul(sideSign)

	newSize := p.NetSize.Add(signed)
	switch {
	case newSize.IsZero():
		p.AvgEntryPrice = decimal.Zero
	case newSize.Sign() != p.NetSize.Sign():
		// Crossed through flat; the remainder opens at the fill price.
		p.AvgEntryPrice = fill.Price
	}

	p.NetSize = newSize

	return realized
}
