package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderStatusRequested OrderStatus = "REQUESTED"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	OrderReasonOpenLong   string = "open_long"
	OrderReasonCloseLong  string = "close_long"
	OrderReasonOpenShort  string = "open_short"
	OrderReasonCloseShort string = "close_short"
	OrderReasonFlatten    string = "flatten"
)

// Order is created by the execution simulator on a direction change.
// Lifecycle: requested -> filled | rejected. A long/short flip always
// produces two orders (close leg, then open leg).
type Order struct {
	ID          string          `csv:"order_id" yaml:"order_id" validate:"required,uuid"`
	Symbol      string          `csv:"symbol" yaml:"symbol" validate:"required"`
	Side        Side            `csv:"side" yaml:"side" validate:"required,oneof=BUY SELL"`
	Size        decimal.Decimal `csv:"size" yaml:"size"`
	RequestedAt time.Time       `csv:"requested_at" yaml:"requested_at" validate:"required"`
	Status      OrderStatus     `csv:"status" yaml:"status"`
	// Reason records which leg of a transition this order is
	// (open_long, close_short, ...).
	Reason string `csv:"reason" yaml:"reason"`
}

// Fill is a completed simulated execution. Immutable once created;
// appended to the ledger exactly once per executed order.
type Fill struct {
	OrderID    string          `csv:"order_id" yaml:"order_id"`
	Symbol     string          `csv:"symbol" yaml:"symbol"`
	Side       Side            `csv:"side" yaml:"side"`
	Size       decimal.Decimal `csv:"size" yaml:"size"`
	Price      decimal.Decimal `csv:"price" yaml:"price"`
	ExecutedAt time.Time       `csv:"executed_at" yaml:"executed_at"`
	Reason     string          `csv:"reason" yaml:"reason"`
}

// SignedSize returns the fill size with buy positive and sell negative.
func (f Fill) SignedSize() decimal.Decimal {
	if f.Side == SideSell {
		return f.Size.Neg()
	}

	return f.Size
}

// SignedNotional returns price * signed size. Summing signed notionals over
// any ledger prefix reconstructs the cash delta of the position exactly.
func (f Fill) SignedNotional() decimal.Decimal {
	return f.Price.Mul(f.SignedSize())
}
