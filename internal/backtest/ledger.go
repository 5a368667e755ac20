package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Ledger is the append-only record of fills and risk events for one
// simulation run. It has a single writer (the simulator that owns it) and is
// shared read-only afterwards; entries are never mutated or removed.
type Ledger struct {
	symbol  string
	entries []types.LedgerEntry
}

// NewLedger creates an empty ledger for a symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:  symbol,
		entries: make([]types.LedgerEntry, 0, 256),
	}
}

// Symbol returns the symbol this ledger records.
func (l *Ledger) Symbol() string {
	return l.symbol
}

// Append adds an entry, enforcing non-decreasing timestamps.
func (l *Ledger) Append(entry types.LedgerEntry) error {
	if n := len(l.entries); n > 0 && entry.Time.Before(l.entries[n-1].Time) {
		return errors.Newf(errors.ErrCodeLedgerOrdering,
			"ledger append out of order: %s before %s", entry.Time, l.entries[n-1].Time)
	}

	l.entries = append(l.entries, entry)

	return nil
}

// AppendFill records a fill.
func (l *Ledger) AppendFill(fill types.Fill) error {
	return l.Append(types.NewFillEntry(fill))
}

// AppendRiskEvent records a risk transition.
func (l *Ledger) AppendRiskEvent(event types.RiskEvent) error {
	return l.Append(types.NewRiskEventEntry(event))
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the recorded entries.
func (l *Ledger) Entries() []types.LedgerEntry {
	out := make([]types.LedgerEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Fills returns all fills in append order.
func (l *Ledger) Fills() []types.Fill {
	var fills []types.Fill

	for _, entry := range l.entries {
		if entry.Kind == types.LedgerEntryKindFill {
			fills = append(fills, entry.Fill.Unwrap())
		}
	}

	return fills
}

// RiskEvents returns all risk events in append order.
func (l *Ledger) RiskEvents() []types.RiskEvent {
	var events []types.RiskEvent

	for _, entry := range l.entries {
		if entry.Kind == types.LedgerEntryKindRiskEvent {
			events = append(events, entry.RiskEvent.Unwrap())
		}
	}

	return events
}

// ReplayState is the deterministic reconstruction of position and realized
// P&L from a ledger prefix.
type ReplayState struct {
	Position    types.Position
	RealizedPnL decimal.Decimal
	// TradeCount counts closing fills (round-trip legs).
	TradeCount int
	// WinningTrades counts closing fills with positive realized P&L.
	WinningTrades int
}

// Replay reconstructs position and realized P&L by walking every entry.
// It is a pure function of the ledger contents: replaying twice yields
// identical state.
func (l *Ledger) Replay() ReplayState {
	state := ReplayState{
		Position:    types.Position{Symbol: l.symbol},
		RealizedPnL: decimal.Zero,
	}

	for _, entry := range l.entries {
		if entry.Kind != types.LedgerEntryKindFill {
			continue
		}

		fill := entry.Fill.Unwrap()
		realized := state.Position.ApplyFill(fill)
		state.RealizedPnL = state.RealizedPnL.Add(realized)

		if !realized.IsZero() || isClosingReason(fill.Reason) {
			state.TradeCount++

			if realized.IsPositive() {
				state.WinningTrades++
			}
		}
	}

	return state
}

func isClosingReason(reason string) bool {
	switch reason {
	case types.OrderReasonCloseLong, types.OrderReasonCloseShort, types.OrderReasonFlatten:
		return true
	default:
		return false
	}
}
