package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type LedgerEntryKind string

const (
	LedgerEntryKindFill      LedgerEntryKind = "fill"
	LedgerEntryKindRiskEvent LedgerEntryKind = "risk_event"
)

// LedgerEntry is one record of the append-only ledger: either a fill or a
// risk event. Entries are immutable once appended.
type LedgerEntry struct {
	Time time.Time
	Kind LedgerEntryKind
	// Fill is set when Kind is LedgerEntryKindFill.
	Fill optional.Option[Fill]
	// RiskEvent is set when Kind is LedgerEntryKindRiskEvent.
	RiskEvent optional.Option[RiskEvent]
}

// NewFillEntry wraps a fill as a ledger entry.
func NewFillEntry(fill Fill) LedgerEntry {
	return LedgerEntry{
		Time:      fill.ExecutedAt,
		Kind:      LedgerEntryKindFill,
		Fill:      optional.Some(fill),
		RiskEvent: optional.None[RiskEvent](),
	}
}

// NewRiskEventEntry wraps a risk event as a ledger entry.
func NewRiskEventEntry(event RiskEvent) LedgerEntry {
	return LedgerEntry{
		Time:      event.Time,
		Kind:      LedgerEntryKindRiskEvent,
		Fill:      optional.None[Fill](),
		RiskEvent: optional.Some(event),
	}
}
