package types

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type RiskDecision string

type RiskTransition string

type LimitType string

const (
	RiskDecisionContinue RiskDecision = "CONTINUE"
	RiskDecisionHalt     RiskDecision = "HALT"
)

const (
	RiskTransitionHalt   RiskTransition = "halt"
	RiskTransitionResume RiskTransition = "resume"
)

const (
	LimitTypeDailyLoss        LimitType = "daily_loss"
	LimitTypeTrailingDrawdown LimitType = "trailing_drawdown"
	// LimitTypeSessionReset marks a resume at a trading-day boundary.
	LimitTypeSessionReset LimitType = "session_reset"
)

// RiskState tracks the running risk figures for a single simulation run.
// It is owned exclusively by one risk engine; never shared across folds.
type RiskState struct {
	DayStart        time.Time       `yaml:"day_start"`
	DayStartEquity  decimal.Decimal `yaml:"day_start_equity"`
	RunningDailyPnL decimal.Decimal `yaml:"running_daily_pnl"`
	PeakEquity      decimal.Decimal `yaml:"peak_equity"`
	Drawdown        decimal.Decimal `yaml:"drawdown"`
	Halted          bool            `yaml:"halted"`
}

// RiskEvent records a halt/resume transition of the risk engine. Exactly one
// event is emitted per transition, carrying the triggering limit and the
// equity at that moment.
type RiskEvent struct {
	Time            time.Time       `csv:"time" yaml:"time" json:"timestamp"`
	Transition      RiskTransition  `csv:"transition" yaml:"transition" json:"transition"`
	Limit           LimitType       `csv:"limit" yaml:"limit" json:"limitType"`
	EquityAtTrigger decimal.Decimal `csv:"equity_at_trigger" yaml:"equity_at_trigger" json:"equityAtTrigger"`
}

// Payload serializes the event for the alerting collaborator.
func (e RiskEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
