package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
)

// RiskLimits are expressed as fractions of initial capital, matching the
// account-currency convention of the data provider. A zero or negative
// fraction disables that limit.
type RiskLimits struct {
	DailyLossFraction        float64
	TrailingDrawdownFraction float64
}

// RiskEngine is a two-state machine {Active, Halted} monitoring the equity
// curve of a single simulation run. Active -> Halted on a limit breach;
// Halted -> Active only at a trading-day boundary. It owns its RiskState
// exclusively; nothing is shared across folds.
type RiskEngine struct {
	initialCapital decimal.Decimal
	dailyLossLimit decimal.Decimal
	drawdownLimit  decimal.Decimal
	state          types.RiskState
	started        bool
}

// NewRiskEngine creates a risk engine for a run starting at initialCapital.
func NewRiskEngine(initialCapital decimal.Decimal, limits RiskLimits) *RiskEngine {
	engine := &RiskEngine{
		initialCapital: initialCapital,
		dailyLossLimit: decimal.Zero,
		drawdownLimit:  decimal.Zero,
	}

	if limits.DailyLossFraction > 0 {
		engine.dailyLossLimit = initialCapital.Mul(decimal.NewFromFloat(limits.DailyLossFraction))
	}

	if limits.TrailingDrawdownFraction > 0 {
		engine.drawdownLimit = initialCapital.Mul(decimal.NewFromFloat(limits.TrailingDrawdownFraction))
	}

	engine.state = types.RiskState{
		DayStartEquity: initialCapital,
		PeakEquity:     initialCapital,
	}

	return engine
}

// Halted reports whether the session is halted.
func (r *RiskEngine) Halted() bool {
	return r.state.Halted
}

// State returns a copy of the current risk state.
func (r *RiskEngine) State() types.RiskState {
	return r.state
}

// Evaluate consumes one equity point and returns the trading decision plus
// every risk transition it caused, in order. Exactly one event is emitted
// per state transition: repeated breaches while halted are no-ops, and a
// resume is only emitted at a day boundary. A point that resumes a halted
// session and re-breaches a carried limit emits both the resume and the new
// halt, so the ledger audit trail never shows two halts without a resume
// between them.
func (r *RiskEngine) Evaluate(point types.EquityPoint) (types.RiskDecision, []types.RiskEvent) {
	var events []types.RiskEvent

	// Day boundary: daily P&L resets, peak equity and drawdown carry over.
	// The first trading day measures daily P&L from initial capital, so a
	// loss on the very first bar already counts against the limit.
	if !r.started || !sameTradingDay(r.state.DayStart, point.Time) {
		r.state.DayStart = point.Time

		if r.started {
			r.state.DayStartEquity = point.Equity

			if r.state.Halted {
				r.state.Halted = false
				events = append(events, types.RiskEvent{
					Time:            point.Time,
					Transition:      types.RiskTransitionResume,
					Limit:           types.LimitTypeSessionReset,
					EquityAtTrigger: point.Equity,
				})
			}
		}

		r.started = true
	}

	r.state.RunningDailyPnL = point.Equity.Sub(r.state.DayStartEquity)

	if point.Equity.GreaterThan(r.state.PeakEquity) {
		r.state.PeakEquity = point.Equity
	}

	r.state.Drawdown = r.state.PeakEquity.Sub(point.Equity)

	if r.state.Halted {
		return types.RiskDecisionHalt, events
	}

	if limit, breached := r.breachedLimit(); breached {
		r.state.Halted = true
		events = append(events, types.RiskEvent{
			Time:            point.Time,
			Transition:      types.RiskTransitionHalt,
			Limit:           limit,
			EquityAtTrigger: point.Equity,
		})

		return types.RiskDecisionHalt, events
	}

	return types.RiskDecisionContinue, events
}

func (r *RiskEngine) breachedLimit() (types.LimitType, bool) {
	if r.dailyLossLimit.IsPositive() && r.state.RunningDailyPnL.LessThan(r.dailyLossLimit.Neg()) {
		return types.LimitTypeDailyLoss, true
	}

	if r.drawdownLimit.IsPositive() && r.state.Drawdown.GreaterThan(r.drawdownLimit) {
		return types.LimitTypeTrailingDrawdown, true
	}

	return "", false
}

func sameTradingDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()

	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}
