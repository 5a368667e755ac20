package backtest

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fxlab-research/fxlab/internal/types"
)

// Evaluator derives performance metrics from a ledger and the bar sequence
// it was produced against. Evaluation is read-only and repeatable: the same
// ledger and bars always yield the same metrics.
type Evaluator struct {
	barsPerYear float64
}

// EvalResult bundles the metrics with the intermediate series other
// components consume (bootstrap resampling needs the per-bar returns).
type EvalResult struct {
	Metrics     types.Metrics
	EquityCurve []types.EquityPoint
	// Returns are simple per-bar equity returns, one per bar after the first.
	Returns []float64
}

// NewEvaluator creates an evaluator with the configured annualization scale.
func NewEvaluator(barsPerYear float64) *Evaluator {
	return &Evaluator{
		barsPerYear: barsPerYear,
	}
}

// Evaluate replays the ledger against each bar's close, marking the open
// position to market. Only bars at or before each fill's execution time see
// that fill: equity never depends on future bars.
func (e *Evaluator) Evaluate(ledger *Ledger, bars []types.Bar, initialCapital decimal.Decimal) EvalResult {
	fills := ledger.Fills()
	position := types.Position{Symbol: ledger.Symbol()}
	realized := decimal.Zero
	next := 0

	curve := make([]types.EquityPoint, 0, len(bars))

	for _, bar := range bars {
		for next < len(fills) && !fills[next].ExecutedAt.After(bar.Time) {
			realized = realized.Add(position.ApplyFill(fills[next]))
			next++
		}

		unrealized := position.UnrealizedPnL(bar.Close)
		curve = append(curve, types.EquityPoint{
			Time:          bar.Time,
			RealizedPnL:   realized,
			UnrealizedPnL: unrealized,
			Equity:        initialCapital.Add(realized).Add(unrealized),
		})
	}

	returns := barReturns(curve)
	replay := ledger.Replay()

	metrics := types.Metrics{
		TradeCount:     replay.TradeCount,
		RiskEventCount: len(ledger.RiskEvents()),
	}

	if replay.TradeCount > 0 {
		metrics.WinRate = float64(replay.WinningTrades) / float64(replay.TradeCount)
	}

	if len(curve) > 0 {
		final, _ := curve[len(curve)-1].Equity.Float64()
		initial, _ := initialCapital.Float64()

		if initial != 0 {
			metrics.TotalReturn = final/initial - 1
		}
	}

	metrics.MaxDrawdown = maxDrawdown(curve)
	metrics.Sharpe, metrics.Degenerate = e.sharpe(returns)

	// A run with no fills at all is degenerate by definition: every ratio
	// is a defined zero, never NaN.
	if len(fills) == 0 {
		metrics.Degenerate = true
	}

	return EvalResult{
		Metrics:     metrics,
		EquityCurve: curve,
		Returns:     returns,
	}
}

// sharpe annualizes mean/stddev of per-bar returns. Series too short or
// with zero variance are flagged degenerate and report zero.
func (e *Evaluator) sharpe(returns []float64) (float64, bool) {
	if len(returns) < 2 {
		return 0, true
	}

	mean := Mean(returns)
	sd := StdDev(returns, mean)

	if sd == 0 {
		return 0, true
	}

	return mean / sd * math.Sqrt(e.barsPerYear), false
}

func barReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)

	for i := 1; i < len(curve); i++ {
		prev, _ := curve[i-1].Equity.Float64()
		cur, _ := curve[i].Equity.Float64()

		if prev == 0 {
			returns = append(returns, 0)

			continue
		}

		returns = append(returns, cur/prev-1)
	}

	return returns
}

func maxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0].Equity
	worst := 0.0

	for _, point := range curve {
		if point.Equity.GreaterThan(peak) {
			peak = point.Equity
		}

		if peak.IsZero() {
			continue
		}

		dd, _ := peak.Sub(point.Equity).Div(peak).Float64()
		if dd > worst {
			worst = dd
		}
	}

	return worst
}

// Mean returns the arithmetic mean of the series, 0 for an empty one.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range series {
		sum += v
	}

	return sum / float64(len(series))
}

// StdDev returns the sample standard deviation around the given mean.
func StdDev(series []float64, mean float64) float64 {
	if len(series) < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range series {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(series)-1))
}
