package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Metrics summarizes a single backtest run, derived from the ledger and the
// equity curve. Degenerate runs (no trades, zero-variance returns) are
// flagged rather than reported as NaN.
type Metrics struct {
	// TotalReturn is final equity / initial equity - 1.
	TotalReturn float64 `yaml:"total_return"`
	// Sharpe is the annualized Sharpe ratio of per-bar returns.
	Sharpe float64 `yaml:"sharpe"`
	// MaxDrawdown is the worst peak-to-trough equity decline, as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// TradeCount counts round trips (closing fills with realized pnl).
	TradeCount int `yaml:"trade_count"`
	// WinRate is winning round trips / total round trips.
	WinRate float64 `yaml:"win_rate"`
	// RiskEventCount counts halt/resume transitions recorded in the ledger.
	RiskEventCount int `yaml:"risk_event_count"`
	// Degenerate is true when the run had no trades or zero-variance
	// returns and the ratio metrics are reported as defined zeros.
	Degenerate bool `yaml:"degenerate"`
}

// FoldOutcome is the per-fold entry of a validation report. Failed folds
// carry their reason; they are never silently merged into the aggregate.
type FoldOutcome struct {
	Fold       int       `yaml:"fold"`
	TrainStart time.Time `yaml:"train_start"`
	TrainEnd   time.Time `yaml:"train_end"`
	TestStart  time.Time `yaml:"test_start"`
	TestEnd    time.Time `yaml:"test_end"`
	Metrics    Metrics   `yaml:"metrics"`
	Failed     bool      `yaml:"failed"`
	Error      string    `yaml:"error,omitempty"`
	// Returns holds the per-bar test-window returns used for
	// bootstrapping. Not serialized.
	Returns []float64 `yaml:"-"`
}

// ConfidenceInterval is a two-sided bootstrap percentile interval.
type ConfidenceInterval struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
	Level float64 `yaml:"level"`
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// AggregateStats is the order-independent reduction over successful folds
// plus the bootstrap estimates over the pooled return series.
type AggregateStats struct {
	MeanSharpe       float64            `yaml:"mean_sharpe"`
	MeanReturn       float64            `yaml:"mean_return"`
	SharpeCI         ConfidenceInterval `yaml:"sharpe_ci"`
	CumulativeCI     ConfidenceInterval `yaml:"cumulative_return_ci"`
	PValue           float64            `yaml:"p_value"`
	Resamples        int                `yaml:"resamples"`
	SucceededFolds   int                `yaml:"succeeded_folds"`
	FailedFolds      int                `yaml:"failed_folds"`
	DroppedSignals   int                `yaml:"dropped_signals"`
	TotalRiskHalts   int                `yaml:"total_risk_halts"`
	PooledBarReturns int                `yaml:"pooled_bar_returns"`
}

// ValidationReport is the final artifact of a walk-forward run.
type ValidationReport struct {
	// ID is the unique identifier for this validation run.
	ID string `yaml:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp"`
	// Symbol of the traded pair.
	Symbol string `yaml:"symbol"`
	// SchemaVersion is the report schema version (semver).
	SchemaVersion string `yaml:"schema_version"`
	// Folds enumerates every fold, succeeded or failed, with reasons.
	Folds []FoldOutcome `yaml:"folds"`
	// Aggregate holds the cross-fold reduction and bootstrap estimates.
	Aggregate AggregateStats `yaml:"aggregate"`
	// LedgerFilePaths points at the exported per-fold ledger artifacts.
	LedgerFilePaths []string `yaml:"ledger_file_paths,omitempty"`
}

// WriteReport serializes the report to YAML at the given path.
func WriteReport(path string, report ValidationReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal validation report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write validation report to file: %w", err)
	}

	return nil
}

// ReadReport loads a report previously written by WriteReport.
func ReadReport(path string) (ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("failed to read validation report: %w", err)
	}

	var report ValidationReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return ValidationReport{}, fmt.Errorf("failed to unmarshal validation report: %w", err)
	}

	return report, nil
}
