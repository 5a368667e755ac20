package validation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/backtest"
	"github.com/fxlab-research/fxlab/internal/feed"
	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/internal/version"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Harness runs a walk-forward validation: the bar feed is sliced into folds,
// each fold runs an isolated simulation over its test window, and the
// outcomes are reduced into a single report. Folds are independent units on
// a bounded worker pool; the chain inside one fold is strictly sequential.
type Harness struct {
	config       Config
	logger       *logger.Logger
	showProgress bool
}

// FoldArtifact holds a completed fold's ledger for export. Failed folds have
// no artifact.
type FoldArtifact struct {
	Fold        int
	Ledger      *backtest.Ledger
	EquityCurve []types.EquityPoint
}

// Result pairs the report with the per-fold ledgers.
type Result struct {
	Report    types.ValidationReport
	Artifacts []*FoldArtifact
}

// NewHarness validates the config and builds a harness. Validation is
// fail-fast: nothing runs on a bad config.
func NewHarness(config Config, log *logger.Logger) (*Harness, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Harness{
		config: config,
		logger: log,
	}, nil
}

// EnableProgress turns on the terminal progress bar.
func (h *Harness) EnableProgress() {
	h.showProgress = true
}

// Run executes the full walk-forward pass. Signals are aligned to bars here;
// callers pass the raw model output. Cancelling the context stops remaining
// folds and discards the incomplete run.
func (h *Harness) Run(ctx context.Context, bars []types.Bar, signals []types.Signal) (*Result, error) {
	bars = h.clipRange(bars)

	aligned := feed.Align(bars, signals, h.logger)

	if gaps := feed.CountGaps(bars, h.config.Timeframe); gaps > 0 {
		h.logger.Warn("Bar feed has gaps",
			zap.Int("gaps", gaps),
			zap.Duration("timeframe", h.config.Timeframe),
		)
	}

	folds, err := h.config.Folds.Plan(len(bars))
	if err != nil {
		return nil, err
	}

	h.logger.Info("Starting walk-forward run",
		zap.String("symbol", h.config.Backtest.Symbol),
		zap.Int("bars", len(bars)),
		zap.Int("folds", len(folds)),
		zap.Int("dropped_signals", aligned.Dropped),
	)

	outcomes, artifacts, err := h.runFolds(ctx, folds, bars, aligned.Signals)
	if err != nil {
		return nil, err
	}

	aggregate, err := h.aggregate(outcomes, artifacts, aligned.Dropped)
	if err != nil {
		return nil, err
	}

	report := types.ValidationReport{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Symbol:        h.config.Backtest.Symbol,
		SchemaVersion: version.ReportSchemaVersion,
		Folds:         outcomes,
		Aggregate:     aggregate,
	}

	return &Result{
		Report:    report,
		Artifacts: artifacts,
	}, nil
}

func (h *Harness) clipRange(bars []types.Bar) []types.Bar {
	if h.config.Start == nil && h.config.End == nil {
		return bars
	}

	start := time.Time{}
	if h.config.Start != nil {
		start = *h.config.Start
	}

	end := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if h.config.End != nil {
		end = *h.config.End
	}

	return feed.FilterRange(bars, start, end)
}

// runFolds fans the folds out over the worker pool. Each outcome lands at
// its own fold index, so completion order never affects the result.
func (h *Harness) runFolds(ctx context.Context, folds []Fold, bars []types.Bar, signals []types.Signal) ([]types.FoldOutcome, []*FoldArtifact, error) {
	workers := h.config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	if workers > len(folds) {
		workers = len(folds)
	}

	bar := h.progressBar(len(folds))
	outcomes := make([]types.FoldOutcome, len(folds))
	artifacts := make([]*FoldArtifact, len(folds))

	jobs := make(chan Fold)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for fold := range jobs {
				if ctx.Err() != nil {
					return
				}

				outcomes[fold.Index], artifacts[fold.Index] = h.runFold(fold, bars, signals)
				bar.Add(1)
			}
		}()
	}

feeding:
	for _, fold := range folds {
		select {
		case <-ctx.Done():
			break feeding
		case jobs <- fold:
		}
	}

	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRunCancelled, "walk-forward run cancelled", err)
	}

	return outcomes, artifacts, nil
}

// runFold runs one fold's test window in full isolation: its own simulator,
// ledger, and risk state. A failure is recorded on the outcome, never
// propagated; one bad fold does not sink the run.
func (h *Harness) runFold(fold Fold, bars []types.Bar, signals []types.Signal) (types.FoldOutcome, *FoldArtifact) {
	outcome := fold.Times(bars)

	config := h.config.Backtest
	// Per-fold latency seeds keep sampled runs deterministic under the
	// concurrent pool.
	config.Latency.Seed += int64(fold.Index)

	simulator, err := backtest.NewSimulator(config, h.logger)
	if err != nil {
		return h.failFold(outcome, err), nil
	}

	testBars := bars[fold.TestStart:fold.TestEnd]
	testSignals := signals[fold.TestStart:fold.TestEnd]

	// Bar integrity is checked per window: a corrupt stretch of the feed
	// fails the folds that cover it and nothing else.
	if err := feed.ValidateBars(testBars); err != nil {
		return h.failFold(outcome, err), nil
	}

	run, err := simulator.Run(testBars, testSignals)
	if err != nil {
		return h.failFold(outcome, err), nil
	}

	eval := backtest.NewEvaluator(config.BarsPerYear).
		Evaluate(run.Ledger, testBars, decimal.NewFromFloat(config.InitialCapital))

	outcome.Metrics = eval.Metrics
	outcome.Returns = eval.Returns

	return outcome, &FoldArtifact{
		Fold:        fold.Index,
		Ledger:      run.Ledger,
		EquityCurve: eval.EquityCurve,
	}
}

func (h *Harness) failFold(outcome types.FoldOutcome, err error) types.FoldOutcome {
	outcome.Failed = true
	outcome.Error = err.Error()

	h.logger.Error("Fold failed",
		zap.Int("fold", outcome.Fold),
		zap.Error(errors.Wrapf(errors.ErrCodeFoldFailed, err, "fold %d failed", outcome.Fold)),
	)

	return outcome
}

// aggregate reduces the fold outcomes in fold order. The reduction only uses
// per-fold values, so it is deterministic regardless of which worker
// finished first.
func (h *Harness) aggregate(outcomes []types.FoldOutcome, artifacts []*FoldArtifact, droppedSignals int) (types.AggregateStats, error) {
	stats := types.AggregateStats{
		DroppedSignals: droppedSignals,
	}

	var pooled []float64

	sharpeSum := 0.0
	returnSum := 0.0

	for i, outcome := range outcomes {
		if outcome.Failed {
			stats.FailedFolds++

			continue
		}

		stats.SucceededFolds++
		sharpeSum += outcome.Metrics.Sharpe
		returnSum += outcome.Metrics.TotalReturn
		pooled = append(pooled, outcome.Returns...)

		if artifacts[i] != nil {
			for _, event := range artifacts[i].Ledger.RiskEvents() {
				if event.Transition == types.RiskTransitionHalt {
					stats.TotalRiskHalts++
				}
			}
		}
	}

	if stats.SucceededFolds > 0 {
		stats.MeanSharpe = sharpeSum / float64(stats.SucceededFolds)
		stats.MeanReturn = returnSum / float64(stats.SucceededFolds)
	}

	stats.PooledBarReturns = len(pooled)

	bootstrap, err := h.config.Bootstrap.Run(pooled, h.config.Backtest.BarsPerYear)
	if err != nil {
		return types.AggregateStats{}, err
	}

	stats.SharpeCI = bootstrap.SharpeCI
	stats.CumulativeCI = bootstrap.CumulativeCI
	stats.PValue = bootstrap.PValue
	stats.Resamples = bootstrap.Resamples

	return stats, nil
}

func (h *Harness) progressBar(folds int) *progressbar.ProgressBar {
	if !h.showProgress {
		return progressbar.DefaultSilent(int64(folds))
	}

	return progressbar.Default(int64(folds), "folds")
}
