package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab-research/fxlab/internal/backtest"
	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/internal/validation"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

func testResult(t *testing.T) *validation.Result {
	t.Helper()

	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	ledger := backtest.NewLedger("EURUSD")
	require.NoError(t, ledger.AppendFill(types.Fill{
		OrderID:    "order",
		Symbol:     "EURUSD",
		Side:       types.SideBuy,
		Size:       decimal.NewFromInt(1),
		Price:      decimal.RequireFromString("1.10"),
		ExecutedAt: t0,
		Reason:     types.OrderReasonOpenLong,
	}))

	return &validation.Result{
		Report: types.ValidationReport{
			ID:            "run-test",
			Timestamp:     t0,
			Symbol:        "EURUSD",
			SchemaVersion: "1.0.0",
			Folds: []types.FoldOutcome{
				{Fold: 0, Metrics: types.Metrics{Sharpe: 1.2, TradeCount: 1}},
			},
			Aggregate: types.AggregateStats{SucceededFolds: 1, Resamples: 100},
		},
		Artifacts: []*validation.FoldArtifact{
			{
				Fold:   0,
				Ledger: ledger,
				EquityCurve: []types.EquityPoint{
					{Time: t0, Equity: decimal.NewFromInt(100000)},
				},
			},
		},
	}
}

func TestWriterLaysOutRunDirectory(t *testing.T) {
	writer, err := NewWriter(logger.NewNopLogger(), FormatCSV)
	require.NoError(t, err)

	base := t.TempDir()
	runDir, err := writer.Write(base, testResult(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "run-test"), runDir)

	for _, name := range []string{
		"report.yaml",
		filepath.Join("fold_000", "fills.csv"),
		filepath.Join("fold_000", "equity.csv"),
		filepath.Join("fold_000", "risk_events.csv"),
	} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, "missing %s", name)
	}

	report, err := types.ReadReport(filepath.Join(runDir, "report.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "run-test", report.ID)
	assert.Equal(t, "1.0.0", report.SchemaVersion)
	require.Len(t, report.LedgerFilePaths, 1)
	assert.Equal(t, filepath.Join(runDir, "fold_000"), report.LedgerFilePaths[0])
}

func TestWriterSkipsFailedFoldArtifacts(t *testing.T) {
	writer, err := NewWriter(logger.NewNopLogger(), FormatCSV)
	require.NoError(t, err)

	result := testResult(t)
	result.Artifacts = []*validation.FoldArtifact{nil}

	runDir, err := writer.Write(t.TempDir(), result)
	require.NoError(t, err)

	report, err := types.ReadReport(filepath.Join(runDir, "report.yaml"))
	require.NoError(t, err)
	assert.Empty(t, report.LedgerFilePaths)
}

func TestReadRejectsIncompatibleSchema(t *testing.T) {
	writer, err := NewWriter(logger.NewNopLogger(), FormatCSV)
	require.NoError(t, err)

	result := testResult(t)
	result.Report.SchemaVersion = "99.0.0"

	runDir, err := writer.Write(t.TempDir(), result)
	require.NoError(t, err)

	_, err = Read(filepath.Join(runDir, "report.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidVersion))
}

func TestReadRoundTrip(t *testing.T) {
	writer, err := NewWriter(logger.NewNopLogger(), FormatCSV)
	require.NoError(t, err)

	runDir, err := writer.Write(t.TempDir(), testResult(t))
	require.NoError(t, err)

	report, err := Read(filepath.Join(runDir, "report.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "run-test", report.ID)
}

func TestWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(logger.NewNopLogger(), Format("orc"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
