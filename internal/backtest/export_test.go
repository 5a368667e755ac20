package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
)

func TestLedgerExporterWritesArtifacts(t *testing.T) {
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	ledger := NewLedger("EURUSD")
	require.NoError(t, ledger.AppendFill(testFill(t0, types.SideBuy, "100", "1.10", types.OrderReasonOpenLong)))
	require.NoError(t, ledger.AppendRiskEvent(types.RiskEvent{
		Time:            t0.Add(time.Hour),
		Transition:      types.RiskTransitionHalt,
		Limit:           types.LimitTypeDailyLoss,
		EquityAtTrigger: decimal.NewFromInt(99000),
	}))

	curve := []types.EquityPoint{
		{Time: t0, RealizedPnL: decimal.Zero, UnrealizedPnL: decimal.Zero, Equity: decimal.NewFromInt(100000)},
		{Time: t0.Add(time.Hour), RealizedPnL: decimal.NewFromInt(-1000), UnrealizedPnL: decimal.Zero, Equity: decimal.NewFromInt(99000)},
	}

	exporter, err := NewLedgerExporter(logger.NewNopLogger())
	require.NoError(t, err)
	defer exporter.Close()

	require.NoError(t, exporter.Load(ledger, curve))

	dir := t.TempDir()
	require.NoError(t, exporter.WriteCSV(dir))
	require.NoError(t, exporter.WriteParquet(dir))

	for _, name := range []string{"fills.csv", "risk_events.csv", "equity.csv", "fills.parquet", "risk_events.parquet", "equity.parquet"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "missing artifact %s", name)
		assert.Positive(t, info.Size())
	}

	data, err := os.ReadFile(filepath.Join(dir, "fills.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "order_id")
	assert.Contains(t, string(data), "notional")
	assert.Contains(t, string(data), "EURUSD")
}

func TestLedgerExporterEmptyLedger(t *testing.T) {
	exporter, err := NewLedgerExporter(logger.NewNopLogger())
	require.NoError(t, err)
	defer exporter.Close()

	require.NoError(t, exporter.Load(NewLedger("EURUSD"), nil))
	require.NoError(t, exporter.WriteCSV(t.TempDir()))
}
