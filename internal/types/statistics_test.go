package types

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StatisticsTestSuite struct {
	suite.Suite
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) TestWriteAndReadReport() {
	path := filepath.Join(suite.T().TempDir(), "report.yaml")

	report := ValidationReport{
		ID:            "run-1",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Symbol:        "EURUSD",
		SchemaVersion: "1.0.0",
		Folds: []FoldOutcome{
			{
				Fold:      0,
				TestStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				TestEnd:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Metrics:   Metrics{TotalReturn: 0.05, Sharpe: 1.2, TradeCount: 10, WinRate: 0.6},
			},
			{
				Fold:   1,
				Failed: true,
				Error:  "[201] bar feed is not time-ordered",
			},
		},
		Aggregate: AggregateStats{
			MeanSharpe:     1.2,
			MeanReturn:     0.05,
			SharpeCI:       ConfidenceInterval{Lower: 0.4, Upper: 2.0, Level: 0.95},
			PValue:         0.03,
			Resamples:      1000,
			SucceededFolds: 1,
			FailedFolds:    1,
		},
	}

	suite.NoError(WriteReport(path, report))

	loaded, err := ReadReport(path)
	suite.NoError(err)
	suite.Equal(report.ID, loaded.ID)
	suite.Equal(report.Symbol, loaded.Symbol)
	suite.Len(loaded.Folds, 2)
	suite.True(loaded.Folds[1].Failed)
	suite.Equal(report.Aggregate.Resamples, loaded.Aggregate.Resamples)
	suite.InDelta(report.Aggregate.SharpeCI.Width(), loaded.Aggregate.SharpeCI.Width(), 1e-12)
}

func (suite *StatisticsTestSuite) TestReadReportMissingFile() {
	_, err := ReadReport(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Error(err)
}

func (suite *StatisticsTestSuite) TestRiskEventPayload() {
	event := RiskEvent{
		Time:            time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Transition:      RiskTransitionHalt,
		Limit:           LimitTypeDailyLoss,
		EquityAtTrigger: decimal.RequireFromString("97234.50"),
	}

	payload, err := event.Payload()
	suite.NoError(err)

	var decoded map[string]any
	suite.NoError(json.Unmarshal(payload, &decoded))
	suite.Equal("daily_loss", decoded["limitType"])
	suite.Equal("halt", decoded["transition"])
	suite.Contains(decoded, "timestamp")
	suite.Contains(decoded, "equityAtTrigger")
}
