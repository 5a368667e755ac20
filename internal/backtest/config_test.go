package backtest

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/fxlab-research/fxlab/internal/backtest/latency"
	"github.com/fxlab-research/fxlab/internal/backtest/slippage"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestEmptyConfigFailsValidation() {
	config := EmptyConfig()
	err := config.Validate()
	s.Require().Error(err)
	s.True(errors.IsConfiguration(err))
}

func (s *ConfigTestSuite) TestTestConfigIsValid() {
	config := TestConfig("EURUSD")
	s.Require().NoError(config.Validate())
	s.Equal("EURUSD", config.Symbol)
}

func (s *ConfigTestSuite) TestNegativeLimitRejected() {
	config := TestConfig("EURUSD")
	config.DailyLossLimit = -0.01

	err := config.Validate()
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNegativeLimit))
	s.True(errors.IsConfiguration(err))
}

func (s *ConfigTestSuite) TestUnknownSlippageModelRejected() {
	config := TestConfig("EURUSD")
	config.Slippage = slippage.Config{Kind: "market_impact"}

	err := config.Validate()
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidSlippageModel))
}

func (s *ConfigTestSuite) TestInvalidLatencyRangeRejected() {
	config := TestConfig("EURUSD")
	config.Latency = latency.Config{Kind: latency.KindSampled, MinBars: 3, MaxBars: 1}

	err := config.Validate()
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidLatencyModel))
}

func (s *ConfigTestSuite) TestYAMLRoundTrip() {
	config := TestConfig("EURUSD")
	config.DailyLossLimit = 0.02

	data, err := yaml.Marshal(config)
	s.Require().NoError(err)

	var decoded Config
	s.Require().NoError(yaml.Unmarshal(data, &decoded))
	s.Require().NoError(decoded.Validate())
	s.Equal(config.Symbol, decoded.Symbol)
	s.Equal(config.DailyLossLimit, decoded.DailyLossLimit)
}

func (s *ConfigTestSuite) TestGenerateSchema() {
	config := EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	s.Require().NoError(err)
	s.Contains(schemaJSON, "backtest-config")
	s.Contains(schemaJSON, "daily_loss_limit")
	s.Contains(schemaJSON, "initial_capital")
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
