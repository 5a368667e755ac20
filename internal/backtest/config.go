package backtest

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/fxlab-research/fxlab/internal/backtest/latency"
	"github.com/fxlab-research/fxlab/internal/backtest/slippage"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Config parameterizes a single simulation run. Limits are fractions of
// initial capital; zero disables the corresponding limit.
type Config struct {
	Symbol         string          `yaml:"symbol" json:"symbol" validate:"required"`
	InitialCapital float64         `yaml:"initial_capital" json:"initial_capital" validate:"gt=0"`
	OrderSize      float64         `yaml:"order_size" json:"order_size" validate:"gt=0"`
	Slippage       slippage.Config `yaml:"slippage" json:"slippage"`
	Latency        latency.Config  `yaml:"latency" json:"latency"`
	// DailyLossLimit halts the session when the running daily loss
	// exceeds this fraction of initial capital.
	DailyLossLimit float64 `yaml:"daily_loss_limit" json:"daily_loss_limit" validate:"gte=0"`
	// TrailingDrawdownLimit halts when equity falls this fraction of
	// initial capital below its running peak.
	TrailingDrawdownLimit float64 `yaml:"trailing_drawdown_limit" json:"trailing_drawdown_limit" validate:"gte=0"`
	// BarsPerYear scales per-bar return statistics to annual figures
	// (e.g. 252 for daily bars, 252*96 for M15).
	BarsPerYear float64 `yaml:"bars_per_year" json:"bars_per_year" validate:"gt=0"`
	// FlattenOnHalt closes the open position at the breaching bar's close
	// when the risk engine halts the session.
	FlattenOnHalt bool `yaml:"flatten_on_halt" json:"flatten_on_halt"`
}

// EmptyConfig returns a zero-valued config.
func EmptyConfig() Config {
	return Config{}
}

// TestConfig returns a config suitable for tests: zero frictions, no limits.
func TestConfig(symbol string) Config {
	return Config{
		Symbol:         symbol,
		InitialCapital: 100000,
		OrderSize:      1,
		Slippage:       slippage.Config{Kind: slippage.KindFixedBps, Bps: 0},
		Latency:        latency.Config{Kind: latency.KindFixed, Bars: 0},
		BarsPerYear:    252,
		FlattenOnHalt:  true,
	}
}

// Validate checks the config before any simulation work starts. Violations
// are configuration errors: fatal, fail-fast, no partial run.
func (c *Config) Validate() error {
	if c.DailyLossLimit < 0 || c.TrailingDrawdownLimit < 0 {
		return errors.Newf(errors.ErrCodeNegativeLimit,
			"risk limits must be non-negative: daily_loss=%f trailing_drawdown=%f",
			c.DailyLossLimit, c.TrailingDrawdownLimit)
	}

	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if _, err := slippage.GetModel(c.Slippage); err != nil {
		return err
	}

	if _, err := latency.GetModel(c.Latency); err != nil {
		return err
	}

	return nil
}

// GenerateSchema generates a JSON schema for the config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for a single backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates the JSON schema as an indented string.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
