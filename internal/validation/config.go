package validation

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/fxlab-research/fxlab/internal/backtest"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Config is the full walk-forward run configuration: the per-fold backtest
// parameters plus the fold layout and the bootstrap pass.
type Config struct {
	Backtest  backtest.Config `yaml:"backtest" json:"backtest"`
	Folds     FoldPlan        `yaml:"folds" json:"folds"`
	Bootstrap Bootstrap       `yaml:"bootstrap" json:"bootstrap"`
	// Workers bounds the fold worker pool. Zero means one worker per CPU.
	Workers int `yaml:"workers" json:"workers" validate:"gte=0"`
	// Timeframe is the expected bar spacing; larger intervals are counted
	// as feed gaps and logged. Zero disables gap counting.
	Timeframe time.Duration `yaml:"timeframe" json:"timeframe" validate:"gte=0"`
	// Start and End clip the bar feed to a closed time range before folding.
	Start *time.Time `yaml:"start,omitempty" json:"start,omitempty"`
	End   *time.Time `yaml:"end,omitempty" json:"end,omitempty"`
}

// EmptyConfig returns a zero-valued config.
func EmptyConfig() Config {
	return Config{}
}

// TestConfig returns a small but valid walk-forward config for tests.
func TestConfig(symbol string) Config {
	return Config{
		Backtest: backtest.TestConfig(symbol),
		Folds: FoldPlan{
			TrainBars: 20,
			TestBars:  10,
			StepBars:  10,
		},
		Bootstrap: Bootstrap{
			Resamples:       200,
			ConfidenceLevel: 0.95,
			Seed:            42,
		},
		Workers: 1,
	}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate fails fast: no fold runs if any part of the config is invalid.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid walk-forward config", err)
	}

	if err := c.Backtest.Validate(); err != nil {
		return err
	}

	if err := c.Folds.Validate(); err != nil {
		return err
	}

	if err := c.Bootstrap.Validate(); err != nil {
		return err
	}

	if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"end %s is before start %s", c.End, c.Start)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(c)
	schema.Title = "walkforward-config"
	schema.Description = "Configuration schema for a walk-forward validation run"
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
