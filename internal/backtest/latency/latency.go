// Package latency models the delay between an order request and its fill,
// measured in bars. Like slippage, the model set is closed and selected by
// configuration.
package latency

import (
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Model yields the execution delay, in bars, for the next order. A delay of
// zero executes at the close of the requesting bar.
type Model interface {
	Sample() int
}

type Kind string

const (
	KindFixed   Kind = "fixed"
	KindSampled Kind = "sampled"
)

var AllKinds = []any{
	KindFixed,
	KindSampled,
}

// Config selects and parameterizes a latency model.
type Config struct {
	Kind Kind `yaml:"kind" json:"kind" jsonschema:"enum=fixed,enum=sampled"`
	// Bars is the fixed delay (fixed only).
	Bars int `yaml:"bars" json:"bars" validate:"gte=0"`
	// MinBars and MaxBars bound the sampled delay (sampled only).
	MinBars int `yaml:"min_bars" json:"min_bars" validate:"gte=0"`
	MaxBars int `yaml:"max_bars" json:"max_bars" validate:"gte=0"`
	// Seed makes sampled runs reproducible. Folds derive per-fold seeds
	// from it so concurrent runs stay deterministic.
	Seed int64 `yaml:"seed" json:"seed"`
}

// GetModel returns the configured latency model.
func GetModel(config Config) (Model, error) {
	switch config.Kind {
	case KindFixed:
		return NewFixed(config.Bars), nil
	case KindSampled:
		if config.MaxBars < config.MinBars {
			return nil, errors.Newf(errors.ErrCodeInvalidLatencyModel,
				"sampled latency: max_bars %d < min_bars %d", config.MaxBars, config.MinBars)
		}

		return NewSampled(config.MinBars, config.MaxBars, config.Seed), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidLatencyModel, "unknown latency model: %s", config.Kind)
	}
}
