package validation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab-research/fxlab/pkg/errors"
)

func noisyReturns(n int, mean float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	returns := make([]float64, n)
	for i := range returns {
		returns[i] = mean + rng.NormFloat64()*0.01
	}

	return returns
}

func TestBootstrapIsDeterministic(t *testing.T) {
	returns := noisyReturns(500, 0.0002, 7)
	bootstrap := Bootstrap{Resamples: 300, ConfidenceLevel: 0.95, Seed: 42}

	first, err := bootstrap.Run(returns, 252)
	require.NoError(t, err)

	second, err := bootstrap.Run(returns, 252)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBootstrapIntervalWidensWithLevel(t *testing.T) {
	returns := noisyReturns(500, 0.0002, 7)

	narrow, err := Bootstrap{Resamples: 300, ConfidenceLevel: 0.80, Seed: 42}.Run(returns, 252)
	require.NoError(t, err)

	wide, err := Bootstrap{Resamples: 300, ConfidenceLevel: 0.99, Seed: 42}.Run(returns, 252)
	require.NoError(t, err)

	// Same seed, same resamples: the wider level takes outer quantiles of
	// the identical resampled distribution.
	assert.GreaterOrEqual(t, wide.SharpeCI.Width(), narrow.SharpeCI.Width())
	assert.GreaterOrEqual(t, wide.CumulativeCI.Width(), narrow.CumulativeCI.Width())
	assert.LessOrEqual(t, wide.SharpeCI.Lower, narrow.SharpeCI.Lower)
	assert.GreaterOrEqual(t, wide.SharpeCI.Upper, narrow.SharpeCI.Upper)
}

func TestBootstrapMoreResamplesNarrowsInterval(t *testing.T) {
	returns := noisyReturns(500, 0.0002, 7)

	// The property is in expectation, so average the widths over many seeds.
	seeds := 100
	smallWidth := 0.0
	largeWidth := 0.0

	for seed := 0; seed < seeds; seed++ {
		small, err := Bootstrap{Resamples: 20, ConfidenceLevel: 0.95, Seed: int64(seed)}.Run(returns, 252)
		require.NoError(t, err)

		large, err := Bootstrap{Resamples: 2000, ConfidenceLevel: 0.95, Seed: int64(seed)}.Run(returns, 252)
		require.NoError(t, err)

		smallWidth += small.SharpeCI.Width()
		largeWidth += large.SharpeCI.Width()
	}

	assert.GreaterOrEqual(t, smallWidth/float64(seeds), largeWidth/float64(seeds))
}

func TestBootstrapBoundsOrdered(t *testing.T) {
	returns := noisyReturns(200, 0, 11)

	result, err := Bootstrap{Resamples: 500, ConfidenceLevel: 0.95, Seed: 1}.Run(returns, 252)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.SharpeCI.Lower, result.SharpeCI.Upper)
	assert.LessOrEqual(t, result.CumulativeCI.Lower, result.CumulativeCI.Upper)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)
	assert.Equal(t, 500, result.Resamples)
}

func TestBootstrapStrongDriftHasLowPValue(t *testing.T) {
	// Mean twenty times the noise scale: the t-test must reject zero mean.
	returns := noisyReturns(500, 0.02, 3)
	for i := range returns {
		returns[i] = 0.02 + returns[i]*0.001
	}

	result, err := Bootstrap{Resamples: 100, ConfidenceLevel: 0.95, Seed: 1}.Run(returns, 252)
	require.NoError(t, err)

	assert.Less(t, result.PValue, 0.01)
	assert.Positive(t, result.SharpeCI.Lower)
	assert.Positive(t, result.CumulativeCI.Lower)
}

func TestBootstrapShortSeriesCollapses(t *testing.T) {
	result, err := Bootstrap{Resamples: 100, ConfidenceLevel: 0.95, Seed: 1}.Run([]float64{0.01}, 252)
	require.NoError(t, err)

	assert.Equal(t, result.SharpeCI.Lower, result.SharpeCI.Upper)
	assert.InDelta(t, 0.01, result.CumulativeCI.Lower, 1e-12)
	assert.Equal(t, 1.0, result.PValue)
}

func TestBootstrapZeroVarianceSeries(t *testing.T) {
	returns := []float64{0.001, 0.001, 0.001, 0.001}

	result, err := Bootstrap{Resamples: 50, ConfidenceLevel: 0.95, Seed: 1}.Run(returns, 252)
	require.NoError(t, err)

	// Every resample is identical; Sharpe degenerates to zero, p-value to 1.
	assert.Zero(t, result.SharpeCI.Lower)
	assert.Zero(t, result.SharpeCI.Upper)
	assert.Equal(t, 1.0, result.PValue)
}

func TestBootstrapRejectsBadParameters(t *testing.T) {
	_, err := Bootstrap{Resamples: 0, ConfidenceLevel: 0.95}.Run(nil, 252)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = Bootstrap{Resamples: 100, ConfidenceLevel: 1.5}.Run(nil, 252)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
