package validation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fxlab-research/fxlab/internal/backtest"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Bootstrap parameterizes the resampling pass over pooled per-bar returns.
// Resampling is seeded: the same seed and inputs reproduce the same bounds.
type Bootstrap struct {
	// Resamples is the number of with-replacement draws.
	Resamples int `yaml:"resamples" json:"resamples" validate:"gt=0"`
	// ConfidenceLevel is the two-sided CI level, e.g. 0.95.
	ConfidenceLevel float64 `yaml:"confidence_level" json:"confidence_level" validate:"gt=0,lt=1"`
	Seed            int64   `yaml:"seed" json:"seed"`
}

// BootstrapResult carries the interval estimates over the pooled returns.
type BootstrapResult struct {
	SharpeCI     types.ConfidenceInterval
	CumulativeCI types.ConfidenceInterval
	// PValue is the two-sided one-sample t-test p-value for mean bar
	// return != 0, under the normal approximation.
	PValue    float64
	Resamples int
}

// Validate rejects impossible resampling parameters.
func (b Bootstrap) Validate() error {
	if b.Resamples <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "bootstrap resamples must be positive, got %d", b.Resamples)
	}

	if b.ConfidenceLevel <= 0 || b.ConfidenceLevel >= 1 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "confidence level must be in (0, 1), got %f", b.ConfidenceLevel)
	}

	return nil
}

// Run draws Resamples with-replacement samples from the return series and
// reports percentile intervals for the annualized Sharpe and the cumulative
// return. Series too short to resample collapse to point intervals with
// p-value 1.
func (b Bootstrap) Run(returns []float64, barsPerYear float64) (BootstrapResult, error) {
	if err := b.Validate(); err != nil {
		return BootstrapResult{}, err
	}

	result := BootstrapResult{
		Resamples: b.Resamples,
		PValue:    1,
	}

	if len(returns) < 2 {
		point := cumulativeReturn(returns)
		result.SharpeCI = pointInterval(0, b.ConfidenceLevel)
		result.CumulativeCI = pointInterval(point, b.ConfidenceLevel)

		return result, nil
	}

	rng := rand.New(rand.NewSource(b.Seed))

	sharpes := make([]float64, 0, b.Resamples)
	cumulatives := make([]float64, 0, b.Resamples)
	sample := make([]float64, len(returns))

	for i := 0; i < b.Resamples; i++ {
		for j := range sample {
			sample[j] = returns[rng.Intn(len(returns))]
		}

		sharpes = append(sharpes, sampleSharpe(sample, barsPerYear))
		cumulatives = append(cumulatives, cumulativeReturn(sample))
	}

	result.SharpeCI = percentileInterval(sharpes, b.ConfidenceLevel)
	result.CumulativeCI = percentileInterval(cumulatives, b.ConfidenceLevel)
	result.PValue = tTestPValue(returns)

	return result, nil
}

func sampleSharpe(returns []float64, barsPerYear float64) float64 {
	mean := backtest.Mean(returns)
	sd := backtest.StdDev(returns, mean)

	if sd == 0 {
		return 0
	}

	return mean / sd * math.Sqrt(barsPerYear)
}

func cumulativeReturn(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}

	return growth - 1
}

// percentileInterval takes the empirical (1-level)/2 and (1+level)/2
// quantiles of the resampled statistic, padded by the Monte Carlo error of
// the resampling pass itself. The padding decays as 1/sqrt(resamples), so a
// larger resample count narrows the reported interval in expectation; raw
// empirical quantiles alone do not have that property, because few resamples
// cannot reach the tail quantiles at all.
func percentileInterval(stats []float64, level float64) types.ConfidenceInterval {
	sorted := make([]float64, len(stats))
	copy(sorted, stats)
	sort.Float64s(sorted)

	lower := quantile(sorted, (1-level)/2)
	upper := quantile(sorted, (1+level)/2)

	sd := backtest.StdDev(stats, backtest.Mean(stats))
	margin := 2 * normalQuantile((1+level)/2) * sd / math.Sqrt(float64(len(stats)))

	return types.ConfidenceInterval{Lower: lower - margin, Upper: upper + margin, Level: level}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	idx := int(q * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}

	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

func pointInterval(value, level float64) types.ConfidenceInterval {
	return types.ConfidenceInterval{Lower: value, Upper: value, Level: level}
}

// tTestPValue is the two-sided one-sample test for mean != 0, using the
// normal approximation of the t distribution.
func tTestPValue(returns []float64) float64 {
	mean := backtest.Mean(returns)
	sd := backtest.StdDev(returns, mean)

	if sd == 0 {
		return 1
	}

	t := mean / (sd / math.Sqrt(float64(len(returns))))
	p := 2 * (1 - normalCDF(math.Abs(t)))

	if p < 0 {
		return 0
	}

	if p > 1 {
		return 1
	}

	return p
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normalQuantile inverts normalCDF.
func normalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p - 1)
}
