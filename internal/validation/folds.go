package validation

import (
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// FoldPlan slices a bar series into walk-forward folds. All windows are
// half-open index ranges [start, end) and are measured in bars.
type FoldPlan struct {
	// TrainBars is the width of each training window.
	TrainBars int `yaml:"train_bars" json:"train_bars" validate:"gt=0"`
	// TestBars is the width of each test window.
	TestBars int `yaml:"test_bars" json:"test_bars" validate:"gt=0"`
	// StepBars is the offset between consecutive fold starts.
	StepBars int `yaml:"step_bars" json:"step_bars" validate:"gt=0"`
}

// Fold is one walk-forward unit: the model trains on [TrainStart, TrainEnd)
// and is evaluated on the adjacent [TestStart, TestEnd).
type Fold struct {
	Index      int
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// Validate rejects a plan that cannot produce disjoint test windows.
func (p FoldPlan) Validate() error {
	if p.TrainBars <= 0 || p.TestBars <= 0 || p.StepBars <= 0 {
		return errors.Newf(errors.ErrCodeInvalidFoldPlan,
			"fold plan windows must be positive: train=%d test=%d step=%d",
			p.TrainBars, p.TestBars, p.StepBars)
	}

	if p.StepBars < p.TestBars {
		return errors.Newf(errors.ErrCodeOverlappingFolds,
			"step of %d bars re-tests %d bars of the previous fold", p.StepBars, p.TestBars-p.StepBars)
	}

	return nil
}

// Plan lays the folds over a series of totalBars bars. At least one full
// train+test window must fit.
func (p FoldPlan) Plan(totalBars int) ([]Fold, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if totalBars < p.TrainBars+p.TestBars {
		return nil, errors.Newf(errors.ErrCodeInvalidFoldPlan,
			"%d bars cannot fit one fold of %d train + %d test bars",
			totalBars, p.TrainBars, p.TestBars)
	}

	var folds []Fold

	for start := 0; start+p.TrainBars+p.TestBars <= totalBars; start += p.StepBars {
		trainEnd := start + p.TrainBars

		folds = append(folds, Fold{
			Index:      len(folds),
			TrainStart: start,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    trainEnd + p.TestBars,
		})
	}

	return folds, nil
}

// Times maps the fold's index windows onto bar timestamps. End times are the
// last bar inside each window.
func (f Fold) Times(bars []types.Bar) (outcome types.FoldOutcome) {
	outcome.Fold = f.Index
	outcome.TrainStart = bars[f.TrainStart].Time
	outcome.TrainEnd = bars[f.TrainEnd-1].Time
	outcome.TestStart = bars[f.TestStart].Time
	outcome.TestEnd = bars[f.TestEnd-1].Time

	return outcome
}
