package feed

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// CSVSource loads bars and signals from CSV files. It is the boundary to the
// external data and model collaborators: records are validated here once and
// treated as immutable downstream.
type CSVSource struct {
	logger *logger.Logger
}

// NewCSVSource creates a CSV source.
func NewCSVSource(log *logger.Logger) *CSVSource {
	return &CSVSource{
		logger: log,
	}
}

// LoadBars reads an OHLCV CSV file. Sequence defects are logged here but not
// fatal: the harness re-validates each fold's test window, so a corrupt
// stretch fails only the folds that cover it.
func (s *CSVSource) LoadBars(path string) ([]types.Bar, error) {
	csvFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnreadable, err, "failed to open bar file %s", path)
	}
	defer csvFile.Close()

	var bars []types.Bar
	if err := gocsv.UnmarshalFile(csvFile, &bars); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnreadable, err, "failed to unmarshal bar file %s", path)
	}

	if err := ValidateBars(bars); err != nil {
		s.logger.Warn("Bar feed has sequence defects",
			zap.String("path", path),
			zap.Error(err),
		)
	}

	s.logger.Debug("Loaded bars",
		zap.String("path", path),
		zap.Int("count", len(bars)),
	)

	return bars, nil
}

// LoadSignals reads a signal CSV file.
func (s *CSVSource) LoadSignals(path string) ([]types.Signal, error) {
	csvFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnreadable, err, "failed to open signal file %s", path)
	}
	defer csvFile.Close()

	var signals []types.Signal
	if err := gocsv.UnmarshalFile(csvFile, &signals); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnreadable, err, "failed to unmarshal signal file %s", path)
	}

	s.logger.Debug("Loaded signals",
		zap.String("path", path),
		zap.Int("count", len(signals)),
	)

	return signals, nil
}

// FilterRange returns the bars inside [start, end], preserving order.
func FilterRange(bars []types.Bar, start, end time.Time) []types.Bar {
	var filtered []types.Bar

	for _, bar := range bars {
		if (bar.Time.Equal(start) || bar.Time.After(start)) &&
			(bar.Time.Equal(end) || bar.Time.Before(end)) {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// ValidateBars enforces the bar-feed invariant: timestamps strictly
// increasing, no duplicates. Violations are fatal to the consuming fold.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return errors.New(errors.ErrCodeEmptyFeed, "bar feed is empty")
	}

	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Equal(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeDuplicateTimestamp,
				"duplicate bar timestamp at index %d: %s", i, bars[i].Time)
		}

		if bars[i].Time.Before(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicBars,
				"bar feed is not time-ordered at index %d: %s before %s",
				i, bars[i].Time, bars[i-1].Time)
		}
	}

	return nil
}

// CountGaps counts intervals larger than the given timeframe. Gaps are not
// fatal; callers log them as a data-quality figure.
func CountGaps(bars []types.Bar, timeframe time.Duration) int {
	if timeframe <= 0 {
		return 0
	}

	gaps := 0

	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Sub(bars[i-1].Time) > timeframe {
			gaps++
		}
	}

	return gaps
}
