package feed

import (
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
)

// AlignResult pairs each bar with exactly one signal and records the
// data-quality counters of the alignment.
type AlignResult struct {
	// Signals has the same length and order as the bar slice it was
	// aligned against; bars without a model opinion carry a flat signal.
	Signals []types.Signal
	// Dropped counts signals referencing a timestamp absent from the feed.
	Dropped int
	// Missing counts bars that had no signal and were defaulted to flat.
	Missing int
}

// Align matches signals to bars by timestamp. A signal with no matching bar
// is dropped with a recorded warning, never silently ignored; a bar with no
// signal defaults to flat. Each signal is consumed at most once.
func Align(bars []types.Bar, signals []types.Signal, log *logger.Logger) AlignResult {
	byTime := make(map[int64]types.Signal, len(signals))
	dropped := 0

	barTimes := make(map[int64]struct{}, len(bars))
	for _, bar := range bars {
		barTimes[bar.Time.UnixNano()] = struct{}{}
	}

	for _, sig := range signals {
		key := sig.Time.UnixNano()

		if _, ok := barTimes[key]; !ok {
			dropped++

			log.Warn("Dropping signal with no matching bar",
				zap.Time("signal_time", sig.Time),
				zap.String("direction", string(sig.Direction)),
			)

			continue
		}

		if _, dup := byTime[key]; dup {
			dropped++

			log.Warn("Dropping duplicate signal for bar",
				zap.Time("signal_time", sig.Time),
			)

			continue
		}

		byTime[key] = sig
	}

	aligned := make([]types.Signal, len(bars))
	missing := 0

	for i, bar := range bars {
		if sig, ok := byTime[bar.Time.UnixNano()]; ok {
			aligned[i] = sig

			continue
		}

		missing++
		aligned[i] = types.Signal{
			Time:       bar.Time,
			Direction:  types.DirectionFlat,
			Confidence: 0,
		}
	}

	if dropped > 0 || missing > 0 {
		log.Warn("Signal alignment finished with data-quality events",
			zap.Int("dropped", dropped),
			zap.Int("missing", missing),
		)
	}

	return AlignResult{
		Signals: aligned,
		Dropped: dropped,
		Missing: missing,
	}
}
