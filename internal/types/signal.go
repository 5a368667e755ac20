package types

import "time"

type Direction string

const (
	// DirectionLong tells the simulator to hold a long position
	DirectionLong Direction = "long"
	// DirectionFlat tells the simulator to hold no position
	DirectionFlat Direction = "flat"
	// DirectionShort tells the simulator to hold a short position
	DirectionShort Direction = "short"
)

// Signal is the model's directional opinion for a single bar. The producing
// model is treated as an opaque oracle; one signal per bar timestamp,
// consumed exactly once.
type Signal struct {
	Time       time.Time `csv:"time" yaml:"time" validate:"required"`
	Direction  Direction `csv:"direction" yaml:"direction" validate:"required,oneof=long flat short"`
	Confidence float64   `csv:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
}

// Sign returns the signed exposure implied by the direction: +1 long,
// -1 short, 0 flat.
func (d Direction) Sign() int {
	switch d {
	case DirectionLong:
		return 1
	case DirectionShort:
		return -1
	default:
		return 0
	}
}
