package latency

import (
	"math/rand"
)

// Sampled draws the delay uniformly from [min, max] bars using a seeded
// generator, so a given seed always reproduces the same fill timing.
type Sampled struct {
	min int
	max int
	rng *rand.Rand
}

// NewSampled creates a sampled latency model.
func NewSampled(minBars, maxBars int, seed int64) Model {
	if minBars < 0 {
		minBars = 0
	}

	if maxBars < minBars {
		maxBars = minBars
	}

	return &Sampled{
		min: minBars,
		max: maxBars,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Sample implements Model.
func (m *Sampled) Sample() int {
	if m.max == m.min {
		return m.min
	}

	return m.min + m.rng.Intn(m.max-m.min+1)
}
