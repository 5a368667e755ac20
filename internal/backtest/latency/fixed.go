package latency

// Fixed delays every order by the same number of bars.
type Fixed struct {
	bars int
}

// NewFixed creates a fixed latency model.
func NewFixed(bars int) Model {
	if bars < 0 {
		bars = 0
	}

	return &Fixed{
		bars: bars,
	}
}

// Sample implements Model.
func (m *Fixed) Sample() int {
	return m.bars
}
