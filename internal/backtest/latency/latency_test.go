package latency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab-research/fxlab/pkg/errors"
)

func TestFixedLatency(t *testing.T) {
	model := NewFixed(2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 2, model.Sample())
	}
}

func TestFixedLatencyNegativeClamped(t *testing.T) {
	model := NewFixed(-1)
	assert.Equal(t, 0, model.Sample())
}

func TestSampledLatencyBounds(t *testing.T) {
	model := NewSampled(1, 3, 42)
	for i := 0; i < 100; i++ {
		delay := model.Sample()
		assert.GreaterOrEqual(t, delay, 1)
		assert.LessOrEqual(t, delay, 3)
	}
}

func TestSampledLatencyDeterministic(t *testing.T) {
	a := NewSampled(0, 5, 7)
	b := NewSampled(0, 5, 7)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Sample(), b.Sample())
	}
}

func TestGetModel(t *testing.T) {
	model, err := GetModel(Config{Kind: KindFixed, Bars: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, model.Sample())

	_, err = GetModel(Config{Kind: KindSampled, MinBars: 2, MaxBars: 1})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidLatencyModel))

	_, err = GetModel(Config{Kind: "poisson"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidLatencyModel))
}
