package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
)

type recordingNotifier struct {
	events []types.RiskEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event types.RiskEvent) error {
	r.events = append(r.events, event)

	return r.err
}

func haltEvent() types.RiskEvent {
	return types.RiskEvent{
		Time:            time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		Transition:      types.RiskTransitionHalt,
		Limit:           types.LimitTypeDailyLoss,
		EquityAtTrigger: decimal.NewFromInt(98900),
	}
}

func TestRiskEventPayload(t *testing.T) {
	payload, err := haltEvent().Payload()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "halt", decoded["transition"])
	assert.Equal(t, "daily_loss", decoded["limitType"])
	assert.Contains(t, decoded, "timestamp")
	assert.Contains(t, decoded, "equityAtTrigger")
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(logger.NewNopLogger())
	require.NoError(t, notifier.Notify(context.Background(), haltEvent()))
}

func TestMultiNotifierFansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}

	multi := NewMultiNotifier(first, second)
	require.NoError(t, multi.Notify(context.Background(), haltEvent()))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestMultiNotifierAttemptsAllSinks(t *testing.T) {
	failing := &recordingNotifier{err: fmt.Errorf("channel down")}
	healthy := &recordingNotifier{}

	multi := NewMultiNotifier(failing, healthy)
	err := multi.Notify(context.Background(), haltEvent())

	require.Error(t, err)
	assert.Len(t, healthy.events, 1, "a failing sink must not block the others")
}

func TestNotifyAllPreservesOrder(t *testing.T) {
	sink := &recordingNotifier{}

	events := []types.RiskEvent{haltEvent(), {
		Time:       time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		Transition: types.RiskTransitionResume,
		Limit:      types.LimitTypeSessionReset,
	}}

	require.NoError(t, NotifyAll(context.Background(), sink, events))
	require.Len(t, sink.events, 2)
	assert.Equal(t, types.RiskTransitionHalt, sink.events[0].Transition)
	assert.Equal(t, types.RiskTransitionResume, sink.events[1].Transition)
}
