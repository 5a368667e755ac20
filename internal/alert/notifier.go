package alert

import (
	"context"

	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
)

// Notifier delivers risk transitions to an external channel. Delivery is
// best-effort and happens after the run; a failed notification never affects
// the ledger or the report.
type Notifier interface {
	Notify(ctx context.Context, event types.RiskEvent) error
}

// LogNotifier writes each event and its JSON payload to the structured log.
// It is the default sink when no external channel is configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{
		logger: log,
	}
}

// Notify logs the event.
func (n *LogNotifier) Notify(_ context.Context, event types.RiskEvent) error {
	payload, err := event.Payload()
	if err != nil {
		return err
	}

	n.logger.Warn("Risk transition",
		zap.Time("time", event.Time),
		zap.String("transition", string(event.Transition)),
		zap.String("limit", string(event.Limit)),
		zap.String("payload", string(payload)),
	)

	return nil
}

// MultiNotifier fans an event out to every configured notifier. All sinks
// are attempted; the first error is returned.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a fan-out notifier.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
	}
}

// Notify delivers the event to every sink.
func (n *MultiNotifier) Notify(ctx context.Context, event types.RiskEvent) error {
	var firstErr error

	for _, notifier := range n.notifiers {
		if err := notifier.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// NotifyAll sends every event through the notifier, in ledger order.
func NotifyAll(ctx context.Context, notifier Notifier, events []types.RiskEvent) error {
	for _, event := range events {
		if err := notifier.Notify(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
