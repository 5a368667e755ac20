package backtest

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/backtest/latency"
	"github.com/fxlab-research/fxlab/internal/backtest/slippage"
	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// pendingOrder is an order waiting out its latency. executeAt is the bar
// index at which it fills.
type pendingOrder struct {
	order     types.Order
	executeAt int
}

// Simulator converts a signal stream into fills, bar by bar. It owns its
// ledger, position, and risk engine exclusively; the chain within one run is
// strictly sequential. Direction flips are always modeled as two legs:
// close the open position first, then open the new one. Both legs share one
// latency sample and execute at the same bar.
type Simulator struct {
	config   Config
	logger   *logger.Logger
	slippage slippage.Model
	latency  latency.Model
	risk     *RiskEngine
	ledger   *Ledger

	initialCapital decimal.Decimal
	orderSize      decimal.Decimal

	position types.Position
	realized decimal.Decimal
	intended types.Direction
	pending  []pendingOrder
	orders   []types.Order
	rejected int
	barIndex int
	equity   []types.EquityPoint
}

// RunResult is the complete outcome of one simulation run.
type RunResult struct {
	Ledger         *Ledger
	EquityCurve    []types.EquityPoint
	Orders         []types.Order
	RejectedOrders int
	FinalPosition  types.Position
	RealizedPnL    decimal.Decimal
	FinalEquity    decimal.Decimal
}

// NewSimulator builds a simulator from a validated config.
func NewSimulator(config Config, log *logger.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	slippageModel, err := slippage.GetModel(config.Slippage)
	if err != nil {
		return nil, err
	}

	latencyModel, err := latency.GetModel(config.Latency)
	if err != nil {
		return nil, err
	}

	initialCapital := decimal.NewFromFloat(config.InitialCapital)

	return &Simulator{
		config:         config,
		logger:         log,
		slippage:       slippageModel,
		latency:        latencyModel,
		risk: NewRiskEngine(initialCapital, RiskLimits{
			DailyLossFraction:        config.DailyLossLimit,
			TrailingDrawdownFraction: config.TrailingDrawdownLimit,
		}),
		ledger:         NewLedger(config.Symbol),
		initialCapital: initialCapital,
		orderSize:      decimal.NewFromFloat(config.OrderSize),
		position:       types.Position{Symbol: config.Symbol},
		realized:       decimal.Zero,
		intended:       types.DirectionFlat,
		barIndex:       -1,
	}, nil
}

// Ledger returns the ledger owned by this simulator.
func (s *Simulator) Ledger() *Ledger {
	return s.ledger
}

// Run drives the simulator over an aligned bar/signal stream.
func (s *Simulator) Run(bars []types.Bar, signals []types.Signal) (*RunResult, error) {
	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyFeed, "cannot run simulation over an empty bar feed")
	}

	if len(bars) != len(signals) {
		return nil, errors.Newf(errors.ErrCodeSignalAlignment,
			"bar/signal length mismatch: %d bars, %d signals", len(bars), len(signals))
	}

	for i := range bars {
		if _, err := s.Step(bars[i], signals[i]); err != nil {
			return nil, err
		}
	}

	return &RunResult{
		Ledger:         s.ledger,
		EquityCurve:    s.equity,
		Orders:         s.orders,
		RejectedOrders: s.rejected,
		FinalPosition:  s.position,
		RealizedPnL:    s.realized,
		FinalEquity:    s.currentEquity(bars[len(bars)-1].Close),
	}, nil
}

// Step consumes one bar and its signal. It may return zero, one, or two
// fills (close leg then open leg of a flip). Fill prices depend only on the
// current bar; delayed orders fill at the close of a later bar, never an
// earlier one.
func (s *Simulator) Step(bar types.Bar, signal types.Signal) (optional.Option[[]types.Fill], error) {
	s.barIndex++

	// A direction change creates orders unless the session is halted;
	// a halted session accepts no orders at all.
	if !s.risk.Halted() {
		s.enqueueTransition(bar, signal.Direction)
	}

	fills, err := s.executeMatured(bar)
	if err != nil {
		return optional.None[[]types.Fill](), err
	}

	point := types.EquityPoint{
		Time:          bar.Time,
		RealizedPnL:   s.realized,
		UnrealizedPnL: s.position.UnrealizedPnL(bar.Close),
		Equity:        s.currentEquity(bar.Close),
	}
	s.equity = append(s.equity, point)

	decision, events := s.risk.Evaluate(point)

	freshHalt := false

	for _, event := range events {
		if err := s.ledger.AppendRiskEvent(event); err != nil {
			return optional.None[[]types.Fill](), err
		}

		if event.Transition == types.RiskTransitionHalt {
			freshHalt = true
		}
	}

	if decision == types.RiskDecisionHalt && freshHalt && s.config.FlattenOnHalt && !s.position.IsFlat() {
		flattenFill, err := s.forceFlatten(bar)
		if err != nil {
			return optional.None[[]types.Fill](), err
		}

		fills = append(fills, flattenFill)
	}

	if len(fills) == 0 {
		return optional.None[[]types.Fill](), nil
	}

	return optional.Some(fills), nil
}

// enqueueTransition turns a direction change into one or two leg orders.
func (s *Simulator) enqueueTransition(bar types.Bar, desired types.Direction) {
	if desired == s.intended {
		return
	}

	delay := s.latency.Sample()
	executeAt := s.barIndex + delay

	current := s.intended.Sign()
	want := desired.Sign()

	if current != 0 {
		reason := types.OrderReasonCloseLong
		side := types.SideSell

		if current < 0 {
			reason = types.OrderReasonCloseShort
			side = types.SideBuy
		}

		s.enqueueOrder(bar, side, reason, executeAt)
	}

	if want != 0 {
		reason := types.OrderReasonOpenLong
		side := types.SideBuy

		if want < 0 {
			reason = types.OrderReasonOpenShort
			side = types.SideSell
		}

		s.enqueueOrder(bar, side, reason, executeAt)
	}

	s.intended = desired
}

func (s *Simulator) enqueueOrder(bar types.Bar, side types.Side, reason string, executeAt int) {
	order := types.Order{
		ID:          uuid.New().String(),
		Symbol:      s.config.Symbol,
		Side:        side,
		Size:        s.orderSize,
		RequestedAt: bar.Time,
		Status:      types.OrderStatusRequested,
		Reason:      reason,
	}

	s.pending = append(s.pending, pendingOrder{order: order, executeAt: executeAt})
}

// executeMatured fills every pending order whose latency has elapsed.
// Orders maturing while the session is halted are rejected, not filled.
func (s *Simulator) executeMatured(bar types.Bar) ([]types.Fill, error) {
	var fills []types.Fill

	remaining := s.pending[:0]

	for _, p := range s.pending {
		if p.executeAt > s.barIndex {
			remaining = append(remaining, p)

			continue
		}

		if s.risk.Halted() {
			p.order.Status = types.OrderStatusRejected
			s.orders = append(s.orders, p.order)
			s.rejected++

			s.logger.Debug("Order rejected: session halted",
				zap.String("order_id", p.order.ID),
				zap.String("reason", p.order.Reason),
			)

			continue
		}

		fill, err := s.fillOrder(p.order, bar)
		if err != nil {
			return nil, err
		}

		fills = append(fills, fill)
	}

	s.pending = remaining

	return fills, nil
}

func (s *Simulator) fillOrder(order types.Order, bar types.Bar) (types.Fill, error) {
	if !order.Size.IsPositive() {
		return types.Fill{}, errors.Newf(errors.ErrCodeInvalidOrder,
			"order %s has non-positive size %s", order.ID, order.Size)
	}

	price := s.slippage.Apply(bar, order.Side)

	fill := types.Fill{
		OrderID:    order.ID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Size:       order.Size,
		Price:      price,
		ExecutedAt: bar.Time,
		Reason:     order.Reason,
	}

	if err := s.ledger.AppendFill(fill); err != nil {
		return types.Fill{}, err
	}

	s.realized = s.realized.Add(s.position.ApplyFill(fill))

	order.Status = types.OrderStatusFilled
	s.orders = append(s.orders, order)

	return fill, nil
}

// forceFlatten closes the open position at the breaching bar's close. The
// flatten leg bypasses latency: the halt and the flatten are one atomic
// risk action.
func (s *Simulator) forceFlatten(bar types.Bar) (types.Fill, error) {
	side := types.SideSell
	if s.position.NetSize.IsNegative() {
		side = types.SideBuy
	}

	order := types.Order{
		ID:          uuid.New().String(),
		Symbol:      s.config.Symbol,
		Side:        side,
		Size:        s.position.NetSize.Abs(),
		RequestedAt: bar.Time,
		Status:      types.OrderStatusRequested,
		Reason:      types.OrderReasonFlatten,
	}

	// Cancel in-flight orders; a halted session accepts nothing.
	for _, p := range s.pending {
		p.order.Status = types.OrderStatusRejected
		s.orders = append(s.orders, p.order)
		s.rejected++
	}

	s.pending = s.pending[:0]
	s.intended = types.DirectionFlat

	return s.fillOrder(order, bar)
}

func (s *Simulator) currentEquity(markPrice decimal.Decimal) decimal.Decimal {
	return s.initialCapital.Add(s.realized).Add(s.position.UnrealizedPnL(markPrice))
}
