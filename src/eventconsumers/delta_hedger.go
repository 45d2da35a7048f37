package eventconsumers

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
	"github.com/jiaming2012/delta-hedger/src/utils"
)

const (
	// HedgeBuffer is subtracted toward zero from the aggregate delta before
	// rounding, so a position hovering just over a whole contract does not
	// flip-flop.
	HedgeBuffer = 0.20

	// HedgeCooldown applies after every order completion, success or failure,
	// to avoid retry storms against a possibly-failing venue.
	HedgeCooldown = 5 * time.Minute
)

// DeltaHedger keeps one underlying's net delta inside its configured band.
// Hedge is designed to be fired from a timer: overlapping invocations are
// coalesced into a skip by a non-blocking single-flight gate.
type DeltaHedger struct {
	wg             *sync.WaitGroup
	accountID      string
	underlying     *eventmodels.UnderlyingPosition
	positions      *eventmodels.PositionsCollection
	config         *eventmodels.HedgeConfig
	broker         eventmodels.IBroker
	clock          eventmodels.IClock
	marketCalendar eventmodels.MarketCalendar
	dispatcher     *CompletionDispatcher

	gate     sync.Mutex
	disposed atomic.Bool

	stateMu          sync.Mutex
	inFlightOrderID  *uuid.UUID
	nextEligibleTime time.Time
	lastRequestedQty float64
}

// computeHedgeQty converts an aggregate delta into a signed hedge size: the
// buffer-adjusted delta, rounded, negated.
func computeHedgeQty(delta float64) float64 {
	buffered := delta
	if delta > 0 {
		buffered = delta - HedgeBuffer
	} else if delta < 0 {
		buffered = delta + HedgeBuffer
	}

	return -math.Round(buffered)
}

// Hedge runs one decision cycle. Calling it on a disposed hedger is a
// programming error and panics.
func (h *DeltaHedger) Hedge(ctx context.Context) error {
	if h.disposed.Load() {
		panic(fmt.Sprintf("DeltaHedger.Hedge: %s: called after Dispose", h.underlying.Symbol))
	}

	if !h.gate.TryLock() {
		log.Debugf("DeltaHedger.Hedge: %s: previous cycle still in flight, skipping", h.underlying.Symbol)
		return nil
	}

	defer h.gate.Unlock()

	return h.hedgeLocked(ctx)
}

// hedgeLocked runs the decision cycle. Callers hold the gate; Dispose may
// have completed between the entry check and the gate acquisition, so the
// disposed flag is checked again here.
func (h *DeltaHedger) hedgeLocked(ctx context.Context) error {
	if h.disposed.Load() {
		log.Debugf("DeltaHedger.Hedge: %s: disposed while acquiring the gate, skipping", h.underlying.Symbol)
		return nil
	}

	// anchor the book's greeks on this hedger's underlying
	if sel := h.positions.SelectedPosition(); sel == nil || sel.Contract.Symbol != h.underlying.Symbol {
		for _, entry := range h.positions.Underlyings() {
			if entry.Contract.Symbol == h.underlying.Symbol {
				h.positions.SetSelectedPosition(entry)
				break
			}
		}
	}

	greeks := h.positions.CalculateGreeks()
	if greeks.Symbol != h.underlying.Symbol || !greeks.IsValid() {
		log.Warnf("DeltaHedger.Hedge: %s: greeks unavailable or invalid, skipping cycle", h.underlying.Symbol)
		return nil
	}

	front := h.underlying.FrontContract()
	if front == nil {
		log.Warnf("DeltaHedger.Hedge: %s: no front contract resolved, skipping cycle", h.underlying.Symbol)
		return nil
	}

	now := h.clock.Now()

	h.stateMu.Lock()
	inFlight := h.inFlightOrderID
	nextEligible := h.nextEligibleTime
	h.stateMu.Unlock()

	if inFlight != nil {
		log.Debugf("DeltaHedger.Hedge: %s: order %s still in flight, skipping cycle", h.underlying.Symbol, inFlight)
		return nil
	}

	if now.Before(nextEligible) {
		log.Debugf("DeltaHedger.Hedge: %s: cooling down until %s, skipping cycle", h.underlying.Symbol, nextEligible.Format(time.RFC3339))
		return nil
	}

	if !h.marketCalendar.IsMarketOpen(now) {
		log.Debugf("DeltaHedger.Hedge: %s: market closed, skipping cycle", h.underlying.Symbol)
		return nil
	}

	if h.config.InBlackout(now) {
		log.Debugf("DeltaHedger.Hedge: %s: inside blackout window, skipping cycle", h.underlying.Symbol)
		return nil
	}

	qty := computeHedgeQty(greeks.Delta)

	if math.Abs(qty) < h.config.DeltaThreshold {
		log.Debugf("DeltaHedger.Hedge: %s: delta %.4f within band, no hedge needed", h.underlying.Symbol, greeks.Delta)
		return nil
	}

	if math.Abs(qty) < h.config.MinAdjustment {
		log.Debugf("DeltaHedger.Hedge: %s: adjustment %.0f below minimum %.0f, skipping", h.underlying.Symbol, qty, h.config.MinAdjustment)
		return nil
	}

	correlationID := uuid.New()

	h.stateMu.Lock()
	h.inFlightOrderID = &correlationID
	h.lastRequestedQty = qty
	h.stateMu.Unlock()

	req := &eventmodels.PlaceHedgeOrderRequest{
		AccountID:     h.accountID,
		CorrelationID: correlationID,
		Contract:      front,
		Qty:           qty,
		DryRun:        h.config.DryRun,
	}

	if _, err := h.broker.PlaceOrder(ctx, req); err != nil {
		h.stateMu.Lock()
		h.inFlightOrderID = nil
		h.stateMu.Unlock()

		return fmt.Errorf("DeltaHedger.Hedge: %s: failed to place order: %w", h.underlying.Symbol, err)
	}

	log.Infof("DeltaHedger.Hedge: %s: placed hedge order %s for %+.0f x %s (delta %.4f)", h.underlying.Symbol, correlationID, qty, front.Symbol, greeks.Delta)

	eventpubsub.Publish(eventpubsub.HedgeOrderPlacedEvent, &eventmodels.HedgeOrderPlacedEvent{
		AccountID:     h.accountID,
		CorrelationID: correlationID,
		Contract:      front,
		Qty:           qty,
		PlacedAt:      now,
	})

	return nil
}

// OnOrderCompletion is the broker's asynchronous completion callback. Events
// for other accounts or other correlation ids are ignored.
func (h *DeltaHedger) OnOrderCompletion(event *eventmodels.OrderCompletionEvent) {
	if event.AccountID != h.accountID {
		return
	}

	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if h.inFlightOrderID == nil || *h.inFlightOrderID != event.CorrelationID {
		return
	}

	// the cooldown applies whether the order succeeded or failed
	h.nextEligibleTime = h.clock.Now().Add(HedgeCooldown)
	h.inFlightOrderID = nil

	if event.HasError() {
		utils.Alert()
		log.Errorf("DeltaHedger.OnOrderCompletion: %s: hedge order %s failed: %s", h.underlying.Symbol, event.CorrelationID, *event.ErrorMessage)
		return
	}

	if event.FilledQty != h.lastRequestedQty {
		log.Warnf("DeltaHedger.OnOrderCompletion: %s: hedge order %s requested %+.0f but filled %+.0f", h.underlying.Symbol, event.CorrelationID, h.lastRequestedQty, event.FilledQty)
		return
	}

	log.Infof("DeltaHedger.OnOrderCompletion: %s: hedge order %s filled %.0f @ %.2f", h.underlying.Symbol, event.CorrelationID, event.FilledQty, event.AvgFillPrice)
}

// InFlightOrderID returns the correlation id of the working hedge order, if
// any.
func (h *DeltaHedger) InFlightOrderID() *uuid.UUID {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	return h.inFlightOrderID
}

func (h *DeltaHedger) Symbol() eventmodels.StockSymbol {
	return h.underlying.Symbol
}

// Dispose marks the hedger dead, waits for any in-flight Hedge to release
// the gate, and deregisters from the completion dispatcher.
func (h *DeltaHedger) Dispose() {
	if h.disposed.Swap(true) {
		return
	}

	h.gate.Lock()
	h.gate.Unlock()

	h.dispatcher.Deregister(h)

	log.Infof("DeltaHedger.Dispose: %s: disposed", h.underlying.Symbol)
}

// Start fires Hedge on a fixed interval until the context is canceled.
func (h *DeltaHedger) Start(ctx context.Context, interval time.Duration) {
	h.wg.Add(1)

	timer := time.NewTicker(interval)

	go func() {
		defer h.wg.Done()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Infof("stopping DeltaHedger for %s", h.underlying.Symbol)
				return
			case <-timer.C:
				if h.disposed.Load() {
					return
				}

				if err := h.Hedge(ctx); err != nil {
					log.Errorf("DeltaHedger: %s: hedge cycle failed: %v", h.underlying.Symbol, err)
				}
			}
		}
	}()
}

func NewDeltaHedger(wg *sync.WaitGroup, accountID string, underlying *eventmodels.UnderlyingPosition, positions *eventmodels.PositionsCollection, config *eventmodels.HedgeConfig, broker eventmodels.IBroker, clock eventmodels.IClock, marketCalendar eventmodels.MarketCalendar, dispatcher *CompletionDispatcher) (*DeltaHedger, error) {
	if underlying == nil {
		return nil, fmt.Errorf("NewDeltaHedger: underlying is nil")
	}

	if config == nil {
		return nil, fmt.Errorf("NewDeltaHedger: %s: config is nil", underlying.Symbol)
	}

	if dispatcher == nil {
		return nil, fmt.Errorf("NewDeltaHedger: %s: dispatcher is nil", underlying.Symbol)
	}

	h := &DeltaHedger{
		wg:             wg,
		accountID:      accountID,
		underlying:     underlying,
		positions:      positions,
		config:         config,
		broker:         broker,
		clock:          clock,
		marketCalendar: marketCalendar,
		dispatcher:     dispatcher,
	}

	dispatcher.Register(h)

	return h, nil
}
