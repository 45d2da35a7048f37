package eventconsumers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
)

// OrderMonitoringWorker polls the broker for every outstanding hedge order
// and publishes exactly one OrderCompletionEvent per order once the broker
// reports a terminal status. With a non-nil db handle each completion is also
// persisted as a HedgeOrderRecord.
type OrderMonitoringWorker struct {
	wg     *sync.WaitGroup
	broker eventmodels.IBroker
	clock  eventmodels.IClock
	db     *gorm.DB

	mu      sync.Mutex
	pending map[uuid.UUID]*eventmodels.HedgeOrderPlacedEvent
}

func (w *OrderMonitoringWorker) OnHedgeOrderPlaced(event *eventmodels.HedgeOrderPlacedEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[event.CorrelationID]; ok {
		log.Warnf("OrderMonitoringWorker.OnHedgeOrderPlaced: duplicate order %s", event.CorrelationID)
		return
	}

	w.pending[event.CorrelationID] = event

	log.Debugf("OrderMonitoringWorker: tracking order %s (%s, qty %.2f)", event.CorrelationID, event.Contract.Symbol, event.Qty)
}

func (w *OrderMonitoringWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.pending)
}

func (w *OrderMonitoringWorker) pendingSnapshot() []*eventmodels.HedgeOrderPlacedEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	orders := make([]*eventmodels.HedgeOrderPlacedEvent, 0, len(w.pending))
	for _, event := range w.pending {
		orders = append(orders, event)
	}

	return orders
}

// Poll checks each tracked order once. Non-terminal orders stay tracked; a
// broker error on a single order does not stop the others.
func (w *OrderMonitoringWorker) Poll(ctx context.Context) {
	for _, placed := range w.pendingSnapshot() {
		status, err := w.broker.FetchOrderStatus(ctx, placed.CorrelationID)
		if err != nil {
			log.Warnf("OrderMonitoringWorker.Poll: order %s: %v", placed.CorrelationID, err)
			continue
		}

		if !status.IsTerminal() {
			continue
		}

		w.mu.Lock()
		delete(w.pending, placed.CorrelationID)
		w.mu.Unlock()

		completion := &eventmodels.OrderCompletionEvent{
			AccountID:     placed.AccountID,
			CorrelationID: placed.CorrelationID,
			Contract:      placed.Contract,
			FilledQty:     status.FilledQty,
			AvgFillPrice:  status.AvgFillPrice,
		}

		if status.IsError() {
			msg := status.Status
			if status.ErrorMessage != nil {
				msg = *status.ErrorMessage
			}

			completion.ErrorMessage = &msg
		}

		w.persist(completion, placed.Qty)

		eventpubsub.Publish(eventpubsub.OrderCompletionEvent, completion)

		log.Infof("OrderMonitoringWorker: order %s terminal (%s), filled %.2f @ %.2f", placed.CorrelationID, status.Status, status.FilledQty, status.AvgFillPrice)
	}
}

func (w *OrderMonitoringWorker) persist(completion *eventmodels.OrderCompletionEvent, requestedQty float64) {
	if w.db == nil {
		return
	}

	record := eventmodels.NewHedgeOrderRecord(completion, requestedQty, w.clock.Now())

	if result := w.db.Create(record); result.Error != nil {
		log.Errorf("OrderMonitoringWorker.persist: order %s: %v", completion.CorrelationID, result.Error)
	}
}

func (w *OrderMonitoringWorker) Start(ctx context.Context, interval time.Duration) {
	w.wg.Add(1)

	timer := time.NewTicker(interval)

	go func() {
		defer w.wg.Done()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping OrderMonitoringWorker")
				eventpubsub.Unsubscribe(eventpubsub.HedgeOrderPlacedEvent, w.OnHedgeOrderPlaced)
				return
			case <-timer.C:
				w.Poll(ctx)
			}
		}
	}()
}

func NewOrderMonitoringWorker(wg *sync.WaitGroup, broker eventmodels.IBroker, clock eventmodels.IClock, db *gorm.DB) *OrderMonitoringWorker {
	worker := &OrderMonitoringWorker{
		wg:      wg,
		broker:  broker,
		clock:   clock,
		db:      db,
		pending: make(map[uuid.UUID]*eventmodels.HedgeOrderPlacedEvent),
	}

	if err := eventpubsub.Subscribe(eventpubsub.HedgeOrderPlacedEvent, worker.OnHedgeOrderPlaced); err != nil {
		log.Panicf("NewOrderMonitoringWorker: failed to subscribe: %v", err)
	}

	return worker
}
