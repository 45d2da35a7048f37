package eventconsumers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
	"github.com/jiaming2012/delta-hedger/src/eventpubsub"
)

func newMonitoringFixture(t *testing.T) (*OrderMonitoringWorker, *eventmodels.MockBroker) {
	t.Helper()

	eventpubsub.Init()

	broker := eventmodels.NewMockBroker()
	clock := &testClock{now: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)}

	wg := &sync.WaitGroup{}
	worker := NewOrderMonitoringWorker(wg, broker, clock, nil)

	return worker, broker
}

func placedEvent(id uuid.UUID) *eventmodels.HedgeOrderPlacedEvent {
	contract, _ := eventmodels.NewFutureContract(1, "ES", time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC), 1)

	return &eventmodels.HedgeOrderPlacedEvent{
		AccountID:     "acct-1",
		CorrelationID: id,
		Contract:      contract,
		Qty:           -2,
	}
}

func Test_OrderMonitoringWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("tracks a placed order until it turns terminal", func(t *testing.T) {
		worker, broker := newMonitoringFixture(t)
		id := uuid.New()

		worker.OnHedgeOrderPlaced(placedEvent(id))
		assert.Equal(t, 1, worker.PendingCount())

		// broker still reports the order as working
		worker.Poll(ctx)
		assert.Equal(t, 1, worker.PendingCount())

		broker.SetOrderStatus(id, &eventmodels.BrokerOrderStatus{
			CorrelationID: id,
			Status:        "filled",
			FilledQty:     -2,
			AvgFillPrice:  5400.5,
		})

		worker.Poll(ctx)
		assert.Equal(t, 0, worker.PendingCount())
	})

	t.Run("publishes exactly one completion per terminal order", func(t *testing.T) {
		worker, broker := newMonitoringFixture(t)
		id := uuid.New()

		completions := make(chan *eventmodels.OrderCompletionEvent, 2)
		assert.NoError(t, eventpubsub.Subscribe(eventpubsub.OrderCompletionEvent, func(event *eventmodels.OrderCompletionEvent) {
			completions <- event
		}))

		worker.OnHedgeOrderPlaced(placedEvent(id))
		broker.SetOrderStatus(id, &eventmodels.BrokerOrderStatus{
			CorrelationID: id,
			Status:        "filled",
			FilledQty:     -2,
			AvgFillPrice:  5400.5,
		})

		worker.Poll(ctx)
		worker.Poll(ctx)

		select {
		case event := <-completions:
			assert.Equal(t, id, event.CorrelationID)
			assert.Equal(t, -2.0, event.FilledQty)
			assert.False(t, event.HasError())
		case <-time.After(2 * time.Second):
			t.Fatal("no completion event received")
		}

		select {
		case <-completions:
			t.Fatal("received a duplicate completion event")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("rejected orders complete with an error message", func(t *testing.T) {
		worker, broker := newMonitoringFixture(t)
		id := uuid.New()

		completions := make(chan *eventmodels.OrderCompletionEvent, 1)
		assert.NoError(t, eventpubsub.Subscribe(eventpubsub.OrderCompletionEvent, func(event *eventmodels.OrderCompletionEvent) {
			completions <- event
		}))

		msg := "insufficient margin"
		worker.OnHedgeOrderPlaced(placedEvent(id))
		broker.SetOrderStatus(id, &eventmodels.BrokerOrderStatus{
			CorrelationID: id,
			Status:        "rejected",
			ErrorMessage:  &msg,
		})

		worker.Poll(ctx)

		select {
		case event := <-completions:
			assert.True(t, event.HasError())
			assert.Equal(t, msg, *event.ErrorMessage)
		case <-time.After(2 * time.Second):
			t.Fatal("no completion event received")
		}
	})

	t.Run("a duplicate placement event is tracked once", func(t *testing.T) {
		worker, _ := newMonitoringFixture(t)
		id := uuid.New()

		worker.OnHedgeOrderPlaced(placedEvent(id))
		worker.OnHedgeOrderPlaced(placedEvent(id))

		assert.Equal(t, 1, worker.PendingCount())
	})
}
