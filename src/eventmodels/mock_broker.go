package eventmodels

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockBroker records placed orders and serves canned snapshots for tests.
type MockBroker struct {
	mu        sync.Mutex
	requests  []*PlaceHedgeOrderRequest
	positions map[int]ExternalPosition
	statuses  map[uuid.UUID]*BrokerOrderStatus
}

func (b *MockBroker) PlaceOrder(ctx context.Context, req *PlaceHedgeOrderRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)

	resp := map[string]interface{}{
		"order": map[string]interface{}{
			"id":  float64(len(b.requests)),
			"tag": req.CorrelationID.String(),
		},
	}

	return resp, nil
}

func (b *MockBroker) FetchPositions(ctx context.Context) (map[int]ExternalPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[int]ExternalPosition, len(b.positions))
	for id, ext := range b.positions {
		out[id] = ext
	}

	return out, nil
}

func (b *MockBroker) FetchOrderStatus(ctx context.Context, correlationID uuid.UUID) (*BrokerOrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if status, ok := b.statuses[correlationID]; ok {
		return status, nil
	}

	return &BrokerOrderStatus{CorrelationID: correlationID, Status: "pending"}, nil
}

func (b *MockBroker) SetPositions(positions map[int]ExternalPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.positions = positions
}

func (b *MockBroker) SetOrderStatus(correlationID uuid.UUID, status *BrokerOrderStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.statuses[correlationID] = status
}

func (b *MockBroker) Requests() []*PlaceHedgeOrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*PlaceHedgeOrderRequest, len(b.requests))
	copy(out, b.requests)

	return out
}

func NewMockBroker() *MockBroker {
	return &MockBroker{
		requests:  make([]*PlaceHedgeOrderRequest, 0),
		positions: make(map[int]ExternalPosition),
		statuses:  make(map[uuid.UUID]*BrokerOrderStatus),
	}
}
