package eventmodels

import (
	"context"

	"github.com/google/uuid"
)

type IBroker interface {
	PlaceOrder(ctx context.Context, req *PlaceHedgeOrderRequest) (map[string]interface{}, error)
	FetchPositions(ctx context.Context) (map[int]ExternalPosition, error)
	FetchOrderStatus(ctx context.Context, correlationID uuid.UUID) (*BrokerOrderStatus, error)
}

// PlaceHedgeOrderRequest is a market order on an underlying contract. Qty is
// signed: positive buys, negative sells.
type PlaceHedgeOrderRequest struct {
	AccountID     string
	CorrelationID uuid.UUID
	Contract      *Contract
	Qty           float64
	DryRun        bool
}

// BrokerOrderStatus is the broker's view of one working or finished order.
type BrokerOrderStatus struct {
	CorrelationID uuid.UUID
	Status        string
	FilledQty     float64
	AvgFillPrice  float64
	ErrorMessage  *string
}

func (s *BrokerOrderStatus) IsTerminal() bool {
	switch s.Status {
	case "filled", "rejected", "canceled", "expired":
		return true
	}

	return false
}

func (s *BrokerOrderStatus) IsError() bool {
	return s.ErrorMessage != nil || s.Status == "rejected" || s.Status == "expired"
}
