package eventmodels

import "github.com/google/uuid"

// OrderCompletionEvent is raised once per hedge order when the broker reports
// a terminal status. A nil ErrorMessage means the order filled.
type OrderCompletionEvent struct {
	AccountID     string
	CorrelationID uuid.UUID
	Contract      *Contract
	FilledQty     float64
	AvgFillPrice  float64
	ErrorMessage  *string
}

func (e *OrderCompletionEvent) HasError() bool {
	return e.ErrorMessage != nil
}
