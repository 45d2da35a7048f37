package eventmodels

import (
	"time"

	"github.com/google/uuid"
)

// HedgeOrderPlacedEvent announces a freshly submitted hedge order so the
// order monitoring worker can start polling its status.
type HedgeOrderPlacedEvent struct {
	AccountID     string
	CorrelationID uuid.UUID
	Contract      *Contract
	Qty           float64
	PlacedAt      time.Time
}
