package eventmodels

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HedgeOrderRecord is the persisted audit row for one completed hedge order.
type HedgeOrderRecord struct {
	gorm.Model
	AccountID     string    `gorm:"index"`
	CorrelationID uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Symbol        string    `gorm:"index"`
	ContractID    int
	Qty           float64
	FilledQty     float64
	AvgFillPrice  float64
	ErrorMessage  *string
	CompletedAt   time.Time
}

func NewHedgeOrderRecord(e *OrderCompletionEvent, requestedQty float64, completedAt time.Time) *HedgeOrderRecord {
	return &HedgeOrderRecord{
		AccountID:     e.AccountID,
		CorrelationID: e.CorrelationID,
		Symbol:        e.Contract.Symbol.String(),
		ContractID:    e.Contract.ID,
		Qty:           requestedQty,
		FilledQty:     e.FilledQty,
		AvgFillPrice:  e.AvgFillPrice,
		ErrorMessage:  e.ErrorMessage,
		CompletedAt:   completedAt,
	}
}
