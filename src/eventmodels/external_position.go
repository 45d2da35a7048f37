package eventmodels

import "time"

// ExternalPosition is one entry of a broker account snapshot. It carries
// enough contract identity to materialize a Position the first time a
// contract id is seen.
type ExternalPosition struct {
	ContractID   int         `json:"contract_id"`
	Symbol       StockSymbol `json:"symbol"`
	AssetClass   AssetClass  `json:"asset_class"`
	OptionType   OptionType  `json:"option_type,omitempty"`
	Strike       float64     `json:"strike,omitempty"`
	Expiration   *time.Time  `json:"expiration,omitempty"`
	Multiplier   float64     `json:"multiplier"`
	UnderlyingID *int        `json:"underlying_id,omitempty"`
	Qty          float64     `json:"qty"`
	MarkPrice    float64     `json:"mark_price"`
	MarkValue    float64     `json:"mark_value"`
}
