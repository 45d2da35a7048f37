package eventmodels

import "math"

// MispricedPosition is one entry of the ranked list of option positions whose
// market price deviates most from model value.
type MispricedPosition struct {
	Position   *Position   `json:"-"`
	Symbol     StockSymbol `json:"symbol"`
	Strike     float64     `json:"strike"`
	MarkPrice  float64     `json:"mark_price"`
	ModelValue float64     `json:"model_value"`
	Deviation  float64     `json:"deviation"`
}

// Greeks is the aggregate sensitivity snapshot for one underlying's book.
// Recomputed on demand, never persisted.
type Greeks struct {
	Symbol StockSymbol `json:"symbol"`
	Delta  float64     `json:"delta"`
	Charm  float64     `json:"charm"`
	Gamma  float64     `json:"gamma"`
	Theta  float64     `json:"theta"`
	Vega   float64     `json:"vega"`

	Mispriced []MispricedPosition `json:"mispriced,omitempty"`
}

// IsValid reports whether every component is a real number. Hedging on NaN
// greeks is never safe.
func (g *Greeks) IsValid() bool {
	for _, v := range []float64{g.Delta, g.Charm, g.Gamma, g.Theta, g.Vega} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
