package eventmodels

// RiskCurvePoint is one (price, projected P&L) sample.
type RiskCurvePoint struct {
	Price float64 `json:"price"`
	PL    float64 `json:"pl"`
}

// RiskCurve is an ordered set of projected P&L samples with running min/max.
// Append-only during construction; a new request builds a fresh curve.
type RiskCurve struct {
	Points []RiskCurvePoint `json:"points"`
	MinPL  float64          `json:"min_pl"`
	MaxPL  float64          `json:"max_pl"`
}

func (rc *RiskCurve) Append(price, pl float64) {
	if len(rc.Points) == 0 {
		rc.MinPL = pl
		rc.MaxPL = pl
	} else {
		if pl < rc.MinPL {
			rc.MinPL = pl
		}
		if pl > rc.MaxPL {
			rc.MaxPL = pl
		}
	}

	rc.Points = append(rc.Points, RiskCurvePoint{Price: price, PL: pl})
}

func (rc *RiskCurve) Len() int {
	return len(rc.Points)
}

func NewRiskCurve() *RiskCurve {
	return &RiskCurve{
		Points: make([]RiskCurvePoint, 0),
	}
}
