package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

type RiskCurveRequest struct {
	Symbol         string  `schema:"symbol,required"`
	LookaheadDays  float64 `schema:"lookahead_days"`
	MinPrice       float64 `schema:"min_price,required"`
	MidPrice       float64 `schema:"mid_price,required"`
	MaxPrice       float64 `schema:"max_price,required"`
	PriceIncrement float64 `schema:"price_increment,required"`
}

func (req *RiskCurveRequest) Validate() error {
	if req.LookaheadDays < 0 {
		return fmt.Errorf("lookahead_days must be non-negative, got %.2f", req.LookaheadDays)
	}

	if req.MidPrice <= 0 {
		return fmt.Errorf("mid_price must be positive, got %.2f", req.MidPrice)
	}

	return nil
}

func handleRiskCurve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setErrorResponse("handleRiskCurve: failed to parse query", 400, err, w)
		return
	}

	req := new(RiskCurveRequest)
	if err := schema.NewDecoder().Decode(req, r.Form); err != nil {
		setErrorResponse("handleRiskCurve: failed to decode query", 400, err, w)
		return
	}

	if err := req.Validate(); err != nil {
		setErrorResponse("handleRiskCurve: invalid request", 400, err, w)
		return
	}

	lookahead := time.Duration(req.LookaheadDays * 24 * float64(time.Hour))

	curve, err := positions.CalculateRiskCurve(eventmodels.StockSymbol(req.Symbol), lookahead, req.MinPrice, req.MidPrice, req.MaxPrice, req.PriceIncrement)
	if err != nil {
		setErrorResponse("handleRiskCurve: failed to build curve", 400, err, w)
		return
	}

	if err := setResponse(curve, w); err != nil {
		log.Errorf("handleRiskCurve: %v", err)
	}
}
