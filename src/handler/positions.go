package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

var positions *eventmodels.PositionsCollection

type PositionDTO struct {
	ContractID int                    `json:"contract_id"`
	Symbol     string                 `json:"symbol"`
	AssetClass eventmodels.AssetClass `json:"asset_class"`
	Strike     float64                `json:"strike,omitempty"`
	OptionType eventmodels.OptionType `json:"option_type,omitempty"`
	Expiration *string                `json:"expiration,omitempty"`
	Qty        float64                `json:"qty"`
	MarkPrice  float64                `json:"mark_price"`
	MarkValue  float64                `json:"mark_value"`
}

func newPositionDTO(p *eventmodels.Position) PositionDTO {
	dto := PositionDTO{
		ContractID: p.Contract.ID,
		Symbol:     p.Contract.Symbol.String(),
		AssetClass: p.Contract.AssetClass,
		Strike:     p.Contract.Strike,
		OptionType: p.Contract.OptionType,
		Qty:        p.Qty(),
		MarkPrice:  p.MarkPrice(),
		MarkValue:  p.MarkValue(),
	}

	if p.Contract.Expiration != nil {
		exp := p.Contract.Expiration.Format("2006-01-02")
		dto.Expiration = &exp
	}

	return dto
}

type GetPositionsResponse struct {
	Positions []PositionDTO `json:"positions"`
}

func SetupHandlers(router *mux.Router, collection *eventmodels.PositionsCollection) {
	positions = collection

	router.HandleFunc("/positions", handlePositions).Methods("GET")
	router.HandleFunc("/greeks", handleGreeks).Methods("GET")
	router.HandleFunc("/greeks/ws", handleGreeksWS)
	router.HandleFunc("/riskcurve", handleRiskCurve).Methods("GET")
}

func handlePositions(w http.ResponseWriter, r *http.Request) {
	response := GetPositionsResponse{
		Positions: make([]PositionDTO, 0, positions.Len()),
	}

	for _, p := range positions.Positions() {
		response.Positions = append(response.Positions, newPositionDTO(p))
	}

	if err := setResponse(response, w); err != nil {
		log.Errorf("handlePositions: %v", err)
	}
}
