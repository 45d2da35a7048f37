package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/delta-hedger/src/eventmodels"
)

// TradierBroker is the REST broker adapter. Orders carry the hedge
// correlation id as the broker-side tag so completions can be matched back.
type TradierBroker struct {
	ordersURL    string
	positionsURL string
	tradesToken  string
	accountToken string
}

func (b *TradierBroker) PlaceOrder(ctx context.Context, req *eventmodels.PlaceHedgeOrderRequest) (map[string]interface{}, error) {
	if req.Qty == 0 {
		return nil, fmt.Errorf("TradierBroker.PlaceOrder: quantity must be non-zero")
	}

	side := "buy"
	if req.Qty < 0 {
		side = "sell"
	}

	quantity := int(math.Abs(req.Qty))

	client := http.Client{
		Timeout: 10 * time.Second,
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.ordersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.PlaceOrder: failed to create request: %w", err)
	}

	q := httpReq.URL.Query()
	q.Add("class", "equity")
	q.Add("type", "market")
	q.Add("duration", "day")
	q.Add("symbol", req.Contract.Symbol.String())
	q.Add("quantity", strconv.Itoa(quantity))
	q.Add("side", side)
	q.Add("tag", req.CorrelationID.String())

	if req.DryRun {
		q.Add("preview", "true")
	}

	httpReq.URL.RawQuery = q.Encode()
	httpReq.Header.Add("Accept", "application/json")
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", b.tradesToken))

	log.Infof("TradierBroker.PlaceOrder: placing hedge order: %s %d %s", side, quantity, req.Contract.Symbol)

	res, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.PlaceOrder: failed to place order: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBytes, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return nil, fmt.Errorf("TradierBroker.PlaceOrder: failed to read response body: %w", readErr)
		}

		return nil, fmt.Errorf("TradierBroker.PlaceOrder: %s, http code %v", string(errBytes), res.Status)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("TradierBroker.PlaceOrder: failed to decode response: %w", err)
	}

	if e, found := response["errors"]; found {
		return nil, fmt.Errorf("TradierBroker.PlaceOrder: broker rejected order: %v", e)
	}

	return response, nil
}

type tradierPositionDTO struct {
	ContractID   int     `json:"contract_id"`
	Symbol       string  `json:"symbol"`
	AssetClass   string  `json:"asset_class"`
	OptionType   string  `json:"option_type,omitempty"`
	Strike       float64 `json:"strike,omitempty"`
	Expiration   string  `json:"expiration,omitempty"`
	Multiplier   float64 `json:"multiplier"`
	Quantity     float64 `json:"quantity"`
	LastPrice    float64 `json:"last_price"`
	MarketValue  float64 `json:"market_value"`
	UnderlyingID *int    `json:"underlying_id,omitempty"`
}

func (dto *tradierPositionDTO) ToModel() (eventmodels.ExternalPosition, error) {
	ext := eventmodels.ExternalPosition{
		ContractID:   dto.ContractID,
		Symbol:       eventmodels.NewStockSymbol(dto.Symbol),
		AssetClass:   eventmodels.AssetClass(dto.AssetClass),
		OptionType:   eventmodels.OptionType(dto.OptionType),
		Strike:       dto.Strike,
		Multiplier:   dto.Multiplier,
		UnderlyingID: dto.UnderlyingID,
		Qty:          dto.Quantity,
		MarkPrice:    dto.LastPrice,
		MarkValue:    dto.MarketValue,
	}

	if err := ext.AssetClass.Validate(); err != nil {
		return eventmodels.ExternalPosition{}, fmt.Errorf("tradierPositionDTO.ToModel: %w", err)
	}

	if dto.Expiration != "" {
		expiration, err := time.Parse("2006-01-02", dto.Expiration)
		if err != nil {
			return eventmodels.ExternalPosition{}, fmt.Errorf("tradierPositionDTO.ToModel: failed to parse expiration: %w", err)
		}
		ext.Expiration = &expiration
	}

	return ext, nil
}

func (b *TradierBroker) FetchPositions(ctx context.Context) (map[int]eventmodels.ExternalPosition, error) {
	client := http.Client{
		Timeout: 10 * time.Second,
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.positionsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchPositions: failed to create request: %w", err)
	}

	httpReq.Header.Add("Accept", "application/json")
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", b.accountToken))

	res, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchPositions: failed to fetch positions: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TradierBroker.FetchPositions: invalid status code: %s", res.Status)
	}

	var payload struct {
		Positions []tradierPositionDTO `json:"positions"`
	}

	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchPositions: failed to decode response: %w", err)
	}

	snapshot := make(map[int]eventmodels.ExternalPosition, len(payload.Positions))
	for _, dto := range payload.Positions {
		ext, err := dto.ToModel()
		if err != nil {
			return nil, fmt.Errorf("TradierBroker.FetchPositions: %w", err)
		}

		snapshot[ext.ContractID] = ext
	}

	return snapshot, nil
}

func (b *TradierBroker) FetchOrderStatus(ctx context.Context, correlationID uuid.UUID) (*eventmodels.BrokerOrderStatus, error) {
	client := http.Client{
		Timeout: 10 * time.Second,
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.ordersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchOrderStatus: failed to create request: %w", err)
	}

	q := httpReq.URL.Query()
	q.Add("tag", correlationID.String())
	httpReq.URL.RawQuery = q.Encode()

	httpReq.Header.Add("Accept", "application/json")
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", b.accountToken))

	res, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchOrderStatus: failed to fetch order: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TradierBroker.FetchOrderStatus: invalid status code: %s", res.Status)
	}

	var payload struct {
		Order struct {
			Status       string  `json:"status"`
			FilledQty    float64 `json:"exec_quantity"`
			AvgFillPrice float64 `json:"avg_fill_price"`
			ReasonDesc   *string `json:"reason_description,omitempty"`
		} `json:"order"`
	}

	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("TradierBroker.FetchOrderStatus: failed to decode response: %w", err)
	}

	return &eventmodels.BrokerOrderStatus{
		CorrelationID: correlationID,
		Status:        payload.Order.Status,
		FilledQty:     payload.Order.FilledQty,
		AvgFillPrice:  payload.Order.AvgFillPrice,
		ErrorMessage:  payload.Order.ReasonDesc,
	}, nil
}

func NewTradierBroker(ordersURL, positionsURL, accountToken, tradesToken string) *TradierBroker {
	return &TradierBroker{
		ordersURL:    ordersURL,
		positionsURL: positionsURL,
		accountToken: accountToken,
		tradesToken:  tradesToken,
	}
}
