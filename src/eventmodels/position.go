package eventmodels

import (
	"fmt"
	"sync"
	"time"

	"github.com/jiaming2012/delta-hedger/src/indicators"
)

const (
	RealizedVolPeriod  = 5 * time.Minute
	RealizedVolSamples = 20
)

// PositionGreeks are the per-unit sensitivities supplied by an external
// pricing feed. They are not computed here.
type PositionGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// Position is a holding of one Contract. The size/mark triplet and the
// observed greeks are guarded by a per-position mutex; the contract itself
// guards its own price.
type Position struct {
	Contract *Contract

	mu        sync.Mutex
	qty       float64
	markPrice float64
	markValue float64
	greeks    PositionGreeks
	hasGreeks bool

	RealizedVol *indicators.RealizedVolatility
}

func (p *Position) Qty() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.qty
}

func (p *Position) MarkPrice() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.markPrice
}

func (p *Position) MarkValue() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.markValue
}

// UpdateFrom applies a broker reconciliation update. The triplet is written
// under one lock so readers never observe a torn update.
func (p *Position) UpdateFrom(ext ExternalPosition) error {
	p.mu.Lock()
	p.qty = ext.Qty
	p.markPrice = ext.MarkPrice
	p.markValue = ext.MarkValue
	p.mu.Unlock()

	if ext.MarkPrice > 0 {
		if err := p.Contract.SetLastPrice(ext.MarkPrice); err != nil {
			return fmt.Errorf("Position.UpdateFrom: %w", err)
		}
	}

	return nil
}

// SetMarkPrice marks a position from a quote feed rather than a broker
// snapshot. Used for synthetic underlying placeholders, which never appear
// in broker snapshots.
func (p *Position) SetMarkPrice(price float64) error {
	if err := p.Contract.SetLastPrice(price); err != nil {
		return fmt.Errorf("Position.SetMarkPrice: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.markPrice = price
	p.markValue = price * p.qty * p.Contract.Multiplier

	return nil
}

// UpdateGreeks stores externally observed greeks. A delta whose sign
// contradicts the option type is rejected: accepting it would corrupt every
// downstream aggregate.
func (p *Position) UpdateGreeks(g PositionGreeks) error {
	if p.Contract.IsOption() {
		if p.Contract.OptionType.IsCall() && g.Delta < 0 {
			return fmt.Errorf("Position.UpdateGreeks: %s: call delta must be >= 0, got %v", p.Contract.Symbol, g.Delta)
		}

		if !p.Contract.OptionType.IsCall() && g.Delta > 0 {
			return fmt.Errorf("Position.UpdateGreeks: %s: put delta must be <= 0, got %v", p.Contract.Symbol, g.Delta)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.greeks = g
	p.hasGreeks = true

	return nil
}

func (p *Position) Greeks() (PositionGreeks, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.greeks, p.hasGreeks
}

// SampleRealizedVol feeds the current mark into the realized volatility
// estimator. Only stock and future positions carry an estimator.
func (p *Position) SampleRealizedVol() {
	if p.RealizedVol == nil {
		return
	}

	if price := p.MarkPrice(); price > 0 {
		p.RealizedVol.AddSample(price)
	}
}

func NewPosition(contract *Contract, ext ExternalPosition) (*Position, error) {
	p := &Position{
		Contract: contract,
	}

	if contract.AssetClass.IsUnderlying() {
		p.RealizedVol = indicators.NewRealizedVolatility(RealizedVolSamples, RealizedVolPeriod)
	}

	if err := p.UpdateFrom(ext); err != nil {
		return nil, fmt.Errorf("NewPosition: %w", err)
	}

	return p, nil
}

// NewSyntheticUnderlying creates the zero-size future placeholder inserted
// into the underlying list when only options on a symbol are held.
func NewSyntheticUnderlying(symbol StockSymbol, expiration time.Time, multiplier float64) (*Position, error) {
	contract, err := NewFutureContract(0, symbol, expiration, multiplier)
	if err != nil {
		return nil, fmt.Errorf("NewSyntheticUnderlying: %w", err)
	}

	return &Position{
		Contract:    contract,
		RealizedVol: indicators.NewRealizedVolatility(RealizedVolSamples, RealizedVolPeriod),
	}, nil
}
