package eventmodels

import (
	"fmt"
	"sync"
	"time"
)

// Contract describes a single tradable instrument. Identity fields are set
// once at construction; only the last mark price and the streaming flag
// change afterwards.
type Contract struct {
	ID           int
	Symbol       StockSymbol
	AssetClass   AssetClass
	UnderlyingID *int
	Expiration   *time.Time
	Multiplier   float64
	Strike       float64
	OptionType   OptionType

	mu        sync.Mutex
	lastPrice float64
	streaming bool
}

func (c *Contract) LastPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastPrice
}

// SetLastPrice rejects non-positive marks for stocks and futures. Options may
// carry a zero mark before their first quote.
func (c *Contract) SetLastPrice(price float64) error {
	if c.AssetClass.IsUnderlying() && price <= 0 {
		return fmt.Errorf("Contract.SetLastPrice: %s %s: price must be positive, got %v", c.AssetClass, c.Symbol, price)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastPrice = price

	return nil
}

func (c *Contract) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.streaming
}

func (c *Contract) SetStreaming(streaming bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.streaming = streaming
}

func (c *Contract) IsOption() bool {
	return c.AssetClass.IsDerivative()
}

// DaysLeft returns the number of calendar days until expiration, as a
// fraction. Contracts without an expiry report zero.
func (c *Contract) DaysLeft(now time.Time) float64 {
	if c.Expiration == nil {
		return 0
	}

	return c.Expiration.Sub(now).Hours() / 24.0
}

// ExpiresBy reports whether the contract will have expired at or before the
// given horizon.
func (c *Contract) ExpiresBy(horizon time.Time) bool {
	if c.Expiration == nil {
		return false
	}

	return !c.Expiration.After(horizon)
}

func (c *Contract) IntrinsicValue(spot float64) float64 {
	if !c.IsOption() {
		return spot
	}

	if c.OptionType.IsCall() {
		if spot > c.Strike {
			return spot - c.Strike
		}
		return 0
	}

	if c.Strike > spot {
		return c.Strike - spot
	}

	return 0
}

func NewContract(id int, symbol StockSymbol, assetClass AssetClass, multiplier float64) (*Contract, error) {
	if err := symbol.Validate(); err != nil {
		return nil, fmt.Errorf("NewContract: %w", err)
	}

	if err := assetClass.Validate(); err != nil {
		return nil, fmt.Errorf("NewContract: %w", err)
	}

	if multiplier <= 0 {
		return nil, fmt.Errorf("NewContract: %s: multiplier must be positive, got %v", symbol, multiplier)
	}

	return &Contract{
		ID:         id,
		Symbol:     symbol,
		AssetClass: assetClass,
		Multiplier: multiplier,
	}, nil
}

func NewOptionContract(id int, symbol StockSymbol, assetClass AssetClass, optionType OptionType, strike float64, expiration time.Time, multiplier float64, underlyingID *int) (*Contract, error) {
	if !assetClass.IsDerivative() {
		return nil, fmt.Errorf("NewOptionContract: %s: expected option asset class, got %s", symbol, assetClass)
	}

	if err := optionType.Validate(); err != nil {
		return nil, fmt.Errorf("NewOptionContract: %w", err)
	}

	if strike <= 0 {
		return nil, fmt.Errorf("NewOptionContract: %s: strike must be positive, got %v", symbol, strike)
	}

	c, err := NewContract(id, symbol, assetClass, multiplier)
	if err != nil {
		return nil, err
	}

	c.OptionType = optionType
	c.Strike = strike
	c.Expiration = &expiration
	c.UnderlyingID = underlyingID

	return c, nil
}

func NewFutureContract(id int, symbol StockSymbol, expiration time.Time, multiplier float64) (*Contract, error) {
	c, err := NewContract(id, symbol, AssetClassFuture, multiplier)
	if err != nil {
		return nil, err
	}

	c.Expiration = &expiration

	return c, nil
}
