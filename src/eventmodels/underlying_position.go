package eventmodels

import (
	"fmt"
	"sort"
	"sync"
)

// UnderlyingPosition groups every Position that shares an underlying symbol
// and tracks the known contracts for that symbol by expiry. Contracts are
// added incrementally and never removed: expiry is immutable, so the ordered
// set only grows.
type UnderlyingPosition struct {
	Symbol StockSymbol

	mu              sync.Mutex
	positions       []*Position
	contractsByID   map[int]*Contract
	contractsByDate []*Contract // sorted by expiration, nil expiries excluded
	stockContract   *Contract
}

func (u *UnderlyingPosition) AddContract(contract *Contract) error {
	if contract.Symbol != u.Symbol {
		return fmt.Errorf("UnderlyingPosition.AddContract: symbol mismatch: %s != %s", contract.Symbol, u.Symbol)
	}

	if !contract.AssetClass.IsUnderlying() {
		return fmt.Errorf("UnderlyingPosition.AddContract: %s: expected stock or future, got %s", contract.Symbol, contract.AssetClass)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.contractsByID[contract.ID]; ok {
		return nil
	}

	u.contractsByID[contract.ID] = contract

	if contract.AssetClass == AssetClassStock {
		u.stockContract = contract
		return nil
	}

	u.contractsByDate = append(u.contractsByDate, contract)
	sort.SliceStable(u.contractsByDate, func(i, j int) bool {
		return u.contractsByDate[i].Expiration.Before(*u.contractsByDate[j].Expiration)
	})

	return nil
}

func (u *UnderlyingPosition) SetPositions(positions []*Position) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.positions = positions
}

func (u *UnderlyingPosition) Positions() []*Position {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]*Position, len(u.positions))
	copy(out, u.positions)

	return out
}

// FrontContract returns the contract with the nearest expiry, or the sole
// stock contract when no dated contracts are known.
func (u *UnderlyingPosition) FrontContract() *Contract {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.contractsByDate) > 0 {
		return u.contractsByDate[0]
	}

	return u.stockContract
}

func (u *UnderlyingPosition) Contract(id int) (*Contract, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	c, ok := u.contractsByID[id]

	return c, ok
}

func NewUnderlyingPosition(symbol StockSymbol) *UnderlyingPosition {
	return &UnderlyingPosition{
		Symbol:        symbol,
		contractsByID: make(map[int]*Contract),
	}
}
