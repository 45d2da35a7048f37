package eventmodels

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StockSymbol identifies an underlying ticker. Options and future options
// carry the symbol of their underlying, not their own OCC code.
type StockSymbol string

func (s StockSymbol) String() string {
	return strings.ToUpper(string(s))
}

func (s StockSymbol) Validate() error {
	if len(strings.TrimSpace(string(s))) == 0 {
		return fmt.Errorf("StockSymbol: Validate: symbol is empty")
	}

	return nil
}

func (s StockSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(s))
}
