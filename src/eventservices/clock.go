package eventservices

import (
	"fmt"
	"time"
)

// TradingClock reports the current time in the exchange's trading timezone.
type TradingClock struct {
	location *time.Location
}

func (c *TradingClock) Now() time.Time {
	return time.Now().In(c.location)
}

func (c *TradingClock) Location() *time.Location {
	return c.location
}

func NewTradingClock(timezone string) (*TradingClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("NewTradingClock: failed to load location %s: %w", timezone, err)
	}

	return &TradingClock{location: loc}, nil
}
