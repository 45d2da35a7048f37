package eventmodels

import (
	"context"
	"time"
)

// IExpirationCalendar resolves the front-month expiration for a futures
// symbol as of a given date.
type IExpirationCalendar interface {
	GetFrontMonthExpiration(symbol StockSymbol, asOf time.Time) (time.Time, error)
}

// IOptionPricer is the single pricing contract the risk engine needs: a
// model value and an implied volatility inversion. daysLeft is in calendar
// days.
type IOptionPricer interface {
	Price(spot, strike, daysLeft, volatility float64, isCall bool) float64
	ImpliedVolatility(spot, strike, daysLeft, targetPrice float64, isCall bool) (float64, error)
}

// IClock supplies the current time in the exchange's trading timezone. All
// blackout, session and cooldown comparisons go through it, never through
// host-local time.
type IClock interface {
	Now() time.Time
}

type IPriceFeed interface {
	FetchSpot(ctx context.Context, symbol StockSymbol) (float64, error)
}
