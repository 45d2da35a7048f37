package eventservices

import (
	"fmt"
	"math"
)

const (
	bisectionMaxIterations = 100
	bisectionTolerance     = 1e-6
	impliedVolFloor        = 1e-4
	impliedVolCeiling      = 5.0
)

// BlackScholesPricer prices European options at a zero rate. daysLeft is in
// calendar days; volatility is annualized.
type BlackScholesPricer struct{}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func (p *BlackScholesPricer) Price(spot, strike, daysLeft, volatility float64, isCall bool) float64 {
	if spot <= 0 || strike <= 0 {
		return 0
	}

	t := daysLeft / 365.0

	// at or past expiry the option is worth its intrinsic value
	if t <= 0 || volatility <= 0 {
		if isCall {
			return math.Max(spot-strike, 0)
		}
		return math.Max(strike-spot, 0)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + 0.5*volatility*volatility*t) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT

	if isCall {
		return spot*normCDF(d1) - strike*normCDF(d2)
	}

	return strike*normCDF(-d2) - spot*normCDF(-d1)
}

// ImpliedVolatility inverts a market price to a volatility by bisection.
func (p *BlackScholesPricer) ImpliedVolatility(spot, strike, daysLeft, targetPrice float64, isCall bool) (float64, error) {
	if spot <= 0 || strike <= 0 {
		return 0, fmt.Errorf("BlackScholesPricer.ImpliedVolatility: spot and strike must be positive, got %v / %v", spot, strike)
	}

	if daysLeft <= 0 {
		return 0, fmt.Errorf("BlackScholesPricer.ImpliedVolatility: option already expired, daysLeft %v", daysLeft)
	}

	var intrinsic float64
	if isCall {
		intrinsic = math.Max(spot-strike, 0)
	} else {
		intrinsic = math.Max(strike-spot, 0)
	}

	if targetPrice < intrinsic {
		return 0, fmt.Errorf("BlackScholesPricer.ImpliedVolatility: target price %v below intrinsic %v", targetPrice, intrinsic)
	}

	lo, hi := impliedVolFloor, impliedVolCeiling

	if p.Price(spot, strike, daysLeft, hi, isCall) < targetPrice {
		return 0, fmt.Errorf("BlackScholesPricer.ImpliedVolatility: target price %v above model price at max volatility", targetPrice)
	}

	for i := 0; i < bisectionMaxIterations; i++ {
		mid := (lo + hi) / 2.0
		price := p.Price(spot, strike, daysLeft, mid, isCall)

		if math.Abs(price-targetPrice) < bisectionTolerance {
			return mid, nil
		}

		if price > targetPrice {
			hi = mid
		} else {
			lo = mid
		}
	}

	return (lo + hi) / 2.0, nil
}

func NewBlackScholesPricer() *BlackScholesPricer {
	return &BlackScholesPricer{}
}
