package indicators

import (
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

const tradingMinutesPerYear = 252 * 390

// RealizedVolatility estimates annualized volatility from a rolling window of
// price samples taken at a fixed interval.
type RealizedVolatility struct {
	window int
	period time.Duration

	mu      sync.Mutex
	samples []float64
}

// AddSample appends a price observation, evicting the oldest once the window
// is full.
func (r *RealizedVolatility) AddSample(price float64) {
	if price <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) < r.window {
		r.samples = append(r.samples, price)
		return
	}

	r.samples = append(r.samples[1:], price)
}

func (r *RealizedVolatility) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.samples)
}

// Value returns the annualized realized volatility, or false until the window
// has at least two samples.
func (r *RealizedVolatility) Value() (float64, bool) {
	r.mu.Lock()
	samples := make([]float64, len(r.samples))
	copy(samples, r.samples)
	r.mu.Unlock()

	if len(samples) < 2 {
		return 0, false
	}

	logReturns := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		logReturns = append(logReturns, math.Log(samples[i]/samples[i-1]))
	}

	sd, err := stats.StandardDeviation(logReturns)
	if err != nil {
		return 0, false
	}

	sampleMinutes := r.period.Minutes() / float64(r.window)
	if sampleMinutes <= 0 {
		return 0, false
	}

	annualized := sd * math.Sqrt(tradingMinutesPerYear/sampleMinutes)

	return annualized, true
}

func NewRealizedVolatility(window int, period time.Duration) *RealizedVolatility {
	return &RealizedVolatility{
		window: window,
		period: period,
	}
}
