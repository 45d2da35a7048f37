package eventmodels

import (
	"fmt"
	"strings"
	"time"
)

type HedgeConfigYAML struct {
	Symbol            string  `yaml:"symbol"`
	DeltaThreshold    float64 `yaml:"deltaThreshold"`
	MinAdjustment     float64 `yaml:"minAdjustment"`
	InitialImpliedVol float64 `yaml:"initialImpliedVol"`
	BlackoutStart     string  `yaml:"blackoutStart,omitempty"`
	BlackoutEnd       string  `yaml:"blackoutEnd,omitempty"`
	DryRun            bool    `yaml:"dryRun,omitempty"`
}

type HedgeConfigsYAML struct {
	Hedges []HedgeConfigYAML `yaml:"hedges"`
}

func (c *HedgeConfigsYAML) GetConfig(symbol StockSymbol) (*HedgeConfigYAML, error) {
	sym1 := strings.ToLower(string(symbol))
	for _, hedge := range c.Hedges {
		sym2 := strings.ToLower(hedge.Symbol)
		if sym1 == sym2 {
			return &hedge, nil
		}
	}

	return nil, fmt.Errorf("HedgeConfigsYAML: config not found for %s", symbol)
}

// HedgeConfig is the validated, parsed form consumed by a DeltaHedger.
type HedgeConfig struct {
	Symbol            StockSymbol
	DeltaThreshold    float64
	MinAdjustment     float64
	InitialImpliedVol float64
	BlackoutStart     *time.Time // time-of-day only; date components unused
	BlackoutEnd       *time.Time
	DryRun            bool
}

// InBlackout reports whether t's time of day falls inside the configured
// window. Windows that wrap midnight are not supported and never match.
func (c *HedgeConfig) InBlackout(t time.Time) bool {
	if c.BlackoutStart == nil || c.BlackoutEnd == nil {
		return false
	}

	start := c.BlackoutStart.Hour()*60 + c.BlackoutStart.Minute()
	end := c.BlackoutEnd.Hour()*60 + c.BlackoutEnd.Minute()
	if start >= end {
		return false
	}

	cur := t.Hour()*60 + t.Minute()

	return cur >= start && cur < end
}

func (y *HedgeConfigYAML) ToModel() (*HedgeConfig, error) {
	if y.DeltaThreshold < 0 {
		return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %s: deltaThreshold must be >= 0, got %v", y.Symbol, y.DeltaThreshold)
	}

	if y.MinAdjustment < 0 {
		return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %s: minAdjustment must be >= 0, got %v", y.Symbol, y.MinAdjustment)
	}

	cfg := &HedgeConfig{
		Symbol:            NewStockSymbol(y.Symbol),
		DeltaThreshold:    y.DeltaThreshold,
		MinAdjustment:     y.MinAdjustment,
		InitialImpliedVol: y.InitialImpliedVol,
		DryRun:            y.DryRun,
	}

	if err := cfg.Symbol.Validate(); err != nil {
		return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %w", err)
	}

	if y.BlackoutStart != "" {
		start, err := time.Parse("15:04", y.BlackoutStart)
		if err != nil {
			return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %s: failed to parse blackoutStart: %w", y.Symbol, err)
		}
		cfg.BlackoutStart = &start
	}

	if y.BlackoutEnd != "" {
		end, err := time.Parse("15:04", y.BlackoutEnd)
		if err != nil {
			return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %s: failed to parse blackoutEnd: %w", y.Symbol, err)
		}
		cfg.BlackoutEnd = &end
	}

	if (cfg.BlackoutStart == nil) != (cfg.BlackoutEnd == nil) {
		return nil, fmt.Errorf("HedgeConfigYAML.ToModel: %s: blackoutStart and blackoutEnd must both be set", y.Symbol)
	}

	return cfg, nil
}
