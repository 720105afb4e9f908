package engine

import (
	"errors"
	"fmt"
	"math"
)

// Configuration errors. All are detected before the first candle is touched;
// a run never executes partially.
var (
	ErrInvalidPrice      = errors.New("engine: lower price must be positive")
	ErrInvalidRange      = errors.New("engine: upper price must exceed lower price")
	ErrInvalidGridCount  = errors.New("engine: grid count must be at least 2")
	ErrInvalidSpacing    = errors.New("engine: unknown spacing mode")
	ErrInvalidInvestment = errors.New("engine: investment amount must be positive")
	ErrInvalidLeverage   = errors.New("engine: leverage must be at least 1")
)

// Validate checks the grid bounds and count.
func (c GridConfig) Validate() error {
	if c.LowerPrice <= 0 {
		return ErrInvalidPrice
	}
	if c.UpperPrice <= c.LowerPrice {
		return ErrInvalidRange
	}
	if c.GridCount < 2 {
		return ErrInvalidGridCount
	}
	switch c.Spacing {
	case SpacingUniform, SpacingGeometric, "":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSpacing, c.Spacing)
	}
}

// Validate checks the account parameters.
func (c RunConfig) Validate() error {
	if c.InvestmentAmount <= 0 {
		return ErrInvalidInvestment
	}
	if c.Leverage < 1 {
		return ErrInvalidLeverage
	}
	return nil
}

// BuildLadder returns the GridCount+1 level prices for the configured range,
// strictly increasing, with ladder[0] = LowerPrice and the last element =
// UpperPrice. Uniform spacing is an arithmetic progression; geometric spacing
// uses the constant ratio (upper/lower)^(1/gridCount). An empty spacing mode
// defaults to uniform.
func BuildLadder(cfg GridConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prices := make([]float64, cfg.GridCount+1)
	switch cfg.Spacing {
	case SpacingGeometric:
		ratio := math.Pow(cfg.UpperPrice/cfg.LowerPrice, 1/float64(cfg.GridCount))
		for i := range prices {
			prices[i] = cfg.LowerPrice * math.Pow(ratio, float64(i))
		}
	default:
		step := (cfg.UpperPrice - cfg.LowerPrice) / float64(cfg.GridCount)
		for i := range prices {
			prices[i] = cfg.LowerPrice + float64(i)*step
		}
	}

	// Pin the endpoints so pow/rounding drift never moves the bounds.
	prices[0] = cfg.LowerPrice
	prices[cfg.GridCount] = cfg.UpperPrice

	return prices, nil
}
