// Package engine simulates a grid trading strategy against a historical
// candle series. One call to Run is one backtest: it builds the price ladder,
// replays the candles through the per-level state machines and returns the
// ordered trade log plus account samples. A run is a pure function of its
// inputs; the engine performs no I/O and holds no state across calls.
package engine

import (
	"context"
)

type simulation struct {
	grid GridConfig
	run  RunConfig
	spot bool

	levels []GridLevel
	trades []Trade
	equity []EquityPoint

	capitalPerLevel float64
	balance         float64
	peakBalance     float64
	cumPnL          float64
	peakPnL         float64
	maxDrawdownPct  float64
}

// Run executes one backtest. Fewer than 2 candles is not an error: it yields
// the defined empty result so callers can always render something. The
// context is checked once per candle boundary only, so a cancelled run never
// leaves a candle half-applied.
func Run(ctx context.Context, candles []Candle, grid GridConfig, run RunConfig) (*RunResult, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	ladder, err := BuildLadder(grid)
	if err != nil {
		return nil, err
	}

	spot := run.IsSpot()
	if spot {
		// Spot rules: no leverage amplification, no execution costs.
		run.MakerFee, run.TakerFee, run.Slippage = 0, 0, 0
	}

	s := &simulation{
		grid:            grid,
		run:             run,
		spot:            spot,
		trades:          []Trade{},
		equity:          []EquityPoint{},
		capitalPerLevel: run.InvestmentAmount * run.Leverage / float64(grid.GridCount),
		balance:         run.InvestmentAmount,
		peakBalance:     run.InvestmentAmount,
	}

	if len(candles) < 2 {
		return s.result(ladder), nil
	}

	s.levels = make([]GridLevel, len(ladder))
	for i, price := range ladder {
		s.levels[i] = GridLevel{Price: price}
	}

	for _, candle := range candles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range s.levels {
			s.stepLevel(i, candle)
		}
		s.sampleEquity(candle)
	}

	return s.result(ladder), nil
}

// sampleEquity updates drawdown tracking once per candle. Leveraged runs
// track the balance against its peak; spot runs track cumulative PnL against
// its running peak, reported relative to the investment.
func (s *simulation) sampleEquity(c Candle) {
	var dd float64
	if s.spot {
		if s.cumPnL > s.peakPnL {
			s.peakPnL = s.cumPnL
		}
		dd = (s.peakPnL - s.cumPnL) / s.run.InvestmentAmount * 100
	} else {
		if s.balance > s.peakBalance {
			s.peakBalance = s.balance
		}
		if s.peakBalance > 0 {
			dd = (s.peakBalance - s.balance) / s.peakBalance * 100
		}
	}
	if dd > s.maxDrawdownPct {
		s.maxDrawdownPct = dd
	}

	s.equity = append(s.equity, EquityPoint{
		Time:        c.Time,
		Balance:     s.balance,
		DrawdownPct: dd,
	})
}

func (s *simulation) result(ladder []float64) *RunResult {
	return &RunResult{
		Ladder:         ladder,
		Trades:         s.trades,
		Equity:         s.equity,
		FinalBalance:   s.balance,
		CumulativePnL:  s.cumPnL,
		MaxDrawdownPct: s.maxDrawdownPct,
		Spot:           s.spot,
	}
}
