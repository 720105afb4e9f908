// Package backtest turns raw engine runs into renderable results: it
// aggregates the trade log into summary statistics and packages them with
// the echoed run parameters. Run is the library entry point the surrounding
// application (API handler, optimizer) calls.
package backtest

import (
	"context"

	"gridlab/engine"
)

// PriceRange echoes the configured grid bounds.
type PriceRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BacktestResult is the complete output record of one run: the trade log,
// the aggregate metrics and the echoed input parameters. It is immutable
// once produced, and byte-identical across runs with identical inputs.
type BacktestResult struct {
	Trades           []engine.Trade       `json:"trades"`
	TotalTrades      int                  `json:"total_trades"`
	ProfitableTrades int                  `json:"profitable_trades"`
	TotalProfit      float64              `json:"total_profit"`
	TotalFees        float64              `json:"total_fees"`
	TotalReturnPct   float64              `json:"total_return_pct"`
	WinRatePct       float64              `json:"win_rate_pct"`
	MaxDrawdownPct   float64              `json:"max_drawdown_pct"`
	SharpeRatio      float64              `json:"sharpe_ratio"`
	GridLevels       int                  `json:"grid_levels"`
	PriceRange       PriceRange           `json:"price_range"`
	InvestmentAmount float64              `json:"investment_amount"`
	Leverage         float64              `json:"leverage"`
	ProfitPerGrid    float64              `json:"profit_per_grid"`
	EquityCurve      []engine.EquityPoint `json:"equity_curve"`
}

// Assemble packages a run and its metrics into the output record. Pure
// assembly, no computation.
func Assemble(res *engine.RunResult, grid engine.GridConfig, run engine.RunConfig, m *Metrics) *BacktestResult {
	return &BacktestResult{
		Trades:           res.Trades,
		TotalTrades:      m.TotalTrades,
		ProfitableTrades: m.ProfitableTrades,
		TotalProfit:      m.TotalProfit,
		TotalFees:        m.TotalFees,
		TotalReturnPct:   m.TotalReturnPct,
		WinRatePct:       m.WinRatePct,
		MaxDrawdownPct:   m.MaxDrawdownPct,
		SharpeRatio:      m.SharpeRatio,
		GridLevels:       grid.GridCount,
		PriceRange:       PriceRange{Lower: grid.LowerPrice, Upper: grid.UpperPrice},
		InvestmentAmount: run.InvestmentAmount,
		Leverage:         run.Leverage,
		ProfitPerGrid:    grid.ProfitPerGrid,
		EquityCurve:      res.Equity,
	}
}

// Run executes one backtest end to end: simulate, aggregate, assemble.
// Fewer than 2 candles yields the defined empty result (zero trades, zero
// metrics, parameters echoed), not an error.
func Run(ctx context.Context, candles []engine.Candle, grid engine.GridConfig, run engine.RunConfig) (*BacktestResult, error) {
	res, err := engine.Run(ctx, candles, grid, run)
	if err != nil {
		return nil, err
	}
	return Assemble(res, grid, run, CalculateMetrics(res, run)), nil
}
