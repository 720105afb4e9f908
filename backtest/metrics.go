package backtest

import (
	"math"

	"gridlab/engine"
)

// Metrics summarizes one simulation run.
type Metrics struct {
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
	TotalProfit      float64 `json:"total_profit"`
	TotalFees        float64 `json:"total_fees"`
	TotalReturnPct   float64 `json:"total_return_pct"`
	WinRatePct       float64 `json:"win_rate_pct"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
}

// CalculateMetrics converts a run's trade log into summary statistics.
// Win rate and Sharpe only look at completed trades (exits); entries carry
// their fee as negative net profit and show up in the totals only.
func CalculateMetrics(res *engine.RunResult, cfg engine.RunConfig) *Metrics {
	m := &Metrics{
		TotalTrades: len(res.Trades),
	}

	completed := 0
	returns := make([]float64, 0, len(res.Trades))
	for _, t := range res.Trades {
		m.TotalFees += t.Fees
		if !t.IsExit() {
			continue
		}
		completed++
		if t.NetProfit > 0 {
			m.ProfitableTrades++
		}
		returns = append(returns, t.NetProfit/cfg.InvestmentAmount*100)
	}

	m.TotalProfit = res.FinalBalance - cfg.InvestmentAmount
	m.TotalReturnPct = m.TotalProfit / cfg.InvestmentAmount * 100
	m.MaxDrawdownPct = res.MaxDrawdownPct

	if completed > 0 {
		m.WinRatePct = float64(m.ProfitableTrades) / float64(completed) * 100
	}
	m.WinRatePct = math.Min(100, math.Max(0, m.WinRatePct))

	m.SharpeRatio = sharpeRatio(returns)

	return m
}

// sharpeRatio computes mean/stdev over the per-trade return series,
// annualized by sqrt(252). The 252-period convention is kept regardless of
// candle granularity: existing result sets compare against it, so changing
// it would silently break comparability. Population standard deviation; zero
// variance falls back to a denominator of 1.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}

	return mean / std * math.Sqrt(252)
}
