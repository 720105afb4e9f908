// Package optimizer sweeps grid parameters over one candle series. Runs are
// independent pure computations with no shared state, so candidates fan out
// across a bounded worker pool and results stay deterministic regardless of
// completion order.
package optimizer

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gridlab/backtest"
	"gridlab/engine"
	"gridlab/logger"
)

// ErrNoCandidates means the sweep options expand to zero configurations.
var ErrNoCandidates = errors.New("optimizer: no candidate configurations")

// Options selects the parameter space. Empty GridCounts falls back to the
// base config's count; empty Spacings sweeps both modes.
type Options struct {
	GridCounts []int            `json:"grid_counts"`
	Spacings   []engine.Spacing `json:"spacings"`
	Workers    int              `json:"workers"`
}

// CandidateResult is one swept configuration with its summary metrics.
type CandidateResult struct {
	GridCount      int            `json:"grid_count"`
	Spacing        engine.Spacing `json:"spacing"`
	TotalTrades    int            `json:"total_trades"`
	TotalReturnPct float64        `json:"total_return_pct"`
	WinRatePct     float64        `json:"win_rate_pct"`
	MaxDrawdownPct float64        `json:"max_drawdown_pct"`
	SharpeRatio    float64        `json:"sharpe_ratio"`
}

// Report is the outcome of one sweep. Candidates keep the expansion order;
// Best points at the candidate with the highest total return (first wins on
// ties, so reports are reproducible).
type Report struct {
	JobID      string            `json:"job_id"`
	DurationMs int64             `json:"duration_ms"`
	Candidates []CandidateResult `json:"candidates"`
	Best       *CandidateResult  `json:"best"`
}

// Sweep backtests every candidate configuration and ranks the outcomes.
func Sweep(ctx context.Context, candles []engine.Candle, grid engine.GridConfig, run engine.RunConfig, opts Options) (*Report, error) {
	counts := opts.GridCounts
	if len(counts) == 0 {
		counts = []int{grid.GridCount}
	}
	spacings := opts.Spacings
	if len(spacings) == 0 {
		spacings = []engine.Spacing{engine.SpacingUniform, engine.SpacingGeometric}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type candidate struct {
		gridCount int
		spacing   engine.Spacing
	}
	var candidates []candidate
	for _, count := range counts {
		for _, spacing := range spacings {
			candidates = append(candidates, candidate{gridCount: count, spacing: spacing})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	jobID := uuid.New().String()
	start := time.Now()
	logger.Infof("[Optimizer] Job %s: sweeping %d configurations (%d workers)", jobID, len(candidates), workers)

	results := make([]CandidateResult, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			cfg := grid
			cfg.GridCount = cand.gridCount
			cfg.Spacing = cand.spacing

			res, err := backtest.Run(ctx, candles, cfg, run)
			if err != nil {
				return err
			}
			results[i] = CandidateResult{
				GridCount:      cand.gridCount,
				Spacing:        cand.spacing,
				TotalTrades:    res.TotalTrades,
				TotalReturnPct: res.TotalReturnPct,
				WinRatePct:     res.WinRatePct,
				MaxDrawdownPct: res.MaxDrawdownPct,
				SharpeRatio:    res.SharpeRatio,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := range results {
		if results[i].TotalReturnPct > results[best].TotalReturnPct {
			best = i
		}
	}

	duration := time.Since(start)
	logger.Infof("[Optimizer] Job %s: done in %s, best grid_count=%d spacing=%s return=%.2f%%",
		jobID, duration, results[best].GridCount, results[best].Spacing, results[best].TotalReturnPct)

	return &Report{
		JobID:      jobID,
		DurationMs: duration.Milliseconds(),
		Candidates: results,
		Best:       &results[best],
	}, nil
}
