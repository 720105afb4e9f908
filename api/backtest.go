package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridlab/backtest"
	"gridlab/config"
	"gridlab/engine"
	"gridlab/logger"
	"gridlab/market"
	"gridlab/optimizer"
)

// BacktestRequest is the form-submission payload: the candle series plus the
// grid and account parameters.
type BacktestRequest struct {
	Candles []engine.Candle   `json:"candles"`
	Grid    engine.GridConfig `json:"grid" binding:"required"`
	Run     engine.RunConfig  `json:"run" binding:"required"`
}

// BacktestResponse wraps the result with a request-scoped run ID. The ID
// lives here rather than on the result so identical inputs still produce
// identical results.
type BacktestResponse struct {
	RunID  string                   `json:"run_id"`
	Result *backtest.BacktestResult `json:"result"`
}

// OptimizeRequest sweeps parameter candidates over one candle series.
type OptimizeRequest struct {
	Candles []engine.Candle   `json:"candles"`
	Grid    engine.GridConfig `json:"grid" binding:"required"`
	Run     engine.RunConfig  `json:"run" binding:"required"`
	Options optimizer.Options `json:"options"`
}

// handleBacktest runs one backtest synchronously and returns the result.
func (s *Server) handleBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candles, err := prepareCandles(req.Candles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Run = applyFeeDefaults(req.Run)

	runID := uuid.New().String()
	start := time.Now()
	result, err := backtest.Run(c.Request.Context(), candles, req.Grid, req.Run)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	logger.Infof("📊 Backtest %s: %d candles, %d trades, return %.2f%% (%s)",
		runID, len(candles), result.TotalTrades, result.TotalReturnPct, time.Since(start))

	c.JSON(http.StatusOK, BacktestResponse{RunID: runID, Result: result})
}

// handleOptimize runs a parameter sweep and returns the ranked report.
func (s *Server) handleOptimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candles, err := prepareCandles(req.Candles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Run = applyFeeDefaults(req.Run)

	report, err := optimizer.Sweep(c.Request.Context(), candles, req.Grid, req.Run, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// prepareCandles validates ordering and normalizes missing high/low values.
// An empty series passes through: the engine's empty-result contract covers
// it, so the caller still gets a renderable result.
func prepareCandles(candles []engine.Candle) ([]engine.Candle, error) {
	if len(candles) == 0 {
		return candles, nil
	}
	if err := market.Validate(candles); err != nil {
		return nil, err
	}
	return market.Normalize(candles), nil
}

// applyFeeDefaults seeds unset fee/slippage rates from the global config.
// Only leveraged runs are touched; the engine zeroes these in spot mode
// regardless.
func applyFeeDefaults(run engine.RunConfig) engine.RunConfig {
	if run.IsSpot() {
		return run
	}
	cfg := config.Get()
	if run.MakerFee == 0 {
		run.MakerFee = cfg.MakerFeeRate
	}
	if run.TakerFee == 0 {
		run.TakerFee = cfg.TakerFeeRate
	}
	if run.Slippage == 0 {
		run.Slippage = cfg.SlippageRate
	}
	return run
}
