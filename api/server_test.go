package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gridlab/engine"
)

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := doJSON(t, NewServer(0), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestBacktestEndpointSpot(t *testing.T) {
	reqBody := `{
		"candles": [
			{"time": 1, "timestamp": "2024-01-01 00:00", "price": 100},
			{"time": 2, "timestamp": "2024-01-01 01:00", "price": 90},
			{"time": 3, "timestamp": "2024-01-01 02:00", "price": 110}
		],
		"grid": {"lower_price": 90, "upper_price": 110, "grid_count": 2, "spacing": "uniform"},
		"run": {"investment_amount": 1000, "leverage": 1}
	}`

	w := doJSON(t, NewServer(0), http.MethodPost, "/api/backtest", reqBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)
	require.NotNil(t, resp.Result)
	require.Equal(t, 4, resp.Result.TotalTrades)
	require.InDelta(t, 20.0, resp.Result.TotalProfit, 1e-9)
	require.InDelta(t, 2.0, resp.Result.TotalReturnPct, 1e-9)
	require.Len(t, resp.Result.EquityCurve, 3)
}

func TestBacktestEndpointRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"candles": [`},
		{
			"unordered candles",
			`{
				"candles": [{"time": 5, "price": 100}, {"time": 3, "price": 90}],
				"grid": {"lower_price": 90, "upper_price": 110, "grid_count": 2, "spacing": "uniform"},
				"run": {"investment_amount": 1000, "leverage": 1}
			}`,
		},
		{
			"inverted price range",
			`{
				"candles": [{"time": 1, "price": 100}, {"time": 2, "price": 101}],
				"grid": {"lower_price": 110, "upper_price": 90, "grid_count": 2, "spacing": "uniform"},
				"run": {"investment_amount": 1000, "leverage": 1}
			}`,
		},
	}

	srv := NewServer(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/api/backtest", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestBacktestEndpointEmptySeriesYieldsEmptyResult(t *testing.T) {
	reqBody := `{
		"candles": [],
		"grid": {"lower_price": 90, "upper_price": 110, "grid_count": 2, "spacing": "uniform"},
		"run": {"investment_amount": 1000, "leverage": 1}
	}`

	w := doJSON(t, NewServer(0), http.MethodPost, "/api/backtest", reqBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Zero(t, resp.Result.TotalTrades)
	require.Empty(t, resp.Result.Trades)
	require.Equal(t, 1000.0, resp.Result.InvestmentAmount)
}

func TestOptimizeEndpoint(t *testing.T) {
	reqBody := `{
		"candles": [
			{"time": 1, "price": 100},
			{"time": 2, "price": 90},
			{"time": 3, "price": 110}
		],
		"grid": {"lower_price": 90, "upper_price": 110, "grid_count": 2, "spacing": "uniform"},
		"run": {"investment_amount": 1000, "leverage": 1},
		"options": {"grid_counts": [2, 4], "workers": 2}
	}`

	w := doJSON(t, NewServer(0), http.MethodPost, "/api/optimize", reqBody)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		JobID      string `json:"job_id"`
		Candidates []struct {
			GridCount      int            `json:"grid_count"`
			Spacing        engine.Spacing `json:"spacing"`
			TotalReturnPct float64        `json:"total_return_pct"`
		} `json:"candidates"`
		Best *struct {
			TotalReturnPct float64 `json:"total_return_pct"`
		} `json:"best"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotEmpty(t, report.JobID)
	require.Len(t, report.Candidates, 4)
	require.NotNil(t, report.Best)
}

func TestFeeDefaultsOnlyTouchLeveragedRuns(t *testing.T) {
	spot := applyFeeDefaults(engine.RunConfig{InvestmentAmount: 1000, Leverage: 1})
	require.Zero(t, spot.MakerFee)
	require.Zero(t, spot.TakerFee)
	require.Zero(t, spot.Slippage)

	leveraged := applyFeeDefaults(engine.RunConfig{InvestmentAmount: 1000, Leverage: 5})
	require.Positive(t, leveraged.MakerFee)
	require.Positive(t, leveraged.TakerFee)
	require.Positive(t, leveraged.Slippage)

	explicit := applyFeeDefaults(engine.RunConfig{InvestmentAmount: 1000, Leverage: 5, MakerFee: 0.001, TakerFee: 0.002, Slippage: 0.003})
	require.Equal(t, 0.001, explicit.MakerFee)
	require.Equal(t, 0.002, explicit.TakerFee)
	require.Equal(t, 0.003, explicit.Slippage)
}
