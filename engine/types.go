package engine

// ============================================================================
// Input Types
// ============================================================================

// Candle is one point of the input price series. The series must be ordered
// by strictly increasing Time and is consumed front-to-back, once.
//
// High and Low are optional: a zero value means "not supplied" and defaults
// to the close price, so a close-only series still backtests (it just never
// sees intrabar range it did not assert).
type Candle struct {
	Time      int64   `json:"time"`
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	High      float64 `json:"high,omitempty"`
	Low       float64 `json:"low,omitempty"`
}

func (c Candle) high() float64 {
	if c.High > 0 {
		return c.High
	}
	return c.Price
}

func (c Candle) low() float64 {
	if c.Low > 0 {
		return c.Low
	}
	return c.Price
}

// Spacing selects how ladder levels are distributed between the bounds.
type Spacing string

const (
	SpacingUniform   Spacing = "uniform"
	SpacingGeometric Spacing = "geometric"
)

// GridConfig defines the price ladder for one run.
type GridConfig struct {
	LowerPrice float64 `json:"lower_price"`
	UpperPrice float64 `json:"upper_price"`
	GridCount  int     `json:"grid_count"`
	Spacing    Spacing `json:"spacing"`
	// ProfitPerGrid is echoed to callers, it does not drive fill logic
	ProfitPerGrid float64 `json:"profit_per_grid"`
}

// RunConfig defines the account side of one run. Leverage 1 selects spot
// mode: no shorts, unit position size, fee and slippage rates forced to zero.
type RunConfig struct {
	InvestmentAmount float64 `json:"investment_amount"`
	Leverage         float64 `json:"leverage"`
	MakerFee         float64 `json:"maker_fee"`
	TakerFee         float64 `json:"taker_fee"`
	Slippage         float64 `json:"slippage"`
}

// IsSpot reports whether this run uses the spot (unlevered) rules.
func (c RunConfig) IsSpot() bool {
	return c.Leverage == 1
}

// ============================================================================
// Level State
// ============================================================================

// PositionSide is the per-level position state.
type PositionSide int

const (
	PositionFlat PositionSide = iota
	PositionLong
	PositionShort
)

func (p PositionSide) String() string {
	switch p {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "flat"
	}
}

// GridLevel is one ladder rung. EntryPrice and Size are set iff Position is
// not flat; a level holds at most one open position at a time.
type GridLevel struct {
	Price      float64      `json:"price"`
	Position   PositionSide `json:"position"`
	EntryPrice float64      `json:"entry_price,omitempty"`
	Size       float64      `json:"size,omitempty"`
}

// ============================================================================
// Output Types
// ============================================================================

// TradeType distinguishes buy and sell executions.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// TradeSide is the direction of the position a trade belongs to.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// Trade is one execution event. Entries and exits both emit a trade; an
// entry's net profit is the (negative) entry fee, an exit's is gross profit
// minus the exit fee.
type Trade struct {
	Time         int64     `json:"time"`
	Timestamp    string    `json:"timestamp"`
	Price        float64   `json:"price"`
	Type         TradeType `json:"type"`
	Side         TradeSide `json:"side"`
	GrossProfit  float64   `json:"gross_profit"`
	Fees         float64   `json:"fees"`
	NetProfit    float64   `json:"net_profit"`
	BalanceAfter float64   `json:"balance_after"`
}

// IsExit reports whether the trade closed a position. Only exits count as
// completed trades for win-rate and Sharpe purposes.
func (t Trade) IsExit() bool {
	return (t.Type == TradeSell && t.Side == SideLong) ||
		(t.Type == TradeBuy && t.Side == SideShort)
}

// EquityPoint samples the account once per candle.
type EquityPoint struct {
	Time        int64   `json:"time"`
	Balance     float64 `json:"balance"`
	DrawdownPct float64 `json:"drawdown_pct"`
}

// RunResult is the raw outcome of one simulation pass, before aggregation.
type RunResult struct {
	Ladder         []float64     `json:"ladder"`
	Trades         []Trade       `json:"trades"`
	Equity         []EquityPoint `json:"equity"`
	FinalBalance   float64       `json:"final_balance"`
	CumulativePnL  float64       `json:"cumulative_pnl"`
	MaxDrawdownPct float64       `json:"max_drawdown_pct"`
	Spot           bool          `json:"spot"`
}
