package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// GroupStats summarizes trade P&L inside one DTE x delta bucket.
// Ranges are half-open [lo, hi).
type GroupStats struct {
	DTELo   int     `json:"dte_lo"`
	DTEHi   int     `json:"dte_hi"`
	DeltaLo float64 `json:"delta_lo"`
	DeltaHi float64 `json:"delta_hi"`

	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Q25          float64 `json:"q25"`
	Median       float64 `json:"median"`
	Q75          float64 `json:"q75"`
	Max          float64 `json:"max"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
}

// DTERange renders the bucket's DTE interval.
func (g GroupStats) DTERange() string {
	return fmt.Sprintf("[%d, %d)", g.DTELo, g.DTEHi)
}

// DeltaRange renders the bucket's delta interval.
func (g GroupStats) DeltaRange() string {
	return fmt.Sprintf("[%.2f, %.2f)", g.DeltaLo, g.DeltaHi)
}

// MarshalJSON renders non-finite ratios as strings so the output stays
// valid JSON while keeping the documented +Inf conventions in-process.
func (g GroupStats) MarshalJSON() ([]byte, error) {
	type alias GroupStats
	return json.Marshal(struct {
		alias
		DTERange     string      `json:"dte_range"`
		DeltaRange   string      `json:"delta_range"`
		ProfitFactor interface{} `json:"profit_factor"`
	}{
		alias:        alias(g),
		DTERange:     g.DTERange(),
		DeltaRange:   g.DeltaRange(),
		ProfitFactor: jsonFloat(g.ProfitFactor),
	})
}

// EvalReport is the output of a statistical evaluation.
type EvalReport struct {
	Strategy string       `json:"strategy"`
	Groups   []GroupStats `json:"groups"`

	// Bucket references by mean P&L and win rate; nil when Groups is empty.
	Best           *GroupStats `json:"best_bucket"`
	Worst          *GroupStats `json:"worst_bucket"`
	HighestWinRate *GroupStats `json:"highest_win_rate_bucket"`
}

// EquityPoint is one daily mark of total account equity.
type EquityPoint struct {
	Datetime time.Time `json:"datetime"`
	Equity   float64   `json:"equity"`
}

// TradeLeg is the per-leg record attached to a closed trade.
type TradeLeg struct {
	Side       Side       `json:"side"`
	OptionType OptionType `json:"option_type"`
	Strike     float64    `json:"strike"`
	Expiration time.Time  `json:"expiration"`
	EntryPrice float64    `json:"entry_price"`
	ClosePrice float64    `json:"close_price"`
	Qty        int        `json:"qty"`
}

// TradeRecord is one completed round trip.
type TradeRecord struct {
	ID        string     `json:"id"`
	EntryDate time.Time  `json:"entry_date"`
	ExitDate  time.Time  `json:"exit_date"`
	Legs      []TradeLeg `json:"legs"`
	Quantity  int        `json:"quantity"`
	EntryCost float64    `json:"entry_cost"`
	ExitCost  float64    `json:"exit_cost"`
	PnL       float64    `json:"pnl"`
	DaysHeld  int        `json:"days_held"`
	Reason    ExitReason `json:"exit_reason"`
}

// PerformanceMetrics are derived from the equity curve and trade log.
type PerformanceMetrics struct {
	Sharpe         float64 `json:"sharpe"`
	Sortino        float64 `json:"sortino"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	Calmar         float64 `json:"calmar"`
	VaR95          float64 `json:"var_95"`
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGR           float64 `json:"cagr"`

	AvgTradePnL          float64 `json:"avg_trade_pnl"`
	AvgWinner            float64 `json:"avg_winner"`
	AvgLoser             float64 `json:"avg_loser"`
	AvgDaysHeld          float64 `json:"avg_days_held"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	Expectancy           float64 `json:"expectancy"`

	// Degenerate lists the return and ratio metrics resolved by a
	// zero-denominator convention (zero return stddev, +Inf for
	// positive-over-zero); means over empty sets resolve to 0 without
	// an entry.
	Degenerate []string `json:"degenerate,omitempty"`
}

// MarshalJSON renders non-finite ratios as strings so the output stays
// valid JSON while keeping the documented +Inf conventions in-process.
func (m PerformanceMetrics) MarshalJSON() ([]byte, error) {
	type alias PerformanceMetrics
	return json.Marshal(struct {
		alias
		Sharpe       interface{} `json:"sharpe"`
		Sortino      interface{} `json:"sortino"`
		Calmar       interface{} `json:"calmar"`
		ProfitFactor interface{} `json:"profit_factor"`
	}{
		alias:        alias(m),
		Sharpe:       jsonFloat(m.Sharpe),
		Sortino:      jsonFloat(m.Sortino),
		Calmar:       jsonFloat(m.Calmar),
		ProfitFactor: jsonFloat(m.ProfitFactor),
	})
}

func jsonFloat(v float64) interface{} {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	default:
		return v
	}
}

// BacktestResult is the output of one event-driven simulation.
type BacktestResult struct {
	Strategy    string             `json:"strategy"`
	TradeCount  int                `json:"trade_count"`
	TotalPnL    float64            `json:"total_pnl"`
	Metrics     PerformanceMetrics `json:"metrics"`
	EquityCurve []EquityPoint      `json:"equity_curve"`
	TradeLog    []TradeRecord      `json:"trade_log"`

	// Cancelled marks a partial result returned after cooperative cancellation.
	Cancelled bool `json:"cancelled,omitempty"`
	// SkippedInsufficientCapital counts entries rejected for lack of cash.
	SkippedInsufficientCapital int `json:"skipped_insufficient_capital,omitempty"`
}

// CompareResult is one ranked row of a multi-strategy comparison.
type CompareResult struct {
	Rank           int     `json:"rank"`
	Strategy       string  `json:"strategy"`
	Trades         int     `json:"trades"`
	PnL            float64 `json:"pnl"`
	Sharpe         float64 `json:"sharpe"`
	Sortino        float64 `json:"sortino"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	Calmar         float64 `json:"calmar"`
	TotalReturnPct float64 `json:"total_return_pct"`
	Err            string  `json:"error,omitempty"`
}

// MarshalJSON renders non-finite ratios as strings so the output stays
// valid JSON while keeping the documented +Inf conventions in-process.
func (r CompareResult) MarshalJSON() ([]byte, error) {
	type alias CompareResult
	return json.Marshal(struct {
		alias
		Sharpe       interface{} `json:"sharpe"`
		Sortino      interface{} `json:"sortino"`
		Calmar       interface{} `json:"calmar"`
		ProfitFactor interface{} `json:"profit_factor"`
	}{
		alias:        alias(r),
		Sharpe:       jsonFloat(r.Sharpe),
		Sortino:      jsonFloat(r.Sortino),
		Calmar:       jsonFloat(r.Calmar),
		ProfitFactor: jsonFloat(r.ProfitFactor),
	})
}

// ChainSummary describes a loaded options chain.
type ChainSummary struct {
	Symbol   string    `json:"symbol"`
	Rows     int       `json:"rows"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}
