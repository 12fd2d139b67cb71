package models

import (
	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
)

func validationErr(field string, value interface{}, message string) error {
	return errors.NewValidationError(field, value, message)
}

// EvaluateParams drives the statistical evaluation of one strategy.
type EvaluateParams struct {
	Strategy      string        `json:"strategy"`
	LegDeltas     []TargetRange `json:"leg_deltas"`
	MaxEntryDTE   int           `json:"max_entry_dte"`
	ExitDTE       int           `json:"exit_dte"`
	DTEInterval   int           `json:"dte_interval"`
	DeltaInterval float64       `json:"delta_interval"`
	Slippage      Slippage      `json:"slippage"`
	Commission    *Commission   `json:"commission,omitempty"`
}

// Validate checks parameter ranges before any engine work starts.
func (p EvaluateParams) Validate() error {
	if p.Strategy == "" {
		return validationErr("strategy", p.Strategy, "must not be empty")
	}
	if len(p.LegDeltas) == 0 {
		return validationErr("leg_deltas", len(p.LegDeltas), "at least one delta target required")
	}
	for _, d := range p.LegDeltas {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	if p.ExitDTE < 0 {
		return validationErr("exit_dte", p.ExitDTE, "must be >= 0")
	}
	if p.MaxEntryDTE < p.ExitDTE {
		return validationErr("max_entry_dte", p.MaxEntryDTE, "must be >= exit_dte")
	}
	if p.DTEInterval < 1 {
		return validationErr("dte_interval", p.DTEInterval, "must be >= 1")
	}
	if p.DeltaInterval <= 0 || p.DeltaInterval > 1 {
		return validationErr("delta_interval", p.DeltaInterval, "must be in (0, 1]")
	}
	if err := p.Slippage.Validate(); err != nil {
		return err
	}
	if p.Commission != nil {
		if err := p.Commission.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BacktestParams drives one event-driven simulation run.
type BacktestParams struct {
	Strategy    string        `json:"strategy"`
	LegDeltas   []TargetRange `json:"leg_deltas"`
	MaxEntryDTE int           `json:"max_entry_dte"`
	ExitDTE     int           `json:"exit_dte"`
	Slippage    Slippage      `json:"slippage"`
	Commission  *Commission   `json:"commission,omitempty"`

	Capital      float64       `json:"capital"`
	Quantity     int           `json:"quantity"`
	Multiplier   int           `json:"multiplier"`
	MaxPositions int           `json:"max_positions"`
	Selector     TradeSelector `json:"selector"`

	StopLoss    *float64 `json:"stop_loss,omitempty"`
	TakeProfit  *float64 `json:"take_profit,omitempty"`
	MaxHoldDays *int     `json:"max_hold_days,omitempty"`
}

// Validate checks parameter ranges before any engine work starts.
func (p BacktestParams) Validate() error {
	if p.Strategy == "" {
		return validationErr("strategy", p.Strategy, "must not be empty")
	}
	if len(p.LegDeltas) == 0 {
		return validationErr("leg_deltas", len(p.LegDeltas), "at least one delta target required")
	}
	for _, d := range p.LegDeltas {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	if p.ExitDTE < 0 {
		return validationErr("exit_dte", p.ExitDTE, "must be >= 0")
	}
	if p.MaxEntryDTE < p.ExitDTE {
		return validationErr("max_entry_dte", p.MaxEntryDTE, "must be >= exit_dte")
	}
	if err := p.Slippage.Validate(); err != nil {
		return err
	}
	if p.Commission != nil {
		if err := p.Commission.Validate(); err != nil {
			return err
		}
	}
	if p.Capital <= 0 {
		return validationErr("capital", p.Capital, "must be > 0")
	}
	if p.Quantity <= 0 {
		return validationErr("quantity", p.Quantity, "must be > 0")
	}
	if p.Multiplier <= 0 {
		return validationErr("multiplier", p.Multiplier, "must be > 0")
	}
	if p.MaxPositions < 1 {
		return validationErr("max_positions", p.MaxPositions, "must be >= 1")
	}
	if err := p.Selector.Validate(); err != nil {
		return err
	}
	if p.StopLoss != nil && *p.StopLoss < 0 {
		return validationErr("stop_loss", *p.StopLoss, "must be >= 0")
	}
	if p.TakeProfit != nil && *p.TakeProfit < 0 {
		return validationErr("take_profit", *p.TakeProfit, "must be >= 0")
	}
	if p.MaxHoldDays != nil && *p.MaxHoldDays < 1 {
		return validationErr("max_hold_days", *p.MaxHoldDays, "must be >= 1")
	}
	return nil
}

// SimParams are the simulation knobs shared across a comparison run.
type SimParams struct {
	Capital      float64       `json:"capital"`
	Quantity     int           `json:"quantity"`
	Multiplier   int           `json:"multiplier"`
	MaxPositions int           `json:"max_positions"`
	Selector     TradeSelector `json:"selector"`
	StopLoss     *float64      `json:"stop_loss,omitempty"`
	TakeProfit   *float64      `json:"take_profit,omitempty"`
	MaxHoldDays  *int          `json:"max_hold_days,omitempty"`
}

// CompareEntry is one strategy configuration inside a comparison.
type CompareEntry struct {
	Name        string        `json:"name"`
	LegDeltas   []TargetRange `json:"leg_deltas"`
	MaxEntryDTE int           `json:"max_entry_dte"`
	ExitDTE     int           `json:"exit_dte"`
	Slippage    Slippage      `json:"slippage"`
	Commission  *Commission   `json:"commission,omitempty"`
}

// CompareParams drives a multi-strategy comparison.
type CompareParams struct {
	Strategies []CompareEntry `json:"strategies"`
	SimParams  SimParams      `json:"sim_params"`
}

// Backtest expands one entry into full backtest parameters using the
// shared simulation knobs.
func (p CompareParams) Backtest(e CompareEntry) BacktestParams {
	return BacktestParams{
		Strategy:     e.Name,
		LegDeltas:    e.LegDeltas,
		MaxEntryDTE:  e.MaxEntryDTE,
		ExitDTE:      e.ExitDTE,
		Slippage:     e.Slippage,
		Commission:   e.Commission,
		Capital:      p.SimParams.Capital,
		Quantity:     p.SimParams.Quantity,
		Multiplier:   p.SimParams.Multiplier,
		MaxPositions: p.SimParams.MaxPositions,
		Selector:     p.SimParams.Selector,
		StopLoss:     p.SimParams.StopLoss,
		TakeProfit:   p.SimParams.TakeProfit,
		MaxHoldDays:  p.SimParams.MaxHoldDays,
	}
}

// Validate checks every entry and the shared simulation parameters.
func (p CompareParams) Validate() error {
	if len(p.Strategies) < 2 {
		return validationErr("strategies", len(p.Strategies), "at least two strategies required")
	}
	for _, e := range p.Strategies {
		bp := p.Backtest(e)
		bp.ApplyDefaults()
		if err := bp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultMultiplier is the conventional equity-option contract size.
const DefaultMultiplier = 100

// ApplyDefaults fills zero-valued knobs with their conventional defaults.
func (p *BacktestParams) ApplyDefaults() {
	if p.Multiplier == 0 {
		p.Multiplier = DefaultMultiplier
	}
	if p.Selector == "" {
		p.Selector = SelectNearest
	}
	if p.Slippage.Model == "" {
		p.Slippage.Model = SlippageMid
	}
}

// ApplyDefaults fills zero-valued knobs with their conventional defaults.
func (p *EvaluateParams) ApplyDefaults() {
	if p.Slippage.Model == "" {
		p.Slippage.Model = SlippageMid
	}
}
