package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
	"github.com/goldspanlabs/optopsy-mcp/internal/performance"
	"github.com/goldspanlabs/optopsy-mcp/internal/strategies"
)

// Engine holds the shared loaded chain and runs the analytical
// operations against it. The chain reference is under a readers-writer
// lock: loads acquire exclusively, analytical operations acquire shared
// access and may run in parallel across distinct parameter sets.
type Engine struct {
	mu     sync.RWMutex
	chain  *chain.Chain
	symbol string

	log zerolog.Logger
}

// New creates an engine with no chain loaded.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// SetChain replaces the shared chain. The chain must not be mutated
// after being handed over.
func (e *Engine) SetChain(symbol string, c *chain.Chain) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.symbol = symbol
	e.chain = c
	e.log.Info().Str("symbol", symbol).Int("rows", c.Len()).Msg("chain loaded")
}

// Chain returns the shared chain, or ErrNoData when none is loaded.
func (e *Engine) Chain() (*chain.Chain, string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.chain == nil {
		return nil, "", errors.ErrNoData
	}
	return e.chain, e.symbol, nil
}

// Summary describes the loaded chain.
func (e *Engine) Summary() (models.ChainSummary, error) {
	c, symbol, err := e.Chain()
	if err != nil {
		return models.ChainSummary{}, err
	}
	return c.Summary(symbol), nil
}

// resolve looks up the strategy and applies per-leg delta overrides.
func resolve(name string, deltas []models.TargetRange) (models.StrategyDef, error) {
	def, ok := strategies.Find(name)
	if !ok {
		return models.StrategyDef{}, errors.Wrapf(errors.ErrStrategyNotFound, "strategy %q", name)
	}
	if len(deltas) != len(def.Legs) {
		return models.StrategyDef{}, errors.NewValidationError(
			"leg_deltas", len(deltas),
			"must match the strategy's leg count")
	}
	for i := range def.Legs {
		def.Legs[i].Delta = deltas[i]
	}
	return def, nil
}

// Evaluate computes aggregate historical P&L statistics bucketed by
// entry DTE and primary-leg delta. Strategies that filter to zero
// trades return an empty report, not an error.
func (e *Engine) Evaluate(ctx context.Context, p models.EvaluateParams) (*models.EvalReport, error) {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, _, err := e.Chain()
	if err != nil {
		return nil, err
	}
	def, err := resolve(p.Strategy, p.LegDeltas)
	if err != nil {
		return nil, err
	}

	report := &models.EvalReport{Strategy: def.Name, Groups: []models.GroupStats{}}

	legRows := make([][]MatchedLeg, len(def.Legs))
	for i, leg := range def.Legs {
		maxDTE := p.MaxEntryDTE
		if leg.Cycle == models.CycleSecondary {
			maxDTE = p.MaxEntryDTE * 2
		}
		entries := FilterLeg(c, leg, maxDTE, p.ExitDTE)
		matched := MatchEntryExit(c, entries, p.ExitDTE)
		if len(matched) == 0 {
			return report, nil
		}
		legRows[i] = matched
	}

	joined := JoinLegs(c, def, legRows)
	if len(joined) == 0 {
		return report, nil
	}

	commission := models.Commission{}
	if p.Commission != nil {
		commission = *p.Commission
	}

	trades := make([]TradePnL, 0, len(joined))
	for _, row := range joined {
		pnl := 0.0
		contracts := 0
		for i, m := range row.Legs {
			leg := def.Legs[i]
			pnl += LegPnL(
				c.Bid[m.Entry], c.Ask[m.Entry],
				c.Bid[m.Exit], c.Ask[m.Exit],
				leg.Side, p.Slippage, leg.Qty, models.DefaultMultiplier)
			q := leg.Qty
			if q < 0 {
				q = -q
			}
			contracts += q
		}
		pnl -= commission.Calculate(contracts) * 2 // entry + exit

		primary := row.Legs[0].Entry
		absDelta := c.Delta[primary]
		if absDelta < 0 {
			absDelta = -absDelta
		}
		trades = append(trades, TradePnL{
			PnL:      pnl,
			EntryDTE: models.DTE(row.QuoteDate, row.Expiration),
			AbsDelta: absDelta,
		})
	}

	report.Groups = Aggregate(trades, p.ExitDTE, p.DTEInterval, p.DeltaInterval)
	annotate(report)
	return report, nil
}

// annotate fills the best / worst / highest-win-rate bucket references.
func annotate(r *models.EvalReport) {
	for i := range r.Groups {
		g := &r.Groups[i]
		if r.Best == nil || g.Mean > r.Best.Mean {
			r.Best = g
		}
		if r.Worst == nil || g.Mean < r.Worst.Mean {
			r.Worst = g
		}
		if r.HighestWinRate == nil || g.WinRate > r.HighestWinRate.WinRate {
			r.HighestWinRate = g
		}
	}
}

// Backtest runs the capital-constrained event-driven simulation.
// Strategies with zero surviving candidates produce a flat equity
// curve at capital, not an error.
func (e *Engine) Backtest(ctx context.Context, p models.BacktestParams, entryGate, exitGate SignalGate) (*models.BacktestResult, error) {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, _, err := e.Chain()
	if err != nil {
		return nil, err
	}
	def, err := resolve(p.Strategy, p.LegDeltas)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table := BuildPriceTable(c)
	candidates := FindEntryCandidates(c, def, p)
	if candidates == nil {
		e.log.Warn().Str("strategy", def.Name).Msg("no entry candidates survive filtering")
	}

	sim := &Simulator{
		Table:     table,
		Params:    p,
		Def:       def,
		EntryGate: entryGate,
		ExitGate:  exitGate,
		Log:       e.log.With().Str("strategy", def.Name).Logger(),
	}
	res := sim.Run(ctx, candidates)
	res.Metrics = performance.Calculate(res.EquityCurve, res.TradeLog, p.Capital)

	e.log.Info().
		Str("strategy", def.Name).
		Int("trades", res.TradeCount).
		Float64("total_pnl", res.TotalPnL).
		Dur("elapsed", time.Since(start)).
		Bool("cancelled", res.Cancelled).
		Msg("backtest complete")
	return res, nil
}
