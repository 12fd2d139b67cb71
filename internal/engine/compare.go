package engine

import (
	"context"
	"math"
	"sort"

	"github.com/sourcegraph/conc/iter"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// Compare runs a backtest per entry with shared simulation parameters
// and ranks the results by Sharpe (descending, NaN last) then total
// P&L. Individual backtests run in parallel; result order is by input
// index before ranking is applied.
func (e *Engine) Compare(ctx context.Context, p models.CompareParams) ([]models.CompareResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := e.Chain(); err != nil {
		return nil, err
	}

	results := iter.Map(p.Strategies, func(entry *models.CompareEntry) models.CompareResult {
		bt, err := e.Backtest(ctx, p.Backtest(*entry), nil, nil)
		if err != nil {
			e.log.Warn().Str("strategy", entry.Name).Err(err).Msg("comparison entry failed")
			return models.CompareResult{Strategy: entry.Name, Err: err.Error()}
		}
		return models.CompareResult{
			Strategy:       entry.Name,
			Trades:         bt.TradeCount,
			PnL:            bt.TotalPnL,
			Sharpe:         bt.Metrics.Sharpe,
			Sortino:        bt.Metrics.Sortino,
			MaxDrawdown:    bt.Metrics.MaxDrawdown,
			WinRate:        bt.Metrics.WinRate,
			ProfitFactor:   bt.Metrics.ProfitFactor,
			Calmar:         bt.Metrics.Calmar,
			TotalReturnPct: bt.Metrics.TotalReturnPct,
		}
	})

	ranked := make([]int, len(results))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := results[ranked[a]], results[ranked[b]]
		aNaN, bNaN := math.IsNaN(ra.Sharpe), math.IsNaN(rb.Sharpe)
		if aNaN != bNaN {
			return bNaN
		}
		if !aNaN && ra.Sharpe != rb.Sharpe {
			return ra.Sharpe > rb.Sharpe
		}
		return ra.PnL > rb.PnL
	})
	for rank, idx := range ranked {
		results[idx].Rank = rank + 1
	}

	out := make([]models.CompareResult, len(results))
	for i, idx := range ranked {
		out[i] = results[idx]
	}
	return out, nil
}
