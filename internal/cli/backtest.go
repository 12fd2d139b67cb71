package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/engine"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
	"github.com/goldspanlabs/optopsy-mcp/internal/signals"
	"github.com/goldspanlabs/optopsy-mcp/internal/store"
)

func newBacktestCmd(app *App) *cobra.Command {
	var (
		deltas      string
		maxEntryDTE int
		exitDTE     int
		slipModel   string
		fillRatio   float64
		perLeg      float64
		perContract float64
		baseFee     float64
		minFee      float64

		capital      float64
		quantity     int
		multiplier   int
		maxPositions int
		selector     string
		stopLoss     float64
		takeProfit   float64
		maxHoldDays  int

		entrySignal string
		exitSignal  string
		ohlcvFile   string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "backtest <strategy>",
		Short: "Run the capital-constrained day-by-day simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			legDeltas, err := parseDeltas(deltas)
			if err != nil {
				return err
			}

			p := models.BacktestParams{
				Strategy:     args[0],
				LegDeltas:    legDeltas,
				MaxEntryDTE:  maxEntryDTE,
				ExitDTE:      exitDTE,
				Slippage:     parseSlippage(slipModel, fillRatio, perLeg),
				Capital:      capital,
				Quantity:     quantity,
				Multiplier:   multiplier,
				MaxPositions: maxPositions,
				Selector:     models.TradeSelector(selector),
			}
			if perContract > 0 || baseFee > 0 || minFee > 0 {
				p.Commission = &models.Commission{PerContract: perContract, BaseFee: baseFee, MinFee: minFee}
			}
			if cmd.Flags().Changed("stop-loss") {
				p.StopLoss = &stopLoss
			}
			if cmd.Flags().Changed("take-profit") {
				p.TakeProfit = &takeProfit
			}
			if cmd.Flags().Changed("max-hold-days") {
				p.MaxHoldDays = &maxHoldDays
			}

			entryGate, exitGate, err := buildGates(cmd, app, entrySignal, exitSignal, ohlcvFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			res, err := app.Engine.Backtest(ctx, p, entryGate, exitGate)
			if err != nil {
				return err
			}
			res.EquityCurve = downsampleEquity(res.EquityCurve)

			if output.IsJSON() {
				return output.JSON(res)
			}
			renderBacktest(output, res)
			return nil
		},
	}

	defaults := app.Config.Defaults
	cmd.Flags().StringVar(&deltas, "deltas", "", "per-leg delta targets as target:min:max[,...] (required)")
	cmd.Flags().IntVar(&maxEntryDTE, "max-entry-dte", defaults.MaxEntryDTE, "maximum days to expiration at entry")
	cmd.Flags().IntVar(&exitDTE, "exit-dte", defaults.ExitDTE, "days to expiration at exit")
	cmd.Flags().StringVar(&slipModel, "slippage", "mid", "slippage model: mid, spread, liquidity, per_leg")
	cmd.Flags().Float64Var(&fillRatio, "fill-ratio", 0, "liquidity slippage fill ratio")
	cmd.Flags().Float64Var(&perLeg, "per-leg", 0, "per-leg slippage amount")
	cmd.Flags().Float64Var(&perContract, "commission-per-contract", 0, "commission per contract")
	cmd.Flags().Float64Var(&baseFee, "commission-base", 0, "commission base fee")
	cmd.Flags().Float64Var(&minFee, "commission-min", 0, "commission minimum fee")

	cmd.Flags().Float64Var(&capital, "capital", defaults.Capital, "starting capital")
	cmd.Flags().IntVar(&quantity, "quantity", defaults.Quantity, "contracts per leg unit")
	cmd.Flags().IntVar(&multiplier, "multiplier", defaults.Multiplier, "contract multiplier")
	cmd.Flags().IntVar(&maxPositions, "max-positions", defaults.MaxPositions, "maximum concurrent positions")
	cmd.Flags().StringVar(&selector, "selector", string(models.SelectNearest), "trade selector: nearest, highest_premium, lowest_premium, first")
	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0, "stop loss as a fraction of entry cost")
	cmd.Flags().Float64Var(&takeProfit, "take-profit", 0, "take profit as a fraction of entry cost")
	cmd.Flags().IntVar(&maxHoldDays, "max-hold-days", 0, "maximum holding period in days")

	cmd.Flags().StringVar(&entrySignal, "entry-signal", "", "entry signal spec as JSON")
	cmd.Flags().StringVar(&exitSignal, "exit-signal", "", "exit signal spec as JSON")
	cmd.Flags().StringVar(&ohlcvFile, "ohlcv", "", "OHLCV CSV for signal evaluation (falls back to the candle cache)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall run timeout (0 disables)")
	cmd.MarkFlagRequired("deltas")
	return cmd
}

// buildGates resolves entry and exit signal gates from JSON specs and
// an OHLCV source: an explicit file, or the candle cache keyed by the
// loaded chain's symbol.
func buildGates(cmd *cobra.Command, app *App, entrySpec, exitSpec, ohlcvFile string) (engine.SignalGate, engine.SignalGate, error) {
	if entrySpec == "" && exitSpec == "" {
		return nil, nil, nil
	}

	var candles []models.Candle
	var err error
	if ohlcvFile != "" {
		candles, err = store.LoadCandlesCSV(ohlcvFile)
	} else if app.Store != nil {
		if summary, serr := app.Engine.Summary(); serr == nil {
			candles, err = app.Store.GetCandles(cmd.Context(), summary.Symbol, time.Time{}, time.Time{})
		}
	}
	if err != nil {
		return nil, nil, err
	}

	makeGate := func(raw string) (engine.SignalGate, error) {
		if raw == "" {
			return nil, nil
		}
		spec, err := signals.ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		dates, err := signals.ActiveDates(spec, candles)
		if err != nil {
			return nil, err
		}
		return signals.Gate(dates), nil
	}

	entryGate, err := makeGate(entrySpec)
	if err != nil {
		return nil, nil, err
	}
	exitGate, err := makeGate(exitSpec)
	if err != nil {
		return nil, nil, err
	}
	return entryGate, exitGate, nil
}

func renderBacktest(output *Output, res *models.BacktestResult) {
	output.Bold("Strategy: %s", res.Strategy)
	if res.Cancelled {
		output.Warning("Run cancelled; results are partial")
	}

	output.Printf("  Trades:        %d\n", res.TradeCount)
	output.Printf("  Total P&L:     %s\n", formatMoney(res.TotalPnL))
	if res.SkippedInsufficientCapital > 0 {
		output.Warning("  Skipped entries (insufficient capital): %d", res.SkippedInsufficientCapital)
	}

	m := res.Metrics
	output.Println()
	output.Bold("Metrics")
	output.Printf("  Sharpe:        %s\n", formatRatio(m.Sharpe))
	output.Printf("  Sortino:       %s\n", formatRatio(m.Sortino))
	output.Printf("  Calmar:        %s\n", formatRatio(m.Calmar))
	output.Printf("  Max drawdown:  %.2f%%\n", m.MaxDrawdown*100)
	output.Printf("  CAGR:          %.2f%%\n", m.CAGR*100)
	output.Printf("  VaR 95%%:       %.4f\n", m.VaR95)
	output.Printf("  Win rate:      %.1f%%\n", m.WinRate*100)
	output.Printf("  Profit factor: %s\n", formatRatio(m.ProfitFactor))
	output.Printf("  Expectancy:    %s\n", formatMoney(m.Expectancy))
	for _, note := range m.Degenerate {
		output.Dim("  note: %s", note)
	}

	if len(res.TradeLog) > 0 {
		output.Println()
		output.Bold("Trades")
		for _, tr := range res.TradeLog {
			output.Printf("  %s -> %s  %3dd  %-12s %s\n",
				tr.EntryDate.Format(time.DateOnly), tr.ExitDate.Format(time.DateOnly),
				tr.DaysHeld, tr.Reason, formatMoney(tr.PnL))
		}
	}
}
