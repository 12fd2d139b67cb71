package cli

import (
	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func newEvaluateCmd(app *App) *cobra.Command {
	var (
		deltas        string
		maxEntryDTE   int
		exitDTE       int
		dteInterval   int
		deltaInterval float64
		slipModel     string
		fillRatio     float64
		perLeg        float64
		perContract   float64
		baseFee       float64
		minFee        float64
	)

	cmd := &cobra.Command{
		Use:   "evaluate <strategy>",
		Short: "Compute historical P&L statistics bucketed by DTE and delta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			legDeltas, err := parseDeltas(deltas)
			if err != nil {
				return err
			}
			p := models.EvaluateParams{
				Strategy:      args[0],
				LegDeltas:     legDeltas,
				MaxEntryDTE:   maxEntryDTE,
				ExitDTE:       exitDTE,
				DTEInterval:   dteInterval,
				DeltaInterval: deltaInterval,
				Slippage:      parseSlippage(slipModel, fillRatio, perLeg),
			}
			if perContract > 0 || baseFee > 0 || minFee > 0 {
				p.Commission = &models.Commission{PerContract: perContract, BaseFee: baseFee, MinFee: minFee}
			}

			report, err := app.Engine.Evaluate(cmd.Context(), p)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}
			renderEvalReport(output, report)
			return nil
		},
	}

	defaults := app.Config.Defaults
	cmd.Flags().StringVar(&deltas, "deltas", "", "per-leg delta targets as target:min:max[,...] (required)")
	cmd.Flags().IntVar(&maxEntryDTE, "max-entry-dte", defaults.MaxEntryDTE, "maximum days to expiration at entry")
	cmd.Flags().IntVar(&exitDTE, "exit-dte", defaults.ExitDTE, "days to expiration at exit")
	cmd.Flags().IntVar(&dteInterval, "dte-interval", defaults.DTEInterval, "DTE bucket width")
	cmd.Flags().Float64Var(&deltaInterval, "delta-interval", defaults.DeltaInterval, "delta bucket width")
	cmd.Flags().StringVar(&slipModel, "slippage", "mid", "slippage model: mid, spread, liquidity, per_leg")
	cmd.Flags().Float64Var(&fillRatio, "fill-ratio", 0, "liquidity slippage fill ratio")
	cmd.Flags().Float64Var(&perLeg, "per-leg", 0, "per-leg slippage amount")
	cmd.Flags().Float64Var(&perContract, "commission-per-contract", 0, "commission per contract")
	cmd.Flags().Float64Var(&baseFee, "commission-base", 0, "commission base fee")
	cmd.Flags().Float64Var(&minFee, "commission-min", 0, "commission minimum fee")
	cmd.MarkFlagRequired("deltas")
	return cmd
}

func renderEvalReport(output *Output, report *models.EvalReport) {
	output.Bold("Strategy: %s", report.Strategy)
	if len(report.Groups) == 0 {
		output.Warning("No trades survive filtering")
		return
	}

	output.Printf("%-12s %-14s %6s %12s %12s %8s %8s\n",
		"DTE", "Delta", "Count", "Mean", "Median", "Win%", "PF")
	for _, g := range report.Groups {
		output.Printf("%-12s %-14s %6d %12s %12s %7.1f%% %8s\n",
			g.DTERange(), g.DeltaRange(), g.Count,
			formatMoney(g.Mean), formatMoney(g.Median),
			g.WinRate*100, formatRatio(g.ProfitFactor))
	}

	if report.Best != nil {
		output.Println()
		output.Success("Best bucket:    %s x %s (mean %s)",
			report.Best.DTERange(), report.Best.DeltaRange(), formatMoney(report.Best.Mean))
		output.Error("Worst bucket:   %s x %s (mean %s)",
			report.Worst.DTERange(), report.Worst.DeltaRange(), formatMoney(report.Worst.Mean))
		output.Info("Best win rate:  %s x %s (%.1f%%)",
			report.HighestWinRate.DTERange(), report.HighestWinRate.DeltaRange(),
			report.HighestWinRate.WinRate*100)
	}
}
