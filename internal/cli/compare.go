package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

func newCompareCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Backtest multiple strategies and rank the results",
		Long: `Compare reads a JSON file with a list of strategies and shared
simulation parameters, runs a backtest for each, and ranks them by
Sharpe ratio (NaN last) then total P&L.

The file holds a CompareParams document:

  {
    "strategies": [
      {"name": "iron_condor", "leg_deltas": [...], "max_entry_dte": 45,
       "exit_dte": 7, "slippage": {"model": "mid"}},
      ...
    ],
    "sim_params": {"capital": 100000, "quantity": 1, "multiplier": 100,
                   "max_positions": 5, "selector": "nearest"}
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			data, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrapf(err, "reading compare file %s", file)
			}
			var params models.CompareParams
			if err := json.Unmarshal(data, &params); err != nil {
				return errors.NewValidationError("compare", file, "malformed JSON: "+err.Error())
			}

			results, err := app.Engine.Compare(cmd.Context(), params)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(results)
			}
			renderCompare(output, results)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file with strategies and shared sim params (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func renderCompare(output *Output, results []models.CompareResult) {
	output.Printf("%4s %-24s %7s %12s %8s %8s %8s %8s\n",
		"Rank", "Strategy", "Trades", "P&L", "Sharpe", "MaxDD%", "Win%", "PF")
	for _, r := range results {
		if r.Err != "" {
			output.Error("%4d %-24s failed: %s", r.Rank, r.Strategy, r.Err)
			continue
		}
		output.Printf("%4d %-24s %7d %12s %8s %7.1f%% %7.1f%% %8s\n",
			r.Rank, r.Strategy, r.Trades, formatMoney(r.PnL),
			formatRatio(r.Sharpe), r.MaxDrawdown*100, r.WinRate*100,
			formatRatio(r.ProfitFactor))
	}
}
