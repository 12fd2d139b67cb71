package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/store"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Chain and OHLCV data management",
	}
	cmd.AddCommand(newDataLoadCmd(app))
	cmd.AddCommand(newDataStatusCmd(app))
	cmd.AddCommand(newDataCandlesCmd(app))
	return cmd
}

func newDataLoadCmd(app *App) *cobra.Command {
	var (
		file  string
		start string
		end   string
	)
	cmd := &cobra.Command{
		Use:   "load <symbol>",
		Short: "Load an options chain CSV into the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := args[0]

			from, err := parseOptionalDay(start)
			if err != nil {
				return err
			}
			to, err := parseOptionalDay(end)
			if err != nil {
				return err
			}

			c, err := store.LoadChainCSV(file, from, to)
			if err != nil {
				return err
			}
			app.Engine.SetChain(symbol, c)

			summary := c.Summary(symbol)
			summary.LoadedAt = time.Now().UTC()
			if app.Store != nil {
				if err := app.Store.SaveChainSummary(cmd.Context(), summary); err != nil {
					app.Logger.Warn().Err(err).Msg("failed to persist chain summary")
				}
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}
			output.Success("Loaded %d rows for %s", summary.Rows, symbol)
			output.Printf("  Date range: %s to %s\n",
				summary.Start.Format(time.DateOnly), summary.End.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "chain CSV file path (required)")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newDataStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the loaded chain summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			summary, err := app.Engine.Summary()
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summary)
			}
			output.Bold("Chain: %s", summary.Symbol)
			output.Printf("  Rows:  %d\n", summary.Rows)
			output.Printf("  Range: %s to %s\n",
				summary.Start.Format(time.DateOnly), summary.End.Format(time.DateOnly))
			return nil
		},
	}
}

func newDataCandlesCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "candles <symbol>",
		Short: "Load a daily OHLCV CSV into the candle cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			candles, err := store.LoadCandlesCSV(file)
			if err != nil {
				return err
			}
			if app.Store != nil {
				if err := app.Store.SaveCandles(cmd.Context(), args[0], candles); err != nil {
					return err
				}
			}
			if output.IsJSON() {
				return output.JSON(map[string]int{"candles": len(candles)})
			}
			output.Success("Cached %d candles for %s", len(candles), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "OHLCV CSV file path (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func parseOptionalDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return chain.ParseDay(s)
}
