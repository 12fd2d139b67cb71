package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goldspanlabs/optopsy-mcp/internal/config"
	"github.com/goldspanlabs/optopsy-mcp/internal/engine"
	"github.com/goldspanlabs/optopsy-mcp/internal/logging"
	"github.com/goldspanlabs/optopsy-mcp/internal/store"
)

// Version information
const Version = "0.2.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Engine *engine.Engine
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Engine: engine.New(logger),
	}

	dataStore, err := store.NewSQLiteStore(cfg.Data.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, chain summaries will not persist")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.Database).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "optopsy",
		Short: "Options-strategy backtesting and statistical screening engine",
		Long: `Optopsy evaluates multi-leg options strategies against historical
chains: aggregate P&L statistics bucketed by DTE and delta, and a
capital-constrained day-by-day simulation with a trade log, equity
curve and portfolio risk metrics.

Load a chain with 'optopsy data load', then run 'evaluate',
'backtest' or 'compare'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optopsy)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newStrategiesCmd(app))
	rootCmd.AddCommand(newEvaluateCmd(app))
	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("optopsy v%s\n", Version)
			}
		},
	}
}
