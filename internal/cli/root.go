// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/APWalter/trade-journal/internal/broker"
	"github.com/APWalter/trade-journal/internal/config"
	"github.com/APWalter/trade-journal/internal/journal"
	"github.com/APWalter/trade-journal/internal/logging"
	"github.com/APWalter/trade-journal/internal/store"
	"github.com/APWalter/trade-journal/internal/syncer"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-30"
)

// App holds the application dependencies.
type App struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Store        store.DataStore
	Fetcher      broker.OrderFetcher
	Orchestrator *syncer.Orchestrator
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.DBPath).Msg("SQLite store initialized")
	}

	// Initialize order source
	if cfg.IsMockMode() {
		app.Fetcher = broker.NewMockBroker()
		logger.Debug().Msg("Mock order source initialized")
	} else {
		app.Fetcher = broker.NewSchwabClient(broker.SchwabConfig{
			BaseURL: cfg.Credentials.Schwab.BaseURL,
			Timeout: cfg.Sync.FetchTimeout,
			Logger:  logger,
		})
		logger.Debug().Msg("Schwab order source initialized")
	}

	if app.Store != nil {
		app.Orchestrator = syncer.NewOrchestrator(syncer.OrchestratorConfig{
			Fetcher:          app.Fetcher,
			Store:            app.Store,
			Indicators:       journal.MockIndicatorSource{},
			Logger:           logger,
			UserID:           cfg.UserID,
			Lookback:         cfg.Sync.Lookback,
			FetchTimeout:     cfg.Sync.FetchTimeout,
			AnalyticsWorkers: cfg.Sync.AnalyticsWorkers,
		})
	}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade Journal - broker order reconciliation engine",
		Long: `Trade Journal reconciles broker order history into round-trip trades.

It fetches filled orders from the Schwab Trader API (or a deterministic
mock source), matches opening and closing fills FIFO per symbol, and
stores the resulting trades with stable deterministic ids so repeated
syncs never duplicate a trade.

Use 'journal help <command>' for more information about a command.`,
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

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addSyncCommands(rootCmd, app)
	addServeCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Journal Configuration")
	output.Printf("  User ID:         %s\n", cfg.UserID)
	output.Printf("  Database:        %s\n", cfg.DBPath)
	output.Println()

	output.Bold("Sync Configuration")
	output.Printf("  Mode:            %s\n", cfg.Sync.Mode)
	output.Printf("  Interval:        %s\n", cfg.Sync.Interval)
	output.Printf("  Tick:            %s\n", cfg.Sync.Tick)
	output.Printf("  Throttle:        %s\n", cfg.Sync.Throttle)
	output.Printf("  Lookback:        %s\n", cfg.Sync.Lookback)
	output.Printf("  Fetch Timeout:   %s\n", cfg.Sync.FetchTimeout)
	output.Printf("  Auto Sync:       %v\n", cfg.Sync.AutoSync)
	output.Printf("  Analytics Workers: %d\n", cfg.Sync.AnalyticsWorkers)
	output.Println()

	output.Bold("API Configuration")
	output.Printf("  Port:            %d\n", cfg.API.Port)
	output.Printf("  Auth:            %v\n", cfg.API.APIKey != "")

	return nil
}
