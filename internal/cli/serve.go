package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/APWalter/trade-journal/internal/api"
	"github.com/APWalter/trade-journal/internal/syncer"
)

// addServeCommands adds the serve command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journal API server",
		Long: `Start the REST API server. With auto-sync enabled in config, a
background scheduler periodically syncs every account with a stored
credential.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Orchestrator == nil {
				return errors.New("store unavailable, cannot serve")
			}
			return runServe(cmd.Context(), app)
		},
	}

	rootCmd.AddCommand(cmd)
}

func runServe(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scheduler *syncer.Scheduler
	if app.Config.Sync.AutoSync {
		scheduler = syncer.NewScheduler(syncer.SchedulerConfig{
			Orchestrator: app.Orchestrator,
			Store:        app.Store,
			Logger:       app.Logger,
			UserID:       app.Config.UserID,
			Interval:     app.Config.Sync.Interval,
			Tick:         app.Config.Sync.Tick,
			Throttle:     app.Config.Sync.Throttle,
		})
		scheduler.Start(ctx)
		defer scheduler.Stop()
		app.Logger.Info().
			Dur("interval", app.Config.Sync.Interval).
			Msg("Auto-sync scheduler started")
	}

	server := api.NewServer(api.ServerConfig{
		Store:        app.Store,
		Orchestrator: app.Orchestrator,
		Scheduler:    scheduler,
		Logger:       app.Logger,
		UserID:       app.Config.UserID,
		Port:         app.Config.API.Port,
		APIKey:       app.Config.API.APIKey,
		CORSOrigin:   app.Config.API.CORSOrigin,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
