package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/APWalter/trade-journal/internal/syncer"
)

// addSyncCommands adds the sync command group.
func addSyncCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize broker order history into the journal",
		Long: `Fetch filled orders since the last checkpoint, match round trips
and store the resulting trades. Repeating a sync is safe: trades carry
deterministic ids and duplicates are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Orchestrator == nil {
				return errors.New("store unavailable, cannot sync")
			}

			all, _ := cmd.Flags().GetBool("all")
			account, _ := cmd.Flags().GetString("account")

			if all {
				return runSyncAll(cmd.Context(), app, output)
			}
			if account == "" {
				return errors.New("either --account or --all is required")
			}
			return runSyncOne(cmd.Context(), app, output, account)
		},
	}

	cmd.Flags().String("account", "", "account number to sync")
	cmd.Flags().Bool("all", false, "sync every account with a stored credential")

	rootCmd.AddCommand(cmd)
}

func runSyncOne(ctx context.Context, app *App, output *Output, account string) error {
	result, err := app.Orchestrator.SyncAccount(ctx, account)
	if err != nil {
		output.Error("Sync failed: %v", err)
		return err
	}

	if output.IsJSON() {
		return output.JSON(result)
	}
	output.Success("%s", result.Message)
	if result.SavedCount > 0 {
		output.Printf("  Saved %d trades from %d orders\n", result.SavedCount, result.OrdersCount)
	}
	return nil
}

func runSyncAll(ctx context.Context, app *App, output *Output) error {
	checkpoints, err := app.Store.ListCheckpoints(ctx, app.Config.UserID, syncer.Service)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	synced := 0
	failed := 0
	for i := range checkpoints {
		cp := &checkpoints[i]
		if !cp.HasToken() && !app.Config.IsMockMode() {
			output.Dim("Skipping %s (no credential)", cp.AccountID)
			continue
		}

		result, err := app.Orchestrator.SyncAccount(ctx, cp.AccountID)
		if err != nil {
			output.Error("%s: %v", cp.AccountID, err)
			failed++
			continue
		}
		output.Success("%s: %s", cp.AccountID, result.Message)
		synced++
	}

	if synced == 0 && failed == 0 {
		output.Warning("No accounts to sync. Add one with 'journal accounts add'.")
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d accounts failed to sync", failed, synced+failed)
	}
	return nil
}
