package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/APWalter/trade-journal/internal/models"
	"github.com/APWalter/trade-journal/internal/syncer"
)

// addAccountCommands adds the accounts command group.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage synchronized broker accounts",
	}

	cmd.AddCommand(newAccountsListCmd(app))
	cmd.AddCommand(newAccountsAddCmd(app))
	cmd.AddCommand(newAccountsRemoveCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAccountsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and their sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store unavailable")
			}

			checkpoints, err := app.Store.ListCheckpoints(cmd.Context(), app.Config.UserID, syncer.Service)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(checkpoints)
			}

			if len(checkpoints) == 0 {
				output.Warning("No accounts configured. Add one with 'journal accounts add'.")
				return nil
			}

			table := NewTable(output, "ACCOUNT", "LAST SYNCED", "CREDENTIAL", "ADDED")
			for i := range checkpoints {
				cp := &checkpoints[i]
				cred := output.DimText("none")
				if cp.HasToken() {
					cred = output.Green("stored")
					if cp.TokenExpiresAt != nil && cp.TokenExpiresAt.Before(time.Now()) {
						cred = output.Red("expired")
					}
				}
				table.AddRow(
					cp.AccountID,
					FormatTime(cp.LastSyncedAt),
					cred,
					FormatTime(cp.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newAccountsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <account>",
		Short: "Register an account for synchronization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store unavailable")
			}

			token, _ := cmd.Flags().GetString("token")

			cp := &models.SyncCheckpoint{
				UserID:       app.Config.UserID,
				Service:      syncer.Service,
				AccountID:    args[0],
				LastSyncedAt: time.Now().Add(-app.Config.Sync.Lookback),
				Token:        token,
			}
			if err := app.Store.CreateCheckpoint(cmd.Context(), cp); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(cp)
			}
			output.Success("Account %s registered", args[0])
			return nil
		},
	}

	cmd.Flags().String("token", "", "broker access token for this account")
	return cmd
}

func newAccountsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account>",
		Short: "Remove an account's sync state",
		Long: `Delete the account's checkpoint and stored credential. Trades
already recorded for the account are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store unavailable")
			}

			if err := app.Store.DeleteCheckpoint(cmd.Context(), app.Config.UserID, syncer.Service, args[0]); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]bool{"removed": true})
			}
			output.Success("Account %s removed", args[0])
			return nil
		},
	}
}
