package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/APWalter/trade-journal/internal/models"
	"github.com/APWalter/trade-journal/internal/store"
)

// addTradeCommands adds the trades command group.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Browse and export recorded trades",
	}

	cmd.AddCommand(newTradesListCmd(app))
	cmd.AddCommand(newTradesExportCmd(app))

	rootCmd.AddCommand(cmd)
}

func tradeFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("account", "", "filter by account number")
	cmd.Flags().String("instrument", "", "filter by instrument symbol")
	cmd.Flags().String("side", "", "filter by side (long|short)")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 100, "maximum number of trades")
}

func parseTradeFilter(cmd *cobra.Command, userID string) (store.TradeFilter, error) {
	filter := store.TradeFilter{UserID: userID}

	filter.AccountNumber, _ = cmd.Flags().GetString("account")
	filter.Instrument, _ = cmd.Flags().GetString("instrument")
	filter.Side, _ = cmd.Flags().GetString("side")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q: %w", v, err)
		}
		filter.StartDate = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q: %w", v, err)
		}
		filter.EndDate = t
	}

	return filter, nil
}

func newTradesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store unavailable")
			}

			filter, err := parseTradeFilter(cmd, app.Config.UserID)
			if err != nil {
				return err
			}

			trades, err := app.Store.GetTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Warning("No trades found.")
				return nil
			}

			table := NewTable(output, "ENTRY", "SYMBOL", "SIDE", "QTY", "ENTRY PX", "CLOSE PX", "HELD", "P&L")
			var total float64
			for i := range trades {
				t := &trades[i]
				table.AddRow(
					FormatTime(t.EntryDate),
					t.Instrument,
					string(t.Side),
					FormatQuantity(t.Quantity),
					FormatUSD(t.EntryPrice),
					FormatUSD(t.ClosePrice),
					FormatDuration(t.TimeInPosition),
					output.FormatPnL(t.PnL),
				)
				total += t.PnL
			}
			table.Render()
			output.Println()
			output.Printf("%d trades, net P&L %s\n", len(trades), output.FormatPnL(total))
			return nil
		},
	}

	tradeFilterFlags(cmd)
	return cmd
}

func newTradesExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.New("store unavailable")
			}

			filter, err := parseTradeFilter(cmd, app.Config.UserID)
			if err != nil {
				return err
			}

			trades, err := app.Store.GetTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(trades) == 0 {
				output.Warning("No trades to export.")
				return nil
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" || path == "-" {
				return gocsv.Marshal(exportRows(trades), cmd.OutOrStdout())
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			defer f.Close()

			if err := gocsv.MarshalFile(exportRows(trades), f); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			output.Success("Exported %d trades to %s", len(trades), path)
			return nil
		},
	}

	tradeFilterFlags(cmd)
	cmd.Flags().String("output", "", "output file (default: stdout)")
	return cmd
}

func exportRows(trades []models.Trade) []*models.Trade {
	rows := make([]*models.Trade, len(trades))
	for i := range trades {
		rows[i] = &trades[i]
	}
	return rows
}
