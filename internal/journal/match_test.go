package journal

import (
	"testing"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

const (
	testAccount = "123456789"
	testUser    = "local"
)

var baseTime = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func fill(id int64, symbol string, instruction models.Instruction, qty, price float64, at time.Time) models.Fill {
	return models.Fill{
		OrderID:     id,
		Instruction: instruction,
		Symbol:      symbol,
		Quantity:    qty,
		Price:       price,
		Time:        at,
	}
}

func TestMatchTradesRoundTrip(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 100, 230, baseTime),
		fill(2, "AAPL", models.InstructionSell, 100, 235, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}

	tr := trades[0]
	if tr.Instrument != "AAPL" {
		t.Errorf("instrument = %q", tr.Instrument)
	}
	if tr.Side != models.SideLong {
		t.Errorf("side = %q, want long", tr.Side)
	}
	if tr.Quantity != 100 {
		t.Errorf("quantity = %v, want 100", tr.Quantity)
	}
	if tr.PnL != 500.00 {
		t.Errorf("pnl = %v, want 500.00", tr.PnL)
	}
	if tr.TimeInPosition != 3600 {
		t.Errorf("timeInPosition = %d, want 3600", tr.TimeInPosition)
	}
	if tr.EntryID != "1" || tr.CloseID != "2" {
		t.Errorf("order ids = %q/%q", tr.EntryID, tr.CloseID)
	}
	if tr.AccountNumber != testAccount || tr.UserID != testUser {
		t.Errorf("ownership = %q/%q", tr.AccountNumber, tr.UserID)
	}
	if tr.ID == "" {
		t.Error("trade id not assigned")
	}
}

func TestMatchTradesShortSide(t *testing.T) {
	fills := []models.Fill{
		fill(1, "TSLA", models.InstructionSellShort, 50, 100, baseTime),
		fill(2, "TSLA", models.InstructionBuyToCover, 50, 90, baseTime.Add(2*time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].Side != models.SideShort {
		t.Errorf("side = %q, want short", trades[0].Side)
	}
	// Short profits when price falls: (90-100)*50*(-1) = 500.
	if trades[0].PnL != 500.00 {
		t.Errorf("pnl = %v, want 500.00", trades[0].PnL)
	}
}

func TestMatchTradesPartialCloseSplitsAcrossOpens(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 10, 230, baseTime),
		fill(2, "AAPL", models.InstructionBuy, 10, 231, baseTime.Add(time.Minute)),
		fill(3, "AAPL", models.InstructionSell, 15, 235, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}

	// FIFO: the first open is consumed fully, the second partially.
	if trades[0].Quantity != 10 || trades[0].EntryID != "1" {
		t.Errorf("first trade qty/entry = %v/%q, want 10/1", trades[0].Quantity, trades[0].EntryID)
	}
	if trades[1].Quantity != 5 || trades[1].EntryID != "2" {
		t.Errorf("second trade qty/entry = %v/%q, want 5/2", trades[1].Quantity, trades[1].EntryID)
	}
	// Both close against the same sell.
	if trades[0].CloseID != "3" || trades[1].CloseID != "3" {
		t.Errorf("close ids = %q/%q, want 3/3", trades[0].CloseID, trades[1].CloseID)
	}
}

func TestMatchTradesPartialOpenRemainsOpen(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 100, 230, baseTime),
		fill(2, "AAPL", models.InstructionSell, 40, 235, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	// The remaining 60 shares are an open position, not a trade.
	if trades[0].Quantity != 40 {
		t.Errorf("quantity = %v, want 40", trades[0].Quantity)
	}
}

func TestMatchTradesSkipsCloseNotAfterOpen(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionSell, 100, 235, baseTime),
		fill(2, "AAPL", models.InstructionBuy, 100, 230, baseTime),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 0 {
		t.Fatalf("got %d trades, want 0: a close at the open's instant must not match", len(trades))
	}
}

func TestMatchTradesLaterCloseStillMatches(t *testing.T) {
	// An early stray close is skipped, but a later close for the same
	// symbol still pairs with the open.
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionSell, 100, 228, baseTime.Add(-time.Hour)),
		fill(2, "AAPL", models.InstructionBuy, 100, 230, baseTime),
		fill(3, "AAPL", models.InstructionSell, 100, 235, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].CloseID != "3" {
		t.Errorf("close id = %q, want 3", trades[0].CloseID)
	}
}

func TestMatchTradesSymbolsDoNotCross(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 100, 230, baseTime),
		fill(2, "TSLA", models.InstructionSell, 100, 350, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 0 {
		t.Fatalf("got %d trades, want 0: fills must only match within a symbol", len(trades))
	}
}

func TestMatchTradesOutputSortedByEntryDate(t *testing.T) {
	fills := []models.Fill{
		fill(1, "TSLA", models.InstructionBuy, 10, 350, baseTime.Add(30*time.Minute)),
		fill(2, "TSLA", models.InstructionSell, 10, 355, baseTime.Add(2*time.Hour)),
		fill(3, "AAPL", models.InstructionBuy, 10, 230, baseTime),
		fill(4, "AAPL", models.InstructionSell, 10, 235, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].Instrument != "AAPL" || trades[1].Instrument != "TSLA" {
		t.Errorf("order = %q, %q; want AAPL then TSLA", trades[0].Instrument, trades[1].Instrument)
	}
}

func TestMatchTradesPnLRounding(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 3, 230.1111, baseTime),
		fill(2, "AAPL", models.InstructionSell, 3, 230.2222, baseTime.Add(time.Hour)),
	}

	trades := MatchTrades(fills, testAccount, testUser)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	// 0.1111 * 3 = 0.3333, rounded to 0.33.
	if trades[0].PnL != 0.33 {
		t.Errorf("pnl = %v, want 0.33", trades[0].PnL)
	}
}

func TestMatchTradesDoesNotMutateInput(t *testing.T) {
	fills := []models.Fill{
		fill(1, "AAPL", models.InstructionBuy, 100, 230, baseTime),
		fill(2, "AAPL", models.InstructionSell, 40, 235, baseTime.Add(time.Hour)),
	}

	MatchTrades(fills, testAccount, testUser)

	if fills[0].Quantity != 100 || fills[1].Quantity != 40 {
		t.Errorf("input fills mutated: %+v", fills)
	}
}
