package journal

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

// workingFill is the matcher's private working copy of a fill. The
// remaining quantity is mutated during matching; the extracted fill
// records themselves are never touched.
type workingFill struct {
	fill      models.Fill
	remaining float64
}

// MatchTrades pairs opening and closing fills into round-trip trades.
//
// Fills are sorted chronologically and grouped by symbol. Within each
// symbol, opening and closing fills form two FIFO queues that are
// matched head against head for min(openQty, closeQty). A partially
// consumed head stays at the front of its queue, which is how partial
// fills split across multiple round trips are handled. Unmatched
// remainders are open positions, not trades, and are dropped; they are
// matched on a later sync once their closing fill arrives.
//
// FIFO per symbol is the one matching policy this engine implements.
// It must not change: ids derived from emitted trades feed historical
// dedup, so a policy change would re-identify past trades.
func MatchTrades(fills []models.Fill, accountNumber, userID string) []models.Trade {
	sorted := make([]models.Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	// Group by symbol, preserving first-appearance order so output is
	// deterministic before the final sort.
	bySymbol := make(map[string][]models.Fill)
	var symbols []string
	for _, fill := range sorted {
		if _, seen := bySymbol[fill.Symbol]; !seen {
			symbols = append(symbols, fill.Symbol)
		}
		bySymbol[fill.Symbol] = append(bySymbol[fill.Symbol], fill)
	}

	var trades []models.Trade
	for _, symbol := range symbols {
		trades = append(trades, matchSymbol(bySymbol[symbol], accountNumber, userID)...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryDate.Before(trades[j].EntryDate)
	})

	return trades
}

func matchSymbol(fills []models.Fill, accountNumber, userID string) []models.Trade {
	var opens, closes []workingFill
	for _, fill := range fills {
		switch fill.Instruction.Classify() {
		case models.InstructionOpening:
			opens = append(opens, workingFill{fill: fill, remaining: fill.Quantity})
		case models.InstructionClosing:
			closes = append(closes, workingFill{fill: fill, remaining: fill.Quantity})
		}
	}

	var trades []models.Trade
	oi, ci := 0, 0

	for oi < len(opens) && ci < len(closes) {
		o := &opens[oi]
		c := &closes[ci]

		// A close cannot settle before (or at the same instant as) its
		// open. Out-of-order feed delivery produces these; skip the
		// close rather than emit a negative-duration trade.
		if !c.fill.Time.After(o.fill.Time) {
			ci++
			continue
		}

		matchQty := math.Min(o.remaining, c.remaining)
		if matchQty <= 0 {
			// Guards against upstream zero-quantity anomalies.
			oi++
			continue
		}

		trades = append(trades, buildTrade(o.fill, c.fill, matchQty, accountNumber, userID))

		o.remaining -= matchQty
		c.remaining -= matchQty
		if o.remaining <= 0 {
			oi++
		}
		if c.remaining <= 0 {
			ci++
		}
	}

	return trades
}

func buildTrade(entry, exit models.Fill, quantity float64, accountNumber, userID string) models.Trade {
	side := models.SideFromInstruction(entry.Instruction)
	direction := 1.0
	if side == models.SideShort {
		direction = -1.0
	}

	pnl := (exit.Price - entry.Price) * quantity * direction

	trade := models.Trade{
		UserID:         userID,
		AccountNumber:  accountNumber,
		Instrument:     entry.Symbol,
		Quantity:       quantity,
		EntryPrice:     entry.Price,
		ClosePrice:     exit.Price,
		EntryDate:      entry.Time,
		CloseDate:      exit.Time,
		EntryID:        strconv.FormatInt(entry.OrderID, 10),
		CloseID:        strconv.FormatInt(exit.OrderID, 10),
		Side:           side,
		PnL:            roundToTwo(pnl),
		Commission:     0, // $0 commission on equities
		TimeInPosition: int64(exit.Time.Sub(entry.Time) / time.Second),
		Tags:           []string{},
	}
	trade.ID = TradeID(&trade)
	return trade
}

func roundToTwo(n float64) float64 {
	return math.Round(n*100) / 100
}
