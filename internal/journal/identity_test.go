package journal

import (
	"testing"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

func sampleTrade() models.Trade {
	return models.Trade{
		UserID:         "local",
		AccountNumber:  "123456789",
		Instrument:     "AAPL",
		Quantity:       100,
		EntryPrice:     230,
		ClosePrice:     235,
		EntryDate:      time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		CloseDate:      time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
		EntryID:        "100000001",
		CloseID:        "100000002",
		Side:           models.SideLong,
		PnL:            500,
		Commission:     0,
		TimeInPosition: 3600,
	}
}

func TestTradeIDDeterministic(t *testing.T) {
	a := sampleTrade()
	b := sampleTrade()

	idA := TradeID(&a)
	idB := TradeID(&b)
	if idA != idB {
		t.Errorf("same trade produced different ids: %s vs %s", idA, idB)
	}
}

func TestTradeIDIsValidUUID(t *testing.T) {
	trade := sampleTrade()
	id := TradeID(&trade)
	if len(id) != 36 {
		t.Errorf("id %q is not UUID-shaped", id)
	}
	// UUIDv5 marks version in the third group.
	if id[14] != '5' {
		t.Errorf("id %q is not version 5", id)
	}
}

func TestTradeIDTimezoneInsensitive(t *testing.T) {
	a := sampleTrade()
	b := sampleTrade()

	est := time.FixedZone("EST", -5*3600)
	b.EntryDate = b.EntryDate.In(est)
	b.CloseDate = b.CloseDate.In(est)

	if TradeID(&a) != TradeID(&b) {
		t.Error("same instant in a different zone changed the id")
	}
}

func TestTradeIDFieldSensitivity(t *testing.T) {
	base := sampleTrade()
	baseID := TradeID(&base)

	mutations := map[string]func(*models.Trade){
		"userId":     func(tr *models.Trade) { tr.UserID = "other" },
		"account":    func(tr *models.Trade) { tr.AccountNumber = "987654321" },
		"instrument": func(tr *models.Trade) { tr.Instrument = "TSLA" },
		"quantity":   func(tr *models.Trade) { tr.Quantity = 99 },
		"entryPrice": func(tr *models.Trade) { tr.EntryPrice = 230.01 },
		"closePrice": func(tr *models.Trade) { tr.ClosePrice = 235.01 },
		"entryDate":  func(tr *models.Trade) { tr.EntryDate = tr.EntryDate.Add(time.Nanosecond) },
		"closeDate":  func(tr *models.Trade) { tr.CloseDate = tr.CloseDate.Add(time.Nanosecond) },
		"entryId":    func(tr *models.Trade) { tr.EntryID = "100000003" },
		"closeId":    func(tr *models.Trade) { tr.CloseID = "100000004" },
		"side":       func(tr *models.Trade) { tr.Side = models.SideShort },
		"pnl":        func(tr *models.Trade) { tr.PnL = 499.99 },
		"commission": func(tr *models.Trade) { tr.Commission = 1 },
	}

	for field, mutate := range mutations {
		trade := sampleTrade()
		mutate(&trade)
		if TradeID(&trade) == baseID {
			t.Errorf("changing %s did not change the id", field)
		}
	}
}

func TestTradeIDIgnoresAnnotations(t *testing.T) {
	a := sampleTrade()
	b := sampleTrade()
	b.Comment = "earnings play"
	b.Tags = []string{"swing"}

	if TradeID(&a) != TradeID(&b) {
		t.Error("user annotations must not affect the id")
	}
}
