package journal

import (
	"testing"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

func filledOrder(id int64, symbol string, instruction models.Instruction, qty, price float64, at time.Time) models.Order {
	return models.Order{
		OrderID:        id,
		Status:         models.OrderStatusFilled,
		FilledQuantity: qty,
		Price:          price,
		EnteredTime:    at,
		OrderLegCollection: []models.OrderLeg{
			{
				Instrument:  models.Instrument{AssetType: models.AssetEquity, Symbol: symbol},
				Instruction: instruction,
				Quantity:    qty,
			},
		},
	}
}

func TestExtractFill(t *testing.T) {
	at := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	execTime := at.Add(2 * time.Minute)

	tests := []struct {
		name     string
		order    models.Order
		wantOK   bool
		wantQty  float64
		wantPx   float64
		wantTime time.Time
	}{
		{
			name:     "order-level fields when no execution detail",
			order:    filledOrder(1, "AAPL", models.InstructionBuy, 100, 230, at),
			wantOK:   true,
			wantQty:  100,
			wantPx:   230,
			wantTime: at,
		},
		{
			name: "execution leg overrides order-level fields",
			order: func() models.Order {
				o := filledOrder(2, "AAPL", models.InstructionBuy, 100, 230, at)
				o.ActivityCollection = []models.OrderActivity{
					{ExecutionLegs: []models.ExecutionLeg{{Price: 230.05, Quantity: 80, Time: execTime}}},
				}
				return o
			}(),
			wantOK:   true,
			wantQty:  80,
			wantPx:   230.05,
			wantTime: execTime,
		},
		{
			name: "leg quantity fallback when filled quantity absent",
			order: func() models.Order {
				o := filledOrder(3, "TSLA", models.InstructionSell, 50, 350, at)
				o.FilledQuantity = 0
				return o
			}(),
			wantOK:   true,
			wantQty:  50,
			wantPx:   350,
			wantTime: at,
		},
		{
			name: "close time preferred over entered time",
			order: func() models.Order {
				o := filledOrder(4, "MSFT", models.InstructionSell, 10, 430, at)
				ct := at.Add(time.Hour)
				o.CloseTime = &ct
				return o
			}(),
			wantOK:   true,
			wantQty:  10,
			wantPx:   430,
			wantTime: at.Add(time.Hour),
		},
		{
			name: "non-filled order yields nothing",
			order: func() models.Order {
				o := filledOrder(5, "NVDA", models.InstructionBuy, 100, 140, at)
				o.Status = models.OrderStatusWorking
				return o
			}(),
			wantOK: false,
		},
		{
			name: "order without legs yields nothing",
			order: models.Order{
				OrderID:        6,
				Status:         models.OrderStatusFilled,
				FilledQuantity: 100,
				EnteredTime:    at,
			},
			wantOK: false,
		},
		{
			name: "zero quantity everywhere yields nothing",
			order: func() models.Order {
				o := filledOrder(7, "AMD", models.InstructionBuy, 0, 160, at)
				o.OrderLegCollection[0].Quantity = 0
				return o
			}(),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fill, ok := ExtractFill(tt.order)
			if ok != tt.wantOK {
				t.Fatalf("ExtractFill ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if fill.Quantity != tt.wantQty {
				t.Errorf("quantity = %v, want %v", fill.Quantity, tt.wantQty)
			}
			if fill.Price != tt.wantPx {
				t.Errorf("price = %v, want %v", fill.Price, tt.wantPx)
			}
			if !fill.Time.Equal(tt.wantTime) {
				t.Errorf("time = %v, want %v", fill.Time, tt.wantTime)
			}
		})
	}
}

func TestExtractFillsSkipsUnusableOrders(t *testing.T) {
	at := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	orders := []models.Order{
		filledOrder(1, "AAPL", models.InstructionBuy, 100, 230, at),
		{OrderID: 2, Status: models.OrderStatusCanceled},
		filledOrder(3, "AAPL", models.InstructionSell, 100, 235, at.Add(time.Hour)),
	}

	fills := ExtractFills(orders)
	if len(fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(fills))
	}
	if fills[0].OrderID != 1 || fills[1].OrderID != 3 {
		t.Errorf("fills out of order: %+v", fills)
	}
}

func TestInstructionClassification(t *testing.T) {
	tests := []struct {
		instruction models.Instruction
		want        models.InstructionClass
	}{
		{models.InstructionBuy, models.InstructionOpening},
		{models.InstructionSellShort, models.InstructionOpening},
		{models.InstructionSell, models.InstructionClosing},
		{models.InstructionBuyToCover, models.InstructionClosing},
		{models.Instruction("EXCHANGE"), models.InstructionIgnored},
		{models.Instruction(""), models.InstructionIgnored},
	}

	for _, tt := range tests {
		if got := tt.instruction.Classify(); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.instruction, got, tt.want)
		}
	}
}
