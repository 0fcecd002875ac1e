package broker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

// MockAccount is the account number reported by the mock broker.
const MockAccount = "MOCK-SCHWAB-12345678"

// tickerProfile holds a realistic base price and volatility per symbol.
type tickerProfile struct {
	symbol     string
	base       float64
	volatility float64
}

var mockTickers = []tickerProfile{
	{"AAPL", 230, 0.03},
	{"TSLA", 350, 0.06},
	{"NVDA", 140, 0.05},
	{"MSFT", 430, 0.025},
	{"AMD", 160, 0.05},
	{"META", 580, 0.035},
	{"GOOG", 175, 0.03},
	{"AMZN", 200, 0.035},
	{"SPY", 590, 0.015},
	{"QQQ", 510, 0.02},
	{"NFLX", 900, 0.04},
	{"DIS", 110, 0.035},
	{"BA", 180, 0.04},
	{"JPM", 240, 0.025},
	{"V", 310, 0.02},
}

// MockBroker implements OrderFetcher with generated swing trades:
// 50 paired opening/closing orders spread over the six months before
// its clock, produced by a seeded generator so repeated fetches return
// identical data. Used in mock mode and by tests.
type MockBroker struct {
	seed uint32
	now  func() time.Time
}

// NewMockBroker creates a mock broker with the default seed.
func NewMockBroker() *MockBroker {
	return &MockBroker{seed: 42, now: time.Now}
}

// NewMockBrokerAt creates a mock broker with a fixed seed and clock.
func NewMockBrokerAt(seed uint32, now func() time.Time) *MockBroker {
	return &MockBroker{seed: seed, now: now}
}

// FetchOrders returns the generated orders whose entry time falls in
// [from, to]. The token is ignored: mock mode needs no credential.
func (m *MockBroker) FetchOrders(ctx context.Context, token, accountID string, from, to time.Time) ([]models.Order, error) {
	all := m.generate()
	orders := make([]models.Order, 0, len(all))
	for _, order := range all {
		if order.EnteredTime.Before(from) || order.EnteredTime.After(to) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// generate builds the full mock order book: 50 round trips with ~60%
// winners, ~85% long, round-lot quantities, market-hours timestamps.
func (m *MockBroker) generate() []models.Order {
	rng := &lcgRand{state: m.seed}
	now := m.now().UTC()
	start := now.AddDate(0, -6, 0)
	dateRange := now.Sub(start)

	var orders []models.Order
	orderID := int64(100000001)

	for i := 0; i < 50; i++ {
		ticker := mockTickers[int(rng.next()*float64(len(mockTickers)))]

		isWinner := rng.next() < 0.6
		isLong := rng.next() < 0.85

		drift := (rng.next() - 0.5) * 2 * ticker.volatility * ticker.base
		entryPrice := roundToTwo(ticker.base + drift)

		var pnlPct float64
		if isWinner {
			pnlPct = 0.01 + rng.next()*0.08
		} else {
			pnlPct = -(0.005 + rng.next()*0.04)
		}
		priceDiff := roundToTwo(entryPrice * pnlPct)
		exitPrice := entryPrice - priceDiff
		if isLong {
			exitPrice = entryPrice + priceDiff
		}
		exitPrice = roundToTwo(exitPrice)

		// Round lots are more common than odd lots.
		var qty float64
		if rng.next() < 0.7 {
			qty = math.Floor(rng.next()*20)*10 + 10
		} else {
			qty = math.Floor(rng.next()*45) + 5
		}

		entryDate := start.Add(time.Duration(rng.next() * float64(dateRange) * 0.9))
		entryDate = snapToMarketHours(entryDate, rng)
		entryDate = skipWeekends(entryDate)

		holdDays := int(rng.next()*15) + 1
		exitDate := addTradingDays(entryDate, holdDays)
		exitDate = snapToMarketHours(exitDate, rng)

		if exitDate.After(now) {
			continue
		}

		entryInstruction := models.InstructionBuy
		exitInstruction := models.InstructionSell
		if !isLong {
			entryInstruction = models.InstructionSellShort
			exitInstruction = models.InstructionBuyToCover
		}

		orders = append(orders,
			mockOrder(orderID, ticker.symbol, entryInstruction, qty, entryPrice, entryDate),
			mockOrder(orderID+1, ticker.symbol, exitInstruction, qty, exitPrice, exitDate),
		)
		orderID += 2
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].EnteredTime.Before(orders[j].EnteredTime)
	})

	return orders
}

func mockOrder(id int64, symbol string, instruction models.Instruction, qty, price float64, at time.Time) models.Order {
	closeTime := at
	return models.Order{
		OrderID:        id,
		AccountNumber:  MockAccount,
		Status:         models.OrderStatusFilled,
		OrderType:      models.OrderTypeLimit,
		Quantity:       qty,
		FilledQuantity: qty,
		Price:          price,
		EnteredTime:    at,
		CloseTime:      &closeTime,
		OrderLegCollection: []models.OrderLeg{
			{
				Instrument:  models.Instrument{AssetType: models.AssetEquity, Symbol: symbol},
				Instruction: instruction,
				Quantity:    qty,
			},
		},
		ActivityCollection: []models.OrderActivity{
			{
				ActivityType:  "EXECUTION",
				ExecutionType: "FILL",
				Quantity:      qty,
				ExecutionLegs: []models.ExecutionLeg{
					{Price: price, Quantity: qty, Time: at},
				},
			},
		},
	}
}

// snapToMarketHours moves a timestamp into 14:00-20:00 UTC, roughly
// the US cash session.
func snapToMarketHours(t time.Time, rng *lcgRand) time.Time {
	hour := 14 + int(rng.next()*6)
	minute := int(rng.next() * 60)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, time.UTC)
}

func skipWeekends(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func addTradingDays(t time.Time, days int) time.Time {
	added := 0
	for added < days {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			added++
		}
	}
	return t
}

// lcgRand mirrors the generator used for indicator mocks so mock data
// stays reproducible across runs.
type lcgRand struct {
	state uint32
}

// next returns a value in [0, 1).
func (r *lcgRand) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / float64(math.MaxUint32+1)
}

func roundToTwo(n float64) float64 {
	return math.Round(n*100) / 100
}
