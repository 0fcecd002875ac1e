// Package models provides domain models for the trade journal.
package models

// OrderStatus represents the terminal or in-flight state of a broker order.
type OrderStatus string

const (
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusWorking  OrderStatus = "WORKING"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusExpired  OrderStatus = "EXPIRED"
	OrderStatusQueued   OrderStatus = "QUEUED"
)

// Instruction represents the broker-side instruction of an order leg.
type Instruction string

const (
	InstructionBuy        Instruction = "BUY"
	InstructionSell       Instruction = "SELL"
	InstructionSellShort  Instruction = "SELL_SHORT"
	InstructionBuyToCover Instruction = "BUY_TO_COVER"
)

// InstructionClass classifies an instruction by its effect on a position.
type InstructionClass int

const (
	InstructionIgnored InstructionClass = iota
	InstructionOpening
	InstructionClosing
)

// Classify maps an instruction onto its position effect.
// Anything outside the four known equity instructions is ignored,
// never an error: unexpected broker data is skipped, not rejected.
func (i Instruction) Classify() InstructionClass {
	switch i {
	case InstructionBuy, InstructionSellShort:
		return InstructionOpening
	case InstructionSell, InstructionBuyToCover:
		return InstructionClosing
	default:
		return InstructionIgnored
	}
}

// Side represents the direction of a round-trip trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// SideFromInstruction derives the trade side from the opening instruction.
func SideFromInstruction(i Instruction) Side {
	if i == InstructionBuy {
		return SideLong
	}
	return SideShort
}

// OrderType represents the order type as reported by the broker.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeStop   OrderType = "STOP"
)

// AssetType represents the instrument asset class.
type AssetType string

const (
	AssetEquity AssetType = "EQUITY"
	AssetOption AssetType = "OPTION"
)
