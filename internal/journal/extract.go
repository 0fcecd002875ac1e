// Package journal implements the broker-order reconciliation engine:
// fill extraction, round-trip matching, and deterministic trade identity.
package journal

import (
	"github.com/APWalter/trade-journal/internal/models"
)

// ExtractFill normalizes one raw order record into a fill event.
// Returns false when the order is not in a filled terminal state, has
// no legs, or carries no fillable quantity.
//
// Execution-leg data (actual fill price/quantity/time) is preferred
// over order-level requested values: a limit order's requested price
// and entry time can differ materially from the executed ones.
func ExtractFill(order models.Order) (models.Fill, bool) {
	if order.Status != models.OrderStatusFilled {
		return models.Fill{}, false
	}
	if len(order.OrderLegCollection) == 0 {
		return models.Fill{}, false
	}
	leg := order.OrderLegCollection[0]

	fill := models.Fill{
		OrderID:     order.OrderID,
		Instruction: leg.Instruction,
		Symbol:      leg.Instrument.Symbol,
		Quantity:    order.FilledQuantity,
		Price:       order.Price,
		Time:        order.EnteredTime,
	}
	if fill.Quantity <= 0 {
		fill.Quantity = leg.Quantity
	}
	if order.CloseTime != nil && !order.CloseTime.IsZero() {
		fill.Time = *order.CloseTime
	}

	if exec := firstExecutionLeg(order); exec != nil {
		if exec.Quantity > 0 {
			fill.Quantity = exec.Quantity
		}
		if exec.Price > 0 {
			fill.Price = exec.Price
		}
		if !exec.Time.IsZero() {
			fill.Time = exec.Time
		}
	}

	// Zero fillable quantity means nothing actually executed.
	if fill.Quantity <= 0 {
		return models.Fill{}, false
	}

	return fill, true
}

// firstExecutionLeg returns the first execution leg of the first
// activity, or nil when the broker omitted execution detail.
func firstExecutionLeg(order models.Order) *models.ExecutionLeg {
	if len(order.ActivityCollection) == 0 {
		return nil
	}
	legs := order.ActivityCollection[0].ExecutionLegs
	if len(legs) == 0 {
		return nil
	}
	return &legs[0]
}

// ExtractFills extracts fills from a batch of raw orders, skipping
// anything that does not yield a fill. Malformed or unrecognized
// records are dropped, never surfaced as errors.
func ExtractFills(orders []models.Order) []models.Fill {
	fills := make([]models.Fill, 0, len(orders))
	for _, order := range orders {
		if fill, ok := ExtractFill(order); ok {
			fills = append(fills, fill)
		}
	}
	return fills
}
