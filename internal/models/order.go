package models

import "time"

// Instrument identifies the security traded by an order leg.
type Instrument struct {
	AssetType AssetType `json:"assetType"`
	Symbol    string    `json:"symbol"`
	CUSIP     string    `json:"cusip,omitempty"`
}

// OrderLeg represents a single leg of a broker order.
type OrderLeg struct {
	LegID       int         `json:"legId,omitempty"`
	Instrument  Instrument  `json:"instrument"`
	Instruction Instruction `json:"instruction"`
	Quantity    float64     `json:"quantity"`
}

// ExecutionLeg carries the actual fill detail of one execution.
// Price and time here are the executed values, which can differ
// materially from the order-level requested values.
type ExecutionLeg struct {
	LegID    int       `json:"legId,omitempty"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	Time     time.Time `json:"time"`
}

// OrderActivity groups the execution legs of one fill event.
type OrderActivity struct {
	ActivityType  string         `json:"activityType"`
	ExecutionType string         `json:"executionType,omitempty"`
	Quantity      float64        `json:"quantity"`
	ExecutionLegs []ExecutionLeg `json:"executionLegs"`
}

// Order represents a raw brokerage order record as returned by the
// broker's order-history endpoint.
type Order struct {
	OrderID            int64           `json:"orderId"`
	AccountNumber      string          `json:"accountNumber"`
	Status             OrderStatus     `json:"status"`
	OrderType          OrderType       `json:"orderType,omitempty"`
	Quantity           float64         `json:"quantity"`
	FilledQuantity     float64         `json:"filledQuantity"`
	RemainingQuantity  float64         `json:"remainingQuantity,omitempty"`
	Price              float64         `json:"price,omitempty"`
	EnteredTime        time.Time       `json:"enteredTime"`
	CloseTime          *time.Time      `json:"closeTime,omitempty"`
	OrderLegCollection []OrderLeg      `json:"orderLegCollection"`
	ActivityCollection []OrderActivity `json:"orderActivityCollection,omitempty"`
}
