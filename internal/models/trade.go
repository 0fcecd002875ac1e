package models

import "time"

// Fill is the normalized record of one executed quantity of one order.
// Fills are ephemeral: they exist between extraction and matching and
// are never persisted.
type Fill struct {
	OrderID     int64
	Instruction Instruction
	Symbol      string
	Quantity    float64
	Price       float64
	Time        time.Time
}

// Trade represents a completed round trip: a matched opening and
// closing fill pair. Immutable once stored, except for the
// user-editable annotation fields, which a re-sync never touches.
type Trade struct {
	ID             string    `csv:"id"`
	UserID         string    `csv:"-"`
	AccountNumber  string    `csv:"account"`
	Instrument     string    `csv:"instrument"`
	Quantity       float64   `csv:"quantity"`
	EntryPrice     float64   `csv:"entry_price"`
	ClosePrice     float64   `csv:"close_price"`
	EntryDate      time.Time `csv:"entry_date"`
	CloseDate      time.Time `csv:"close_date"`
	EntryID        string    `csv:"entry_id"`
	CloseID        string    `csv:"close_id"`
	Side           Side      `csv:"side"`
	PnL            float64   `csv:"pnl"`
	Commission     float64   `csv:"commission"`
	TimeInPosition int64     `csv:"time_in_position"` // seconds
	Comment        string    `csv:"comment"`
	Tags           []string  `csv:"-"`
	Attachments    []string  `csv:"-"`
}

// SyncCheckpoint marks how far synchronization has progressed for one
// account. One row per (user, service, account).
type SyncCheckpoint struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"userId"`
	Service        string     `json:"service"`
	AccountID      string     `json:"accountId"`
	LastSyncedAt   time.Time  `json:"lastSyncedAt"`
	Token          string     `json:"-"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasToken reports whether the checkpoint carries a broker credential.
func (c *SyncCheckpoint) HasToken() bool {
	return c.Token != ""
}

// TradeAnalytics holds derived technical indicators computed at trade
// entry. A trade without analytics is an acceptable degraded state.
type TradeAnalytics struct {
	TradeID    string
	EMA9       float64
	EMA20      float64
	EMA200     float64
	VWAP       float64
	DataSource string
}
