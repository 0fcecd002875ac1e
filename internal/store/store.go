// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

// DataStore defines the interface for journal persistence.
type DataStore interface {
	// Trades
	//
	// SaveTrades inserts trades, silently skipping any whose id already
	// exists, and returns the number actually added. When every trade
	// was already present it returns (0, apperr.ErrDuplicateTrades) —
	// a recognized success variant, not a failure.
	SaveTrades(ctx context.Context, trades []models.Trade) (int, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Checkpoints
	GetCheckpoint(ctx context.Context, userID, service, accountID string) (*models.SyncCheckpoint, error)
	CreateCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error
	AdvanceCheckpoint(ctx context.Context, id int64, lastSyncedAt time.Time) error
	ListCheckpoints(ctx context.Context, userID, service string) ([]models.SyncCheckpoint, error)
	DeleteCheckpoint(ctx context.Context, userID, service, accountID string) error

	// Analytics
	UpsertAnalytics(ctx context.Context, a *models.TradeAnalytics) error
	GetAnalytics(ctx context.Context, tradeID string) (*models.TradeAnalytics, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	UserID        string
	AccountNumber string
	Instrument    string
	Side          string
	StartDate     time.Time
	EndDate       time.Time
	Limit         int
}
