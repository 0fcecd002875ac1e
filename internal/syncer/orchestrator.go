// Package syncer drives broker synchronization: the per-account sync
// cycle and the periodic auto-sync scheduler.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/APWalter/trade-journal/internal/apperr"
	"github.com/APWalter/trade-journal/internal/broker"
	"github.com/APWalter/trade-journal/internal/journal"
	"github.com/APWalter/trade-journal/internal/models"
	"github.com/APWalter/trade-journal/internal/store"
)

// Service is the sync service identifier stored on checkpoints.
const Service = "schwab"

// Result reports the outcome of one account sync cycle.
type Result struct {
	Success     bool   `json:"success"`
	SavedCount  int    `json:"savedCount"`
	OrdersCount int    `json:"ordersCount"`
	Message     string `json:"message"`
}

// Orchestrator runs the per-account synchronization cycle: determine
// the fetch window from the last checkpoint, fetch, extract and match,
// persist, compute analytics, advance the checkpoint.
type Orchestrator struct {
	fetcher    broker.OrderFetcher
	store      store.DataStore
	indicators journal.IndicatorSource
	logger     zerolog.Logger

	userID       string
	lookback     time.Duration
	fetchTimeout time.Duration
	pool         *FanOut

	now func() time.Time
}

// OrchestratorConfig holds Orchestrator dependencies and tuning.
type OrchestratorConfig struct {
	Fetcher          broker.OrderFetcher
	Store            store.DataStore
	Indicators       journal.IndicatorSource
	Logger           zerolog.Logger
	UserID           string
	Lookback         time.Duration
	FetchTimeout     time.Duration
	AnalyticsWorkers int
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewOrchestrator creates a sync orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	lookback := cfg.Lookback
	if lookback == 0 {
		lookback = 60 * 24 * time.Hour
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}
	workers := cfg.AnalyticsWorkers
	if workers <= 0 {
		workers = 4
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		fetcher:      cfg.Fetcher,
		store:        cfg.Store,
		indicators:   cfg.Indicators,
		logger:       cfg.Logger,
		userID:       cfg.UserID,
		lookback:     lookback,
		fetchTimeout: fetchTimeout,
		pool:         NewFanOut(workers),
		now:          now,
	}
}

// SyncAccount runs one sync cycle for one account.
//
// The checkpoint advances to the window's end on success, on "no new
// data", and on the all-duplicates outcome. It is left untouched on
// any hard failure so the next attempt re-covers the same window;
// deterministic trade ids make the repeated fetch safe.
func (o *Orchestrator) SyncAccount(ctx context.Context, accountID string) (*Result, error) {
	if accountID == "" {
		return nil, apperr.ErrAccountRequired
	}

	cp, err := o.loadOrCreateCheckpoint(ctx, accountID)
	if err != nil {
		return nil, apperr.NewSyncError(accountID, "checkpoint", err)
	}

	from := cp.LastSyncedAt
	to := o.now()

	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	orders, err := o.fetcher.FetchOrders(fetchCtx, cp.Token, accountID, from, to)
	if err != nil {
		return nil, apperr.NewSyncError(accountID, "fetch", err)
	}

	if len(orders) == 0 {
		// Still advance: otherwise a quiet account's window grows
		// without bound.
		if err := o.store.AdvanceCheckpoint(ctx, cp.ID, to); err != nil {
			return nil, apperr.NewSyncError(accountID, "checkpoint", err)
		}
		return &Result{Success: true, Message: "No new orders found"}, nil
	}

	fills := journal.ExtractFills(orders)
	trades := journal.MatchTrades(fills, accountID, o.userID)

	if len(trades) == 0 {
		if err := o.store.AdvanceCheckpoint(ctx, cp.ID, to); err != nil {
			return nil, apperr.NewSyncError(accountID, "checkpoint", err)
		}
		return &Result{
			Success:     true,
			OrdersCount: len(orders),
			Message:     "No complete round-trip trades found in orders",
		}, nil
	}

	added, err := o.store.SaveTrades(ctx, trades)
	switch {
	case err == nil:
	case apperr.Is(err, apperr.ErrDuplicateTrades):
		if cpErr := o.store.AdvanceCheckpoint(ctx, cp.ID, to); cpErr != nil {
			return nil, apperr.NewSyncError(accountID, "checkpoint", cpErr)
		}
		return &Result{
			Success:     true,
			OrdersCount: len(orders),
			Message:     apperr.ErrDuplicateTrades.Error(),
		}, nil
	default:
		return nil, apperr.NewSyncError(accountID, "persist", err)
	}

	if added > 0 {
		o.computeAnalytics(ctx, trades)
	}

	if err := o.store.AdvanceCheckpoint(ctx, cp.ID, to); err != nil {
		return nil, apperr.NewSyncError(accountID, "checkpoint", err)
	}

	return &Result{
		Success:     true,
		SavedCount:  added,
		OrdersCount: len(orders),
		Message:     fmt.Sprintf("Synced %d new trades from %d orders", added, len(orders)),
	}, nil
}

// loadOrCreateCheckpoint returns the account's checkpoint, creating
// one with the initial lookback window on the first sync.
func (o *Orchestrator) loadOrCreateCheckpoint(ctx context.Context, accountID string) (*models.SyncCheckpoint, error) {
	cp, err := o.store.GetCheckpoint(ctx, o.userID, Service, accountID)
	if err == nil {
		return cp, nil
	}
	if !apperr.Is(err, apperr.ErrCheckpointNotFound) {
		return nil, err
	}

	cp = &models.SyncCheckpoint{
		UserID:       o.userID,
		Service:      Service,
		AccountID:    accountID,
		LastSyncedAt: o.now().Add(-o.lookback),
	}
	if err := o.store.CreateCheckpoint(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// computeAnalytics fans out indicator computation across the matched
// trades and joins with all-settle semantics. A failed computation is
// logged per trade and never fails the cycle: a trade without
// analytics is an acceptable degraded state, a missing trade is not.
func (o *Orchestrator) computeAnalytics(ctx context.Context, trades []models.Trade) {
	if o.indicators == nil {
		return
	}

	tasks := make([]func() error, len(trades))
	for i := range trades {
		trade := trades[i]
		tasks[i] = func() error {
			indicators, err := o.indicators.IndicatorsAtEntry(trade.Instrument, trade.EntryDate, trade.EntryPrice)
			if err != nil {
				return apperr.NewAnalyticsError(trade.ID, err)
			}
			return o.store.UpsertAnalytics(ctx, &models.TradeAnalytics{
				TradeID:    trade.ID,
				EMA9:       indicators.EMA9,
				EMA20:      indicators.EMA20,
				EMA200:     indicators.EMA200,
				VWAP:       indicators.VWAP,
				DataSource: "SCHWAB",
			})
		}
	}

	for i, err := range o.pool.Run(tasks) {
		if err != nil {
			o.logger.Warn().
				Str("trade", trades[i].ID).
				Err(err).
				Msg("Failed to compute indicators for trade")
		}
	}
}
