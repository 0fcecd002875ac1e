// Package integration provides end-to-end tests for the reconciliation
// engine: mock broker through matching and persistence.
package integration

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/APWalter/trade-journal/internal/broker"
	"github.com/APWalter/trade-journal/internal/journal"
	"github.com/APWalter/trade-journal/internal/store"
	"github.com/APWalter/trade-journal/internal/syncer"
)

func fixedClock() time.Time {
	return time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
}

func newEngine(t *testing.T) (*syncer.Orchestrator, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	orch := syncer.NewOrchestrator(syncer.OrchestratorConfig{
		Fetcher:    broker.NewMockBrokerAt(42, fixedClock),
		Store:      st,
		Indicators: journal.MockIndicatorSource{},
		Logger:     zerolog.Nop(),
		UserID:     "local",
		Lookback:   180 * 24 * time.Hour,
		Now:        fixedClock,
	})
	return orch, st
}

// TestEndToEndSync runs a full cycle against the deterministic mock
// broker and checks the persisted journal.
func TestEndToEndSync(t *testing.T) {
	ctx := context.Background()
	orch, st := newEngine(t)

	result, err := orch.SyncAccount(ctx, broker.MockAccount)
	if err != nil {
		t.Fatalf("SyncAccount: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if result.SavedCount == 0 {
		t.Fatal("mock data produced no trades")
	}

	trades, err := st.GetTrades(ctx, store.TradeFilter{UserID: "local"})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(trades) != result.SavedCount {
		t.Errorf("stored %d trades, result reported %d", len(trades), result.SavedCount)
	}

	for _, tr := range trades {
		if !tr.CloseDate.After(tr.EntryDate) {
			t.Errorf("trade %s closes at or before entry", tr.ID)
		}
		if tr.Quantity <= 0 {
			t.Errorf("trade %s has quantity %v", tr.ID, tr.Quantity)
		}
		if rederived := journal.TradeID(&tr); rederived != tr.ID {
			t.Errorf("trade %s does not re-derive its own id", tr.ID)
		}

		analytics, err := st.GetAnalytics(ctx, tr.ID)
		if err != nil {
			t.Fatalf("GetAnalytics(%s): %v", tr.ID, err)
		}
		if analytics == nil {
			t.Errorf("trade %s has no analytics", tr.ID)
		}
	}
}

// TestRepeatedSyncIsIdempotent re-syncs the same window and expects the
// duplicate outcome with an unchanged journal.
func TestRepeatedSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	orch, st := newEngine(t)

	first, err := orch.SyncAccount(ctx, broker.MockAccount)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}

	before, err := st.GetTrades(ctx, store.TradeFilter{UserID: "local"})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}

	// Rewind the checkpoint to replay the identical window.
	cp, err := st.GetCheckpoint(ctx, "local", syncer.Service, broker.MockAccount)
	if err != nil {
		t.Fatalf("GetCheckpoint: %v", err)
	}
	if err := st.AdvanceCheckpoint(ctx, cp.ID, fixedClock().Add(-180*24*time.Hour)); err != nil {
		t.Fatalf("AdvanceCheckpoint: %v", err)
	}

	second, err := orch.SyncAccount(ctx, broker.MockAccount)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !second.Success || second.SavedCount != 0 {
		t.Errorf("second sync = %+v, want duplicate success with nothing saved", second)
	}
	if second.OrdersCount != first.OrdersCount {
		t.Errorf("ordersCount changed between identical windows: %d vs %d", second.OrdersCount, first.OrdersCount)
	}

	after, err := st.GetTrades(ctx, store.TradeFilter{UserID: "local"})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("journal changed across an idempotent re-sync")
	}
}

// TestIncrementalSyncWindows advances through time in two windows and
// expects no overlap losses or duplicates.
func TestIncrementalSyncWindows(t *testing.T) {
	ctx := context.Background()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := fixedClock().Add(-30 * 24 * time.Hour)
	now := func() time.Time { return clock }

	orch := syncer.NewOrchestrator(syncer.OrchestratorConfig{
		Fetcher:    broker.NewMockBrokerAt(42, fixedClock),
		Store:      st,
		Indicators: journal.MockIndicatorSource{},
		Logger:     zerolog.Nop(),
		UserID:     "local",
		Lookback:   150 * 24 * time.Hour,
		Now:        now,
	})

	first, err := orch.SyncAccount(ctx, broker.MockAccount)
	if err != nil {
		t.Fatalf("first window: %v", err)
	}

	clock = fixedClock()
	second, err := orch.SyncAccount(ctx, broker.MockAccount)
	if err != nil {
		t.Fatalf("second window: %v", err)
	}

	trades, err := st.GetTrades(ctx, store.TradeFilter{UserID: "local"})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}

	seen := make(map[string]bool, len(trades))
	for _, tr := range trades {
		if seen[tr.ID] {
			t.Fatalf("duplicate trade id %s across windows", tr.ID)
		}
		seen[tr.ID] = true
	}

	if first.SavedCount+second.SavedCount != len(trades) {
		t.Errorf("window saves %d+%d != stored %d", first.SavedCount, second.SavedCount, len(trades))
	}
}
