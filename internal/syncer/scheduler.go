package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/APWalter/trade-journal/internal/store"
)

// Scheduler periodically triggers the orchestrator across all
// configured accounts. Only one bulk pass runs at a time process-wide;
// a trigger while one is in flight is a no-op.
type Scheduler struct {
	orch   *Orchestrator
	store  store.DataStore
	logger zerolog.Logger
	userID string

	interval time.Duration // min elapsed time before an account re-syncs
	tick     time.Duration // how often accounts are scanned
	throttle time.Duration // delay between accounts within a pass

	inFlight atomic.Bool

	// Injected clock and sleep keep the scheduling logic testable
	// without real timers.
	now   func() time.Time
	sleep func(time.Duration)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// SchedulerConfig holds Scheduler dependencies and timing policy.
type SchedulerConfig struct {
	Orchestrator *Orchestrator
	Store        store.DataStore
	Logger       zerolog.Logger
	UserID       string
	Interval     time.Duration
	Tick         time.Duration
	Throttle     time.Duration
	Now          func() time.Time
	Sleep        func(time.Duration)
}

// NewScheduler creates an auto-sync scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	interval := cfg.Interval
	if interval == 0 {
		interval = 15 * time.Minute
	}
	tick := cfg.Tick
	if tick == 0 {
		tick = 60 * time.Second
	}
	throttle := cfg.Throttle
	if throttle == 0 {
		throttle = time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Scheduler{
		orch:     cfg.Orchestrator,
		store:    cfg.Store,
		logger:   cfg.Logger,
		userID:   cfg.UserID,
		interval: interval,
		tick:     tick,
		throttle: throttle,
		now:      now,
		sleep:    sleep,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the periodic scan in the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop halts the periodic scan and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SyncDue(ctx)
		}
	}
}

// SyncDue runs one bulk pass over accounts whose elapsed time since
// the last committed sync exceeds the configured interval. Accounts
// without a stored credential are skipped. No-op when a pass is
// already in flight.
func (s *Scheduler) SyncDue(ctx context.Context) {
	s.bulkPass(ctx, false)
}

// SyncAll runs one bulk pass over every account with a credential,
// bypassing the elapsed-time check. No-op when a pass is already in
// flight.
func (s *Scheduler) SyncAll(ctx context.Context) {
	s.bulkPass(ctx, true)
}

func (s *Scheduler) bulkPass(ctx context.Context, force bool) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer s.inFlight.Store(false)

	checkpoints, err := s.store.ListCheckpoints(ctx, s.userID, Service)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list accounts for auto-sync")
		return
	}

	first := true
	for i := range checkpoints {
		cp := &checkpoints[i]
		if !cp.HasToken() {
			continue
		}
		if !force && s.now().Sub(cp.LastSyncedAt) < s.interval {
			continue
		}

		// Throttle between consecutive accounts to respect broker
		// rate limits.
		if !first {
			s.sleep(s.throttle)
		}
		first = false

		result, err := s.orch.SyncAccount(ctx, cp.AccountID)
		if err != nil {
			s.logger.Error().
				Str("account", cp.AccountID).
				Err(err).
				Msg("Auto-sync failed for account")
			continue
		}
		s.logger.Info().
			Str("account", cp.AccountID).
			Int("saved", result.SavedCount).
			Int("orders", result.OrdersCount).
			Str("message", result.Message).
			Msg("Auto-sync completed for account")
	}
}

// InFlight reports whether a bulk pass is currently running.
func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}
