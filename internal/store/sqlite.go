// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/APWalter/trade-journal/internal/apperr"
	"github.com/APWalter/trade-journal/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table. The deterministic id is the primary key, which is
	-- what makes re-synced duplicates a silent no-op.
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_number TEXT NOT NULL,
		instrument TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		close_price REAL NOT NULL,
		entry_date DATETIME NOT NULL,
		close_date DATETIME NOT NULL,
		entry_id TEXT NOT NULL,
		close_id TEXT NOT NULL,
		side TEXT NOT NULL,
		pnl REAL NOT NULL,
		commission REAL NOT NULL DEFAULT 0,
		time_in_position INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		attachments TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync checkpoints, one per (user, service, account).
	CREATE TABLE IF NOT EXISTS checkpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		service TEXT NOT NULL,
		account_id TEXT NOT NULL,
		last_synced_at DATETIME NOT NULL,
		token TEXT NOT NULL DEFAULT '',
		token_expires_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, service, account_id)
	);

	-- Derived per-trade analytics.
	CREATE TABLE IF NOT EXISTS trade_analytics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trade_id TEXT NOT NULL UNIQUE,
		ema9 REAL,
		ema20 REAL,
		ema200 REAL,
		vwap REAL,
		data_source TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (trade_id) REFERENCES trades(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id, account_number);
	CREATE INDEX IF NOT EXISTS idx_trades_instrument ON trades(instrument);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_user ON checkpoints(user_id, service);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades Methods
// ============================================================================

// SaveTrades inserts trades with INSERT OR IGNORE, so trades whose
// deterministic id already exists are skipped without touching the
// stored row — user annotations survive every re-sync.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO trades
		(id, user_id, account_number, instrument, quantity, entry_price, close_price,
		 entry_date, close_date, entry_id, close_id, side, pnl, commission,
		 time_in_position, comment, tags, attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, t := range trades {
		tags, _ := json.Marshal(t.Tags)
		attachments, _ := json.Marshal(t.Attachments)

		res, err := stmt.ExecContext(ctx,
			t.ID, t.UserID, t.AccountNumber, t.Instrument, t.Quantity,
			t.EntryPrice, t.ClosePrice, t.EntryDate.UTC(), t.CloseDate.UTC(),
			t.EntryID, t.CloseID, t.Side, t.PnL, t.Commission,
			t.TimeInPosition, t.Comment, string(tags), string(attachments),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert trade %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if added == 0 {
		return 0, apperr.ErrDuplicateTrades
	}
	return added, nil
}

// GetTrades retrieves trades from the database.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT id, user_id, account_number, instrument, quantity, entry_price,
		close_price, entry_date, close_date, entry_id, close_id, side, pnl,
		commission, time_in_position, comment, tags, attachments
		FROM trades WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.AccountNumber != "" {
		query += " AND account_number = ?"
		args = append(args, filter.AccountNumber)
	}
	if filter.Instrument != "" {
		query += " AND instrument = ?"
		args = append(args, filter.Instrument)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, filter.Side)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_date >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_date <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY entry_date ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var tags, attachments string
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountNumber, &t.Instrument,
			&t.Quantity, &t.EntryPrice, &t.ClosePrice, &t.EntryDate, &t.CloseDate,
			&t.EntryID, &t.CloseID, &t.Side, &t.PnL, &t.Commission,
			&t.TimeInPosition, &t.Comment, &tags, &attachments); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		_ = json.Unmarshal([]byte(tags), &t.Tags)
		_ = json.Unmarshal([]byte(attachments), &t.Attachments)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// ============================================================================
// Checkpoint Methods
// ============================================================================

// GetCheckpoint returns the checkpoint for one account, or
// apperr.ErrCheckpointNotFound when the account has never been synced.
func (s *SQLiteStore) GetCheckpoint(ctx context.Context, userID, service, accountID string) (*models.SyncCheckpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, service, account_id, last_synced_at, token,
		       token_expires_at, created_at, updated_at
		FROM checkpoints
		WHERE user_id = ? AND service = ? AND account_id = ?
	`, userID, service, accountID)

	cp, err := scanCheckpoint(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return cp, nil
}

// CreateCheckpoint inserts a new checkpoint and fills in its id.
func (s *SQLiteStore) CreateCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	var expires interface{}
	if cp.TokenExpiresAt != nil {
		expires = cp.TokenExpiresAt.UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (user_id, service, account_id, last_synced_at, token, token_expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cp.UserID, cp.Service, cp.AccountID, cp.LastSyncedAt.UTC(), cp.Token, expires)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	cp.ID, _ = res.LastInsertId()
	return nil
}

// AdvanceCheckpoint moves a checkpoint's last-synced marker. Written
// only after persistence succeeds; a hard sync failure never calls it.
func (s *SQLiteStore) AdvanceCheckpoint(ctx context.Context, id int64, lastSyncedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkpoints SET last_synced_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, lastSyncedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to advance checkpoint: %w", err)
	}
	return nil
}

// ListCheckpoints returns a user's checkpoints, newest first.
func (s *SQLiteStore) ListCheckpoints(ctx context.Context, userID, service string) ([]models.SyncCheckpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, service, account_id, last_synced_at, token,
		       token_expires_at, created_at, updated_at
		FROM checkpoints
		WHERE user_id = ? AND service = ?
		ORDER BY created_at DESC, id DESC
	`, userID, service)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []models.SyncCheckpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, *cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}

	return checkpoints, nil
}

// DeleteCheckpoint removes an account's checkpoint. Idempotent:
// deleting a non-existent account is not an error.
func (s *SQLiteStore) DeleteCheckpoint(ctx context.Context, userID, service, accountID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints WHERE user_id = ? AND service = ? AND account_id = ?
	`, userID, service, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCheckpoint(row rowScanner) (*models.SyncCheckpoint, error) {
	var cp models.SyncCheckpoint
	var expires sql.NullTime
	if err := row.Scan(&cp.ID, &cp.UserID, &cp.Service, &cp.AccountID,
		&cp.LastSyncedAt, &cp.Token, &expires, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		cp.TokenExpiresAt = &t
	}
	return &cp, nil
}

// ============================================================================
// Analytics Methods
// ============================================================================

// UpsertAnalytics inserts or refreshes the derived indicators for one
// trade.
func (s *SQLiteStore) UpsertAnalytics(ctx context.Context, a *models.TradeAnalytics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_analytics (trade_id, ema9, ema20, ema200, vwap, data_source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO UPDATE SET
			ema9 = excluded.ema9,
			ema20 = excluded.ema20,
			ema200 = excluded.ema200,
			vwap = excluded.vwap,
			updated_at = CURRENT_TIMESTAMP
	`, a.TradeID, a.EMA9, a.EMA20, a.EMA200, a.VWAP, a.DataSource)
	if err != nil {
		return fmt.Errorf("failed to upsert analytics: %w", err)
	}
	return nil
}

// GetAnalytics returns the stored analytics for one trade, or nil when
// none were computed.
func (s *SQLiteStore) GetAnalytics(ctx context.Context, tradeID string) (*models.TradeAnalytics, error) {
	var a models.TradeAnalytics
	err := s.db.QueryRowContext(ctx, `
		SELECT trade_id, ema9, ema20, ema200, vwap, data_source
		FROM trade_analytics WHERE trade_id = ?
	`, tradeID).Scan(&a.TradeID, &a.EMA9, &a.EMA20, &a.EMA200, &a.VWAP, &a.DataSource)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	return &a, nil
}
