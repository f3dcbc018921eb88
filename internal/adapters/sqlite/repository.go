package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Backtest database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP NOT NULL,
		symbols INTEGER NOT NULL,
		initial_capital REAL NOT NULL,
		final_capital REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		profit_factor REAL NOT NULL,
		return_pct REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_date TIMESTAMP NOT NULL,
		exit_date TIMESTAMP NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		target REAL NOT NULL,
		shares INTEGER NOT NULL,
		pnl REAL NOT NULL,
		pnl_pct REAL NOT NULL,
		r_multiple REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		pattern TEXT NULL,
		confidence REAL NOT NULL,
		hold_days INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_symbol_entry ON trade_history (symbol, entry_date);
	CREATE INDEX IF NOT EXISTS idx_trade_history_run ON trade_history (run_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing backtest database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRun persists a run summary and returns its assigned ID.
func (r *Repository) SaveRun(ctx context.Context, run *domain.BacktestRun) (int64, error) {
	const query = `
	INSERT INTO backtest_runs (started_at, symbols, initial_capital, final_capital,
	                           total_trades, win_rate, profit_factor, return_pct)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		run.StartedAt, run.Symbols, run.InitialCapital, run.FinalCapital,
		run.TotalTrades, run.WinRate, run.ProfitFactor, run.ReturnPct)
	if err != nil {
		return 0, fmt.Errorf("failed to insert backtest run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for backtest run: %w", err)
	}
	run.ID = id
	r.logger.Debug(ctx, "Backtest run saved", map[string]interface{}{"runID": id, "trades": run.TotalTrades})
	return id, nil
}

// SaveTrades persists a batch of closed trades in one transaction.
func (r *Repository) SaveTrades(ctx context.Context, runID int64, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin trade insert transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
	INSERT INTO trade_history (run_id, symbol, direction, entry_date, exit_date,
	                           entry_price, exit_price, stop_loss, target, shares,
	                           pnl, pnl_pct, r_multiple, exit_reason, pattern, confidence, hold_days)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer stmt.Close()

	var run sql.NullInt64
	if runID != 0 {
		run = sql.NullInt64{Int64: runID, Valid: true}
	}

	for _, t := range trades {
		_, err := stmt.ExecContext(ctx, run, t.Symbol, string(t.Direction), t.EntryDate, t.ExitDate,
			t.EntryPrice, t.ExitPrice, t.StopLoss, t.Target, t.Shares,
			t.PnL, t.PnLPct, t.RMultiple, string(t.ExitReason), t.Pattern, t.Confidence, t.HoldDays)
		if err != nil {
			return fmt.Errorf("failed to insert trade for symbol %s: %w", t.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trade inserts: %w", err)
	}
	r.logger.Debug(ctx, "Trades saved", map[string]interface{}{"count": len(trades), "runID": runID})
	return nil
}

// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	const query = `
	SELECT id, symbol, direction, entry_date, exit_date, entry_price, exit_price,
	       stop_loss, target, shares, pnl, pnl_pct, r_multiple, exit_reason,
	       COALESCE(pattern, ''), confidence, hold_days
	FROM trade_history
	WHERE symbol = ? ORDER BY entry_date DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade history for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade history during FindBySymbol: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade history rows: %w", err)
	}
	return trades, nil
}

// TotalPnL returns the sum of net P&L across all stored trades.
func (r *Repository) TotalPnL(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM trade_history`
	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to calculate total pnl: %w", err)
	}
	return total, nil
}

// FindRun retrieves a stored run summary by ID. Returns ports.ErrNotFound
// when no such run exists.
func (r *Repository) FindRun(ctx context.Context, id int64) (*domain.BacktestRun, error) {
	const query = `
	SELECT id, started_at, symbols, initial_capital, final_capital,
	       total_trades, win_rate, profit_factor, return_pct
	FROM backtest_runs WHERE id = ?`

	run := &domain.BacktestRun{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.StartedAt, &run.Symbols, &run.InitialCapital, &run.FinalCapital,
		&run.TotalTrades, &run.WinRate, &run.ProfitFactor, &run.ReturnPct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("backtest run %d: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query backtest run %d: %w", id, err)
	}
	return run, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade.
func scanTrade(s scanner) (domain.Trade, error) {
	var t domain.Trade
	var direction, exitReason string
	err := s.Scan(
		&t.ID, &t.Symbol, &direction, &t.EntryDate, &t.ExitDate, &t.EntryPrice, &t.ExitPrice,
		&t.StopLoss, &t.Target, &t.Shares, &t.PnL, &t.PnLPct, &t.RMultiple, &exitReason,
		&t.Pattern, &t.Confidence, &t.HoldDays)
	if err != nil {
		return t, err
	}
	t.Direction = domain.Direction(direction)
	t.ExitReason = domain.ExitReason(exitReason)
	return t, nil
}
