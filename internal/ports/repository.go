package ports

import (
	"context"

	"nseScreener/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving
// closed trades and backtest run summaries.
type TradeRepository interface {
	// SaveRun persists a run summary and returns its assigned ID.
	SaveRun(ctx context.Context, run *domain.BacktestRun) (int64, error)
	// SaveTrades persists a batch of closed trades belonging to a run.
	SaveTrades(ctx context.Context, runID int64, trades []domain.Trade) error
	// FindBySymbol retrieves the most recent trades for a given symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.Trade, error)
	// TotalPnL returns the sum of net P&L across all stored trades.
	TotalPnL(ctx context.Context) (float64, error)
}
