package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTrade(symbol string, day int, pnl float64) domain.Trade {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return domain.Trade{
		Symbol:     symbol,
		Direction:  domain.Long,
		EntryDate:  base.AddDate(0, 0, day),
		ExitDate:   base.AddDate(0, 0, day+3),
		EntryPrice: 100,
		ExitPrice:  110,
		StopLoss:   95,
		Target:     115,
		Shares:     200,
		PnL:        pnl,
		PnLPct:     pnl / 20000 * 100,
		RMultiple:  pnl / 1000,
		ExitReason: domain.ExitTarget,
		Pattern:    "OVERSOLD_PULLBACK",
		Confidence: 0.65,
		HoldDays:   3,
	}
}

func TestRepository_SaveRunAndFindRun(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	run := &domain.BacktestRun{
		StartedAt:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Symbols:        5,
		InitialCapital: 100000,
		FinalCapital:   104500,
		TotalTrades:    12,
		WinRate:        58.33,
		ProfitFactor:   1.8,
		ReturnPct:      4.5,
	}

	id, err := repo.SaveRun(ctx, run)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, run.ID)

	found, err := repo.FindRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, run.TotalTrades, found.TotalTrades)
	assert.InDelta(t, run.ProfitFactor, found.ProfitFactor, 1e-9)
	assert.True(t, run.StartedAt.Equal(found.StartedAt))
}

func TestRepository_FindRun_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.FindRun(context.Background(), 9999)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRepository_SaveTradesAndFindBySymbol(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	runID, err := repo.SaveRun(ctx, &domain.BacktestRun{StartedAt: time.Now().UTC()})
	require.NoError(t, err)

	trades := []domain.Trade{
		sampleTrade("RELIANCE", 0, 2978.5),
		sampleTrade("RELIANCE", 10, -1020.5),
		sampleTrade("TCS", 5, 500),
	}
	require.NoError(t, repo.SaveTrades(ctx, runID, trades))

	found, err := repo.FindBySymbol(ctx, "RELIANCE", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Most recent entry first.
	assert.InDelta(t, -1020.5, found[0].PnL, 1e-9)
	assert.InDelta(t, 2978.5, found[1].PnL, 1e-9)
	assert.Equal(t, domain.Long, found[0].Direction)
	assert.Equal(t, domain.ExitTarget, found[0].ExitReason)
	assert.Equal(t, "OVERSOLD_PULLBACK", found[0].Pattern)

	limited, err := repo.FindBySymbol(ctx, "RELIANCE", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.FindBySymbol(ctx, "WIPRO", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_SaveTrades_Empty(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.SaveTrades(context.Background(), 1, nil))
}

func TestRepository_TotalPnL(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	total, err := repo.TotalPnL(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.SaveTrades(ctx, 0, []domain.Trade{
		sampleTrade("RELIANCE", 0, 1000),
		sampleTrade("TCS", 1, -250),
	}))

	total, err = repo.TotalPnL(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 750.0, total, 1e-9)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
