package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nseScreener/internal/domain"
)

func tradeOn(day int, pnl float64) domain.Trade {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return domain.Trade{
		EntryDate: base.AddDate(0, 0, day-2),
		ExitDate:  base.AddDate(0, 0, day),
		PnL:       pnl,
		HoldDays:  2,
	}
}

func TestAnalyzePerformance(t *testing.T) {
	trades := []domain.Trade{
		tradeOn(0, 1000),
		tradeOn(5, 500),
		tradeOn(10, -2000),
		tradeOn(40, -500),
		tradeOn(45, 3000),
	}

	m := AnalyzePerformance(trades, 100000)

	assert.Equal(t, 5, m.TotalTrades)
	assert.InDelta(t, 2000.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 102000.0, m.FinalCapital, 1e-9)
	assert.Equal(t, 2, m.MaxConsecutiveWins)
	assert.Equal(t, 2, m.MaxConsecutiveLosses)
	assert.InDelta(t, 2.0, m.AvgHoldDays, 1e-9)

	// Peak 101500 after the second win, trough 99000 after the losses.
	assert.InDelta(t, 2500.0/101500.0, m.MaxDrawdown, 1e-9)

	require.Len(t, m.EquityCurve, 5)
	assert.InDelta(t, 101000.0, m.EquityCurve[0].Value, 1e-9)
	assert.InDelta(t, 102000.0, m.EquityCurve[4].Value, 1e-9)
}

func TestAnalyzePerformance_SortsOutOfOrderTrades(t *testing.T) {
	trades := []domain.Trade{
		tradeOn(45, 3000),
		tradeOn(0, 1000),
	}

	m := AnalyzePerformance(trades, 100000)

	require.Len(t, m.EquityCurve, 2)
	assert.InDelta(t, 101000.0, m.EquityCurve[0].Value, 1e-9)
	assert.InDelta(t, 104000.0, m.EquityCurve[1].Value, 1e-9)
}

func TestAnalyzePerformance_Empty(t *testing.T) {
	m := AnalyzePerformance(nil, 100000)

	assert.Zero(t, m.TotalTrades)
	assert.InDelta(t, 100000.0, m.FinalCapital, 1e-9)
	assert.Empty(t, m.EquityCurve)
	assert.Empty(t, m.MonthlyReturns)
}

func TestGetMonthlyReturns(t *testing.T) {
	trades := []domain.Trade{
		tradeOn(0, 1000),  // 2024-01
		tradeOn(5, 500),   // 2024-01
		tradeOn(40, -200), // 2024-02
	}

	m := AnalyzePerformance(trades, 100000)
	monthly := m.GetMonthlyReturns()

	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Month.Format("2006-01"))
	assert.InDelta(t, 1500.0, monthly[0].Return, 1e-9)
	assert.Equal(t, "2024-02", monthly[1].Month.Format("2006-01"))
	assert.InDelta(t, -200.0, monthly[1].Return, 1e-9)
}

func TestRecoveryFactor(t *testing.T) {
	m := AnalyzePerformance([]domain.Trade{
		tradeOn(0, -1000),
		tradeOn(5, 3000),
	}, 100000)

	assert.Greater(t, m.RecoveryFactor(100000), 0.0)

	flat := AnalyzePerformance([]domain.Trade{tradeOn(0, 1000)}, 100000)
	assert.Zero(t, flat.RecoveryFactor(100000), "no drawdown means no recovery to measure")
}
