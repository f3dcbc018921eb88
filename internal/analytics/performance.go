package analytics

import (
	"sort"
	"time"

	"nseScreener/internal/domain"
)

// PerformanceMetrics holds extended performance metrics beyond the basic
// backtest summary: streaks, drawdowns, expectancy and monthly returns.
type PerformanceMetrics struct {
	TotalTrades   int
	TotalPnL      float64
	FinalCapital  float64
	MaxDrawdown   float64 // Fraction of peak equity
	Expectancy    float64 // Mean expected P&L per trade
	AvgRMultiple  float64
	AvgHoldDays   float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	MonthlyReturns map[string]float64
	EquityCurve    []EquityPoint
}

// EquityPoint represents a point on the equity curve.
type EquityPoint struct {
	Time     time.Time
	Value    float64
	Drawdown float64
}

// AnalyzePerformance folds a closed-trade list into extended metrics.
// Trades are processed in exit order regardless of input order.
func AnalyzePerformance(trades []domain.Trade, initialCapital float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalCapital:   initialCapital,
		MonthlyReturns: make(map[string]float64),
		EquityCurve:    make([]EquityPoint, 0, len(trades)),
	}

	if len(trades) == 0 {
		return metrics
	}

	ordered := make([]domain.Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ExitDate.Before(ordered[j].ExitDate)
	})

	balance := initialCapital
	peak := initialCapital
	var wins, consecutiveWins, consecutiveLosses int
	var sumWin, sumLoss, sumR, sumHold float64

	for _, trade := range ordered {
		metrics.TotalTrades++
		metrics.TotalPnL += trade.PnL
		sumR += trade.RMultiple
		sumHold += float64(trade.HoldDays)

		if trade.PnL > 0 {
			wins++
			sumWin += trade.PnL
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			sumLoss += trade.PnL
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		balance += trade.PnL
		metrics.FinalCapital = balance
		metrics.MonthlyReturns[trade.ExitDate.Format("2006-01")] += trade.PnL

		if balance > peak {
			peak = balance
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - balance) / peak
		}
		if drawdown > metrics.MaxDrawdown {
			metrics.MaxDrawdown = drawdown
		}
		metrics.EquityCurve = append(metrics.EquityCurve, EquityPoint{
			Time:     trade.ExitDate,
			Value:    balance,
			Drawdown: drawdown,
		})
	}

	total := float64(metrics.TotalTrades)
	winRate := float64(wins) / total
	var avgWin, avgLoss float64
	if wins > 0 {
		avgWin = sumWin / float64(wins)
	}
	if losses := metrics.TotalTrades - wins; losses > 0 {
		avgLoss = sumLoss / float64(losses)
	}
	metrics.Expectancy = winRate*avgWin + (1-winRate)*avgLoss
	metrics.AvgRMultiple = sumR / total
	metrics.AvgHoldDays = sumHold / total

	return metrics
}

// MonthlyReturn represents a monthly return value.
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}

// GetMonthlyReturns returns the monthly returns as a sorted slice.
func (m *PerformanceMetrics) GetMonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyReturns))
	for month, profit := range m.MonthlyReturns {
		date, err := time.Parse("2006-01", month)
		if err != nil {
			continue
		}
		returns = append(returns, MonthlyReturn{Month: date, Return: profit})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}

// RecoveryFactor relates total profit to the deepest drawdown; 0 when the
// equity curve never drew down.
func (m *PerformanceMetrics) RecoveryFactor(initialCapital float64) float64 {
	dd := initialCapital * m.MaxDrawdown
	if dd <= 0 {
		return 0
	}
	return m.TotalPnL / dd
}
