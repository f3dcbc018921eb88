package backtest

import (
	"math"

	"nseScreener/internal/domain"
)

// Summary holds the aggregate statistics for a set of closed trades.
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // Percent
	TotalPnL      float64
	AvgWin        float64
	AvgLoss       float64
	ProfitFactor  float64 // Sum of wins over absolute sum of losses, 0 with no losses
	AvgRMultiple  float64
	WinAvgR       float64
	LossAvgR      float64

	InitialCapital float64
	FinalCapital   float64
	ReturnPct      float64
	AvgHoldDays    float64
}

// Summarize folds a closed-trade list into summary statistics. It is a
// pure function over its inputs: an empty trade list yields all-zero
// statistics rather than an error, and every division is guarded.
func Summarize(trades []domain.Trade, initialCapital float64) Summary {
	s := Summary{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
	}
	if len(trades) == 0 {
		return s
	}

	var sumWins, sumLosses, sumR, winR, lossR, holdDays float64
	for _, t := range trades {
		s.TotalTrades++
		s.TotalPnL += t.PnL
		sumR += t.RMultiple
		holdDays += float64(t.HoldDays)

		if t.PnL > 0 {
			s.WinningTrades++
			sumWins += t.PnL
			winR += t.RMultiple
		} else {
			// A flat trade still paid commissions and tied up capital;
			// exactly-zero P&L counts as a loss.
			s.LosingTrades++
			sumLosses += t.PnL
			lossR += t.RMultiple
		}
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	if s.WinningTrades > 0 {
		s.AvgWin = sumWins / float64(s.WinningTrades)
		s.WinAvgR = winR / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = sumLosses / float64(s.LosingTrades)
		s.LossAvgR = lossR / float64(s.LosingTrades)
	}
	if sumLosses != 0 {
		s.ProfitFactor = sumWins / math.Abs(sumLosses)
	}
	s.AvgRMultiple = sumR / float64(s.TotalTrades)
	s.AvgHoldDays = holdDays / float64(s.TotalTrades)

	s.FinalCapital = initialCapital + s.TotalPnL
	if initialCapital > 0 {
		s.ReturnPct = s.TotalPnL / initialCapital * 100
	}
	return s
}
