package domain

import "time"

// Trade is the immutable record of a fully closed position.
type Trade struct {
	ID         int64 // Assigned by the repository on save, 0 otherwise
	Symbol     string
	Direction  Direction
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	StopLoss   float64 // Stop level at exit time, after any trailing
	Target     float64
	Shares     int     // Initial size; the partial leg is folded into PnL
	PnL        float64 // Net of commissions across partial and final legs
	PnLPct     float64 // PnL over the entry notional, in percent
	RMultiple  float64 // PnL over the original entry risk, not the trailed stop
	ExitReason ExitReason
	Pattern    string
	Confidence float64
	HoldDays   int
}

// BacktestRun records one full universe replay for persistence.
type BacktestRun struct {
	ID             int64
	StartedAt      time.Time
	Symbols        int
	InitialCapital float64
	FinalCapital   float64
	TotalTrades    int
	WinRate        float64
	ProfitFactor   float64
	ReturnPct      float64
}
