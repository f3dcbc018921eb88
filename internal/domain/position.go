package domain

import "time"

// Position represents the single currently-open trade for a symbol.
// It is owned and mutated exclusively by the simulator: the stop may
// tighten (never loosen), shares only decrease, and the partial flag
// flips at most once.
type Position struct {
	Symbol     string
	Direction  Direction
	EntryDate  time.Time
	EntryPrice float64
	StopLoss   float64 // Tightens via breakeven/trailing rules, never loosens
	Target     float64

	InitialShares int // Fixed at entry, basis for reporting and R-multiples
	Shares        int // Remaining open shares, decreases on the partial exit

	EntryRisk       float64 // |entry - initial stop|, fixed at entry
	BestPrice       float64 // Most favorable price seen since entry
	PartialTaken    bool
	RealizedPnL     float64 // Net P&L already banked by the partial exit
	EntryCommission float64 // Charged once at entry on the full size
	BarsHeld        int     // Trading days the position has been open

	Pattern    string
	Confidence float64
}
