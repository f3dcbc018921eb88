package domain

import "time"

// Signal is a directional trade proposal emitted for a specific candle
// timestamp. Signals for a symbol arrive in ascending timestamp order and
// each timestamp is expected to exist in the symbol's candle series.
type Signal struct {
	Timestamp  time.Time
	Symbol     string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	Target     float64
	Pattern    string  // Setup label (e.g. "OVERSOLD_PULLBACK")
	Confidence float64 // 0..1
}
