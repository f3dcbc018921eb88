package domain

import "strings"

// Direction represents the side of a signal or position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// ParseDirection maps a raw screener action onto a Direction.
// The screener emits "buy" for long setups; anything else is treated as short.
func ParseDirection(action string) Direction {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "buy", "long":
		return Long
	default:
		return Short
	}
}

// ExitReason indicates why a position was closed.
type ExitReason string

const (
	ExitStopLoss  ExitReason = "SL"
	ExitTarget    ExitReason = "TARGET"
	ExitTimeLimit ExitReason = "TIME" // Held past the maximum trading-day count
	ExitEndOfData ExitReason = "EOD"  // Forced close at the last available candle
)
