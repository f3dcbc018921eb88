package domain

import "time"

// Candle represents a single daily OHLCV bar for a symbol.
// Candles are supplied externally and never mutated by the simulator.
type Candle struct {
	Timestamp time.Time // Bar timestamp, unique and ascending within a series
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}
