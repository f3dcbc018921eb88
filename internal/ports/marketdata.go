package ports

import (
	"context"
	"time"

	"nseScreener/internal/domain"
)

// CandleSource supplies an ordered, deduplicated series of daily candles
// for one symbol over a date range.
type CandleSource interface {
	// DailyCandles returns daily bars for the symbol, ascending by timestamp,
	// with no duplicate timestamps.
	DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error)
}

// SignalGenerator produces dated directional signals for a candle series.
// Signals are ascending by timestamp and each signal's timestamp exists in
// the candle series it was generated from.
type SignalGenerator interface {
	Generate(ctx context.Context, symbol string, candles []domain.Candle) ([]domain.Signal, error)
}
