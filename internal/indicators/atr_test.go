package indicators

import (
	"context"
	"math"
	"testing"
	"time"

	"nseScreener/internal/domain"
)

func TestATR_Calculate(t *testing.T) {
	atr := NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: 3}})
	ctx := context.Background()

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	constantRange := func(n int) []domain.Candle {
		candles := make([]domain.Candle, 0, n)
		for i := 0; i < n; i++ {
			candles = append(candles, domain.Candle{
				Timestamp: base.AddDate(0, 0, i),
				Open:      100, High: 102, Low: 98, Close: 100,
				Volume: 1000,
			})
		}
		return candles
	}

	t.Run("constant range converges to that range", func(t *testing.T) {
		value, err := atr.Calculate(ctx, constantRange(10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(value-4) > 1e-9 {
			t.Errorf("expected ATR 4 for a constant 4-point range, got %v", value)
		}
	})

	t.Run("gap widens true range", func(t *testing.T) {
		candles := constantRange(4)
		// Gap up: previous close 100, low 110 -> TR = high - prevClose = 15.
		candles = append(candles, domain.Candle{
			Timestamp: base.AddDate(0, 0, 4),
			Open:      112, High: 115, Low: 110, Close: 113,
			Volume: 1000,
		})
		value, err := atr.Calculate(ctx, candles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value <= 4 {
			t.Errorf("expected ATR above the base range after a gap, got %v", value)
		}
	})

	t.Run("not enough data", func(t *testing.T) {
		if _, err := atr.Calculate(ctx, constantRange(3)); err == nil {
			t.Error("expected error for insufficient data")
		}
	})
}

func TestATR_RequiredDataPoints(t *testing.T) {
	atr := NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: 14}})
	if got := atr.RequiredDataPoints(); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
}
