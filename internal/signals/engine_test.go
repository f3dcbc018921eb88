package signals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nseScreener/internal/domain"
)

func testCandles() []domain.Candle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, 0, 68)

	// A steady uptrend followed by a sharp pullback pushes RSI into
	// oversold while the fast SMA stays above the slow one.
	price := 100.0
	for i := 0; i < 60; i++ {
		candles = append(candles, domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1.5,
			Low:       price - 0.5,
			Close:     price + 1,
			Volume:    100000,
		})
		price += 1
	}
	for i := 60; i < 68; i++ {
		candles = append(candles, domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price + 0.5,
			Low:       price - 6,
			Close:     price - 5,
			Volume:    250000,
		})
		price -= 5
	}
	return candles
}

func TestEngine_GeneratesLongOnOversoldPullback(t *testing.T) {
	engine, err := NewEngine(Config{}, nil)
	require.NoError(t, err)

	candles := testCandles()
	signals, err := engine.Generate(context.Background(), "RELIANCE", candles)
	require.NoError(t, err)
	require.NotEmpty(t, signals)

	timestamps := make(map[time.Time]bool, len(candles))
	for _, c := range candles {
		timestamps[c.Timestamp] = true
	}

	var prev time.Time
	for _, sig := range signals {
		assert.Equal(t, "RELIANCE", sig.Symbol)
		assert.True(t, timestamps[sig.Timestamp], "signal timestamp must match a candle")
		assert.True(t, sig.Timestamp.After(prev), "signals must ascend by timestamp")
		prev = sig.Timestamp

		assert.Greater(t, sig.Confidence, 0.0)
		assert.LessOrEqual(t, sig.Confidence, 1.0)

		require.Equal(t, domain.Long, sig.Direction)
		assert.Equal(t, "OVERSOLD_PULLBACK", sig.Pattern)
		assert.Less(t, sig.StopLoss, sig.EntryPrice)
		assert.Greater(t, sig.Target, sig.EntryPrice)
	}
}

func TestEngine_TooLittleDataYieldsNoSignals(t *testing.T) {
	engine, err := NewEngine(Config{}, nil)
	require.NoError(t, err)

	signals, err := engine.Generate(context.Background(), "TCS", testCandles()[:30])
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestEngine_CooldownLimitsSignalDensity(t *testing.T) {
	engine, err := NewEngine(Config{CooldownBars: 5}, nil)
	require.NoError(t, err)

	signals, err := engine.Generate(context.Background(), "INFY", testCandles())
	require.NoError(t, err)

	for i := 1; i < len(signals); i++ {
		gap := signals[i].Timestamp.Sub(signals[i-1].Timestamp)
		assert.GreaterOrEqual(t, gap, 5*24*time.Hour, "consecutive signals must respect the cooldown")
	}
}

func TestNewEngine_ValidatesConfig(t *testing.T) {
	_, err := NewEngine(Config{FastSMAPeriod: 50, SlowSMAPeriod: 20}, nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{RSIOversold: 70, RSIOverbought: 30}, nil)
	assert.Error(t, err)
}
