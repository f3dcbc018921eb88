package csvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(Config{Dir: t.TempDir(), Logger: &mockLogger{}})
	require.NoError(t, err)
	return store
}

func seriesFrom(start time.Time, days int) []domain.Candle {
	candles := make([]domain.Candle, 0, days)
	for i := 0; i < days; i++ {
		candles = append(candles, domain.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      100, High: 101, Low: 99, Close: 100,
			Volume: 1000,
		})
	}
	return candles
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "RELIANCE", seriesFrom(start, 10)))
	assert.True(t, store.Has("RELIANCE"))

	loaded, err := store.DailyCandles(ctx, "RELIANCE", start, start.AddDate(0, 0, 9))
	require.NoError(t, err)
	assert.Len(t, loaded, 10)
}

func TestStore_DailyCandles_FiltersWindow(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "TCS", seriesFrom(start, 10)))

	loaded, err := store.DailyCandles(ctx, "TCS", start.AddDate(0, 0, 2), start.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	assert.Equal(t, start.AddDate(0, 0, 2), loaded[0].Timestamp)
	assert.Equal(t, start.AddDate(0, 0, 5), loaded[3].Timestamp)
}

func TestStore_DailyCandles_MissingSymbol(t *testing.T) {
	store := testStore(t)

	_, err := store.DailyCandles(context.Background(), "NOSUCH", time.Now().AddDate(0, 0, -10), time.Now())
	assert.True(t, errors.Is(err, ports.ErrNoData))
	assert.False(t, store.Has("NOSUCH"))
}

func TestStore_DailyCandles_WindowOutsideData(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "INFY", seriesFrom(start, 5)))

	_, err := store.DailyCandles(ctx, "INFY", start.AddDate(0, 1, 0), start.AddDate(0, 2, 0))
	assert.True(t, errors.Is(err, ports.ErrNoData))
}
