package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nseScreener/config"
	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type stubSource struct {
	candles map[string][]domain.Candle
	errs    map[string]error
}

func (s *stubSource) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	return s.candles[symbol], nil
}

type stubGenerator struct {
	signals map[string][]domain.Signal
}

func (s *stubGenerator) Generate(ctx context.Context, symbol string, candles []domain.Candle) ([]domain.Signal, error) {
	return s.signals[symbol], nil
}

type memoryRepo struct {
	mu     sync.Mutex
	run    *domain.BacktestRun
	trades []domain.Trade
}

func (r *memoryRepo) SaveRun(ctx context.Context, run *domain.BacktestRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = 42
	r.run = run
	return 42, nil
}

func (r *memoryRepo) SaveTrades(ctx context.Context, runID int64, trades []domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trades...)
	return nil
}

func (r *memoryRepo) FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	return nil, nil
}

func (r *memoryRepo) TotalPnL(ctx context.Context) (float64, error) { return 0, nil }

func day(n int) time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func winningSeries() ([]domain.Candle, []domain.Signal) {
	candles := []domain.Candle{
		{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000},
		{Timestamp: day(1), Open: 105, High: 106, Low: 100, Close: 105, Volume: 1000},
		{Timestamp: day(2), Open: 110, High: 115.2, Low: 108, Close: 112, Volume: 1000},
	}
	signals := []domain.Signal{{
		Timestamp:  day(0),
		Direction:  domain.Long,
		EntryPrice: 100,
		StopLoss:   95,
		Target:     115,
	}}
	return candles, signals
}

func testConfig(symbols ...string) *config.Config {
	return &config.Config{
		Symbols:        symbols,
		LookbackDays:   365,
		InitialCapital: 100000,
		RiskPerTrade:   0.02,
		Commission:     0.0005,
		MaxPositionPct: 0.20,
		PartialTakeR:   1.5,
		TrailTriggerR:  1.0,
		TrailDistanceR: 0.5,
		MaxHoldDays:    20,
		Workers:        2,
	}
}

func TestRunner_Run_MergesSymbols(t *testing.T) {
	candles, signals := winningSeries()
	source := &stubSource{candles: map[string][]domain.Candle{"RELIANCE": candles, "TCS": candles}}
	generator := &stubGenerator{signals: map[string][]domain.Signal{"RELIANCE": signals, "TCS": signals}}
	repo := &memoryRepo{}

	runner, err := NewRunner(testConfig("RELIANCE", "TCS"), source, generator, repo, &mockLogger{})
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.TotalTrades)
	assert.Len(t, result.PerSymbol, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(42), result.RunID)

	require.NotNil(t, repo.run)
	assert.Equal(t, 2, repo.run.TotalTrades)
	assert.Len(t, repo.trades, 2)

	// Merged trades are sorted by exit date.
	for i := 1; i < len(result.Trades); i++ {
		assert.False(t, result.Trades[i].ExitDate.Before(result.Trades[i-1].ExitDate))
	}
}

func TestRunner_Run_IsolatesSymbolFailures(t *testing.T) {
	candles, signals := winningSeries()
	source := &stubSource{
		candles: map[string][]domain.Candle{"RELIANCE": candles},
		errs:    map[string]error{"BROKEN": fmt.Errorf("feed down: %w", ports.ErrProviderUnavailable)},
	}
	generator := &stubGenerator{signals: map[string][]domain.Signal{"RELIANCE": signals}}

	runner, err := NewRunner(testConfig("RELIANCE", "BROKEN"), source, generator, nil, &mockLogger{})
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.TotalTrades)
	require.Contains(t, result.Errors, "BROKEN")
	assert.True(t, errors.Is(result.Errors["BROKEN"], ports.ErrProviderUnavailable))
	assert.NotContains(t, result.PerSymbol, "BROKEN")
}

func TestRunner_Run_NoSignalsNoTrades(t *testing.T) {
	candles, _ := winningSeries()
	source := &stubSource{candles: map[string][]domain.Candle{"RELIANCE": candles}}
	generator := &stubGenerator{}

	runner, err := NewRunner(testConfig("RELIANCE"), source, generator, nil, &mockLogger{})
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Summary.TotalTrades)
	assert.Empty(t, result.Errors)
}

func TestRunner_Run_NoSymbols(t *testing.T) {
	runner, err := NewRunner(testConfig(), &stubSource{}, &stubGenerator{}, nil, &mockLogger{})
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(nil, &stubSource{}, &stubGenerator{}, nil, &mockLogger{})
	assert.Error(t, err)

	_, err = NewRunner(testConfig("RELIANCE"), nil, &stubGenerator{}, nil, &mockLogger{})
	assert.Error(t, err)

	_, err = NewRunner(testConfig("RELIANCE"), &stubSource{}, nil, nil, &mockLogger{})
	assert.Error(t, err)

	_, err = NewRunner(testConfig("RELIANCE"), &stubSource{}, &stubGenerator{}, nil, nil)
	assert.Error(t, err)
}
