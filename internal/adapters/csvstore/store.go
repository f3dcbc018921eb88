package csvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
	"nseScreener/internal/utils"
)

// Store implements the ports.CandleSource interface over a directory of
// per-symbol CSV files. It doubles as a disk cache for the network
// adapter so repeated backtests don't refetch history.
type Store struct {
	dir    string
	logger ports.Logger
}

// Config holds configuration for the CSV candle store.
type Config struct {
	Dir    string
	Logger ports.Logger
}

// New creates a CSV-backed candle store rooted at cfg.Dir.
func New(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV store")
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "./data/candles"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create candle directory '%s': %w", dir, err)
	}
	return &Store{dir: dir, logger: cfg.Logger}, nil
}

func (s *Store) path(symbol string) string {
	return filepath.Join(s.dir, symbol+".csv")
}

// DailyCandles loads the symbol's cached series and filters it to
// [from, to]. A missing file maps to ports.ErrNoData.
func (s *Store) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load candles for %s: %w: %w", symbol, ports.ErrContextCanceled, err)
	}

	candles, err := utils.ReadCandlesFromCSV(s.path(symbol))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load candles for %s: %w", symbol, ports.ErrNoData)
		}
		return nil, fmt.Errorf("load candles for %s: %w", symbol, err)
	}

	filtered := make([]domain.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Timestamp.Before(from) || c.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("load candles for %s: %w", symbol, ports.ErrNoData)
	}
	s.logger.Debug(ctx, "Loaded cached candles", map[string]interface{}{"symbol": symbol, "count": len(filtered)})
	return filtered, nil
}

// Save writes the symbol's candle series to its cache file, replacing
// any previous contents.
func (s *Store) Save(ctx context.Context, symbol string, candles []domain.Candle) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save candles for %s: %w: %w", symbol, ports.ErrContextCanceled, err)
	}
	if err := utils.WriteCandlesToCSV(candles, s.path(symbol)); err != nil {
		return fmt.Errorf("save candles for %s: %w", symbol, err)
	}
	s.logger.Info(ctx, "Cached candles", map[string]interface{}{"symbol": symbol, "count": len(candles)})
	return nil
}

// Has reports whether a cache file exists for the symbol.
func (s *Store) Has(symbol string) bool {
	_, err := os.Stat(s.path(symbol))
	return err == nil
}
