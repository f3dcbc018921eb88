package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nseScreener/config"
	"nseScreener/internal/adapters/csvstore"
	"nseScreener/internal/adapters/logger"
	"nseScreener/internal/adapters/yahoo"
)

// Fetches daily candles for the configured universe and caches them as
// per-symbol CSVs, so backtest runs can work offline.
func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols to fetch (defaults to SYMBOLS from config)")
	days := flag.Int("days", 0, "calendar days of history (defaults to LOOKBACK_DAYS from config)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	symbols := cfg.Symbols
	if *symbolsFlag != "" {
		symbols = symbols[:0]
		for _, s := range strings.Split(*symbolsFlag, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	lookback := cfg.LookbackDays
	if *days > 0 {
		lookback = *days
	}

	store, err := csvstore.New(csvstore.Config{
		Dir:    filepath.Join(cfg.DataDir, "candles"),
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize candle cache: %v", err)
	}

	client, err := yahoo.New(yahoo.Config{
		Logger:         appLogger,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize data provider: %v", err)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -lookback)
	failed := 0

	for _, symbol := range symbols {
		candles, err := client.DailyCandles(ctx, symbol, from, to)
		if err != nil {
			appLogger.Error(ctx, err, "Fetch failed", map[string]interface{}{"symbol": symbol})
			failed++
			continue
		}
		if err := store.Save(ctx, symbol, candles); err != nil {
			appLogger.Error(ctx, err, "Cache write failed", map[string]interface{}{"symbol": symbol})
			failed++
			continue
		}
		fmt.Printf("%s: %d candles cached\n", symbol, len(candles))
	}

	if failed > 0 {
		log.Fatalf("FATAL: %d of %d symbols failed", failed, len(symbols))
	}
}
