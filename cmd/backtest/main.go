package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"nseScreener/config"
	"nseScreener/internal/adapters/csvstore"
	"nseScreener/internal/adapters/logger"
	"nseScreener/internal/adapters/sqlite"
	"nseScreener/internal/adapters/yahoo"
	"nseScreener/internal/analytics"
	"nseScreener/internal/app"
	"nseScreener/internal/backtest"
	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
	"nseScreener/internal/report"
	"nseScreener/internal/signals"
)

// cachedCandleSource serves candles from the CSV cache when present and
// falls back to the network provider, caching what it fetches.
type cachedCandleSource struct {
	store  *csvstore.Store
	remote ports.CandleSource
	logger ports.Logger
}

func (s *cachedCandleSource) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	if s.store.Has(symbol) {
		candles, err := s.store.DailyCandles(ctx, symbol, from, to)
		if err == nil {
			return candles, nil
		}
		if !errors.Is(err, ports.ErrNoData) {
			return nil, err
		}
		// Cache exists but doesn't cover the window; refetch.
	}

	candles, err := s.remote.DailyCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if saveErr := s.store.Save(ctx, symbol, candles); saveErr != nil {
		s.logger.Warn(ctx, "Failed to cache candles", map[string]interface{}{"symbol": symbol, "error": saveErr.Error()})
	}
	return candles, nil
}

func main() {
	optimizeSymbol := flag.String("optimize", "", "run a parameter sweep on the given symbol instead of a normal backtest")
	noPersist := flag.Bool("no-persist", false, "skip writing the run to the database")
	noReport := flag.Bool("no-report", false, "skip writing the HTML report")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appLogger.Info(ctx, "Starting NSE backtest engine", map[string]interface{}{
		"symbols": len(cfg.Symbols), "lookbackDays": cfg.LookbackDays,
	})

	store, err := csvstore.New(csvstore.Config{
		Dir:    filepath.Join(cfg.DataDir, "candles"),
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize candle cache: %v", err)
	}

	remote, err := yahoo.New(yahoo.Config{
		Logger:         appLogger,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize data provider: %v", err)
	}

	source := &cachedCandleSource{store: store, remote: remote, logger: appLogger}

	engine, err := newEngine(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	if *optimizeSymbol != "" {
		if err := runSweep(ctx, cfg, source, engine, *optimizeSymbol); err != nil {
			log.Fatalf("FATAL: Parameter sweep failed: %v", err)
		}
		return
	}

	var repo ports.TradeRepository
	var repoCloser interface{ Close() error }
	if !*noPersist {
		sqliteRepo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize repository: %v", err)
		}
		repo = sqliteRepo
		repoCloser = sqliteRepo
		defer repoCloser.Close()
	}

	runner, err := app.NewRunner(cfg, source, engine, repo, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize runner: %v", err)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("FATAL: Backtest run failed: %v", err)
	}

	printSummary(result)

	if !*noReport && len(result.Trades) > 0 {
		metrics := analytics.AnalyzePerformance(result.Trades, cfg.InitialCapital)
		path, err := report.WriteHTML(report.Data{
			Symbols: cfg.Symbols,
			Summary: result.Summary,
			Metrics: metrics,
			Trades:  result.Trades,
		}, cfg.ReportDir)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to write HTML report")
		} else {
			fmt.Printf("\nReport written to %s\n", path)
		}
	}
}

func newEngine(cfg *config.Config, appLogger ports.Logger) (ports.SignalGenerator, error) {
	return signals.NewEngine(signals.Config{
		RSIPeriod:     cfg.RSIPeriod,
		RSIOversold:   cfg.RSIOversold,
		RSIOverbought: cfg.RSIOverbought,
		FastSMAPeriod: cfg.FastSMAPeriod,
		SlowSMAPeriod: cfg.SlowSMAPeriod,
		ATRPeriod:     cfg.ATRPeriod,
		StopATRMult:   cfg.StopATRMult,
		TargetATRMult: cfg.TargetATRMult,
	}, appLogger)
}

func printSummary(result *app.Result) {
	s := result.Summary
	fmt.Println("\n=== Backtest Summary ===")
	fmt.Printf("Trades:        %d (%d wins / %d losses)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	fmt.Printf("Win rate:      %.2f%%\n", s.WinRate)
	fmt.Printf("Total P&L:     %.2f\n", s.TotalPnL)
	fmt.Printf("Profit factor: %.2f\n", s.ProfitFactor)
	fmt.Printf("Avg R:         %.2f\n", s.AvgRMultiple)
	fmt.Printf("Return:        %.2f%% (%.2f -> %.2f)\n", s.ReturnPct, s.InitialCapital, s.FinalCapital)

	for symbol, err := range result.Errors {
		fmt.Printf("WARN: %s failed: %v\n", symbol, err)
	}
}

func runSweep(ctx context.Context, cfg *config.Config, source ports.CandleSource, engine ports.SignalGenerator, symbol string) error {
	to := time.Now()
	from := to.AddDate(0, 0, -cfg.LookbackDays)

	candles, err := source.DailyCandles(ctx, symbol, from, to)
	if err != nil {
		return fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	signals, err := engine.Generate(ctx, symbol, candles)
	if err != nil {
		return fmt.Errorf("generate signals for %s: %w", symbol, err)
	}

	optimizer := backtest.NewOptimizer(backtest.OptimizerConfig{
		Base: backtest.Config{
			InitialCapital: cfg.InitialCapital,
			Commission:     cfg.Commission,
			MaxPositionPct: cfg.MaxPositionPct,
			PartialTakeR:   cfg.PartialTakeR,
			TrailTriggerR:  cfg.TrailTriggerR,
			TrailDistanceR: cfg.TrailDistanceR,
		},
		ParameterRanges: []backtest.ParameterRange{
			{Name: "risk_per_trade", Min: 0.01, Max: 0.03, Step: 0.005},
			{Name: "max_hold_days", Min: 10, Max: 30, Step: 5, IsInt: true},
		},
	})

	results := optimizer.Sweep(ctx, symbol, candles, signals)
	fmt.Printf("\n=== Parameter Sweep: %s (%d combinations) ===\n", symbol, len(results))
	top := results
	if len(top) > 10 {
		top = top[:10]
	}
	for i, r := range top {
		fmt.Printf("#%d score=%.2f params=%v trades=%d winRate=%.1f%% return=%.2f%%\n",
			i+1, r.Score, r.Parameters, r.Summary.TotalTrades, r.Summary.WinRate, r.Summary.ReturnPct)
	}
	return nil
}
