package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nseScreener/config"
	"nseScreener/internal/backtest"
	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
)

// Runner orchestrates a multi-symbol backtest: it fans symbols out to a
// worker pool, gives each worker its own simulator with its own capital
// ledger, and merges the results under a lock. Per-symbol failures are
// isolated; one bad symbol never aborts the run.
type Runner struct {
	config    *config.Config
	candles   ports.CandleSource
	generator ports.SignalGenerator
	repo      ports.TradeRepository // optional; nil disables persistence
	logger    ports.Logger
}

// Result aggregates the outcome of a full run.
type Result struct {
	RunID     int64
	Summary   backtest.Summary
	Trades    []domain.Trade
	PerSymbol map[string]backtest.Summary
	Errors    map[string]error
}

// NewRunner wires a backtest runner from its dependencies. The repository
// may be nil, in which case results are not persisted.
func NewRunner(cfg *config.Config, candles ports.CandleSource, generator ports.SignalGenerator, repo ports.TradeRepository, log ports.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if candles == nil {
		return nil, fmt.Errorf("candle source is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("signal generator is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Runner{
		config:    cfg,
		candles:   candles,
		generator: generator,
		repo:      repo,
		logger:    log,
	}, nil
}

func (r *Runner) simulatorConfig() backtest.Config {
	return backtest.Config{
		InitialCapital: r.config.InitialCapital,
		Commission:     r.config.Commission,
		RiskPerTrade:   r.config.RiskPerTrade,
		MaxPositionPct: r.config.MaxPositionPct,
		PartialTakeR:   r.config.PartialTakeR,
		TrailTriggerR:  r.config.TrailTriggerR,
		TrailDistanceR: r.config.TrailDistanceR,
		MaxHoldDays:    r.config.MaxHoldDays,
	}
}

// Run backtests every configured symbol and returns the merged result.
// The overall summary treats all trades as drawing on one shared initial
// capital; per-symbol summaries are each computed against that same
// starting capital.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	symbols := r.config.Symbols
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured: %w", ports.ErrInvalidRequest)
	}

	workers := r.config.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	startedAt := time.Now()
	r.logger.Info(ctx, "Starting backtest run", map[string]interface{}{
		"symbols": len(symbols), "workers": workers, "capital": r.config.InitialCapital,
	})

	to := time.Now()
	from := to.AddDate(0, 0, -r.config.LookbackDays)

	result := &Result{
		PerSymbol: make(map[string]backtest.Summary, len(symbols)),
		Errors:    make(map[string]error),
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan string)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns its simulator; the instance is not shared.
			sim := backtest.NewSimulator(r.simulatorConfig(), r.logger)
			for symbol := range jobs {
				trades, err := r.runSymbol(ctx, sim, symbol, from, to)
				mu.Lock()
				if err != nil {
					result.Errors[symbol] = err
				} else {
					result.Trades = append(result.Trades, trades...)
					result.PerSymbol[symbol] = backtest.Summarize(trades, r.config.InitialCapital)
				}
				mu.Unlock()
			}
		}()
	}

	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()

	sort.Slice(result.Trades, func(i, j int) bool {
		return result.Trades[i].ExitDate.Before(result.Trades[j].ExitDate)
	})
	result.Summary = backtest.Summarize(result.Trades, r.config.InitialCapital)

	r.logger.Info(ctx, "Backtest run complete", map[string]interface{}{
		"trades":  result.Summary.TotalTrades,
		"winRate": result.Summary.WinRate,
		"pnl":     result.Summary.TotalPnL,
		"failed":  len(result.Errors),
	})

	if r.repo != nil {
		if err := r.persist(ctx, startedAt, result); err != nil {
			// Persistence failure downgrades to a warning; the in-memory
			// result is still returned.
			r.logger.Error(ctx, err, "Failed to persist backtest run")
		}
	}
	return result, nil
}

// runSymbol executes the fetch, generate and replay pipeline for one
// symbol, recovering from panics so a single bad series cannot take down
// the whole pool.
func (r *Runner) runSymbol(ctx context.Context, sim *backtest.Simulator, symbol string, from, to time.Time) (trades []domain.Trade, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("backtest for %s panicked: %v: %w", symbol, rec, ports.ErrUnknown)
			r.logger.Error(ctx, err, "Recovered from symbol panic", map[string]interface{}{"symbol": symbol})
		}
	}()

	candles, err := r.candles.DailyCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}

	signals, err := r.generator.Generate(ctx, symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}
	if len(signals) == 0 {
		r.logger.Info(ctx, "No signals for symbol", map[string]interface{}{"symbol": symbol})
		return nil, nil
	}

	return sim.Run(ctx, symbol, candles, signals), nil
}

// persist stores the run summary and its trades.
func (r *Runner) persist(ctx context.Context, startedAt time.Time, result *Result) error {
	run := &domain.BacktestRun{
		StartedAt:      startedAt,
		Symbols:        len(r.config.Symbols),
		InitialCapital: result.Summary.InitialCapital,
		FinalCapital:   result.Summary.FinalCapital,
		TotalTrades:    result.Summary.TotalTrades,
		WinRate:        result.Summary.WinRate,
		ProfitFactor:   result.Summary.ProfitFactor,
		ReturnPct:      result.Summary.ReturnPct,
	}

	runID, err := r.repo.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := r.repo.SaveTrades(ctx, runID, result.Trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}
	result.RunID = runID
	r.logger.Info(ctx, "Backtest run persisted", map[string]interface{}{"runID": runID})
	return nil
}
