package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"nseScreener/config"
	"nseScreener/internal/adapters/logger"
	"nseScreener/internal/adapters/sqlite"
	"nseScreener/internal/analytics"
	"nseScreener/internal/backtest"
	"nseScreener/internal/domain"
	"nseScreener/internal/utils"
)

// Analyzes previously recorded trades, either from the backtest database
// or from a CSV export, and prints extended performance metrics.
func main() {
	symbol := flag.String("symbol", "", "restrict analysis to one symbol (database mode)")
	limit := flag.Int("limit", 500, "maximum trades to load per symbol (database mode)")
	csvPath := flag.String("csv", "", "analyze a trades CSV export instead of the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	var trades []domain.Trade
	if *csvPath != "" {
		trades, err = utils.ReadTradesFromCSV(*csvPath)
		if err != nil {
			log.Fatalf("FATAL: Failed to read trades from %s: %v", *csvPath, err)
		}
	} else {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to open repository: %v", err)
		}
		defer repo.Close()

		if *symbol == "" {
			total, err := repo.TotalPnL(ctx)
			if err != nil {
				log.Fatalf("FATAL: Failed to read total P&L: %v", err)
			}
			fmt.Printf("Total recorded P&L across all runs: %.2f\n", total)
			fmt.Println("Pass -symbol or -csv for per-trade analysis.")
			return
		}

		trades, err = repo.FindBySymbol(ctx, *symbol, *limit)
		if err != nil {
			log.Fatalf("FATAL: Failed to load trades for %s: %v", *symbol, err)
		}
	}

	if len(trades) == 0 {
		fmt.Println("No trades to analyze.")
		return
	}

	summary := backtest.Summarize(trades, cfg.InitialCapital)
	metrics := analytics.AnalyzePerformance(trades, cfg.InitialCapital)

	fmt.Println("\n=== Trade Analysis ===")
	fmt.Printf("Trades:          %d (%d wins / %d losses)\n", summary.TotalTrades, summary.WinningTrades, summary.LosingTrades)
	fmt.Printf("Win rate:        %.2f%%\n", summary.WinRate)
	fmt.Printf("Total P&L:       %.2f\n", summary.TotalPnL)
	fmt.Printf("Profit factor:   %.2f\n", summary.ProfitFactor)
	fmt.Printf("Avg win/loss:    %.2f / %.2f\n", summary.AvgWin, summary.AvgLoss)
	fmt.Printf("Avg R-multiple:  %.2f\n", summary.AvgRMultiple)
	fmt.Printf("Avg hold days:   %.1f\n", summary.AvgHoldDays)
	fmt.Printf("Expectancy:      %.2f per trade\n", metrics.Expectancy)
	fmt.Printf("Max drawdown:    %.2f%%\n", metrics.MaxDrawdown*100)
	fmt.Printf("Streaks:         %d wins / %d losses\n", metrics.MaxConsecutiveWins, metrics.MaxConsecutiveLosses)
	fmt.Printf("Recovery factor: %.2f\n", metrics.RecoveryFactor(cfg.InitialCapital))

	monthly := metrics.GetMonthlyReturns()
	if len(monthly) > 0 {
		fmt.Println("\nMonthly P&L:")
		for _, m := range monthly {
			fmt.Printf("  %s  %+.2f\n", m.Month.Format("2006-01"), m.Return)
		}
	}
}
