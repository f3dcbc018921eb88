package backtest

import (
	"context"
	"math"
	"sort"
	"sync"

	"nseScreener/internal/domain"
)

// ParameterRange defines a range for a simulator parameter to sweep.
type ParameterRange struct {
	Name  string // One of: risk_per_trade, partial_take_r, trail_trigger_r, trail_distance_r, max_hold_days, commission
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// SweepResult holds the outcome of a single parameter combination.
type SweepResult struct {
	Parameters map[string]float64
	Summary    Summary
	Score      float64
}

// OptimizerConfig holds configuration for the parameter sweep.
type OptimizerConfig struct {
	ParameterRanges []ParameterRange
	Base            Config // Template config; swept parameters override its fields
	ScoreFunction   func(Summary) float64
}

// Optimizer runs the same replay under a grid of simulator parameters.
// Every combination gets its own Simulator instance, so the runs never
// share ledger state and may execute concurrently.
type Optimizer struct {
	config OptimizerConfig
}

// NewOptimizer creates a new optimizer instance.
func NewOptimizer(config OptimizerConfig) *Optimizer {
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	return &Optimizer{config: config}
}

// Sweep replays the candle/signal streams once per parameter combination
// and returns the results sorted by descending score.
func (o *Optimizer) Sweep(ctx context.Context, symbol string, candles []domain.Candle, signals []domain.Signal) []SweepResult {
	combinations := o.generateParameterCombinations()
	results := make([]SweepResult, 0, len(combinations))

	resultChan := make(chan SweepResult, len(combinations))
	var wg sync.WaitGroup

	for _, params := range combinations {
		wg.Add(1)
		go func(params map[string]float64) {
			defer wg.Done()

			sim := NewSimulator(applyParams(o.config.Base, params), nil)
			sim.Run(ctx, symbol, candles, signals)
			summary := sim.Summary()

			resultChan <- SweepResult{
				Parameters: params,
				Summary:    summary,
				Score:      o.config.ScoreFunction(summary),
			}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// generateParameterCombinations expands the configured ranges into the
// full cartesian grid.
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	current := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(current))
			for k, v := range current {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		value := param.Min
		for value <= param.Max+param.Step/2 { // epsilon for float comparison
			if param.IsInt {
				value = math.Round(value)
			}
			current[param.Name] = value
			generate(paramIndex + 1)
			value += param.Step
		}
	}

	generate(0)
	return combinations
}

// applyParams overlays swept parameter values onto a template config.
func applyParams(base Config, params map[string]float64) Config {
	for name, value := range params {
		switch name {
		case "risk_per_trade":
			base.RiskPerTrade = value
		case "partial_take_r":
			base.PartialTakeR = value
		case "trail_trigger_r":
			base.TrailTriggerR = value
		case "trail_distance_r":
			base.TrailDistanceR = value
		case "max_hold_days":
			base.MaxHoldDays = int(value)
		case "commission":
			base.Commission = value
		}
	}
	return base
}

// DefaultScoreFunction weighs return, consistency and risk efficiency
// into a single comparable score.
func DefaultScoreFunction(s Summary) float64 {
	score := 0.0
	score += s.WinRate * 0.3
	score += s.ProfitFactor * 0.2
	score += s.ReturnPct * 0.3
	score += s.AvgRMultiple * 0.2
	return score
}
