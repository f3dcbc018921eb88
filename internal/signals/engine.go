package signals

import (
	"context"
	"fmt"
	"math"

	"nseScreener/internal/domain"
	"nseScreener/internal/indicators"
	"nseScreener/internal/ports"
)

// Config holds the signal engine parameters.
type Config struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	FastSMAPeriod int
	SlowSMAPeriod int
	ATRPeriod     int
	StopATRMult   float64 // Stop distance in ATR multiples
	TargetATRMult float64 // Target distance in ATR multiples
	CooldownBars  int     // Minimum bars between consecutive signals
}

func (c Config) withDefaults() Config {
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
	if c.RSIOversold <= 0 {
		c.RSIOversold = 30
	}
	if c.RSIOverbought <= 0 {
		c.RSIOverbought = 70
	}
	if c.FastSMAPeriod <= 0 {
		c.FastSMAPeriod = 20
	}
	if c.SlowSMAPeriod <= 0 {
		c.SlowSMAPeriod = 50
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = 14
	}
	if c.StopATRMult <= 0 {
		c.StopATRMult = 2.0
	}
	if c.TargetATRMult <= 0 {
		c.TargetATRMult = 3.0
	}
	if c.CooldownBars <= 0 {
		c.CooldownBars = 5
	}
	return c
}

// Engine is the simplified scoring pipeline used for backtests: RSI
// extremes filtered by the SMA trend, with ATR-derived stop and target
// levels and a volume-weighted confidence. It emits at most one signal
// per candle, each stamped with that candle's timestamp.
type Engine struct {
	config  Config
	rsi     *indicators.RSI
	fastSMA *indicators.MovingAverage
	slowSMA *indicators.MovingAverage
	atr     *indicators.ATR
	logger  ports.Logger
}

// NewEngine creates a signal engine, validating the period relationships.
func NewEngine(config Config, log ports.Logger) (*Engine, error) {
	config = config.withDefaults()
	if config.FastSMAPeriod >= config.SlowSMAPeriod {
		return nil, fmt.Errorf("fast SMA period (%d) must be less than slow SMA period (%d)", config.FastSMAPeriod, config.SlowSMAPeriod)
	}
	if config.RSIOverbought <= config.RSIOversold {
		return nil, fmt.Errorf("RSI overbought (%.1f) must be greater than oversold (%.1f)", config.RSIOverbought, config.RSIOversold)
	}

	return &Engine{
		config: config,
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.RSIPeriod},
			Overbought:      config.RSIOverbought,
			Oversold:        config.RSIOversold,
		}),
		fastSMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.FastSMAPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		slowSMA: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: config.SlowSMAPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		atr:    indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: config.ATRPeriod}}),
		logger: log,
	}, nil
}

// warmup returns the number of candles needed before the first evaluation.
func (e *Engine) warmup() int {
	w := e.config.SlowSMAPeriod
	if e.config.RSIPeriod+1 > w {
		w = e.config.RSIPeriod + 1
	}
	if e.config.ATRPeriod+1 > w {
		w = e.config.ATRPeriod + 1
	}
	return w
}

// Generate scans the candle series and emits directional signals, ascending
// by timestamp. Too little data produces zero signals, not an error.
func (e *Engine) Generate(ctx context.Context, symbol string, candles []domain.Candle) ([]domain.Signal, error) {
	warmup := e.warmup()
	if len(candles) <= warmup {
		return nil, nil
	}

	signals := make([]domain.Signal, 0)
	lastSignalBar := -e.config.CooldownBars

	for i := warmup; i < len(candles); i++ {
		if i-lastSignalBar < e.config.CooldownBars {
			continue
		}

		window := candles[:i+1]
		c := candles[i]

		rsiVal, err := e.rsi.Calculate(ctx, window)
		if err != nil {
			continue
		}
		fast, err := e.fastSMA.Calculate(ctx, window)
		if err != nil {
			continue
		}
		slow, err := e.slowSMA.Calculate(ctx, window)
		if err != nil {
			continue
		}
		atrVal, err := e.atr.Calculate(ctx, window)
		if err != nil || atrVal <= 0 {
			continue
		}

		var sig *domain.Signal
		switch {
		case e.rsi.IsOversold(rsiVal) && fast > slow:
			// Pullback in an uptrend
			sig = &domain.Signal{
				Timestamp:  c.Timestamp,
				Symbol:     symbol,
				Direction:  domain.Long,
				EntryPrice: c.Close,
				StopLoss:   c.Close - e.config.StopATRMult*atrVal,
				Target:     c.Close + e.config.TargetATRMult*atrVal,
				Pattern:    "OVERSOLD_PULLBACK",
				Confidence: e.confidence(rsiVal, window),
			}
		case e.rsi.IsOverbought(rsiVal) && fast < slow:
			// Rally in a downtrend
			sig = &domain.Signal{
				Timestamp:  c.Timestamp,
				Symbol:     symbol,
				Direction:  domain.Short,
				EntryPrice: c.Close,
				StopLoss:   c.Close + e.config.StopATRMult*atrVal,
				Target:     c.Close - e.config.TargetATRMult*atrVal,
				Pattern:    "OVERBOUGHT_FADE",
				Confidence: e.confidence(rsiVal, window),
			}
		}

		if sig != nil && sig.StopLoss > 0 && sig.Target > 0 {
			signals = append(signals, *sig)
			lastSignalBar = i
			if e.logger != nil {
				e.logger.Debug(ctx, "Signal generated", map[string]interface{}{
					"symbol":  symbol,
					"pattern": sig.Pattern,
					"date":    sig.Timestamp.Format("2006-01-02"),
					"rsi":     rsiVal,
				})
			}
		}
	}

	return signals, nil
}

// confidence blends RSI extremity with the current volume surge into a
// score in (0, 1].
func (e *Engine) confidence(rsiVal float64, window []domain.Candle) float64 {
	conf := 0.4 + math.Min(0.4, math.Abs(rsiVal-50)/100)

	// Bonus for above-average volume on the signal bar.
	lookback := 20
	if len(window) > lookback+1 {
		var sum float64
		for _, c := range window[len(window)-lookback-1 : len(window)-1] {
			sum += float64(c.Volume)
		}
		avg := sum / float64(lookback)
		if avg > 0 && float64(window[len(window)-1].Volume) > 1.5*avg {
			conf += 0.2
		}
	}

	return math.Min(1, conf)
}
