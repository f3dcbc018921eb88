package backtest

import (
	"context"
	"math"
	"time"

	"nseScreener/internal/domain"
	"nseScreener/internal/ports"
	"nseScreener/internal/risk"
)

// Config holds the execution parameters for a simulated account.
type Config struct {
	InitialCapital float64
	Commission     float64 // Per-leg commission as a fraction of notional; zero or negative selects the default
	RiskPerTrade   float64 // Fraction of running capital risked per trade
	MaxPositionPct float64 // Cap on position notional as a fraction of capital
	PartialTakeR   float64 // Favorable excursion in R that triggers the partial exit
	TrailTriggerR  float64 // Favorable excursion in R that activates the trailing stop
	TrailDistanceR float64 // Trailing stop distance behind the best price, in R
	MaxHoldDays    int     // Trading days before a forced time exit
}

func (c Config) withDefaults() Config {
	if c.InitialCapital <= 0 {
		c.InitialCapital = 100000
	}
	if c.Commission <= 0 {
		c.Commission = 0.0005
	}
	if c.RiskPerTrade <= 0 {
		c.RiskPerTrade = 0.02
	}
	if c.MaxPositionPct <= 0 {
		c.MaxPositionPct = 0.20
	}
	if c.PartialTakeR <= 0 {
		c.PartialTakeR = 1.5
	}
	if c.TrailTriggerR <= 0 {
		c.TrailTriggerR = 1.0
	}
	if c.TrailDistanceR <= 0 {
		c.TrailDistanceR = 0.5
	}
	if c.MaxHoldDays <= 0 {
		c.MaxHoldDays = 20
	}
	return c
}

// Simulator replays a signal stream against a candle stream one symbol at
// a time, holding at most one open position per replay and keeping a
// running capital ledger across every symbol it processes. Replays are a
// strict sequential scan; the intrabar exit priority, signal consumption
// and capital compounding all depend on temporal order. A Simulator is
// not safe for concurrent use: give each worker its own instance.
type Simulator struct {
	config Config
	sizer  *risk.Manager
	logger ports.Logger

	capital float64
	trades  []domain.Trade
}

// NewSimulator creates a simulator with its own capital ledger.
func NewSimulator(config Config, log ports.Logger) *Simulator {
	config = config.withDefaults()
	return &Simulator{
		config: config,
		sizer: risk.NewManager(risk.Config{
			RiskPerTrade:   config.RiskPerTrade,
			MaxPositionPct: config.MaxPositionPct,
		}),
		logger:  log,
		capital: config.InitialCapital,
	}
}

// Capital returns the current running capital of the ledger.
func (s *Simulator) Capital() float64 { return s.capital }

// Trades returns every trade closed by this simulator instance, in close order.
func (s *Simulator) Trades() []domain.Trade { return s.trades }

// Summary folds all closed trades into aggregate statistics.
func (s *Simulator) Summary() Summary {
	return Summarize(s.trades, s.config.InitialCapital)
}

// Run replays one symbol's candle series against its signal stream and
// returns the trades closed during the replay. Both sequences must be
// ascending by timestamp. A symbol with zero signals produces zero
// trades; a position still open after the last candle is force-closed at
// that candle's close.
func (s *Simulator) Run(ctx context.Context, symbol string, candles []domain.Candle, signals []domain.Signal) []domain.Trade {
	var pos *domain.Position
	closed := make([]domain.Trade, 0)
	sigIdx := 0

	for i := range candles {
		c := &candles[i]

		// Signals the replay has already moved past can never trigger an
		// entry; the cursor advances over them silently.
		for sigIdx < len(signals) && signals[sigIdx].Timestamp.Before(c.Timestamp) {
			sigIdx++
		}

		if pos != nil {
			pos.BarsHeld++

			var exitPrice float64
			var reason domain.ExitReason

			// Intrabar priority: the stop is checked before the target,
			// so a bar that touches both books the worse fill.
			if pos.Direction == domain.Long {
				if c.Low <= pos.StopLoss {
					exitPrice, reason = pos.StopLoss, domain.ExitStopLoss
				} else if c.High >= pos.Target {
					exitPrice, reason = pos.Target, domain.ExitTarget
				}
			} else {
				if c.High >= pos.StopLoss {
					exitPrice, reason = pos.StopLoss, domain.ExitStopLoss
				} else if c.Low <= pos.Target {
					exitPrice, reason = pos.Target, domain.ExitTarget
				}
			}

			if reason == "" && !pos.PartialTaken && pos.Shares > 1 {
				s.takePartialProfit(pos, c)
			}

			// A stop or target fill on this bar takes priority over the
			// time exit.
			if reason == "" && pos.BarsHeld >= s.config.MaxHoldDays {
				exitPrice, reason = c.Close, domain.ExitTimeLimit
			}

			if reason != "" {
				closed = append(closed, s.closePosition(pos, exitPrice, c.Timestamp, reason))
				pos = nil
				// A candle that closes a position never opens a new one.
				continue
			}
		}

		if pos == nil && sigIdx < len(signals) && signals[sigIdx].Timestamp.Equal(c.Timestamp) {
			sig := signals[sigIdx]
			sigIdx++ // a signal is consumed once evaluated, even if rejected
			pos = s.openPosition(ctx, &sig)
		}

		if pos != nil {
			s.updateTrailingStop(pos, c)
		}
	}

	if pos != nil {
		last := candles[len(candles)-1]
		closed = append(closed, s.closePosition(pos, last.Close, last.Timestamp, domain.ExitEndOfData))
	}

	s.trades = append(s.trades, closed...)
	return closed
}

// openPosition sizes and opens a position for a signal, or returns nil
// when sizing rejects it. Rejection is a normal outcome: the signal stays
// consumed either way.
func (s *Simulator) openPosition(ctx context.Context, sig *domain.Signal) *domain.Position {
	shares := s.sizer.Shares(s.capital, sig.EntryPrice, sig.StopLoss)
	if shares <= 0 {
		if s.logger != nil {
			s.logger.Debug(ctx, "Signal rejected by sizing", map[string]interface{}{
				"symbol": sig.Symbol, "entry": sig.EntryPrice, "stop": sig.StopLoss,
			})
		}
		return nil
	}
	if float64(shares)*sig.EntryPrice > s.capital {
		if s.logger != nil {
			s.logger.Debug(ctx, "Signal rejected for insufficient capital", map[string]interface{}{
				"symbol": sig.Symbol, "shares": shares, "capital": s.capital,
			})
		}
		return nil
	}

	return &domain.Position{
		Symbol:          sig.Symbol,
		Direction:       sig.Direction,
		EntryDate:       sig.Timestamp,
		EntryPrice:      sig.EntryPrice,
		StopLoss:        sig.StopLoss,
		Target:          sig.Target,
		InitialShares:   shares,
		Shares:          shares,
		EntryRisk:       math.Abs(sig.EntryPrice - sig.StopLoss),
		BestPrice:       sig.EntryPrice,
		EntryCommission: float64(shares) * sig.EntryPrice * s.config.Commission,
		Pattern:         sig.Pattern,
		Confidence:      sig.Confidence,
	}
}

// takePartialProfit books half the position at the partial-take threshold
// once price has run PartialTakeR multiples of the entry risk, then moves
// the stop to breakeven without ever loosening it.
func (s *Simulator) takePartialProfit(pos *domain.Position, c *domain.Candle) {
	threshold := pos.EntryPrice + s.config.PartialTakeR*pos.EntryRisk
	touched := c.High >= threshold
	if pos.Direction == domain.Short {
		threshold = pos.EntryPrice - s.config.PartialTakeR*pos.EntryRisk
		touched = c.Low <= threshold
	}
	if !touched {
		return
	}

	partShares := pos.Shares / 2
	if partShares < 1 {
		partShares = 1
	}

	gross := float64(partShares) * (threshold - pos.EntryPrice)
	if pos.Direction == domain.Short {
		gross = float64(partShares) * (pos.EntryPrice - threshold)
	}
	exitCommission := float64(partShares) * threshold * s.config.Commission

	pos.RealizedPnL += gross - exitCommission
	pos.Shares -= partShares
	pos.PartialTaken = true

	if pos.Direction == domain.Long {
		pos.StopLoss = math.Max(pos.StopLoss, pos.EntryPrice)
	} else {
		pos.StopLoss = math.Min(pos.StopLoss, pos.EntryPrice)
	}
}

// updateTrailingStop tracks the best favorable price and, once the move
// has covered TrailTriggerR of the entry risk, drags the stop behind it.
// The stop only ever tightens.
func (s *Simulator) updateTrailingStop(pos *domain.Position, c *domain.Candle) {
	if pos.Direction == domain.Long {
		if c.High > pos.BestPrice {
			pos.BestPrice = c.High
		}
		if pos.BestPrice-pos.EntryPrice >= s.config.TrailTriggerR*pos.EntryRisk {
			trail := pos.BestPrice - s.config.TrailDistanceR*pos.EntryRisk
			pos.StopLoss = math.Max(pos.StopLoss, trail)
		}
		return
	}
	if c.Low < pos.BestPrice {
		pos.BestPrice = c.Low
	}
	if pos.EntryPrice-pos.BestPrice >= s.config.TrailTriggerR*pos.EntryRisk {
		trail := pos.BestPrice + s.config.TrailDistanceR*pos.EntryRisk
		pos.StopLoss = math.Min(pos.StopLoss, trail)
	}
}

// closePosition settles the remaining shares, folds in the partial leg
// and the one-time entry commission, updates the ledger, and returns the
// immutable trade record.
func (s *Simulator) closePosition(pos *domain.Position, exitPrice float64, exitDate time.Time, reason domain.ExitReason) domain.Trade {
	gross := float64(pos.Shares) * (exitPrice - pos.EntryPrice)
	if pos.Direction == domain.Short {
		gross = float64(pos.Shares) * (pos.EntryPrice - exitPrice)
	}
	exitCommission := float64(pos.Shares) * exitPrice * s.config.Commission
	net := gross - exitCommission + pos.RealizedPnL - pos.EntryCommission

	// R-multiple is on the risk taken at entry, not the trailed stop.
	riskBasis := pos.EntryRisk * float64(pos.InitialShares)
	var rMultiple float64
	if riskBasis > 0 {
		rMultiple = net / riskBasis
	}

	notional := float64(pos.InitialShares) * pos.EntryPrice
	var pnlPct float64
	if notional > 0 {
		pnlPct = net / notional * 100
	}

	s.capital += net

	return domain.Trade{
		Symbol:     pos.Symbol,
		Direction:  pos.Direction,
		EntryDate:  pos.EntryDate,
		ExitDate:   exitDate,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		StopLoss:   pos.StopLoss,
		Target:     pos.Target,
		Shares:     pos.InitialShares,
		PnL:        net,
		PnLPct:     pnlPct,
		RMultiple:  rMultiple,
		ExitReason: reason,
		Pattern:    pos.Pattern,
		Confidence: pos.Confidence,
		HoldDays:   int(exitDate.Sub(pos.EntryDate).Hours() / 24),
	}
}
