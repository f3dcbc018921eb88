package risk

import "math"

// Config holds the sizing rules for a simulated account.
type Config struct {
	RiskPerTrade   float64 // Fraction of running capital risked per trade (e.g. 0.02)
	MaxPositionPct float64 // Cap on position notional as a fraction of capital (e.g. 0.20)
}

// Manager converts signal prices into whole-share position sizes.
type Manager struct {
	config Config
}

// NewManager creates a new sizing manager, applying defaults for unset fields.
func NewManager(config Config) *Manager {
	if config.RiskPerTrade <= 0 {
		config.RiskPerTrade = 0.02
	}
	if config.MaxPositionPct <= 0 {
		config.MaxPositionPct = 0.20
	}
	return &Manager{config: config}
}

// Shares returns the whole-share position size for a trade that risks a
// fixed fraction of the running capital, capped by notional. Sizing uses
// the running capital, not the initial capital, so sizes compound with
// account performance. Returns 0 when the stop distance is degenerate or
// the capital cannot support a single share.
func (m *Manager) Shares(capital, entryPrice, stopLoss float64) int {
	if capital <= 0 || entryPrice <= 0 {
		return 0
	}
	riskPerShare := math.Abs(entryPrice - stopLoss)
	if riskPerShare == 0 {
		return 0
	}

	shares := int(capital * m.config.RiskPerTrade / riskPerShare)
	maxShares := int(capital * m.config.MaxPositionPct / entryPrice)
	if shares > maxShares {
		shares = maxShares
	}
	if shares < 0 {
		return 0
	}
	return shares
}

// RiskAmount returns the capital fraction at risk for a given running capital.
func (m *Manager) RiskAmount(capital float64) float64 {
	if capital <= 0 {
		return 0
	}
	return capital * m.config.RiskPerTrade
}
