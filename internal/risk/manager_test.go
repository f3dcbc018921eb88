package risk

import "testing"

func TestManager_Shares(t *testing.T) {
	m := NewManager(Config{RiskPerTrade: 0.02, MaxPositionPct: 0.20})

	tests := []struct {
		name     string
		capital  float64
		entry    float64
		stop     float64
		expected int
	}{
		{
			name:     "notional cap binds",
			capital:  100000,
			entry:    100,
			stop:     95,
			expected: 200, // risk allows 400, cap allows 200
		},
		{
			name:     "risk binds",
			capital:  100000,
			entry:    50,
			stop:     40,
			expected: 200, // risk allows 200, cap allows 400
		},
		{
			name:     "wide stop shrinks size",
			capital:  100000,
			entry:    100,
			stop:     50,
			expected: 40,
		},
		{
			name:     "short direction uses absolute distance",
			capital:  100000,
			entry:    100,
			stop:     105,
			expected: 200,
		},
		{
			name:     "zero risk distance",
			capital:  100000,
			entry:    100,
			stop:     100,
			expected: 0,
		},
		{
			name:     "zero capital",
			capital:  0,
			entry:    100,
			stop:     95,
			expected: 0,
		},
		{
			name:     "capital too small for one share",
			capital:  100,
			entry:    5000,
			stop:     4900,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Shares(tt.capital, tt.entry, tt.stop)
			if got != tt.expected {
				t.Errorf("Shares(%v, %v, %v) = %d, want %d", tt.capital, tt.entry, tt.stop, got, tt.expected)
			}
		})
	}
}

func TestManager_Defaults(t *testing.T) {
	m := NewManager(Config{})
	if got := m.Shares(100000, 100, 95); got != 200 {
		t.Errorf("default config Shares = %d, want 200", got)
	}
}

func TestManager_RiskAmount(t *testing.T) {
	m := NewManager(Config{RiskPerTrade: 0.02})
	if got := m.RiskAmount(100000); got != 2000 {
		t.Errorf("RiskAmount(100000) = %v, want 2000", got)
	}
	if got := m.RiskAmount(-1); got != 0 {
		t.Errorf("RiskAmount(-1) = %v, want 0", got)
	}
}
