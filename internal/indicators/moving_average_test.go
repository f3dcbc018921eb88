package indicators

import (
	"context"
	"math"
	"testing"
)

func TestMovingAverage_SMA(t *testing.T) {
	sma := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            SimpleMovingAverage,
	})
	ctx := context.Background()

	tests := []struct {
		name     string
		closes   []float64
		expected float64
		wantErr  bool
	}{
		{
			name:     "exact window",
			closes:   []float64{10, 20, 30},
			expected: 20,
		},
		{
			name:     "uses trailing window",
			closes:   []float64{100, 10, 20, 30},
			expected: 20,
		},
		{
			name:    "not enough data",
			closes:  []float64{10, 20},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := sma.Calculate(ctx, candlesFromCloses(tt.closes))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(value-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, value)
			}
		})
	}
}

func TestMovingAverage_EMA(t *testing.T) {
	ema := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            ExponentialMovingAverage,
	})

	// Seed SMA of {10,20,30} is 20; one step with close 40 and
	// multiplier 0.5 gives 30.
	value, err := ema.Calculate(context.Background(), candlesFromCloses([]float64{10, 20, 30, 40}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-30) > 1e-9 {
		t.Errorf("expected EMA 30, got %v", value)
	}
}

func TestMovingAverage_Name(t *testing.T) {
	sma := NewMovingAverage(MovingAverageConfig{Type: SimpleMovingAverage})
	if sma.Name() != "SMA" {
		t.Errorf("unexpected name %q", sma.Name())
	}
	ema := NewMovingAverage(MovingAverageConfig{Type: ExponentialMovingAverage})
	if ema.Name() != "EMA" {
		t.Errorf("unexpected name %q", ema.Name())
	}
}
