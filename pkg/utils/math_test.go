package utils

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRoundToLotSize(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		// Базовые кейсы
		{"exact match", 0.123, 0.001, 0.123},
		{"round down", 0.123456, 0.001, 0.123},
		{"round down 2", 1.999, 0.01, 1.99},
		{"whole numbers", 100.5, 1.0, 100.0},

		// Граничные случаи
		{"zero value", 0, 0.001, 0},
		{"zero lotSize", 0.123, 0, 0.123},
		{"negative lotSize", 0.123, -0.001, 0.123},
		{"very small lotSize", 1.23456789, 0.00000001, 1.23456789},

		// BTC объёмы
		{"BTC lot 0.001", 0.5, 0.001, 0.5},
		{"BTC lot 0.001 round", 0.1234, 0.001, 0.123},
		{"half position", 0.0005, 0.000001, 0.0005},

		// Большие числа
		{"large number", 12345.6789, 0.01, 12345.67},
		{"very large", 1000000.999, 1.0, 1000000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSize(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSize(%v, %v) = %v, want %v",
					tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestRoundToLotSizeUp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		{"exact match", 0.123, 0.001, 0.123},
		{"round up", 0.1231, 0.001, 0.124},
		{"round up 2", 1.991, 0.01, 2.0},
		{"zero lotSize", 0.123, 0, 0.123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSizeUp(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSizeUp(%v, %v) = %v, want %v",
					tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestRoundToLotSizeNearest(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lotSize  float64
		expected float64
	}{
		{"round down", 0.1234, 0.001, 0.123},
		{"round up", 0.1236, 0.001, 0.124},
		{"midpoint", 0.1235, 0.001, 0.124},
		{"zero lotSize", 0.123, 0, 0.123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToLotSizeNearest(tt.value, tt.lotSize)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundToLotSizeNearest(%v, %v) = %v, want %v",
					tt.value, tt.lotSize, result, tt.expected)
			}
		})
	}
}

func TestCalculateRealizedPnl(t *testing.T) {
	tests := []struct {
		name       string
		entryPrice float64
		exitPrice  float64
		quantity   float64
		fee        float64
		expected   float64
	}{
		{"profit", 100.0, 110.0, 1.0, 0, 10.0},
		{"loss", 100.0, 90.0, 1.0, 0, -10.0},
		{"breakeven", 100.0, 100.0, 1.0, 0, 0.0},
		{"profit minus fee", 100.0, 110.0, 1.0, 0.5, 9.5},
		{"fee turns profit into loss", 100.0, 100.1, 1.0, 0.2, -0.1},
		{"partial quantity", 100000.0, 101500.0, 0.0005, 0.05, 0.7},
		{"zero quantity", 100.0, 110.0, 0, 0, 0},
		{"negative quantity", 100.0, 110.0, -1.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateRealizedPnl(tt.entryPrice, tt.exitPrice, tt.quantity, tt.fee)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculateRealizedPnl(%v, %v, %v, %v) = %v, want %v",
					tt.entryPrice, tt.exitPrice, tt.quantity, tt.fee, result, tt.expected)
			}
		})
	}
}

func TestCalculatePositionRisk(t *testing.T) {
	tests := []struct {
		name       string
		entryPrice float64
		stopLoss   float64
		expected   float64
	}{
		{"two percent stop", 100000.0, 98000.0, 0.02},
		{"breakeven stop", 100000.0, 100000.0, 0.0},
		{"stop above entry", 100000.0, 101000.0, 0.0},
		{"zero entry", 0, 98000.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePositionRisk(tt.entryPrice, tt.stopLoss)
			if !floatEquals(result, tt.expected) {
				t.Errorf("CalculatePositionRisk(%v, %v) = %v, want %v",
					tt.entryPrice, tt.stopLoss, result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{"within range", 5, 0, 10, 5},
		{"below min", -1, 0, 10, 0},
		{"above max", 15, 0, 10, 10},
		{"at min", 0, 0, 10, 0},
		{"at max", 10, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.value, tt.min, tt.max)
			if !floatEquals(result, tt.expected) {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v",
					tt.value, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestMinMaxAbs(t *testing.T) {
	if Min(1, 2) != 1 || Min(2, 1) != 1 {
		t.Error("Min broken")
	}
	if Max(1, 2) != 2 || Max(2, 1) != 2 {
		t.Error("Max broken")
	}
	if Abs(-1.5) != 1.5 || Abs(1.5) != 1.5 {
		t.Error("Abs broken")
	}
}

func BenchmarkRoundToLotSize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RoundToLotSize(0.123456789, 0.000001)
	}
}
