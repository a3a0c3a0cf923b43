package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"Empty", []float64{}, 50, 0},
		{"SingleItem", []float64{5.5}, 90, 5.5},
		{"MedianOdd", []float64{1, 3, 2, 4, 5}, 50, 3},
		{"MedianEven", []float64{1, 2, 3, 4}, 50, 2.5},
		{"InterpolatedQuartile", []float64{1, 2, 3, 4}, 25, 1.75},
		{"P10OfTen", []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 10, 19},
		{"P90OfTen", []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 90, 91},
		{"BelowRange", []float64{3, 1, 2}, 0, 1},
		{"AboveRange", []float64{3, 1, 2}, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.values, tt.p); !almostEqual(got, tt.expected) {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.expected)
			}
		})
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input slice was reordered: %v", values)
	}
}

func TestMeanAndStdDev(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		wantMean   float64
		wantStdDev float64
	}{
		{"Empty", []float64{}, 0, 0},
		{"SingleItem", []float64{7}, 7, 0},
		{"Uniform", []float64{4, 4, 4}, 4, 0},
		// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
		{"Known", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.values); !almostEqual(got, tt.wantMean) {
				t.Errorf("Mean() = %v, want %v", got, tt.wantMean)
			}
			if got := StdDev(tt.values); !almostEqual(got, tt.wantStdDev) {
				t.Errorf("StdDev() = %v, want %v", got, tt.wantStdDev)
			}
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{3.767, 3.8},
		{3.74, 3.7},
		{0, 0},
		{-1.25, -1.3},
	}

	for _, tt := range tests {
		if got := Round1(tt.in); !almostEqual(got, tt.expected) {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}
