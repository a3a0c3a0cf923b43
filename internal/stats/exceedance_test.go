package stats

import "testing"

func TestExceedanceEmpty(t *testing.T) {
	curve := Exceedance(nil, nil)
	if len(curve.Points) != 0 {
		t.Errorf("points = %d, want 0", len(curve.Points))
	}
}

func TestExceedanceCurveShape(t *testing.T) {
	values := []float64{100, 200, 300, 400}
	curve := Exceedance(values, nil)

	if len(curve.Points) != exceedancePoints {
		t.Fatalf("points = %d, want %d", len(curve.Points), exceedancePoints)
	}

	first := curve.Points[0]
	if !almostEqual(first.Threshold, 100) {
		t.Errorf("first threshold = %v, want 100", first.Threshold)
	}
	if !almostEqual(first.Probability, 0.75) {
		t.Errorf("P(X > min) = %v, want 0.75", first.Probability)
	}

	last := curve.Points[len(curve.Points)-1]
	if !almostEqual(last.Threshold, 440) {
		t.Errorf("last threshold = %v, want 440 (1.1x max)", last.Threshold)
	}
	if last.Probability != 0 {
		t.Errorf("P(X > 1.1*max) = %v, want 0", last.Probability)
	}

	// Survival functions never increase.
	for i := 1; i < len(curve.Points); i++ {
		if curve.Points[i].Probability > curve.Points[i-1].Probability {
			t.Fatalf("probability increased at point %d", i)
		}
	}
}

func TestExceedanceDeterministicMarker(t *testing.T) {
	det := 250.0
	curve := Exceedance([]float64{100, 200, 300, 400}, &det)

	if curve.Deterministic == nil {
		t.Fatal("deterministic point missing")
	}
	if !almostEqual(curve.Deterministic.Threshold, 250) {
		t.Errorf("threshold = %v, want 250", curve.Deterministic.Threshold)
	}
	if !almostEqual(curve.Deterministic.Probability, 0.5) {
		t.Errorf("probability = %v, want 0.5", curve.Deterministic.Probability)
	}
}

func TestExceedanceConstantValues(t *testing.T) {
	curve := Exceedance([]float64{50, 50, 50}, nil)
	if len(curve.Points) != exceedancePoints {
		t.Fatalf("points = %d, want %d", len(curve.Points), exceedancePoints)
	}
	if curve.Points[0].Probability != 0 {
		t.Errorf("P(X > 50) = %v, want 0 for constant ensemble", curve.Points[0].Probability)
	}
}
