package stats

// ExceedancePoint is one point on an exceedance curve: the probability that a
// randomly drawn ensemble member's total exceeds the threshold value.
type ExceedancePoint struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// ExceedanceCurve is the empirical survival function of one measure over the
// ensemble, evaluated on an evenly spaced threshold grid.
type ExceedanceCurve struct {
	Points []ExceedancePoint `json:"points"`
	// Deterministic is P(X > deterministic member's total), present when the
	// control track contributed to the ensemble.
	Deterministic *ExceedancePoint `json:"deterministic,omitempty"`
}

const exceedancePoints = 100

// Exceedance builds the curve for one measure from per-member totals. The
// grid runs from the ensemble minimum to 1.1x the maximum so the curve
// visibly reaches zero. deterministic carries the control member's total;
// pass nil when the control track is absent.
func Exceedance(values []float64, deterministic *float64) ExceedanceCurve {
	if len(values) == 0 {
		return ExceedanceCurve{}
	}

	lo := Min(values)
	hi := 1.1 * Max(values)
	if hi == lo {
		hi = lo + 1
	}

	exceedProb := func(t float64) float64 {
		n := 0
		for _, v := range values {
			if v > t {
				n++
			}
		}
		return float64(n) / float64(len(values))
	}

	points := make([]ExceedancePoint, exceedancePoints)
	step := (hi - lo) / float64(exceedancePoints-1)
	for i := range points {
		t := lo + float64(i)*step
		points[i] = ExceedancePoint{Threshold: t, Probability: exceedProb(t)}
	}

	curve := ExceedanceCurve{Points: points}
	if deterministic != nil {
		curve.Deterministic = &ExceedancePoint{
			Threshold:   *deterministic,
			Probability: exceedProb(*deterministic),
		}
	}
	return curve
}
