package stats

import (
	"testing"
)

func members(populations ...float64) []MemberTotals {
	out := make([]MemberTotals, len(populations))
	for i, p := range populations {
		out[i] = MemberTotals{
			Member:        i + 1,
			Population:    p,
			Children:      p / 4,
			Schools:       p / 1000,
			HealthCenters: p / 10000,
		}
	}
	return out
}

func TestDescribeEmpty(t *testing.T) {
	summary := Describe(nil)
	if summary.TotalMembers != 0 {
		t.Errorf("TotalMembers = %d, want 0", summary.TotalMembers)
	}
	if summary.WorstToMedianRatio != nil {
		t.Errorf("WorstToMedianRatio = %v, want nil", *summary.WorstToMedianRatio)
	}
}

func TestDescribeSingleMember(t *testing.T) {
	summary := Describe(members(50000))

	if summary.TotalMembers != 1 {
		t.Fatalf("TotalMembers = %d, want 1", summary.TotalMembers)
	}
	p := summary.Population
	for name, got := range map[string]float64{
		"Min": p.Min, "P10": p.P10, "P50": p.P50, "P90": p.P90, "Max": p.Max, "Mean": p.Mean,
	} {
		if got != 50000 {
			t.Errorf("%s = %v, want 50000", name, got)
		}
	}
	if p.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", p.StdDev)
	}
	if summary.WorstToMedianRatio == nil || *summary.WorstToMedianRatio != 1.0 {
		t.Errorf("WorstToMedianRatio = %v, want 1.0", summary.WorstToMedianRatio)
	}
	if summary.PctNearWorstCase != 100.0 {
		t.Errorf("PctNearWorstCase = %v, want 100.0", summary.PctNearWorstCase)
	}
}

func TestDescribeNearWorstCaseCount(t *testing.T) {
	// Max is 1000; the 0.8 cutoff is 800, caught by 1000, 900 and exactly 800.
	summary := Describe(members(1000, 900, 800, 500, 100, 100, 100, 100, 100, 100))

	if summary.MembersNearWorstCase != 3 {
		t.Errorf("MembersNearWorstCase = %d, want 3", summary.MembersNearWorstCase)
	}
	if summary.PctNearWorstCase != 30.0 {
		t.Errorf("PctNearWorstCase = %v, want 30.0", summary.PctNearWorstCase)
	}
	if got := summary.Population.P50; !almostEqual(got, 100) {
		t.Errorf("P50 = %v, want 100", got)
	}
	if summary.WorstToMedianRatio == nil {
		t.Fatal("WorstToMedianRatio is nil")
	}
	if got := *summary.WorstToMedianRatio; !almostEqual(got, 10.0) {
		t.Errorf("WorstToMedianRatio = %v, want 10.0", got)
	}
}

func TestDescribeZeroMedianRatioIsNil(t *testing.T) {
	summary := Describe(members(0, 0, 0, 100))
	if summary.WorstToMedianRatio != nil {
		t.Errorf("WorstToMedianRatio = %v, want nil when median is zero", *summary.WorstToMedianRatio)
	}
}

func TestDescribeBriefMeasures(t *testing.T) {
	summary := Describe([]MemberTotals{
		{Member: 1, Population: 100, Children: 10, Schools: 2, HealthCenters: 1},
		{Member: 2, Population: 300, Children: 50, Schools: 6, HealthCenters: 3},
	})

	if summary.Children.Min != 10 || summary.Children.Max != 50 {
		t.Errorf("Children min/max = %v/%v, want 10/50", summary.Children.Min, summary.Children.Max)
	}
	if !almostEqual(summary.Children.Median, 30) || !almostEqual(summary.Children.Mean, 30) {
		t.Errorf("Children median/mean = %v/%v, want 30/30", summary.Children.Median, summary.Children.Mean)
	}
	if summary.Schools.Max != 6 || summary.HealthCenters.Max != 3 {
		t.Errorf("Schools/HC max = %v/%v, want 6/3", summary.Schools.Max, summary.HealthCenters.Max)
	}
}
