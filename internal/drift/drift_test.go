package drift

import (
	"math"
	"testing"
)

func seq(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestKSStatisticIdenticalSamples(t *testing.T) {
	a := seq(100, func(i int) float64 { return float64(i) })
	if got := KSStatistic(a, a); got != 0 {
		t.Errorf("identical samples should give 0, got %v", got)
	}
}

func TestKSStatisticTiedValuesUnequalSizes(t *testing.T) {
	// Duplicate-heavy samples drawn from the same distribution must
	// score 0 even when the sample sizes differ.
	if got := KSStatistic([]float64{1}, []float64{1, 1}); got != 0 {
		t.Errorf("single tied value should give 0, got %v", got)
	}

	a := seq(100, func(i int) float64 { return float64(i % 2) })
	b := seq(200, func(i int) float64 { return float64(i % 2) })
	if got := KSStatistic(a, b); got != 0 {
		t.Errorf("same two-value distribution at different sizes should give 0, got %v", got)
	}

	// Categorical-style integer codes with matching proportions.
	c := seq(60, func(i int) float64 { return float64(i % 3) })
	d := seq(120, func(i int) float64 { return float64(i % 3) })
	if got := KSStatistic(c, d); got != 0 {
		t.Errorf("matching categorical proportions should give 0, got %v", got)
	}
}

func TestKSStatisticTiedValuesShiftedProportions(t *testing.T) {
	// 90/10 vs 10/90 over the same two values: CDF gap at the lower
	// value is 0.8.
	a := append(seq(90, func(int) float64 { return 0 }), seq(10, func(int) float64 { return 1 })...)
	b := append(seq(10, func(int) float64 { return 0 }), seq(90, func(int) float64 { return 1 })...)
	if got := KSStatistic(a, b); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("expected 0.8, got %v", got)
	}
}

func TestKSStatisticDisjointSamples(t *testing.T) {
	a := seq(50, func(i int) float64 { return float64(i) })
	b := seq(50, func(i int) float64 { return float64(i) + 1000 })
	if got := KSStatistic(a, b); got != 1 {
		t.Errorf("disjoint samples should give 1, got %v", got)
	}
}

func TestKSStatisticBounded(t *testing.T) {
	a := seq(80, func(i int) float64 { return math.Sin(float64(i)) })
	b := seq(120, func(i int) float64 { return math.Cos(float64(i) * 0.7) })
	got := KSStatistic(a, b)
	if got < 0 || got > 1 {
		t.Errorf("KS statistic out of [0,1]: %v", got)
	}
}

func TestKSStatisticDeterministic(t *testing.T) {
	a := seq(60, func(i int) float64 { return float64(i % 7) })
	b := seq(60, func(i int) float64 { return float64(i % 11) })
	first := KSStatistic(a, b)
	for i := 0; i < 5; i++ {
		if got := KSStatistic(a, b); got != first {
			t.Fatalf("KS statistic not deterministic: %v vs %v", got, first)
		}
	}
}

func TestDataDriftDetectsShift(t *testing.T) {
	d := NewDetector(0.1)
	baseline := map[string][]float64{
		"stable":  seq(200, func(i int) float64 { return float64(i % 10) }),
		"shifted": seq(200, func(i int) float64 { return float64(i % 10) }),
	}
	current := map[string][]float64{
		"stable":  seq(200, func(i int) float64 { return float64(i % 10) }),
		"shifted": seq(200, func(i int) float64 { return float64(i%10) + 100 }),
	}

	res := d.DataDrift(baseline, current, []string{"stable", "shifted"})
	if !res.Detected {
		t.Fatal("expected drift to be detected")
	}
	if len(res.AffectedFeatures) != 1 || res.AffectedFeatures[0] != "shifted" {
		t.Errorf("expected only the shifted feature, got %v", res.AffectedFeatures)
	}
	if res.Score <= 0 || res.Score > 100 {
		t.Errorf("score out of range: %v", res.Score)
	}
}

func TestDataDriftNoShift(t *testing.T) {
	d := NewDetector(0.1)
	vals := seq(200, func(i int) float64 { return float64(i % 10) })
	baseline := map[string][]float64{"f": vals}
	current := map[string][]float64{"f": vals}

	res := d.DataDrift(baseline, current, []string{"f"})
	if res.Detected {
		t.Errorf("identical distributions should not drift: %+v", res)
	}
	if len(res.AffectedFeatures) != 0 {
		t.Errorf("expected no affected features, got %v", res.AffectedFeatures)
	}
}

func TestConceptDrift(t *testing.T) {
	d := NewDetector(0.1)

	tests := []struct {
		name         string
		predictions  []int
		actuals      []int
		wantDetected bool
		wantAccuracy float64
	}{
		{
			name:         "perfect accuracy drifts from 0.95 baseline by 0.05",
			predictions:  []int{1, 0, 1, 0},
			actuals:      []int{1, 0, 1, 0},
			wantDetected: false,
			wantAccuracy: 1.0,
		},
		{
			name:         "half wrong drifts",
			predictions:  []int{1, 1, 1, 1},
			actuals:      []int{1, 1, 0, 0},
			wantDetected: true,
			wantAccuracy: 0.5,
		},
		{
			name:         "all wrong drifts",
			predictions:  []int{0, 0},
			actuals:      []int{1, 1},
			wantDetected: true,
			wantAccuracy: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.ConceptDrift(tt.predictions, tt.actuals, 0.95)
			if res.Detected != tt.wantDetected {
				t.Errorf("detected = %v, want %v", res.Detected, tt.wantDetected)
			}
			if res.CurrentAccuracy != tt.wantAccuracy {
				t.Errorf("accuracy = %v, want %v", res.CurrentAccuracy, tt.wantAccuracy)
			}
			wantScore := math.Abs(0.95-tt.wantAccuracy) * 100
			if math.Abs(res.Score-wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", res.Score, wantScore)
			}
		})
	}
}

func TestPredictionDrift(t *testing.T) {
	d := NewDetector(0.1)

	baseline := []float64{1, 1, 1, 1}
	current := []float64{2, 2, 2, 2}
	res := d.PredictionDrift(current, baseline)
	if !res.Detected {
		t.Error("100% mean shift should be detected")
	}
	if res.Score != 100 {
		t.Errorf("score = %v, want 100", res.Score)
	}

	same := d.PredictionDrift(baseline, baseline)
	if same.Detected || same.Score != 0 {
		t.Errorf("no shift should score 0: %+v", same)
	}
}

func TestPSI(t *testing.T) {
	vals := seq(500, func(i int) float64 { return float64(i % 50) })

	if got := PSI(vals, vals, 10); got > 1e-9 {
		t.Errorf("identical samples should have ~0 PSI, got %v", got)
	}

	shifted := seq(500, func(i int) float64 { return float64(i%50) + 40 })
	got := PSI(vals, shifted, 10)
	if got <= 0.2 {
		t.Errorf("strong shift should exceed 0.2, got %v", got)
	}

	if got := PSI(nil, vals, 10); got != 0 {
		t.Errorf("empty expected sample should give 0, got %v", got)
	}
}

func TestNewDetectorDefaultThreshold(t *testing.T) {
	if d := NewDetector(0); d.Threshold != DefaultThreshold {
		t.Errorf("threshold = %v, want %v", d.Threshold, DefaultThreshold)
	}
	if d := NewDetector(0.25); d.Threshold != 0.25 {
		t.Errorf("threshold = %v, want 0.25", d.Threshold)
	}
}
