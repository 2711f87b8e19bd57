// Package drift computes the data, concept, and prediction drift scores
// surfaced by monitoring jobs and drift reports. Scores are percentages
// (0-100); a detection flag fires when the underlying measure crosses the
// configured threshold.
package drift

import (
	"math"
	"sort"
)

// DefaultThreshold matches the monitoring default the dashboard ships with.
const DefaultThreshold = 0.1

// BaselineAccuracy is the reference accuracy concept drift is measured
// against when no history exists.
const BaselineAccuracy = 0.95

// Detector evaluates drift measures against a threshold.
type Detector struct {
	Threshold float64
}

// NewDetector returns a detector with the given threshold, falling back
// to DefaultThreshold when zero or negative.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{Threshold: threshold}
}

// DataDriftResult reports per-feature distribution drift.
type DataDriftResult struct {
	Detected         bool     `json:"detected"`
	Score            float64  `json:"score"`
	AffectedFeatures []string `json:"affected_features"`
	PValue           float64  `json:"p_value"`
}

// ConceptDriftResult reports accuracy degradation against a baseline.
type ConceptDriftResult struct {
	Detected         bool    `json:"detected"`
	Score            float64 `json:"score"`
	CurrentAccuracy  float64 `json:"current_accuracy"`
	BaselineAccuracy float64 `json:"baseline_accuracy"`
}

// PredictionDriftResult reports a shift in the prediction distribution.
type PredictionDriftResult struct {
	Detected     bool    `json:"detected"`
	Score        float64 `json:"score"`
	CurrentMean  float64 `json:"current_mean"`
	BaselineMean float64 `json:"baseline_mean"`
}

// DataDrift runs a two-sample KS test per feature. A feature drifts when
// its p-value falls below the threshold; the score is the largest KS
// statistic among drifting features, scaled to a percentage.
func (d *Detector) DataDrift(baseline, current map[string][]float64, features []string) DataDriftResult {
	res := DataDriftResult{AffectedFeatures: []string{}, PValue: 1}
	for _, feature := range features {
		b, c := baseline[feature], current[feature]
		if len(b) == 0 || len(c) == 0 {
			continue
		}
		stat := KSStatistic(b, c)
		p := ksPValue(stat, len(b), len(c))
		res.PValue = p
		if p < d.Threshold {
			res.Detected = true
			res.AffectedFeatures = append(res.AffectedFeatures, feature)
			if score := stat * 100; score > res.Score {
				res.Score = score
			}
		}
	}
	return res
}

// ConceptDrift measures accuracy degradation of predictions vs actuals
// against the baseline accuracy.
func (d *Detector) ConceptDrift(predictions, actuals []int, baseline float64) ConceptDriftResult {
	if baseline <= 0 {
		baseline = BaselineAccuracy
	}
	matches := 0
	n := len(predictions)
	if len(actuals) < n {
		n = len(actuals)
	}
	for i := 0; i < n; i++ {
		if predictions[i] == actuals[i] {
			matches++
		}
	}
	accuracy := 0.0
	if n > 0 {
		accuracy = float64(matches) / float64(n)
	}
	score := math.Abs(baseline - accuracy)
	return ConceptDriftResult{
		Detected:         score > d.Threshold,
		Score:            score * 100,
		CurrentAccuracy:  accuracy,
		BaselineAccuracy: baseline,
	}
}

// PredictionDrift measures relative mean shift between current and
// baseline prediction distributions.
func (d *Detector) PredictionDrift(current, baseline []float64) PredictionDriftResult {
	cm, bm := mean(current), mean(baseline)
	score := 0.0
	if bm != 0 {
		score = math.Abs((cm - bm) / bm)
	}
	return PredictionDriftResult{
		Detected:     score > d.Threshold,
		Score:        score * 100,
		CurrentMean:  cm,
		BaselineMean: bm,
	}
}

// KSStatistic returns the two-sample Kolmogorov-Smirnov statistic: the
// maximum distance between the empirical CDFs. Result is in [0, 1].
func KSStatistic(a, b []float64) float64 {
	sa := append([]float64(nil), a...)
	sb := append([]float64(nil), b...)
	sort.Float64s(sa)
	sort.Float64s(sb)

	na, nb := float64(len(sa)), float64(len(sb))
	var i, j int
	var maxDist float64
	for i < len(sa) && j < len(sb) {
		v := sa[i]
		if sb[j] < v {
			v = sb[j]
		}
		// Consume the full run of tied values on both sides before
		// measuring, so ties never register as spurious distance.
		for i < len(sa) && sa[i] == v {
			i++
		}
		for j < len(sb) && sb[j] == v {
			j++
		}
		if dist := math.Abs(float64(i)/na - float64(j)/nb); dist > maxDist {
			maxDist = dist
		}
	}
	return maxDist
}

// ksPValue approximates the two-sided p-value for a KS statistic using
// the asymptotic Kolmogorov distribution.
func ksPValue(stat float64, na, nb int) float64 {
	if stat <= 0 {
		return 1
	}
	ne := float64(na) * float64(nb) / float64(na+nb)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * stat

	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j)*float64(j)*lambda*lambda)
		sum += term
		sign = -sign
		if math.Abs(term) < 1e-10 {
			break
		}
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// PSI computes the population stability index between an expected and an
// actual sample over equal-width bins of the expected range. PSI >= 0;
// values above 0.2 conventionally indicate significant shift.
func PSI(expected, actual []float64, bins int) float64 {
	if len(expected) == 0 || len(actual) == 0 || bins <= 0 {
		return 0
	}
	lo, hi := expected[0], expected[0]
	for _, v := range expected {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return 0
	}

	width := (hi - lo) / float64(bins)
	bucket := func(v float64) int {
		idx := int((v - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		return idx
	}

	expCounts := make([]float64, bins)
	actCounts := make([]float64, bins)
	for _, v := range expected {
		expCounts[bucket(v)]++
	}
	for _, v := range actual {
		actCounts[bucket(v)]++
	}

	// Floor empty buckets to avoid division by zero and log of zero.
	const floor = 1e-4
	psi := 0.0
	for i := 0; i < bins; i++ {
		e := expCounts[i] / float64(len(expected))
		a := actCounts[i] / float64(len(actual))
		if e < floor {
			e = floor
		}
		if a < floor {
			a = floor
		}
		psi += (a - e) * math.Log(a/e)
	}
	return psi
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
