// Package stats implements the statistical tests used for drift detection:
// population stability index (continuous and bias-corrected categorical),
// two-sample Kolmogorov-Smirnov, chi-square over reference categories, and
// Jensen-Shannon divergence.
package stats

import "math"

// DefaultBins is the histogram bucket count used when callers pass <= 0.
const DefaultBins = 10

// histogramCounts buckets values into bins equal-width buckets spanning
// [lo, hi]. Values equal to hi land in the last bucket.
func histogramCounts(values []float64, lo, hi float64, bins int) []int {
	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		idx := bins - 1
		if width > 0 {
			idx = int((v - lo) / width)
			if idx < 0 {
				idx = 0
			}
			if idx >= bins {
				idx = bins - 1
			}
		}
		counts[idx]++
	}
	return counts
}

// jointRange returns the min and max over both samples.
func jointRange(a, b []float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range a {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, v := range b {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// flooredProportions converts counts into proportions of n, raising empty
// buckets to the adaptive floor 0.5/n so log-ratio terms stay finite. The
// same floor feeds both PSI variants; do not duplicate the epsilon logic
// elsewhere.
func flooredProportions(counts []int, n int) []float64 {
	floor := 0.5 / float64(n)
	pct := make([]float64, len(counts))
	for i, c := range counts {
		p := float64(c) / float64(n)
		if p < floor {
			p = floor
		}
		pct[i] = p
	}
	return pct
}
