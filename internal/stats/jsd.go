package stats

import "math"

// jsdEpsilon keeps log terms finite before re-normalisation.
const jsdEpsilon = 1e-6

// JensenShannon computes the Jensen-Shannon divergence between two
// continuous samples binned into bins equal-width buckets over the joint
// min/max. The result lies in [0, 1]: near 0 the distributions are similar,
// near 1 they are very different.
func JensenShannon(reference, current []float64, bins int) float64 {
	if len(reference) == 0 || len(current) == 0 {
		return 0
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := jointRange(reference, current)
	refPct := smoothedProportions(histogramCounts(reference, lo, hi, bins), len(reference))
	curPct := smoothedProportions(histogramCounts(current, lo, hi, bins), len(current))

	jsd := 0.0
	for i := range refPct {
		m := 0.5 * (refPct[i] + curPct[i])
		jsd += 0.5*refPct[i]*math.Log(refPct[i]/m) + 0.5*curPct[i]*math.Log(curPct[i]/m)
	}

	if jsd < 0 {
		return 0
	}
	if jsd > 1 {
		return 1
	}
	return jsd
}

// smoothedProportions adds a small epsilon to every bucket and
// re-normalises so the proportions still sum to one.
func smoothedProportions(counts []int, n int) []float64 {
	pct := make([]float64, len(counts))
	total := 0.0
	for i, c := range counts {
		pct[i] = float64(c)/float64(n) + jsdEpsilon
		total += pct[i]
	}
	for i := range pct {
		pct[i] /= total
	}
	return pct
}
