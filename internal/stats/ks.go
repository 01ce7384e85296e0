package stats

import (
	"math"
	"sort"

	"github.com/classifystack/drift-engine/internal/models"
)

// KS runs a two-sample Kolmogorov-Smirnov test on continuous samples.
// Drift is flagged when the asymptotic p-value falls below 0.05.
func KS(reference, current []float64) models.KSResult {
	if len(reference) == 0 || len(current) == 0 {
		return models.KSResult{PValue: 1}
	}

	statistic := ksStatistic(reference, current)

	n1 := float64(len(reference))
	n2 := float64(len(current))
	ne := n1 * n2 / (n1 + n2)
	pValue := kolmogorovSurvival(math.Sqrt(ne) * statistic)

	return models.KSResult{
		Statistic:     statistic,
		PValue:        pValue,
		DriftDetected: pValue < 0.05,
	}
}

// ksStatistic returns D = max |F1(x) - F2(x)| over the merged sample,
// where F1 and F2 are the empirical CDFs.
func ksStatistic(sample1, sample2 []float64) float64 {
	s1 := append([]float64(nil), sample1...)
	s2 := append([]float64(nil), sample2...)
	sort.Float64s(s1)
	sort.Float64s(s2)

	n1 := float64(len(s1))
	n2 := float64(len(s2))

	i, j := 0, 0
	maxD := 0.0
	for i < len(s1) && j < len(s2) {
		v1, v2 := s1[i], s2[j]
		if v1 <= v2 {
			for i < len(s1) && s1[i] == v1 {
				i++
			}
		}
		if v2 <= v1 {
			for j < len(s2) && s2[j] == v2 {
				j++
			}
		}
		diff := math.Abs(float64(i)/n1 - float64(j)/n2)
		if diff > maxD {
			maxD = diff
		}
	}
	return maxD
}

// kolmogorovSurvival approximates P(D > x) with the alternating series
// 2 * sum_{k>=1} (-1)^{k-1} exp(-2 k^2 x^2), truncated at ten terms.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	sum := 0.0
	for k := 1; k <= 10; k++ {
		term := math.Exp(-2 * float64(k*k) * lambda * lambda)
		if k%2 == 0 {
			sum -= term
		} else {
			sum += term
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
