package stats

import (
	"math"
	"sort"

	"github.com/classifystack/drift-engine/internal/models"
)

// ChiSquare compares the current categorical distribution against expected
// counts derived from the reference window. Categories absent from the
// reference are excluded: there is no expected frequency to compare a
// brand-new class against. Expected counts are the reference proportions
// scaled to the current sample size. Fewer than two categories with
// non-zero expected count yields a neutral no-drift result.
func ChiSquare(reference, current []int) models.ChiSquareResult {
	neutral := models.ChiSquareResult{Statistic: 0, PValue: 1, DriftDetected: false}
	if len(reference) == 0 || len(current) == 0 {
		return neutral
	}

	refCounts := countByCategory(reference)
	curCounts := countByCategory(current)

	categories := make([]int, 0, len(refCounts))
	for c := range refCounts {
		categories = append(categories, c)
	}
	sort.Ints(categories)

	refTotal := 0
	curTotal := 0
	for _, c := range categories {
		refTotal += refCounts[c]
		curTotal += curCounts[c]
	}
	if refTotal == 0 || curTotal == 0 {
		return neutral
	}

	statistic := 0.0
	terms := 0
	for _, c := range categories {
		expected := float64(refCounts[c]) / float64(refTotal) * float64(curTotal)
		if expected <= 0 {
			continue
		}
		observed := float64(curCounts[c])
		statistic += (observed - expected) * (observed - expected) / expected
		terms++
	}
	if terms < 2 {
		return neutral
	}

	pValue := chiSquareSurvival(statistic, float64(terms-1))
	return models.ChiSquareResult{
		Statistic:     statistic,
		PValue:        pValue,
		DriftDetected: pValue < 0.05,
	}
}

// chiSquareSurvival returns P(X > x) for a chi-square distribution with df
// degrees of freedom, i.e. the regularized upper incomplete gamma function
// Q(df/2, x/2).
func chiSquareSurvival(x, df float64) float64 {
	if x <= 0 || df <= 0 {
		return 1
	}
	return regularizedGammaQ(df/2, x/2)
}

// regularizedGammaQ computes Q(a, x) = 1 - P(a, x) using the series
// expansion for x < a+1 and the continued fraction otherwise.
func regularizedGammaQ(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return 1
	}
	if x == 0 {
		return 1
	}
	if x < a+1 {
		return 1 - lowerGammaSeries(a, x)
	}
	return upperGammaContinuedFraction(a, x)
}

const (
	gammaMaxIterations = 200
	gammaEpsilon       = 3e-14
)

// lowerGammaSeries evaluates P(a, x) by its power series.
func lowerGammaSeries(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	ap := a
	sum := 1.0 / a
	del := sum
	for i := 0; i < gammaMaxIterations; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*gammaEpsilon {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-lg)
}

// upperGammaContinuedFraction evaluates Q(a, x) by the Lentz continued
// fraction.
func upperGammaContinuedFraction(a, x float64) float64 {
	const tiny = 1e-300

	lg, _ := math.Lgamma(a)
	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= gammaMaxIterations; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < gammaEpsilon {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-lg) * h
}
