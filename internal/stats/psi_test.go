package stats

import (
	"math/rand"
	"testing"
)

func normalSample(t *testing.T, n int, mean, stddev float64, seed int64) []float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = mean + stddev*rng.NormFloat64()
	}
	return values
}

func TestPSIIdenticalSamples(t *testing.T) {
	sample := normalSample(t, 400, 0, 1, 1)
	if psi := PSI(sample, sample, DefaultBins); psi > 1e-9 {
		t.Fatalf("PSI of identical samples = %v, want ~0", psi)
	}
}

func TestPSIEmptySample(t *testing.T) {
	sample := normalSample(t, 100, 0, 1, 1)
	if psi := PSI(nil, sample, DefaultBins); psi != 0 {
		t.Fatalf("PSI with empty reference = %v, want 0", psi)
	}
	if psi := PSI(sample, nil, DefaultBins); psi != 0 {
		t.Fatalf("PSI with empty current = %v, want 0", psi)
	}
}

func TestPSIGrowsWithShift(t *testing.T) {
	reference := normalSample(t, 400, 0, 1, 1)
	small := normalSample(t, 400, 0.5, 1, 2)
	large := normalSample(t, 400, 3, 1, 3)

	psiSmall := PSI(reference, small, DefaultBins)
	psiLarge := PSI(reference, large, DefaultBins)

	if psiSmall <= 0 {
		t.Fatalf("PSI for shifted sample = %v, want > 0", psiSmall)
	}
	if psiLarge <= psiSmall {
		t.Fatalf("PSI did not grow with shift: small=%v large=%v", psiSmall, psiLarge)
	}
	if psiLarge < 0.2 {
		t.Fatalf("PSI for 3 sigma shift = %v, want >= 0.2", psiLarge)
	}
}

func TestCategoricalPSIUniformManyClasses(t *testing.T) {
	// 25 classes with ~4 samples each per window: raw categorical PSI is
	// badly inflated here, the bias correction must bring it back near zero.
	reference := make([]int, 100)
	current := make([]int, 120)
	for i := range reference {
		reference[i] = i % 25
	}
	for i := range current {
		current[i] = i % 25
	}

	if psi := CategoricalPSI(reference, current); psi > 0.1 {
		t.Fatalf("bias-corrected categorical PSI = %v, want <= 0.1 for matching distributions", psi)
	}
}

func TestCategoricalPSIConcentration(t *testing.T) {
	reference := make([]int, 200)
	for i := range reference {
		reference[i] = i % 25
	}
	current := make([]int, 100) // every prediction lands in class 0

	if psi := CategoricalPSI(reference, current); psi < 0.2 {
		t.Fatalf("categorical PSI for collapsed predictions = %v, want >= 0.2", psi)
	}
}

func TestCategoricalPSIEmptySample(t *testing.T) {
	if psi := CategoricalPSI(nil, []int{1, 2}); psi != 0 {
		t.Fatalf("categorical PSI with empty reference = %v, want 0", psi)
	}
}
