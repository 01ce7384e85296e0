package stats

import "testing"

func TestKSIdenticalSamples(t *testing.T) {
	sample := make([]float64, 200)
	for i := range sample {
		sample[i] = float64(i)
	}

	result := KS(sample, sample)
	if result.Statistic != 0 {
		t.Fatalf("KS statistic for identical samples = %v, want 0", result.Statistic)
	}
	if result.PValue != 1 {
		t.Fatalf("KS p-value for identical samples = %v, want 1", result.PValue)
	}
	if result.DriftDetected {
		t.Fatal("KS flagged drift on identical samples")
	}
}

func TestKSInterleavedSamples(t *testing.T) {
	// Two fine grids offset by half a step draw from the same distribution.
	reference := make([]float64, 200)
	current := make([]float64, 200)
	for i := range reference {
		reference[i] = float64(i)
		current[i] = float64(i) + 0.5
	}

	result := KS(reference, current)
	if result.DriftDetected {
		t.Fatalf("KS flagged drift on interleaved samples: D=%v p=%v", result.Statistic, result.PValue)
	}
}

func TestKSSeparatedSamples(t *testing.T) {
	reference := normalSample(t, 200, 0, 1, 4)
	current := normalSample(t, 200, 5, 1, 5)

	result := KS(reference, current)
	if !result.DriftDetected {
		t.Fatalf("KS missed 5 sigma separation: D=%v p=%v", result.Statistic, result.PValue)
	}
	if result.Statistic < 0.9 {
		t.Fatalf("KS statistic for separated samples = %v, want near 1", result.Statistic)
	}
}

func TestKSEmptySample(t *testing.T) {
	result := KS(nil, []float64{1, 2, 3})
	if result.DriftDetected || result.PValue != 1 {
		t.Fatalf("KS on empty sample = %+v, want neutral result", result)
	}
}

func TestKolmogorovSurvivalMonotone(t *testing.T) {
	if p := kolmogorovSurvival(0); p != 1 {
		t.Fatalf("survival(0) = %v, want 1", p)
	}
	prev := 1.0
	for _, lambda := range []float64{0.5, 1, 1.5, 2, 3} {
		p := kolmogorovSurvival(lambda)
		if p < 0 || p > prev {
			t.Fatalf("survival(%v) = %v, want non-increasing in [0,1]", lambda, p)
		}
		prev = p
	}
	if p := kolmogorovSurvival(3); p > 1e-6 {
		t.Fatalf("survival(3) = %v, want ~0", p)
	}
}
