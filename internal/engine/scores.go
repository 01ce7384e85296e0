package engine

import (
	"math"

	"github.com/classifystack/drift-engine/internal/models"
	"github.com/classifystack/drift-engine/internal/stats"
)

// ComputeDriftScores runs the statistical test suite across the analysed
// dimensions: data drift on text length, prediction drift on the
// predicted-class distribution, and confidence drift on the confidence
// score. A dimension with no usable values in either window produces no
// result rather than an error.
func ComputeDriftScores(reference, current []models.InferenceRecord, bins int) *models.DriftDetails {
	details := &models.DriftDetails{}

	refLen := textLengths(reference)
	curLen := textLengths(current)
	if len(refLen) > 0 && len(curLen) > 0 {
		details.DataDrift = &models.NumericDriftResult{
			PSI: stats.PSI(refLen, curLen, bins),
			KS:  stats.KS(refLen, curLen),
			JSD: stats.JensenShannon(refLen, curLen, bins),
		}
	}

	refPred := predictedClasses(reference)
	curPred := predictedClasses(current)
	if len(refPred) > 0 && len(curPred) > 0 {
		details.PredictionDrift = &models.CategoricalDriftResult{
			PSI:       stats.CategoricalPSI(refPred, curPred),
			ChiSquare: stats.ChiSquare(refPred, curPred),
		}
	}

	refConf := confidences(reference)
	curConf := confidences(current)
	if len(refConf) > 0 && len(curConf) > 0 {
		meanRef := meanOf(refConf)
		meanCur := meanOf(curConf)
		details.ConfidenceDrift = &models.ConfidenceDriftResult{
			PSI:       stats.PSI(refConf, curConf, bins),
			KS:        stats.KS(refConf, curConf),
			MeanRef:   meanRef,
			MeanCur:   meanCur,
			MeanDelta: meanCur - meanRef,
		}
	}

	return details
}

// OverallScore averages the PSI values from the dimensions that produced a
// result. Dimensions with no data are excluded, not scored as zero drift.
// ok is false when no dimension produced a result.
func OverallScore(details *models.DriftDetails) (score float64, ok bool) {
	if details == nil {
		return 0, false
	}

	var psis []float64
	if details.DataDrift != nil {
		psis = append(psis, details.DataDrift.PSI)
	}
	if details.PredictionDrift != nil {
		psis = append(psis, details.PredictionDrift.PSI)
	}
	if details.ConfidenceDrift != nil {
		psis = append(psis, details.ConfidenceDrift.PSI)
	}
	if len(psis) == 0 {
		return 0, false
	}
	return meanOf(psis), true
}

func textLengths(records []models.InferenceRecord) []float64 {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.TextLength >= 0 {
			values = append(values, float64(rec.TextLength))
		}
	}
	return values
}

func predictedClasses(records []models.InferenceRecord) []int {
	values := make([]int, 0, len(records))
	for _, rec := range records {
		if rec.PredictedClass >= 0 {
			values = append(values, rec.PredictedClass)
		}
	}
	return values
}

func confidences(records []models.InferenceRecord) []float64 {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if !math.IsNaN(rec.Confidence) {
			values = append(values, rec.Confidence)
		}
	}
	return values
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
