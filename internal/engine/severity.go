package engine

import "github.com/classifystack/drift-engine/internal/models"

// Thresholds are the ascending severity cut points applied to the overall
// drift score. Immutable once constructed; pass a value into the engine
// rather than mutating process-wide state.
type Thresholds struct {
	Warning  float64
	Alert    float64
	Critical float64
}

// DefaultThresholds returns the standard PSI-based cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 0.1, Alert: 0.2, Critical: 0.3}
}

// ClassifySeverity maps an overall drift score to a severity tier. Each
// tier is inclusive on its lower bound, so a score exactly at a threshold
// rounds up to the higher severity.
func ClassifySeverity(score float64, t Thresholds) models.Severity {
	switch {
	case score >= t.Critical:
		return models.SeverityCritical
	case score >= t.Alert:
		return models.SeverityAlert
	case score >= t.Warning:
		return models.SeverityWarning
	default:
		return models.SeverityOK
	}
}
