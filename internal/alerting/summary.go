package alerting

import (
	"time"

	"github.com/classifystack/drift-engine/internal/models"
)

// Summary condenses a slice of recent reports into the aggregate view
// served by the reports/summary endpoint.
type Summary struct {
	Reports          int            `json:"reports"`
	Completed        int            `json:"completed"`
	DriftDetected    int            `json:"drift_detected"`
	DriftRate        float64        `json:"drift_rate"`
	BySeverity       map[string]int `json:"by_severity"`
	MeanOverallScore float64        `json:"mean_overall_score"`
	MaxOverallScore  float64        `json:"max_overall_score"`
	LastDriftAt      *time.Time     `json:"last_drift_at,omitempty"`
	LastSeverity     string         `json:"last_severity,omitempty"`
}

// Summarize folds reports (newest first) into a Summary. Only completed
// runs contribute to the score statistics; error and insufficient_data
// runs still count toward the report total.
func Summarize(reports []models.DriftReport) Summary {
	summary := Summary{
		Reports:    len(reports),
		BySeverity: make(map[string]int),
	}

	var scoreSum float64
	for _, report := range reports {
		summary.BySeverity[string(report.Severity)]++
		if report.Status != models.StatusCompleted {
			continue
		}
		summary.Completed++
		scoreSum += report.OverallDriftScore
		if report.OverallDriftScore > summary.MaxOverallScore {
			summary.MaxOverallScore = report.OverallDriftScore
		}
		if report.DriftDetected {
			summary.DriftDetected++
			if summary.LastDriftAt == nil || report.CreatedAt.After(*summary.LastDriftAt) {
				at := report.CreatedAt
				summary.LastDriftAt = &at
				summary.LastSeverity = string(report.Severity)
			}
		}
	}

	if summary.Completed > 0 {
		summary.DriftRate = float64(summary.DriftDetected) / float64(summary.Completed)
		summary.MeanOverallScore = scoreSum / float64(summary.Completed)
	}
	return summary
}
