package alerting

import (
	"math"
	"testing"
	"time"

	"github.com/classifystack/drift-engine/internal/models"
)

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.Reports != 0 || summary.Completed != 0 || summary.DriftRate != 0 {
		t.Fatalf("summary of no reports = %+v", summary)
	}
	if summary.LastDriftAt != nil {
		t.Fatal("LastDriftAt set without any drift")
	}
}

func TestSummarizeMixedHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reports := []models.DriftReport{
		{Status: models.StatusCompleted, Severity: models.SeverityCritical, OverallDriftScore: 0.4, DriftDetected: true, CreatedAt: base.Add(3 * time.Hour)},
		{Status: models.StatusCompleted, Severity: models.SeverityOK, OverallDriftScore: 0.05, CreatedAt: base.Add(2 * time.Hour)},
		{Status: models.StatusCompleted, Severity: models.SeverityWarning, OverallDriftScore: 0.15, DriftDetected: true, CreatedAt: base.Add(time.Hour)},
		{Status: models.StatusInsufficientData, Severity: models.SeverityOK, CreatedAt: base},
	}

	summary := Summarize(reports)
	if summary.Reports != 4 || summary.Completed != 3 {
		t.Fatalf("reports/completed = %d/%d, want 4/3", summary.Reports, summary.Completed)
	}
	if summary.DriftDetected != 2 {
		t.Fatalf("drift detected count = %d, want 2", summary.DriftDetected)
	}
	if math.Abs(summary.DriftRate-2.0/3.0) > 1e-12 {
		t.Fatalf("drift rate = %v, want 2/3", summary.DriftRate)
	}
	if math.Abs(summary.MeanOverallScore-0.2) > 1e-12 {
		t.Fatalf("mean score = %v, want 0.2", summary.MeanOverallScore)
	}
	if summary.MaxOverallScore != 0.4 {
		t.Fatalf("max score = %v, want 0.4", summary.MaxOverallScore)
	}
	if summary.BySeverity["CRITICAL"] != 1 || summary.BySeverity["OK"] != 2 {
		t.Fatalf("severity histogram = %v", summary.BySeverity)
	}
	if summary.LastDriftAt == nil || !summary.LastDriftAt.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("last drift = %v, want newest drifted report", summary.LastDriftAt)
	}
	if summary.LastSeverity != "CRITICAL" {
		t.Fatalf("last severity = %q, want CRITICAL", summary.LastSeverity)
	}
}

func TestLoadPlaybookMissingPath(t *testing.T) {
	playbook, err := LoadPlaybook("")
	if err != nil || playbook != nil {
		t.Fatalf("LoadPlaybook(\"\") = %v, %v, want nil, nil", playbook, err)
	}
	if _, ok := playbook.Action(models.SeverityCritical); ok {
		t.Fatal("nil playbook returned an action")
	}
}
