package engine

import (
	"testing"
	"time"

	"github.com/classifystack/drift-engine/internal/models"
)

func recordAt(ts time.Time) models.InferenceRecord {
	return models.InferenceRecord{
		Timestamp:      ts,
		PredictedClass: 1,
		Confidence:     0.9,
		TextLength:     100,
	}
}

func TestSelectWindowsTimeBased(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var records []models.InferenceRecord
	for i := 0; i < 100; i++ {
		records = append(records, recordAt(now.AddDate(0, 0, -8).Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 50; i++ {
		records = append(records, recordAt(now.Add(-time.Duration(i)*time.Hour)))
	}

	windows, short := SelectWindows(records, now, 30, 7)
	if short != nil {
		t.Fatalf("unexpected insufficiency: %s", short.Message())
	}
	if windows.RandomSplit {
		t.Fatal("time-based split reported as random")
	}
	if len(windows.Reference) != 100 || len(windows.Current) != 50 {
		t.Fatalf("split = %d/%d, want 100/50", len(windows.Reference), len(windows.Current))
	}
}

func TestSelectWindowsExcludesStaleRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var records []models.InferenceRecord
	for i := 0; i < 40; i++ {
		// Older than the reference window start.
		records = append(records, recordAt(now.AddDate(0, 0, -31).Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 35; i++ {
		records = append(records, recordAt(now.AddDate(0, 0, -10).Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 20; i++ {
		records = append(records, recordAt(now.Add(-time.Duration(i)*time.Hour)))
	}

	windows, short := SelectWindows(records, now, 30, 7)
	if short != nil {
		t.Fatalf("unexpected insufficiency: %s", short.Message())
	}
	if len(windows.Reference) != 35 || len(windows.Current) != 20 {
		t.Fatalf("split = %d/%d, want 35/20 with stale records dropped",
			len(windows.Reference), len(windows.Current))
	}
}

func TestSelectWindowsRandomFallback(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Young deployment: every record is inside the current window.
	var records []models.InferenceRecord
	for i := 0; i < 200; i++ {
		records = append(records, recordAt(now.Add(-time.Duration(i)*time.Minute)))
	}

	windows, short := SelectWindows(records, now, 30, 7)
	if short != nil {
		t.Fatalf("unexpected insufficiency: %s", short.Message())
	}
	if !windows.RandomSplit {
		t.Fatal("expected random fallback split")
	}
	if len(windows.Reference) != 120 || len(windows.Current) != 80 {
		t.Fatalf("fallback split = %d/%d, want 120/80", len(windows.Reference), len(windows.Current))
	}

	// The fixed seed must make the split reproducible.
	again, _ := SelectWindows(records, now, 30, 7)
	for i := range windows.Reference {
		if windows.Reference[i].Timestamp != again.Reference[i].Timestamp {
			t.Fatal("fallback split is not reproducible")
		}
	}
}

func TestSelectWindowsInsufficientReference(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var records []models.InferenceRecord
	for i := 0; i < 20; i++ {
		records = append(records, recordAt(now.Add(-time.Duration(i)*time.Hour)))
	}

	_, short := SelectWindows(records, now, 30, 7)
	if short == nil {
		t.Fatal("expected insufficient reference window")
	}
	if short.Window != "reference" {
		t.Fatalf("short window = %q, want reference", short.Window)
	}
	if short.Message() == "" {
		t.Fatal("insufficiency message is empty")
	}
}

func TestSelectWindowsInsufficientCurrent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var records []models.InferenceRecord
	for i := 0; i < 100; i++ {
		records = append(records, recordAt(now.AddDate(0, 0, -10).Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 5; i++ {
		records = append(records, recordAt(now.Add(-time.Duration(i)*time.Hour)))
	}

	_, short := SelectWindows(records, now, 30, 7)
	if short == nil {
		t.Fatal("expected insufficient current window")
	}
	if short.Window != "current" || short.Size != 5 {
		t.Fatalf("short = %+v, want current window with 5 samples", short)
	}
}
