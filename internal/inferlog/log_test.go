package inferlog

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriterReaderRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference_log.csv")
	w := NewWriter(path, 0, nil)

	longDesignation := strings.Repeat("d", 150)
	if _, err := w.Append(longDesignation, "classify this text", 3, 0.87, "2", "Production"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := w.Append("Data Analyst", "short", 7, 0.42, "2", "Production"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := NewReader(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}

	first := records[0]
	if len(first.Designation) != maxDesignationLen {
		t.Fatalf("designation not truncated: len=%d", len(first.Designation))
	}
	// Text length is computed from the original, untruncated inputs.
	if first.TextLength != 150+len("classify this text") {
		t.Fatalf("text length = %d", first.TextLength)
	}
	if first.PredictedClass != 3 || first.Confidence != 0.87 {
		t.Fatalf("record fields = %+v", first)
	}
	if first.PredictionID == "" || first.PredictionID == records[1].PredictionID {
		t.Fatal("prediction ids must be unique and non-empty")
	}
	if first.Timestamp.IsZero() {
		t.Fatal("timestamp not recorded")
	}
}

func TestReaderMissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if _, err := r.Load(context.Background()); !errors.Is(err, ErrLogMissing) {
		t.Fatalf("err = %v, want ErrLogMissing", err)
	}
}

func TestReaderSkipsMalformedTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference_log.csv")
	content := strings.Join([]string{
		"timestamp,prediction_id,designation,description,predicted_class,confidence,text_length,model_version,model_stage",
		"2026-02-20T10:00:00Z,a,Engineer,desc,1,0.9,42,1,Production",
		"not-a-timestamp,b,Engineer,desc,2,0.8,40,1,Production",
		"2026-02-21 08:30:00,c,Analyst,desc,bad,oops,-5,1,Production",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := NewReader(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2 (bad timestamp row dropped)", len(records))
	}

	// Malformed non-timestamp fields degrade to absent values.
	last := records[1]
	if last.PredictedClass != -1 || last.TextLength != -1 {
		t.Fatalf("absent int fields = %d/%d, want -1/-1", last.PredictedClass, last.TextLength)
	}
	if !math.IsNaN(last.Confidence) {
		t.Fatalf("absent confidence = %v, want NaN", last.Confidence)
	}
}

func TestWriterRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference_log.csv")
	w := NewWriter(path, 10, nil)

	for i := 0; i < 12; i++ {
		if _, err := w.Append("Engineer", "desc", i, 0.5, "1", "Staging"); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	records, err := NewReader(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The 11th append triggers rotation down to 5 rows; the 12th adds one.
	if len(records) != 6 {
		t.Fatalf("loaded %d records after rotation, want 6", len(records))
	}
	if records[len(records)-1].PredictedClass != 11 {
		t.Fatalf("newest record class = %d, want 11", records[len(records)-1].PredictedClass)
	}
	if records[0].PredictedClass != 6 {
		t.Fatalf("oldest surviving record class = %d, want 6", records[0].PredictedClass)
	}
}
