// Command loggen writes a synthetic inference log for local development.
// It emits a reference period of stable traffic followed by a current
// period whose prediction mix and text lengths can be shifted to trigger
// drift of a chosen magnitude.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var header = []string{
	"timestamp", "prediction_id", "designation", "description",
	"predicted_class", "confidence", "text_length", "model_version", "model_stage",
}

var designations = []string{
	"Senior Software Engineer", "Data Analyst", "Product Manager",
	"DevOps Engineer", "UX Designer", "Machine Learning Engineer",
	"QA Engineer", "Engineering Manager", "Technical Writer", "Site Reliability Engineer",
}

func main() {
	var (
		path       = flag.String("out", "logs/inference_log.csv", "output CSV path")
		refRows    = flag.Int("ref-rows", 400, "rows in the reference period (8 to 37 days old)")
		curRows    = flag.Int("cur-rows", 150, "rows in the current period (last 7 days)")
		classes    = flag.Int("classes", 25, "number of predicted classes")
		shift      = flag.Float64("shift", 0, "drift strength in the current period, 0 to 1")
		seed       = flag.Int64("seed", 1, "random seed")
		modelStage = flag.String("stage", "Production", "model stage label")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(*path), 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	f, err := os.Create(*path)
	if err != nil {
		log.Fatalf("create %s: %v", *path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		log.Fatalf("write header: %v", err)
	}

	// Reference rows land 8 to 37 days in the past, current rows inside
	// the last 7 days, matching the analysis windows.
	for i := 0; i < *refRows; i++ {
		age := time.Duration(8*24+rng.Intn(29*24)) * time.Hour
		writeRow(w, rng, now.Add(-age), *classes, 0, *modelStage)
	}
	for i := 0; i < *curRows; i++ {
		age := time.Duration(rng.Intn(7*24)) * time.Hour
		writeRow(w, rng, now.Add(-age), *classes, *shift, *modelStage)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	fmt.Printf("wrote %d rows to %s (shift=%.2f)\n", *refRows+*curRows, *path, *shift)
}

// writeRow emits one inference record. shift concentrates predictions on
// class 0, lengthens descriptions, and lowers confidence proportionally.
func writeRow(w *csv.Writer, rng *rand.Rand, ts time.Time, classes int, shift float64, stage string) {
	class := rng.Intn(classes)
	if shift > 0 && rng.Float64() < shift {
		class = 0
	}

	designation := designations[rng.Intn(len(designations))]
	descWords := 30 + rng.Intn(40) + int(shift*80)
	description := strings.Repeat("responsibility ", descWords)
	description = description[:len(description)-1]

	confidence := 0.65 + 0.3*rng.Float64() - 0.25*shift
	confidence = math.Max(0.05, math.Min(confidence, 0.99))

	record := []string{
		ts.Format(time.RFC3339),
		uuid.NewString(),
		designation,
		description,
		strconv.Itoa(class),
		strconv.FormatFloat(confidence, 'f', 4, 64),
		strconv.Itoa(len(designation) + len(description)),
		"3",
		stage,
	}
	if err := w.Write(record); err != nil {
		log.Fatalf("write row: %v", err)
	}
}
