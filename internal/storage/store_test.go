package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/stabcalc/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		States: []sim.State{
			{0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{0.125, 0.01, 0.2, 4.0, 0.001, 0.0},
		},
		Times:      []float64{0.0, 0.05},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"peak_airspeed": 0.125,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	np := 0.39
	runID, err := st.Save(RunMetadata{Project: "my glider", Duration: 0.05, Thrust: 2, Verdict: "STABLE", NP: &np}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Project != "my glider" {
		t.Errorf("expected project 'my glider', got '%s'", meta.Project)
	}
	if meta.Steps != 1 {
		t.Errorf("expected 1 step, got %d", meta.Steps)
	}
	if meta.NP == nil || *meta.NP != 0.39 {
		t.Errorf("expected np 0.39, got %v", meta.NP)
	}
	if meta.Metrics["peak_airspeed"] != 0.125 {
		t.Errorf("expected metric 0.125, got %f", meta.Metrics["peak_airspeed"])
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states and %d times", len(states), len(times))
	}
	if states[1][0] != 0.125 || times[1] != 0.05 {
		t.Errorf("unexpected row: %v at %f", states[1], times[1])
	}
}

func TestStoreTrace(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Project: "trace"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	tr, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(tr.States) != 2 || len(tr.Names) != sim.StateDim {
		t.Fatalf("expected 2 states with %d names, got %d and %d", sim.StateDim, len(tr.States), len(tr.Names))
	}
	if got := tr.Series("angular_acceleration"); len(got) != 2 || got[1] != 4.0 {
		t.Errorf("expected angular acceleration series [0 4], got %v", got)
	}
	if tr.Series("missing") != nil {
		t.Error("expected nil for an unknown series")
	}

	var buf bytes.Buffer
	meta, _ := st.Load(runID)
	if err := ExportJSON(&buf, meta, tr); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc["project"] != "trace" || doc["trace"] == nil {
		t.Errorf("expected project and trace in export, got %v", doc)
	}
}

func TestStoreTraceFromStates(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save(RunMetadata{Project: "csv only"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, runID, traceFile)); err != nil {
		t.Fatal(err)
	}

	tr, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(tr.Times) != 2 || tr.Times[1] != 0.05 {
		t.Errorf("expected times [0 0.05], got %v", tr.Times)
	}
	if got := tr.Series("angular_acceleration"); len(got) != 2 || got[1] != 4.0 {
		t.Errorf("expected angular acceleration series [0 4], got %v", got)
	}
	if tr.Metrics["peak_airspeed"] != 0.125 {
		t.Errorf("expected metrics from the run metadata, got %v", tr.Metrics)
	}

	if _, err := st.LoadTrace("no-such-run"); err == nil {
		t.Error("expected an error for an unknown run")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := st.Save(RunMetadata{Project: "a", Timestamp: old}, testResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(RunMetadata{Project: "b", Timestamp: old.Add(time.Hour)}, testResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Project != "b" {
		t.Errorf("expected newest run first, got %s", runs[0].Project)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
