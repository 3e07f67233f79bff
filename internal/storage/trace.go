package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/stabcalc/internal/sim"
)

// Trace is the full-precision record of a run.
type Trace struct {
	Names   []string           `msgpack:"names" json:"names"`
	Times   []float64          `msgpack:"times" json:"times"`
	States  [][]float64        `msgpack:"states" json:"states"`
	Metrics map[string]float64 `msgpack:"metrics" json:"metrics"`
}

func NewTrace(result *sim.Result) *Trace {
	tr := &Trace{
		Names:   sim.StateNames,
		Times:   result.Times,
		States:  make([][]float64, len(result.States)),
		Metrics: result.Metrics,
	}
	for i, s := range result.States {
		tr.States[i] = s
	}
	return tr
}

// Series extracts the named column, or nil.
func (tr *Trace) Series(name string) []float64 {
	idx := -1
	for i, n := range tr.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(tr.States))
	for _, x := range tr.States {
		if idx < len(x) {
			out = append(out, x[idx])
		}
	}
	return out
}

func writeTrace(path string, tr *Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(tr); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// LoadTrace decodes the compressed trace of a run. Runs without a trace
// file are rebuilt from the states CSV at its six-decimal precision.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if os.IsNotExist(err) {
		return s.traceFromStates(runID)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var tr Trace
	if err := msgpack.NewDecoder(zr).Decode(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (s *Store) traceFromStates(runID string) (*Trace, error) {
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s has no trace: %w", runID, err)
	}
	tr := &Trace{Names: sim.StateNames, Times: times, States: states}
	if meta, err := s.Load(runID); err == nil {
		tr.Metrics = meta.Metrics
	}
	return tr, nil
}

// ExportJSON writes a run's metadata and trace as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *Trace) error {
	data := struct {
		*RunMetadata
		Trace *Trace `json:"trace"`
	}{meta, tr}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
