package polar

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/stabcalc/internal/aero"
)

const samplePolar = `
       XFOIL         Version 6.99

 Calculated polar for: NACA 2412

 1 1 Reynolds number fixed          Mach number fixed

 xtrf =   1.000 (top)        1.000 (bottom)
 Mach =   0.000     Re =     0.200 e 6     Ncrit =   9.000

   alpha    CL        CD       CDp       CM     Top_Xtr  Bot_Xtr
  ------- -------- --------- --------- -------- -------- --------
  -2.000  -0.0300   0.00850   0.00300  -0.0500   0.8000   0.2000
  -1.000   0.0800   0.00820   0.00280  -0.0510   0.7500   0.3000
   0.000   0.1900   0.00800   0.00260  -0.0520   0.7000   0.4000
   2.000   0.4100   0.00810   0.00270  -0.0530   0.6000   0.6000
`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(samplePolar), "naca2412.pol")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	res := s.Reynolds()
	if len(res) != 1 || res[0] != 200000 {
		t.Fatalf("expected Re 200000, got %v", res)
	}

	curve := s.Cl[200000]
	if len(curve) != len(CanonicalGrid) {
		t.Errorf("expected %d densified points, got %d", len(CanonicalGrid), len(curve))
	}
	if curve[0.0] != 0.19 {
		t.Errorf("expected Cl(0) = 0.19, got %v", curve[0.0])
	}
	if got := s.Cm[200000][-1.0]; got != -0.051 {
		t.Errorf("expected Cm(-1) = -0.051, got %v", got)
	}
}

func TestParseDensifiesGaps(t *testing.T) {
	s, err := Parse(strings.NewReader(samplePolar), "naca2412.pol")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// 1.0 deg is missing from the source: halfway between 0.19 and 0.41
	if got := s.Cl[200000][1.0]; math.Abs(got-0.30) > 1e-9 {
		t.Errorf("expected interpolated Cl 0.30, got %v", got)
	}
	if got := s.Cd[200000][1.0]; math.Abs(got-0.00805) > 1e-9 {
		t.Errorf("expected interpolated Cd 0.00805, got %v", got)
	}
	// below the measured range the first segment is extrapolated
	if got := s.Cl[200000][-3.0]; math.Abs(got-(-0.14)) > 1e-9 {
		t.Errorf("expected extrapolated Cl -0.14, got %v", got)
	}

	for _, a := range aero.DefaultAOAGrid {
		if _, ok := s.Cl[200000][a]; !ok {
			t.Fatalf("grid angle %v missing after densify", a)
		}
	}
}

func TestParseMultipleReynolds(t *testing.T) {
	src := samplePolar + strings.Replace(samplePolar, "0.200 e 6", "0.400 e 6", 1)
	s, err := Parse(strings.NewReader(src), "two.pol")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if res := s.Reynolds(); len(res) != 2 || res[1] != 400000 {
		t.Errorf("expected two Reynolds keys, got %v", res)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no header", "   0.000   0.1900   0.00800   0.00260  -0.0520\n"},
		{"row before header", "   0.000   0.1900   0.00800   0.00260  -0.0520\n Re = 0.1 e 6\n"},
		{"bad reynolds", " Mach = 0.000  Re = unknown\n"},
		{"too few rows", " Re = 0.1 e 6\n   0.000   0.1900   0.00800   0.00260  -0.0520\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(strings.NewReader(tt.src), "bad.pol")
			if !errors.Is(err, ErrMalformedPolar) {
				t.Errorf("expected ErrMalformedPolar, got %v", err)
			}
			if s != nil {
				t.Error("expected no partial set")
			}
		})
	}
}

func TestLoaderLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.pol", samplePolar)
	write("b.pol", strings.Replace(samplePolar, "0.200 e 6", "0.500 e 6", 1))
	write("notes.txt", "ignored")

	l, err := NewLoader(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := l.Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if res := s.Reynolds(); len(res) != 2 {
		t.Errorf("expected 2 Reynolds keys, got %v", res)
	}

	again, err := l.LoadFile(filepath.Join(dir, "a.pol"))
	if err != nil {
		t.Fatal(err)
	}
	if again.Cl[200000][0.0] != 0.19 {
		t.Error("cached set lost its data")
	}
}

func TestLoaderRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.pol"), []byte(samplePolar), 0644)
	os.WriteFile(filepath.Join(dir, "b.pol"), []byte(" Re = ??\n"), 0644)

	l, _ := NewLoader(0, nil)
	s, err := l.LoadDir(dir)
	if !errors.Is(err, ErrMalformedPolar) {
		t.Errorf("expected ErrMalformedPolar, got %v", err)
	}
	if s != nil {
		t.Error("expected no set when a file is malformed")
	}
}

func TestLoaderEmptyDir(t *testing.T) {
	l, _ := NewLoader(0, nil)
	if _, err := l.LoadDir(t.TempDir()); err == nil {
		t.Error("expected error for directory without polar files")
	}
}
