// Package polar reads xfoil-style polar tables and densifies them onto the
// canonical angle-of-attack grid expected by the aero interpolators.
package polar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/san-kum/stabcalc/internal/aero"
)

// ErrMalformedPolar indicates a polar source whose header or rows could not
// be parsed.
var ErrMalformedPolar = errors.New("polar: malformed polar source")

// ParseError wraps ErrMalformedPolar with the offending source and line.
type ParseError struct {
	Source  string
	Line    int
	Reason  string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }

// CanonicalGrid is the grid every Reynolds key is densified onto: -15.0 to
// +14.8 degrees.
var CanonicalGrid = aero.Grid(-150, 148)

var (
	reynoldsHeader = regexp.MustCompile(`Re\s*=`)
	reynoldsValue  = regexp.MustCompile(`Re\s*=\s*([0-9]+\.?[0-9]*)\s*e\s*([-+]?[0-9]+)`)
	coeffRow       = regexp.MustCompile(`^\s+(-?[0-9]+\.[0-9]+)\s+(-?[0-9]+\.[0-9]+)\s+(-?[0-9]+\.[0-9]+)\s+(-?[0-9]+\.[0-9]+)\s+(-?[0-9]+\.[0-9]+)`)
)

// Set holds the lift, drag and moment coefficient tables of one airfoil.
type Set struct {
	Cl aero.Table
	Cd aero.Table
	Cm aero.Table
}

func NewSet() *Set {
	return &Set{Cl: make(aero.Table), Cd: make(aero.Table), Cm: make(aero.Table)}
}

// Reynolds returns the sorted Reynolds numbers present in the set.
func (s *Set) Reynolds() []float64 {
	if s == nil {
		return nil
	}
	return s.Cl.Reynolds()
}

func (s *Set) Empty() bool { return s == nil || len(s.Cl) == 0 }

// Merge copies the curves of other into s; keys already in s are replaced.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for re, c := range other.Cl {
		s.Cl[re] = c
		s.Cd[re] = other.Cd[re]
		s.Cm[re] = other.Cm[re]
	}
}

type row struct{ aoa, cl, cd, cm float64 }

// Parse reads one polar source. Each line containing "Re = <m> e <x>" opens
// a new Reynolds key; rows of five numeric columns (alpha, CL, CD, CDp, CM)
// feed the current key; anything else is skipped. Every key is densified
// onto CanonicalGrid. On error no partial set is returned.
func Parse(r io.Reader, source string) (*Set, error) {
	rows := make(map[float64][]row)
	var order []float64
	current := math.NaN()

	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()

		if reynoldsHeader.MatchString(line) {
			re, err := parseReynolds(line)
			if err != nil {
				return nil, &ParseError{Source: source, Line: lineNo, Reason: err.Error(), Wrapped: ErrMalformedPolar}
			}
			current = re
			if _, ok := rows[re]; !ok {
				order = append(order, re)
				rows[re] = nil
			}
			continue
		}

		m := coeffRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if math.IsNaN(current) {
			return nil, &ParseError{Source: source, Line: lineNo, Reason: "coefficient row before Reynolds number header", Wrapped: ErrMalformedPolar}
		}
		var vals [5]float64
		for i := range vals {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return nil, &ParseError{Source: source, Line: lineNo, Reason: err.Error(), Wrapped: ErrMalformedPolar}
			}
			vals[i] = v
		}
		rows[current] = append(rows[current], row{aoa: aero.RoundAOA(vals[0]), cl: vals[1], cd: vals[2], cm: vals[4]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("polar: reading %s: %w", source, err)
	}

	if len(order) == 0 {
		return nil, &ParseError{Source: source, Reason: "no Reynolds number header", Wrapped: ErrMalformedPolar}
	}

	set := NewSet()
	for _, re := range order {
		if len(rows[re]) < 2 {
			return nil, &ParseError{Source: source, Reason: fmt.Sprintf("Re = %g has fewer than two rows", re), Wrapped: ErrMalformedPolar}
		}
		cl, cd, cm := densify(rows[re])
		set.Cl[re], set.Cd[re], set.Cm[re] = cl, cd, cm
	}
	return set, nil
}

func parseReynolds(line string) (float64, error) {
	m := reynoldsValue.FindStringSubmatch(line)
	if m == nil {
		return 0, fmt.Errorf("cannot parse Reynolds number in %q", line)
	}
	mant, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	exp, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, err
	}
	re := mant * math.Pow(10, float64(exp))
	if !(re > 0) {
		return 0, fmt.Errorf("non-positive Reynolds number %g", re)
	}
	return aero.Round(re, 2), nil
}

// densify fills every CanonicalGrid angle missing from rows by linear
// interpolation between the two nearest present angles.
func densify(rows []row) (cl, cd, cm map[float64]float64) {
	n := len(rows) + len(CanonicalGrid)
	cl = make(map[float64]float64, n)
	cd = make(map[float64]float64, n)
	cm = make(map[float64]float64, n)
	for _, r := range rows {
		cl[r.aoa], cd[r.aoa], cm[r.aoa] = r.cl, r.cd, r.cm
	}

	present := make([]float64, 0, len(cl))
	for a := range cl {
		present = append(present, a)
	}
	slices.Sort(present)

	for _, a := range CanonicalGrid {
		if _, ok := cl[a]; ok {
			continue
		}
		lo, hi := aero.NearestBracket(a, present)
		cl[a] = aero.Lerp1D(a, lo, cl[lo], hi, cl[hi])
		cd[a] = aero.Lerp1D(a, lo, cd[lo], hi, cd[hi])
		cm[a] = aero.Lerp1D(a, lo, cm[lo], hi, cm[hi])
	}
	return cl, cd, cm
}
