// Package optim searches component placements for a target static margin.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/stabcalc/internal/airframe"
)

var ErrNoCandidate = errors.New("optim: no placement yields a neutral point")

// Axis is one component and the leading-edge offsets to try for it.
type Axis struct {
	Name    string
	Offsets []float64
}

// Range returns the offsets from lo to hi inclusive in steps of step.
func Range(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Candidate is a placement and the static margin it produces.
type Candidate struct {
	Offsets map[string]float64
	Margin  float64
	Verdict airframe.Verdict
}

// GridSearch tries every combination of offsets and keeps the one whose
// static margin is closest to Target. Combinations that overrun the
// centerline or leave the neutral point undefined are skipped.
type GridSearch struct {
	axes   []Axis
	Target float64
}

func NewGridSearch(target float64, axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes, Target: target}
}

// Search works on a clone; p is left untouched.
func (g *GridSearch) Search(ctx context.Context, p *airframe.Plane) (*Candidate, error) {
	for _, a := range g.axes {
		if _, ok := p.Layout().Get(a.Name); !ok {
			return nil, fmt.Errorf("%w: %s", airframe.ErrUnknownComponent, a.Name)
		}
	}

	var best *Candidate
	bestErr := math.Inf(1)
	err := g.searchRecursive(ctx, 0, p.Clone(), make(map[string]float64), &best, &bestErr)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	plane *airframe.Plane,
	current map[string]float64,
	best **Candidate,
	bestErr *float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		sm, ok := plane.StaticMargin()
		if !ok {
			return nil
		}
		if d := math.Abs(sm - g.Target); d < *bestErr {
			*bestErr = d
			offsets := make(map[string]float64, len(current))
			for k, v := range current {
				offsets[k] = v
			}
			*best = &Candidate{Offsets: offsets, Margin: sm, Verdict: plane.Verdict()}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, off := range axis.Offsets {
		pl, _ := plane.Layout().Get(axis.Name)
		if err := plane.MoveComponent(axis.Name, off-pl.Begin); err != nil {
			continue
		}
		current[axis.Name] = off
		if err := g.searchRecursive(ctx, depth+1, plane, current, best, bestErr); err != nil {
			return err
		}
	}
	delete(current, axis.Name)
	return nil
}
