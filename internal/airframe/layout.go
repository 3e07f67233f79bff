package airframe

import (
	"slices"

	"github.com/iancoleman/orderedmap"
)

// Placement records where an item sits on the centerline.
type Placement struct {
	Name  string
	Begin float64
	End   float64
	Item  Placeable
}

func (p *Placement) Mass() float64 { return p.Item.Mass() }

// Mid is the placement's midpoint, used as its mass centre.
func (p *Placement) Mid() float64 { return (p.Begin + p.End) / 2 }

func (p *Placement) Length() float64 { return p.End - p.Begin }

// Wing returns the placed wing, if the item is one.
func (p *Placement) Wing() (*Wing, bool) {
	w, ok := p.Item.(*Wing)
	return w, ok
}

// Layout is the insertion-ordered name → placement map of a plane.
type Layout struct {
	m *orderedmap.OrderedMap
}

func newLayout() *Layout {
	return &Layout{m: orderedmap.New()}
}

func (l *Layout) Len() int { return len(l.m.Keys()) }

// Names returns the placement names in insertion order.
func (l *Layout) Names() []string { return slices.Clone(l.m.Keys()) }

func (l *Layout) Get(name string) (*Placement, bool) {
	v, ok := l.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Placement), true
}

// All returns the placements in insertion order.
func (l *Layout) All() []*Placement {
	keys := l.m.Keys()
	out := make([]*Placement, 0, len(keys))
	for _, k := range keys {
		v, _ := l.m.Get(k)
		out = append(out, v.(*Placement))
	}
	return out
}

func (l *Layout) put(p *Placement) { l.m.Set(p.Name, p) }

func (l *Layout) remove(name string) { l.m.Delete(name) }

// rename rebuilds the map so the renamed entry keeps its position.
func (l *Layout) rename(from, to string) {
	next := orderedmap.New()
	for _, k := range l.m.Keys() {
		v, _ := l.m.Get(k)
		p := v.(*Placement)
		if k == from {
			p.Name = to
			k = to
		}
		next.Set(k, p)
	}
	l.m = next
}
