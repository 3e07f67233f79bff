package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/stabcalc/internal/airframe"
)

func testPlane(t *testing.T) *airframe.Plane {
	t.Helper()
	p, err := airframe.NewPlane(1.1, 0.2, nil)
	if err != nil {
		t.Fatal(err)
	}
	wing, err := airframe.NewWing(airframe.WingParams{
		Name: airframe.WingsSlot, Mass: 0.3, CharacteristicLength: 0.25,
		RootChord: 0.25, Semispan: 0.6, ThicknessRatio: 0.1,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tail, err := airframe.NewWing(airframe.WingParams{
		Name: airframe.TailSlot, Mass: 0.05, CharacteristicLength: 0.15,
		RootChord: 0.15, Semispan: 0.2, ThicknessRatio: 0.1,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	battery, err := airframe.NewEquipment("battery", "lipo", 0.1, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	for _, add := range []error{
		p.AddComponent(wing, 0.30),
		p.AddComponent(tail, 0.95),
		p.AddEquipment(battery, 0.5),
	} {
		if add != nil {
			t.Fatal(add)
		}
	}
	return p
}

func TestRange(t *testing.T) {
	r := Range(0, 0.3, 0.1)
	if len(r) != 4 || math.Abs(r[3]-0.3) > 1e-12 {
		t.Errorf("unexpected range %v", r)
	}
	if Range(1, 0, 0.1) != nil || Range(0, 1, 0) != nil {
		t.Error("expected empty ranges")
	}
}

func TestSearchFindsForwardBattery(t *testing.T) {
	p := testPlane(t)
	g := NewGridSearch(0.05, Axis{Name: "battery", Offsets: Range(0, 1.0, 0.05)})

	best, err := g.Search(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if best.Verdict != airframe.Stable {
		t.Errorf("expected a stable placement, got %v", best.Verdict)
	}
	if best.Offsets["battery"] >= 0.5 {
		t.Errorf("expected the battery to move forward, got %v", best.Offsets["battery"])
	}

	pl, _ := p.Layout().Get("battery")
	if pl.Begin != 0.5 {
		t.Errorf("expected the original plane to be untouched, got %v", pl.Begin)
	}
}

func TestSearchSkipsOverruns(t *testing.T) {
	p := testPlane(t)
	g := NewGridSearch(0, Axis{Name: "battery", Offsets: []float64{5, 6}})
	if _, err := g.Search(context.Background(), p); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestSearchUnknownComponent(t *testing.T) {
	g := NewGridSearch(0, Axis{Name: "servo", Offsets: []float64{0}})
	if _, err := g.Search(context.Background(), testPlane(t)); !errors.Is(err, airframe.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch(0, Axis{Name: "battery", Offsets: []float64{0}})
	if _, err := g.Search(ctx, testPlane(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
