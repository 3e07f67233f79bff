// Package project reads and writes plane descriptions as JSON project files.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stabcalc/internal/airframe"
	"github.com/san-kum/stabcalc/internal/log"
	"github.com/san-kum/stabcalc/internal/polar"
)

// File is the on-disk shape of a project.
type File struct {
	ProjectName          string             `json:"project_name"`
	FlightConditions     map[string]float64 `json:"flight_conditions"`
	Fuselage             Fuselage           `json:"fuselage"`
	LiftingSurfaces      []Surface          `json:"lifting_surfaces"`
	NonLiftingComponents []Equipment        `json:"non_lifting_components"`
}

type Fuselage struct {
	Mass       float64 `json:"mass"`
	Centerline float64 `json:"centerline"`
}

type Surface struct {
	Name                 string   `json:"name"`
	Type                 string   `json:"type"`
	Offset               float64  `json:"offset"`
	Semispan             float64  `json:"semispan"`
	RootChord            float64  `json:"root_chord"`
	TipChord             float64  `json:"tip_chord"`
	CharacteristicLength float64  `json:"characteristic_length"`
	Thickness            float64  `json:"thickness"`
	ThicknessRatio       float64  `json:"thickness_ratio"`
	WettedArea           float64  `json:"wetted_area"`
	Mass                 float64  `json:"mass"`
	RefArea              float64  `json:"ref_area"`
	XfoilData            string   `json:"xfoil_data,omitempty"`
	AOI                  *float64 `json:"aoi,omitempty"`
}

type Equipment struct {
	Name   string  `json:"name"`
	Type   string  `json:"type,omitempty"`
	Offset float64 `json:"offset"`
	Length float64 `json:"length"`
	Mass   float64 `json:"mass"`
}

// New describes an empty project.
func New(name string, centerline, fuselageMass float64) *File {
	return &File{
		ProjectName:          name,
		FlightConditions:     map[string]float64{},
		Fuselage:             Fuselage{Mass: fuselageMass, Centerline: centerline},
		LiftingSurfaces:      []Surface{},
		NonLiftingComponents: []Equipment{},
	}
}

func Read(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return &f, nil
}

func Write(w io.Writer, f *File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(f)
}

// Build constructs a plane from f. Polar data is not loaded; see
// LoadPolars.
func Build(f *File, flight *airframe.Flight) (*airframe.Plane, error) {
	p, err := airframe.NewPlane(f.Fuselage.Centerline, f.Fuselage.Mass, flight)
	if err != nil {
		return nil, err
	}
	if f.ProjectName != "" {
		if err := p.SetProjectName(f.ProjectName); err != nil {
			return nil, err
		}
	}

	for _, s := range f.LiftingSurfaces {
		w, err := airframe.NewWing(airframe.WingParams{
			Name:                 s.Name,
			Mass:                 s.Mass,
			CharacteristicLength: s.CharacteristicLength,
			RefArea:              s.RefArea,
			WettedArea:           s.WettedArea,
			RootChord:            s.RootChord,
			TipChord:             s.TipChord,
			Semispan:             s.Semispan,
			Thickness:            s.Thickness,
			ThicknessRatio:       s.ThicknessRatio,
			AOI:                  s.AOI,
			PolarSource:          s.XfoilData,
		}, flight)
		if err != nil {
			return nil, err
		}
		if err := p.AddComponent(w, s.Offset); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
	}

	for _, e := range f.NonLiftingComponents {
		eq, err := airframe.NewEquipment(e.Name, e.Type, e.Length, e.Mass)
		if err != nil {
			return nil, err
		}
		if err := p.AddEquipment(eq, e.Offset); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return p, nil
}

// Snapshot describes p as a project file. Offsets and lengths come from
// each placement's begin and end.
func Snapshot(p *airframe.Plane) *File {
	f := New(p.ProjectName(), p.Centerline(), p.FuselageMass())
	for _, slot := range []string{airframe.WingsSlot, airframe.TailSlot} {
		pl, ok := p.Layout().Get(slot)
		if !ok {
			continue
		}
		w, ok := pl.Wing()
		if !ok {
			continue
		}
		aoi := w.AOI()
		f.LiftingSurfaces = append(f.LiftingSurfaces, Surface{
			Name:                 slot,
			Type:                 slot,
			Offset:               pl.Begin,
			Semispan:             w.Semispan(),
			RootChord:            w.RootChord(),
			TipChord:             w.TipChord(),
			CharacteristicLength: w.CharacteristicLength(),
			Thickness:            w.Thickness(),
			ThicknessRatio:       w.ThicknessRatio(),
			WettedArea:           w.WettedArea(),
			Mass:                 w.Mass(),
			RefArea:              w.RefArea(),
			XfoilData:            w.PolarSource(),
			AOI:                  &aoi,
		})
	}
	for _, pl := range p.Layout().All() {
		e, ok := pl.Item.(*airframe.Equipment)
		if !ok {
			continue
		}
		f.NonLiftingComponents = append(f.NonLiftingComponents, Equipment{
			Name:   pl.Name,
			Type:   e.Type(),
			Offset: pl.Begin,
			Length: pl.End - pl.Begin,
			Mass:   pl.Mass(),
		})
	}
	return f
}

// LoadPolars loads every surface's polar data concurrently, resolving
// relative sources against baseDir. A surface whose data fails to load is
// left without polars; the failures are returned joined.
func LoadPolars(p *airframe.Plane, l *polar.Loader, baseDir string, lg *log.Logger) error {
	var wings []*airframe.Wing
	for _, pl := range p.Layout().All() {
		if w, ok := pl.Wing(); ok && w.PolarSource() != "" {
			wings = append(wings, w)
		}
	}

	errs := make([]error, len(wings))
	var eg errgroup.Group
	for i, w := range wings {
		eg.Go(func() error {
			if err := w.LoadPolars(l, baseDir); err != nil {
				lg.Warn("polar data unavailable", "surface", w.Name(), "source", w.PolarSource(), "error", err)
				errs[i] = err
				return nil
			}
			lg.Debug("loaded polar data", "surface", w.Name(), "reynolds", w.Polars().Reynolds())
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}

// Load reads the project at path and builds its plane. Polar failures are
// logged and the plane is still returned.
func Load(path string, flight *airframe.Flight, l *polar.Loader, lg *log.Logger) (*airframe.Plane, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, err := Build(f, flight)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.SetLogger(lg)
	if l != nil {
		_ = LoadPolars(p, l, filepath.Dir(path), lg)
	}
	lg.Info("loaded project", "path", path, "name", p.ProjectName(), "components", p.Layout().Len())
	return p, nil
}

// Save writes p to path, replacing any existing file.
func Save(path string, p *airframe.Plane) error {
	return WriteFile(path, Snapshot(p))
}

func WriteFile(path string, f *File) error {
	tmp := path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(fh, f); err != nil {
		fh.Close()
		os.Remove(tmp)
		return err
	}
	if err := fh.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
