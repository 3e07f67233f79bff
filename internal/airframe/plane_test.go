package airframe_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stabcalc/internal/aero"
	"github.com/san-kum/stabcalc/internal/airframe"
	"github.com/san-kum/stabcalc/internal/polar"
)

const tol = 1e-6

func newSurface(name string, chord, semispan, mass float64) *airframe.Wing {
	w, err := airframe.NewWing(airframe.WingParams{
		Name:                 name,
		Mass:                 mass,
		CharacteristicLength: chord,
		RootChord:            chord,
		Semispan:             semispan,
		ThicknessRatio:       0.12,
	}, nil)
	Expect(err).NotTo(HaveOccurred())
	return w
}

// linearPolars has Cl = 0.1·aoa at two Reynolds numbers.
func linearPolars() *polar.Set {
	s := polar.NewSet()
	for _, re := range []float64{1e5, 3e5} {
		cl := make(map[float64]float64)
		cd := make(map[float64]float64)
		cm := make(map[float64]float64)
		for _, a := range polar.CanonicalGrid {
			cl[a] = 0.1 * a
			cd[a] = 0.01
			cm[a] = -0.05
		}
		s.Cl[re], s.Cd[re], s.Cm[re] = cl, cd, cm
	}
	return s
}

var _ = Describe("Plane", func() {
	var (
		flight  *airframe.Flight
		plane   *airframe.Plane
		battery *airframe.Equipment
	)

	build := func(fuselageMass float64) {
		var err error
		flight = airframe.NewFlight()
		plane, err = airframe.NewPlane(1.10, fuselageMass, flight)
		Expect(err).NotTo(HaveOccurred())
		Expect(plane.AddComponent(newSurface(airframe.WingsSlot, 0.25, 0.6, 0.3), 0.30)).To(Succeed())
		Expect(plane.AddComponent(newSurface(airframe.TailSlot, 0.15, 0.2, 0.05), 0.95)).To(Succeed())
		battery, err = airframe.NewEquipment("battery", "lipo", 0.1, 1.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(plane.AddEquipment(battery, 0.0)).To(Succeed())
	}

	placement := func(name string) *airframe.Placement {
		pl, ok := plane.Layout().Get(name)
		Expect(ok).To(BeTrue())
		return pl
	}

	BeforeEach(func() { build(0.2) })

	Describe("construction", func() {
		It("rejects a non-positive centerline or fuselage mass", func() {
			_, err := airframe.NewPlane(0, 1, nil)
			Expect(err).To(MatchError(airframe.ErrInvalidParams))
			_, err = airframe.NewPlane(1, 0, nil)
			Expect(err).To(MatchError(airframe.ErrInvalidParams))
		})

		It("rejects a non-finite centerline or fuselage mass", func() {
			_, err := airframe.NewPlane(math.NaN(), 1, nil)
			Expect(err).To(MatchError(airframe.ErrInvalidParams))
			_, err = airframe.NewPlane(math.Inf(1), 1, nil)
			Expect(err).To(MatchError(airframe.ErrInvalidParams))
			_, err = airframe.NewPlane(1, math.NaN(), nil)
			Expect(err).To(MatchError(airframe.ErrInvalidParams))
		})

		It("keeps insertion order", func() {
			Expect(plane.Layout().Names()).To(Equal([]string{"wings", "htail", "battery"}))
		})
	})

	Describe("placement", func() {
		It("tracks total mass", func() {
			Expect(plane.TotalMass()).To(BeNumerically("~", 0.2+0.3+0.05+1.0, tol))
		})

		It("computes the end from the footprint", func() {
			Expect(placement("wings").End).To(BeNumerically("~", 0.55, tol))
			Expect(placement("battery").End).To(BeNumerically("~", 0.1, tol))
		})

		It("rejects an item that would overhang the centerline", func() {
			servo, _ := airframe.NewEquipment("servo", "", 0.1, 0.02)
			Expect(plane.AddEquipment(servo, 1.05)).To(MatchError(airframe.ErrOutOfBounds))
			Expect(plane.AddEquipment(servo, -0.01)).To(MatchError(airframe.ErrOutOfBounds))
			Expect(plane.Layout().Len()).To(Equal(3))
			Expect(plane.TotalMass()).To(BeNumerically("~", 1.55, tol))
		})

		DescribeTable("rejects a non-finite offset",
			func(offset float64) {
				servo, _ := airframe.NewEquipment("servo", "", 0.1, 0.02)
				Expect(plane.AddEquipment(servo, offset)).To(MatchError(airframe.ErrOutOfBounds))
				Expect(plane.Layout().Len()).To(Equal(3))
				Expect(plane.TotalMass()).To(BeNumerically("~", 1.55, tol))
			},
			Entry("NaN", math.NaN()),
			Entry("Inf", math.Inf(1)),
			Entry("-Inf", math.Inf(-1)),
		)

		It("rejects duplicate names", func() {
			dup, _ := airframe.NewEquipment("battery", "", 0.05, 0.5)
			Expect(plane.AddEquipment(dup, 0.5)).To(MatchError(airframe.ErrNameConflict))
			Expect(plane.TotalMass()).To(BeNumerically("~", 1.55, tol))
		})

		It("keeps lifting surfaces in the reserved slots", func() {
			canard := newSurface("canard", 0.1, 0.2, 0.05)
			Expect(plane.AddComponent(canard, 0.1)).To(MatchError(airframe.ErrReservedSlot))
			ballast, _ := airframe.NewEquipment("wings", "", 0.05, 0.5)
			err := plane.AddEquipment(ballast, 0.5)
			Expect(err).To(MatchError(airframe.ErrReservedSlot))
			Expect(err).To(MatchError(airframe.ErrNameConflict))
		})

		It("binds placed wings to the plane's flight", func() {
			_, w, ok := plane.Wings()
			Expect(ok).To(BeTrue())
			Expect(w.Flight()).To(BeIdenticalTo(flight))
		})

		It("removes items and their mass", func() {
			Expect(plane.RemoveComponent("battery")).To(Succeed())
			Expect(plane.TotalMass()).To(BeNumerically("~", 0.55, tol))
			Expect(plane.RemoveComponent("battery")).To(MatchError(airframe.ErrUnknownComponent))
		})
	})

	Describe("relocation", func() {
		It("moves aft by a fraction of the centerline", func() {
			Expect(plane.MoveAft("battery")).To(Succeed())
			Expect(placement("battery").Begin).To(BeNumerically("~", 0.0275, tol))
			Expect(placement("battery").End).To(BeNumerically("~", 0.1275, tol))
		})

		It("refuses to move past the nose", func() {
			Expect(plane.MoveFore("battery")).To(MatchError(airframe.ErrOutOfBounds))
			Expect(placement("battery").Begin).To(BeNumerically("==", 0))
		})

		It("refuses to move past the end by any epsilon", func() {
			before := *placement("htail")
			Expect(plane.MoveComponent("htail", 0.001)).To(MatchError(airframe.ErrOutOfBounds))
			Expect(placement("htail").Begin).To(Equal(before.Begin))
			Expect(placement("htail").End).To(Equal(before.End))
		})

		DescribeTable("refuses a non-finite distance",
			func(distance float64) {
				before := *placement("battery")
				Expect(plane.MoveComponent("battery", distance)).To(MatchError(airframe.ErrOutOfBounds))
				Expect(placement("battery").Begin).To(Equal(before.Begin))
				Expect(placement("battery").End).To(Equal(before.End))
			},
			Entry("NaN", math.NaN()),
			Entry("Inf", math.Inf(1)),
			Entry("-Inf", math.Inf(-1)),
		)
	})

	Describe("amendment", func() {
		It("leaves the placement untouched when tip chord exceeds root chord", func() {
			before := *placement("wings")
			mass := plane.TotalMass()
			err := plane.Amend("wings", airframe.Amendment{
				airframe.FieldMass:     "0.9",
				airframe.FieldOffset:   "0.2",
				airframe.FieldTipChord: "0.3",
			})
			Expect(err).To(MatchError(airframe.ErrFormValidation))
			var fe *airframe.FieldError
			Expect(err).To(BeAssignableToTypeOf(fe))
			Expect(err.(*airframe.FieldError).Field).To(Equal(airframe.FieldTipChord))

			after := placement("wings")
			Expect(after.Begin).To(Equal(before.Begin))
			Expect(after.End).To(Equal(before.End))
			Expect(after.Mass()).To(Equal(before.Mass()))
			Expect(plane.TotalMass()).To(Equal(mass))
		})

		It("rejects malformed numbers", func() {
			err := plane.Amend("battery", airframe.Amendment{airframe.FieldMass: "heavy"})
			Expect(err).To(MatchError(airframe.ErrFormValidation))
		})

		DescribeTable("rejects non-finite numbers without touching the placement",
			func(name string, field airframe.Field, raw string) {
				before := *placement(name)
				mass := plane.TotalMass()
				err := plane.Amend(name, airframe.Amendment{field: raw})
				Expect(err).To(MatchError(airframe.ErrFormValidation))
				Expect(err.(*airframe.FieldError).Field).To(Equal(field))
				Expect(placement(name).Begin).To(Equal(before.Begin))
				Expect(placement(name).End).To(Equal(before.End))
				Expect(plane.TotalMass()).To(Equal(mass))
			},
			Entry("NaN offset", "battery", airframe.FieldOffset, "NaN"),
			Entry("Inf offset", "battery", airframe.FieldOffset, "Inf"),
			Entry("-Inf offset", "battery", airframe.FieldOffset, "-Inf"),
			Entry("NaN mass", "battery", airframe.FieldMass, "NaN"),
			Entry("Inf mass", "battery", airframe.FieldMass, "Inf"),
			Entry("NaN width", "battery", airframe.FieldWidth, "NaN"),
			Entry("NaN root chord", "wings", airframe.FieldRootChord, "NaN"),
			Entry("-Inf tip chord", "wings", airframe.FieldTipChord, "-Inf"),
			Entry("Inf semispan", "wings", airframe.FieldSemispan, "Inf"),
			Entry("NaN aoi", "wings", airframe.FieldAOI, "NaN"),
		)

		It("rejects a tip chord that is not positive", func() {
			_, w, _ := plane.Wings()
			for _, raw := range []string{"0", "-0.1"} {
				err := plane.Amend("wings", airframe.Amendment{airframe.FieldTipChord: raw})
				Expect(err).To(MatchError(airframe.ErrFormValidation))
				Expect(err.(*airframe.FieldError).Field).To(Equal(airframe.FieldTipChord))
			}
			Expect(w.TipChord()).To(BeNumerically("~", 0.25, tol))
		})

		It("rejects non-positive mass and width", func() {
			Expect(plane.Amend("battery", airframe.Amendment{airframe.FieldMass: "0"})).
				To(MatchError(airframe.ErrFormValidation))
			Expect(plane.Amend("battery", airframe.Amendment{airframe.FieldWidth: "-1"})).
				To(MatchError(airframe.ErrFormValidation))
		})

		It("rejects a width that overhangs the centerline", func() {
			Expect(plane.Amend("battery", airframe.Amendment{airframe.FieldWidth: "1.2"})).
				To(MatchError(airframe.ErrFormValidation))
			Expect(placement("battery").End).To(BeNumerically("~", 0.1, tol))
		})

		It("applies mass, width and offset together", func() {
			Expect(plane.Amend("battery", airframe.Amendment{
				airframe.FieldMass:   "2.0",
				airframe.FieldWidth:  "0.15",
				airframe.FieldOffset: "0.6",
			})).To(Succeed())
			pl := placement("battery")
			Expect(pl.Begin).To(BeNumerically("~", 0.6, tol))
			Expect(pl.End).To(BeNumerically("~", 0.75, tol))
			Expect(plane.TotalMass()).To(BeNumerically("~", 2.55, tol))
		})

		It("ignores fields the variant does not accept", func() {
			Expect(plane.Amend("battery", airframe.Amendment{airframe.FieldSemispan: "3"})).To(Succeed())
			Expect(placement("battery").End).To(BeNumerically("~", 0.1, tol))
		})

		It("resizes a wing from its root chord", func() {
			Expect(plane.Amend("wings", airframe.Amendment{
				airframe.FieldRootChord: "0.3",
				airframe.FieldTipChord:  "0.2",
			})).To(Succeed())
			_, w, _ := plane.Wings()
			Expect(placement("wings").End).To(BeNumerically("~", 0.6, tol))
			Expect(w.TipChord()).To(BeNumerically("~", 0.2, tol))
		})

		It("re-derives default areas from the amended planform", func() {
			Expect(plane.Amend("wings", airframe.Amendment{
				airframe.FieldRootChord: "0.3",
				airframe.FieldTipChord:  "0.2",
				airframe.FieldSemispan:  "0.8",
			})).To(Succeed())
			_, w, _ := plane.Wings()
			Expect(w.Area()).To(BeNumerically("~", 0.4, tol))
			Expect(w.RefArea()).To(BeNumerically("~", w.Area(), tol))
			Expect(w.WettedArea()).To(BeNumerically("~", 2*w.Area(), tol))
		})

		It("keeps an amended wetted area through later planform changes", func() {
			Expect(plane.Amend("wings", airframe.Amendment{airframe.FieldWettedArea: "0.5"})).To(Succeed())
			Expect(plane.Amend("wings", airframe.Amendment{airframe.FieldSemispan: "1.0"})).To(Succeed())
			_, w, _ := plane.Wings()
			Expect(w.WettedArea()).To(BeNumerically("~", 0.5, tol))
			Expect(w.RefArea()).To(BeNumerically("~", 0.5, tol))
		})

		It("renames equipment and keeps its position in the layout", func() {
			Expect(plane.Amend("battery", airframe.Amendment{airframe.FieldName: "pack"})).To(Succeed())
			Expect(plane.Layout().Names()).To(Equal([]string{"wings", "htail", "pack"}))
			_, ok := plane.Layout().Get("battery")
			Expect(ok).To(BeFalse())
		})

		It("refuses to rename a reserved slot to a free name", func() {
			err := plane.Amend("htail", airframe.Amendment{airframe.FieldName: "elevator"})
			Expect(err).To(MatchError(airframe.ErrReservedSlot))
			Expect(err).To(MatchError(airframe.ErrNameConflict))
			_, ok := plane.Layout().Get("htail")
			Expect(ok).To(BeTrue())
		})

		It("refuses to rename onto an existing name", func() {
			Expect(plane.Amend("wings", airframe.Amendment{airframe.FieldName: "htail"})).
				To(MatchError(airframe.ErrNameConflict))
		})

		It("clears loaded polars when the polar source changes", func() {
			_, w, _ := plane.Wings()
			w.SetPolars(linearPolars())
			Expect(plane.Amend("wings", airframe.Amendment{airframe.FieldXfoilData: "polars/other"})).To(Succeed())
			Expect(w.HasPolars()).To(BeFalse())
			Expect(w.PolarSource()).To(Equal("polars/other"))
		})

		It("reports unknown components", func() {
			Expect(plane.Amend("rudder", airframe.Amendment{})).To(MatchError(airframe.ErrUnknownComponent))
		})
	})

	Describe("stability", func() {
		It("computes the geometric neutral point", func() {
			np, ok := plane.NeutralPoint()
			Expect(ok).To(BeTrue())
			Expect(np).To(BeNumerically("~", 0.395833, 1e-5))
		})

		It("includes the fuselage in the CG", func() {
			Expect(plane.CG()).To(BeNumerically("~", 0.33875/1.55, tol))
		})

		DescribeTable("verdict by fuselage mass",
			func(fuselage float64, want airframe.Verdict) {
				build(fuselage)
				Expect(plane.Verdict()).To(Equal(want))
			},
			Entry("light fuselage", 0.2, airframe.Stable),
			Entry("1 kg fuselage", 1.0, airframe.Stable),
			Entry("heavy fuselage", 3.0, airframe.Unstable),
		)

		It("is undecided without a tail", func() {
			Expect(plane.RemoveComponent("htail")).To(Succeed())
			Expect(plane.Verdict()).To(Equal(airframe.Undecided))
			_, ok := plane.StaticMargin()
			Expect(ok).To(BeFalse())
		})

		It("needs polars and airspeed for the polar neutral point", func() {
			_, ok := plane.NeutralPointPolar()
			Expect(ok).To(BeFalse())

			_, w, _ := plane.Wings()
			_, t, _ := plane.Tail()
			w.SetPolars(linearPolars())
			t.SetPolars(linearPolars())
			_, ok = plane.NeutralPointPolar()
			Expect(ok).To(BeFalse())

			flight.Airspeed = 10
			np, ok := plane.NeutralPointPolar()
			Expect(ok).To(BeTrue())
			// 0.30 + AC 0.0625 + 0.1·0.9·0.06·0.625/(0.3·0.1)
			Expect(np).To(BeNumerically("~", 0.475, 1e-4))
		})

		It("signs the gust moment by its side of the CG", func() {
			Expect(plane.GustMoment()).To(BeZero())
			plane.SetGust(0.8, 1.0)
			Expect(plane.GustMoment()).To(BeNumerically("~", plane.CG()-0.8, tol))
			Expect(plane.TotalMoment()).To(BeNumerically("<", 0))
			plane.ClearGust()
			Expect(plane.Gust()).To(BeNil())
		})

		It("pitches the nose down when lift acts aft of the CG", func() {
			flight.Airspeed = 12
			Expect(plane.WingMoment()).To(BeNumerically(">", 0))
			Expect(plane.TotalMoment()).To(BeNumerically("<", 0))
			Expect(plane.AngularAcceleration()).To(BeNumerically("<", 0))
		})
	})

	Describe("tick", func() {
		It("accelerates from rest under thrust", func() {
			plane.SetThrust(2)
			plane.Tick()
			Expect(flight.Airspeed).To(BeNumerically("~", 2/1.55*airframe.TickInterval, tol))
			Expect(flight.Pitch).To(BeZero())
		})

		It("never reverses", func() {
			plane.Tick()
			Expect(flight.Airspeed).To(BeZero())
		})

		It("loses airspeed to drag without thrust", func() {
			flight.Airspeed = 15
			plane.Tick()
			Expect(flight.Airspeed).To(BeNumerically("<", 15))
			Expect(plane.AngularVelocity()).NotTo(BeZero())
		})
	})

	Describe("clone", func() {
		It("is independent of the original", func() {
			_, w, _ := plane.Wings()
			w.SetPolars(linearPolars())
			c := plane.Clone()
			c.Flight().Airspeed = 20
			Expect(c.MoveAft("battery")).To(Succeed())
			Expect(flight.Airspeed).To(BeZero())
			Expect(placement("battery").Begin).To(BeNumerically("==", 0))

			_, cw, _ := c.Wings()
			Expect(cw).NotTo(BeIdenticalTo(w))
			Expect(cw.Flight()).To(BeIdenticalTo(c.Flight()))
			Expect(cw.HasPolars()).To(BeTrue())
			Expect(cw.Polars().Cl[1e5][aero.RoundAOA(3)]).To(BeNumerically("~", 0.3, tol))
		})
	})

	Describe("global parameters", func() {
		It("keeps total mass consistent with the fuselage", func() {
			Expect(plane.SetFuselageMass(0.7)).To(Succeed())
			Expect(plane.TotalMass()).To(BeNumerically("~", 2.05, tol))
			Expect(plane.SetFuselageMass(0)).To(MatchError(airframe.ErrInvalidParams))
			Expect(plane.SetFuselageMass(math.NaN())).To(MatchError(airframe.ErrInvalidParams))
			Expect(plane.TotalMass()).To(BeNumerically("~", 2.05, tol))
		})

		It("refuses to shorten the centerline under a placed item", func() {
			Expect(plane.SetCenterline(1.0)).To(MatchError(airframe.ErrOutOfBounds))
			Expect(plane.SetCenterline(1.5)).To(Succeed())
			Expect(plane.Centerline()).To(Equal(1.5))
		})

		It("requires a project name", func() {
			Expect(plane.SetProjectName("")).To(MatchError(airframe.ErrInvalidParams))
			Expect(plane.SetProjectName("glider")).To(Succeed())
			Expect(plane.ProjectName()).To(Equal("glider"))
		})
	})
})
