package physics

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ventsim/internal/drive"
	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/integrators"
)

func drivingPressure(dt, duration float64) (dynamo.TimeGrid, dynamo.Series) {
	grid, err := dynamo.NewTimeGrid(dt, duration)
	Expect(err).NotTo(HaveOccurred())
	w, err := drive.Generate(drive.DefaultParams(), grid)
	Expect(err).NotTo(HaveOccurred())
	return grid, NewSingleCompartment().Pressure(w.Volume, w.Flow, drive.DefaultPEEP)
}

func integrate(m *TwoLung, ic InitialCondition, grid dynamo.TimeGrid, p dynamo.Series) *dynamo.Trajectory {
	traj, err := dynamo.New(m, integrators.NewEuler()).Run(context.Background(), m.InitialState(ic), grid, dynamo.Sampled{p})
	Expect(err).NotTo(HaveOccurred())
	return traj
}

// independent single-compartment Euler integration
func eulerAlone(c Compartment, v0 float64, p dynamo.Series, dt float64) dynamo.Series {
	v := make(dynamo.Series, len(p))
	v[0] = v0
	for i := 1; i < len(p); i++ {
		dv := (p[i] - c.E*(v[i-1]-c.FRC)) / c.R
		v[i] = v[i-1] + dv*dt
	}
	return v
}

var _ = Describe("TwoLung", func() {
	var (
		grid  dynamo.TimeGrid
		p     dynamo.Series
		right Compartment
		left  Compartment
	)

	BeforeEach(func() {
		grid, p = drivingPressure(0.01, 20)
		right = NewCompartment(RightLung, 25, 6, 1.2)
		left = NewCompartment(LeftLung, 15, 4, 1.0)
	})

	It("should reject compartments that cannot be integrated", func() {
		_, err := NewTwoLung(right.WithLeak(VolumeFractionLeak{Fraction: 0.1}), left)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))

		left.R = 0
		_, err = NewTwoLung(right, left)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("should reduce to two independent integrations without a leak", func() {
		m, err := NewTwoLung(right, left)
		Expect(err).NotTo(HaveOccurred())

		traj := integrate(m, InitFRC, grid, p)
		vr, vl := traj.Component(0), traj.Component(1)
		wantR := eulerAlone(right, right.FRC, p, grid.Dt)
		wantL := eulerAlone(left, left.FRC, p, grid.Dt)

		Expect(vr).To(HaveLen(grid.SampleCount()))
		for i := range vr {
			Expect(vr[i]).To(BeNumerically("~", wantR[i], 1e-12))
			Expect(vl[i]).To(BeNumerically("~", wantL[i], 1e-12))
		}
	})

	It("should match a zero flow fraction and an inactive conductance leak to no leak", func() {
		base, _ := NewTwoLung(right, left)
		want := integrate(base, InitFRC, grid, p).Component(0)

		for _, leak := range []Fistula{FlowFractionLeak{Fraction: 0}, ConductanceLeak{Rf: 50, Active: false}} {
			m, err := NewTwoLung(right.WithLeak(leak), left)
			Expect(err).NotTo(HaveOccurred())
			Expect(integrate(m, InitFRC, grid, p).Component(0)).To(Equal(want))
		}
	})

	It("should keep identical lungs identical", func() {
		m, err := NewTwoLung(NewCompartment(RightLung, 20, 5, 1), NewCompartment(LeftLung, 20, 5, 1))
		Expect(err).NotTo(HaveOccurred())

		traj := integrate(m, InitZero, grid, p)
		Expect(traj.Component(0)).To(Equal(traj.Component(1)))
	})

	DescribeTable("a full flow-fraction leak pins the lung at its initial volume",
		func(ic InitialCondition, want float64) {
			m, err := NewTwoLung(right.WithLeak(FlowFractionLeak{Fraction: 1}), left)
			Expect(err).NotTo(HaveOccurred())

			for _, v := range integrate(m, ic, grid, p).Component(0) {
				Expect(v).To(Equal(want))
			}
		},
		Entry("from FRC", InitFRC, 1.2),
		Entry("from empty", InitZero, 0.0),
	)

	It("should lose volume through an active conductance leak", func() {
		intact, _ := NewTwoLung(right, left)
		leaky, _ := NewTwoLung(right.WithLeak(ConductanceLeak{Rf: 50, Active: true}), left)

		vi := integrate(intact, InitFRC, grid, p).Component(0)
		vl := integrate(leaky, InitFRC, grid, p).Component(0)

		// the leak draws P/Rf with mean P = PEEP > 0, shifting the mean volume down
		var sumIntact, sumLeaky float64
		for i := range vi {
			sumIntact += vi[i]
			sumLeaky += vl[i]
		}
		Expect(sumLeaky).To(BeNumerically("<", sumIntact))
	})

	It("should converge when dt is halved", func() {
		m, _ := NewTwoLung(right.WithLeak(ConductanceLeak{Rf: 50, Active: true}), left)

		coarseGrid, coarseP := drivingPressure(0.01, 10)
		fineGrid, fineP := drivingPressure(0.005, 10)
		coarse := integrate(m, InitFRC, coarseGrid, coarseP)
		fine := integrate(m, InitFRC, fineGrid, fineP)

		for i := range coarse.States {
			for k := 0; k < 2; k++ {
				Expect(coarse.States[i][k]).To(BeNumerically("~", fine.States[2*i][k], 0.02))
			}
		}
	})

	It("should rebuild flows consistent with the Euler steps", func() {
		m, _ := NewTwoLung(right.WithLeak(ConductanceLeak{Rf: 50, Active: true}), left)
		traj := integrate(m, InitFRC, grid, p)
		rt, lt := m.Traces(traj, p, grid.Dt)

		for i := 1; i < grid.SampleCount(); i++ {
			Expect(rt.Flow[i]).To(BeNumerically("~", (rt.Volume[i]-rt.Volume[i-1])/grid.Dt, 1e-9))
			Expect(rt.LeakFlow[i]).To(BeNumerically("~", p[i]/50, 1e-12))
			Expect(lt.LeakFlow[i]).To(BeZero())
			Expect(rt.Elastic[i]).To(BeNumerically("~", 25*(rt.Volume[i]-1.2), 1e-12))
		}
		Expect(rt.Leaked).To(BeNumerically(">", 0))
		Expect(lt.Leaked).To(BeZero())
	})
})
