package physics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ventsim/internal/drive"
	"github.com/san-kum/ventsim/internal/dynamo"
)

var _ = Describe("Algebraic", func() {
	var (
		w    *drive.Waveform
		peep float64
	)

	BeforeEach(func() {
		grid, err := dynamo.NewTimeGrid(0.01, 20)
		Expect(err).NotTo(HaveOccurred())
		w, err = drive.Generate(drive.DefaultParams(), grid)
		Expect(err).NotTo(HaveOccurred())
		peep = drive.DefaultPEEP
	})

	It("should reduce to the single-compartment pressure for identical intact lungs", func() {
		c := NewCompartment(RightLung, 20, 5, 0)
		res, err := Algebraic(c, c, w, peep)
		Expect(err).NotTo(HaveOccurred())

		single := NewSingleCompartment().Pressure(w.Volume, w.Flow, peep)
		Expect(res.Total).To(HaveLen(len(single)))
		for i := range single {
			Expect(res.Total[i]).To(BeNumerically("~", single[i], 1e-9))
		}
	})

	It("should reduce to the single-compartment pressure with a shared FRC offset", func() {
		c := NewCompartment(RightLung, 20, 5, 2.4)
		res, err := Algebraic(c, c.WithLeak(VolumeFractionLeak{Fraction: 0}), w, peep)
		Expect(err).NotTo(HaveOccurred())

		single := NewSingleCompartment().Pressure(w.Volume, w.Flow, peep)
		for i := range single {
			Expect(res.Total[i]).To(BeNumerically("~", single[i], 1e-9))
		}
	})

	It("should follow the averaged formula exactly", func() {
		right := NewCompartment(RightLung, 25, 6, 1.2)
		left := NewCompartment(LeftLung, 15, 4, 1.0).WithLeak(VolumeFractionLeak{Fraction: 0.4})

		res, err := Algebraic(right, left, w, peep)
		Expect(err).NotTo(HaveOccurred())

		for i := range res.Total {
			vr := 1.2 + w.Volume[i]
			vl := 1.0 + 0.6*w.Volume[i]
			Expect(res.Right.Volume[i]).To(BeNumerically("~", vr, 1e-12))
			Expect(res.Left.Volume[i]).To(BeNumerically("~", vl, 1e-12))

			want := (25*(vr-1.2)+15*(vl-1.0))/2 + (6*res.Right.Flow[i]+4*res.Left.Flow[i])/2 + peep
			Expect(res.Total[i]).To(BeNumerically("~", want, 1e-12))
		}
	})

	It("should pin a fully leaking lung at FRC", func() {
		right := NewCompartment(RightLung, 25, 6, 1.2).WithLeak(VolumeFractionLeak{Fraction: 1})
		res, err := Algebraic(right, NewCompartment(LeftLung, 15, 4, 1.0), w, peep)
		Expect(err).NotTo(HaveOccurred())

		for i := range res.Right.Volume {
			Expect(res.Right.Volume[i]).To(Equal(1.2))
			Expect(res.Right.Flow[i]).To(BeZero())
			Expect(res.Right.LeakFlow[i]).To(Equal(w.Flow[i]))
		}
	})

	It("should allow zero resistance", func() {
		c := NewCompartment(RightLung, 20, 0, 0)
		res, err := Algebraic(c, c, w, peep)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Total[100]).To(BeNumerically("~", 20*w.Volume[100]+peep, 1e-12))
	})

	It("should reject flow-type fistulae", func() {
		c := NewCompartment(RightLung, 20, 5, 0)
		_, err := Algebraic(c.WithLeak(FlowFractionLeak{Fraction: 0.5}), c, w, peep)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("should honour the analytic derivative scheme", func() {
		grid, _ := dynamo.NewTimeGrid(0.01, 20)
		p := drive.DefaultParams()
		p.Derivative = drive.Analytic
		aw, err := drive.Generate(p, grid)
		Expect(err).NotTo(HaveOccurred())

		c := NewCompartment(RightLung, 20, 5, 0.5).WithLeak(VolumeFractionLeak{Fraction: 0.5})
		res, err := Algebraic(c, c, aw, peep)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Right.Flow[0]).To(BeNumerically("~", 0.5*aw.Flow[0], 1e-15))
	})
})
