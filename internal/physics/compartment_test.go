package physics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ventsim/internal/dynamo"
)

var _ = Describe("Compartment", func() {
	var c Compartment

	BeforeEach(func() {
		c = NewCompartment(RightLung, 25, 6, 2.5)
	})

	It("should validate a healthy lung in both modes", func() {
		Expect(c.ValidateCoupled()).To(Succeed())
		Expect(c.ValidateAlgebraic()).To(Succeed())
	})

	It("should treat a nil leak as intact", func() {
		c.Leak = nil
		Expect(c.ValidateCoupled()).To(Succeed())
		net, leak := c.Flows(10, 2.5)
		Expect(net).To(BeNumerically("~", 10.0/6, 1e-15))
		Expect(leak).To(BeZero())
	})

	DescribeTable("invalid parameters",
		func(mod func(*Compartment)) {
			mod(&c)
			Expect(c.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("zero elastance", func(c *Compartment) { c.E = 0 }),
		Entry("negative resistance", func(c *Compartment) { c.R = -1 }),
		Entry("negative FRC", func(c *Compartment) { c.FRC = -0.1 }),
		Entry("bad fistula", func(c *Compartment) { c.Leak = FlowFractionLeak{Fraction: 2} }),
	)

	It("should require positive resistance only in coupled mode", func() {
		c.R = 0
		Expect(c.ValidateCoupled()).To(MatchError(dynamo.ErrInvalidParameter))
		Expect(c.ValidateAlgebraic()).To(Succeed())
	})

	It("should refuse a volume leak in coupled mode", func() {
		c = c.WithLeak(VolumeFractionLeak{Fraction: 0.2})
		Expect(c.ValidateCoupled()).To(MatchError(ContainSubstring("volume-fraction")))
	})

	It("should refuse a flow leak in algebraic mode", func() {
		c = c.WithLeak(ConductanceLeak{Rf: 50, Active: true})
		Expect(c.ValidateAlgebraic()).To(MatchError(dynamo.ErrInvalidParameter))
		c = c.WithLeak(FlowFractionLeak{Fraction: 0.2})
		Expect(c.ValidateAlgebraic()).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("should start from FRC or empty", func() {
		Expect(c.Initial(InitFRC)).To(Equal(2.5))
		Expect(c.Initial(InitZero)).To(BeZero())
	})

	It("should split base flow into net and leaked parts", func() {
		c = c.WithLeak(ConductanceLeak{Rf: 50, Active: true})
		net, leak := c.Flows(10, 3)
		base := (10 - 25*(3-2.5)) / 6
		Expect(net).To(BeNumerically("~", base-10.0/50, 1e-12))
		Expect(leak).To(BeNumerically("~", 10.0/50, 1e-12))
	})

	It("should expose parameters by name", func() {
		Expect(c.SetParam("e", 30)).To(Succeed())
		Expect(c.SetParam("frc", 1)).To(Succeed())
		Expect(c.GetParams()).To(Equal(map[string]float64{"e": 30, "r": 6, "frc": 1}))
		Expect(c.SetParam("compliance", 1)).To(HaveOccurred())
	})

	It("should parse initial conditions", func() {
		ic, err := ParseInitialCondition("zero")
		Expect(err).NotTo(HaveOccurred())
		Expect(ic).To(Equal(InitZero))
		Expect(ic.String()).To(Equal("zero"))

		_, err = ParseInitialCondition("full")
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})
})

var _ = Describe("SingleCompartment", func() {
	It("should apply the equation of motion sample by sample", func() {
		s := NewSingleCompartment()
		p := s.Pressure(dynamo.Series{0, 0.5, -0.5}, dynamo.Series{1, 0, -1}, 5)
		Expect(p).To(Equal(dynamo.Series{10, 15, -10}))
	})

	It("should reject non-positive elastance", func() {
		Expect(SingleCompartment{E: 0, R: 5}.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
		Expect(SingleCompartment{E: 20, R: 0}.Validate()).To(Succeed())
	})

	It("should only expose e and r", func() {
		s := NewSingleCompartment()
		Expect(s.SetParam("r", 7)).To(Succeed())
		Expect(s.R).To(Equal(7.0))
		Expect(s.SetParam("frc", 1)).To(HaveOccurred())
	})
})
