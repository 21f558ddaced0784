package physics

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ventsim/internal/dynamo"
)

var _ = Describe("Fistula", func() {
	It("should leave flow untouched without a leak", func() {
		Expect(NoLeak{}.Flow(1.5, 20)).To(Equal(1.5))
		Expect(NoLeak{}.Retained()).To(Equal(1.0))
		Expect(NoLeak{}.Validate()).To(Succeed())
	})

	It("should subtract P/Rf while a conductance leak is active", func() {
		leak := ConductanceLeak{Rf: 50, Active: true}
		Expect(leak.Flow(2, 10)).To(BeNumerically("~", 2-10.0/50, 1e-15))
	})

	It("should gate the conductance term off when inactive", func() {
		leak := ConductanceLeak{Rf: 50, Active: false}
		Expect(leak.Flow(2, 10)).To(Equal(2.0))
	})

	It("should accept any resistance on an inactive conductance leak", func() {
		Expect(ConductanceLeak{Rf: 0}.Validate()).To(Succeed())
	})

	It("should reject a non-positive resistance on an active conductance leak", func() {
		Expect(ConductanceLeak{Rf: 0, Active: true}.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
		Expect(ConductanceLeak{Rf: -5, Active: true}.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("should scale flow by the retained fraction", func() {
		Expect(FlowFractionLeak{Fraction: 0.25}.Flow(4, 99)).To(Equal(3.0))
		Expect(FlowFractionLeak{Fraction: 1}.Flow(4, 99)).To(Equal(0.0))
	})

	It("should report the retained volume share", func() {
		Expect(VolumeFractionLeak{Fraction: 0.3}.Retained()).To(BeNumerically("~", 0.7, 1e-15))
	})

	DescribeTable("fraction bounds",
		func(phi float64, valid bool) {
			for _, f := range []Fistula{FlowFractionLeak{Fraction: phi}, VolumeFractionLeak{Fraction: phi}} {
				if valid {
					Expect(f.Validate()).To(Succeed())
				} else {
					Expect(f.Validate()).To(MatchError(dynamo.ErrInvalidParameter))
				}
			}
		},
		Entry("zero", 0.0, true),
		Entry("half", 0.5, true),
		Entry("one", 1.0, true),
		Entry("negative", -0.1, false),
		Entry("above one", 1.1, false),
		Entry("NaN", math.NaN(), false),
	)

	It("should name each variant", func() {
		Expect(NoLeak{}.Kind()).To(Equal(KindNone))
		Expect(ConductanceLeak{}.Kind()).To(Equal(KindConductance))
		Expect(FlowFractionLeak{}.Kind()).To(Equal(KindFlowFraction))
		Expect(VolumeFractionLeak{}.Kind()).To(Equal(KindVolumeFraction))
	})
})
