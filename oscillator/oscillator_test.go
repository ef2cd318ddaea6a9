package oscillator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oombak/bitvec"
	"github.com/sarchlab/oombak/oscillator"
)

func vec(bit int) bitvec.Vec {
	v := bitvec.New(1)
	if bit != 0 {
		v.SetBit(0, true)
	}
	return v
}

var _ = Describe("Oscillator", func() {
	It("trips high first, then low, advancing by one period each time", func() {
		osc := oscillator.New("clk", 5, 0, vec(0), vec(1))
		Expect(osc.NextTriggerTime()).To(BeEquivalentTo(5))

		g := oscillator.NewGroup()
		g.Insert(osc)

		_, value, ok := g.TryPop(5)
		Expect(ok).To(BeTrue())
		Expect(value.Bit(0)).To(BeTrue()) // high first

		next, ok := g.NextTriggerTime()
		Expect(ok).To(BeTrue())
		Expect(next).To(BeEquivalentTo(10))

		_, value, ok = g.TryPop(10)
		Expect(ok).To(BeTrue())
		Expect(value.Bit(0)).To(BeFalse()) // then low
	})
})

var _ = Describe("Group", func() {
	It("reports no trigger time when empty", func() {
		g := oscillator.NewGroup()
		_, ok := g.NextTriggerTime()
		Expect(ok).To(BeFalse())
	})

	It("orders the head by earliest trigger time", func() {
		g := oscillator.NewGroup()
		g.Insert(oscillator.New("b", 20, 0, vec(0), vec(1)))
		g.Insert(oscillator.New("a", 5, 0, vec(0), vec(1)))

		next, ok := g.NextTriggerTime()
		Expect(ok).To(BeTrue())
		Expect(next).To(BeEquivalentTo(5))
	})

	It("breaks ties on equal trigger time by ascending signal name", func() {
		g := oscillator.NewGroup()
		g.Insert(oscillator.New("zeta", 10, 0, vec(0), vec(1)))
		g.Insert(oscillator.New("alpha", 10, 0, vec(0), vec(1)))
		g.Insert(oscillator.New("mu", 10, 0, vec(0), vec(1)))

		first, _, ok := g.TryPop(10)
		Expect(ok).To(BeTrue())
		Expect(first).To(Equal("alpha"))

		second, _, ok := g.TryPop(10)
		Expect(ok).To(BeTrue())
		Expect(second).To(Equal("mu"))
	})

	It("replaces an existing oscillator on the same signal", func() {
		g := oscillator.NewGroup()
		g.Insert(oscillator.New("clk", 10, 0, vec(0), vec(1)))
		g.Insert(oscillator.New("clk", 3, 0, vec(0), vec(1)))

		next, ok := g.NextTriggerTime()
		Expect(ok).To(BeTrue())
		Expect(next).To(BeEquivalentTo(3))
	})

	It("removes an oscillator by signal name", func() {
		g := oscillator.NewGroup()
		g.Insert(oscillator.New("clk", 5, 0, vec(0), vec(1)))
		g.Remove("clk")

		_, ok := g.NextTriggerTime()
		Expect(ok).To(BeFalse())
	})

	It("does not pop when current time does not match the head", func() {
		g := oscillator.NewGroup()
		g.Insert(oscillator.New("clk", 5, 0, vec(0), vec(1)))

		_, _, ok := g.TryPop(3)
		Expect(ok).To(BeFalse())
	})
})
