package probe_test

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oombak/probe"
)

func sampleTree() *probe.InstanceNode {
	adder := &probe.InstanceNode{
		Name:       "adder_inst",
		ModuleName: "adder",
		Signals: []probe.Signal{
			{Name: "a", Type: probe.PortType(probe.DirectionIn, 6)},
			{Name: "b", Type: probe.PortType(probe.DirectionIn, 6)},
			{Name: "c", Type: probe.PortType(probe.DirectionOut, 6)},
			{Name: "d", Type: probe.NetVarType(1)},
		},
	}
	return &probe.InstanceNode{
		Name:       "sample",
		ModuleName: "sample",
		Children:   []*probe.InstanceNode{adder},
		Signals: []probe.Signal{
			{Name: "clk", Type: probe.PortType(probe.DirectionIn, 1)},
			{Name: "rst_n", Type: probe.PortType(probe.DirectionIn, 1)},
			{Name: "in", Type: probe.PortType(probe.DirectionIn, 6)},
			{Name: "out", Type: probe.PortType(probe.DirectionOut, 6)},
			{Name: "c", Type: probe.NetVarType(6)},
		},
	}
}

var _ = Describe("InstanceNode", func() {
	It("resolves a nested dotted path down to a child instance", func() {
		root := sampleTree()
		signal, err := root.GetSignal("sample.adder_inst.d")
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).NotTo(BeNil())
		Expect(signal.Name).To(Equal("d"))
		Expect(signal.BitWidth()).To(Equal(1))
	})

	It("resolves a signal owned directly by the root", func() {
		root := sampleTree()
		signal, err := root.GetSignal("sample.c")
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).NotTo(BeNil())
		Expect(signal.Type.Kind).To(Equal(probe.KindNetVar))
	})

	It("returns nil when the leading segment does not match the root", func() {
		root := sampleTree()
		signal, err := root.GetSignal("other.c")
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).To(BeNil())
	})

	It("returns nil for a path with no dot", func() {
		root := sampleTree()
		signal, err := root.GetSignal("c")
		Expect(err).NotTo(HaveOccurred())
		Expect(signal).To(BeNil())
	})

	It("lists only its own ports via GetPorts", func() {
		root := sampleTree()
		ports := root.GetPorts()
		Expect(ports).To(HaveLen(4))
		for _, p := range ports {
			Expect(p.IsPort()).To(BeTrue())
		}
	})
})

var _ = Describe("Probe", func() {
	var ctrl *gomock.Controller
	var parser *MockParser

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		parser = NewMockParser(ctrl)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("seeds probed points from the top module's own ports", func() {
		parser.EXPECT().
			Parse([]string{"adder.sv", "sample.sv"}, "sample").
			Return(sampleTree(), nil)

		p, err := probe.NewProbe(parser, []string{"adder.sv", "sample.sv"}, "sample")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.TopLevelModuleName()).To(Equal("sample"))
		Expect(p.GetProbedPoints()).To(HaveLen(4))
		Expect(p.GetTopLevelPorts()).To(HaveLen(4))
	})

	It("classifies clk as settable and single-bit", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		single := p.GetSingleBitSettablePoints()
		names := make([]string, len(single))
		for i, pt := range single {
			names[i] = pt.Path
		}
		Expect(names).To(ConsistOf("clk", "rst_n"))
	})

	It("classifies out as gettable but not settable", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		for _, pt := range p.GetProbedPoints() {
			if pt.Path == "out" {
				Expect(pt.IsGettable()).To(BeTrue())
				Expect(pt.IsSettable()).To(BeFalse())
			}
		}
	})

	It("adds and removes a nested signal from the probe set", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		Expect(p.AddSignalToProbe("sample.adder_inst.d")).To(Succeed())
		Expect(p.GetProbedPoints()).To(HaveLen(5))

		Expect(p.RemoveSignalFromProbe("sample.adder_inst.d")).To(Succeed())
		Expect(p.GetProbedPoints()).To(HaveLen(4))
	})

	It("reports an unknown signal on add", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		err = p.AddSignalToProbe("sample.does_not_exist")
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&probe.ErrUnknownSignal{}))
	})

	It("reports an unknown signal on remove", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		err = p.RemoveSignalFromProbe("sample.does_not_exist")
		Expect(err).To(HaveOccurred())
	})

	It("a nested signal added to the probe is never settable", func() {
		parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(sampleTree(), nil)
		p, err := probe.NewProbe(parser, nil, "sample")
		Expect(err).NotTo(HaveOccurred())

		Expect(p.AddSignalToProbe("sample.adder_inst.a")).To(Succeed())
		for _, pt := range p.GetProbedPoints() {
			if pt.Path == "sample.adder_inst.a" {
				Expect(pt.IsSettable()).To(BeFalse())
			}
		}
	})

	It("replaces dots with _DOT_ for generated identifiers", func() {
		pt := probe.ProbePoint{Path: "sample.adder_inst.d"}
		Expect(pt.DotReplacedPath()).To(Equal("sample_DOT_adder_inst_DOT_d"))
	})
})
