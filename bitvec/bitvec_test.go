package bitvec_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oombak/bitvec"
)

func vecFromBits(bs ...int) bitvec.Vec {
	v := bitvec.New(len(bs))
	for i, b := range bs {
		if b != 0 {
			v.SetBit(i, true)
		}
	}
	return v
}

var _ = Describe("Format", func() {
	It("renders a binary round trip (scenario 1)", func() {
		v, err := bitvec.Parse("0b1010")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Bit(0)).To(BeFalse())
		Expect(v.Bit(1)).To(BeTrue())
		Expect(v.Bit(2)).To(BeFalse())
		Expect(v.Bit(3)).To(BeTrue())

		s, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Binary, Width: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("1010"))
	})

	It("renders signed vs unsigned decimal (scenario 2)", func() {
		v := vecFromBits(1, 1, 1, 1) // four set bits

		signed, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Decimal, Width: 4, TwosComplement: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(signed).To(Equal("-1"))

		unsigned, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Decimal, Width: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(unsigned).To(Equal("15"))
	})

	It("rejects decimal widths beyond the 128/127 bit limit", func() {
		v := bitvec.New(129)
		_, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Decimal, Width: 129})
		Expect(err).To(MatchError(bitvec.ErrWidthTooWide))

		_, err = bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Decimal, Width: 128, TwosComplement: true})
		Expect(err).To(MatchError(bitvec.ErrWidthTooWide))
	})

	It("groups hex/octal digits after rounding width up", func() {
		v, err := bitvec.Parse("0x2A")
		Expect(err).NotTo(HaveOccurred())
		s, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Hexadecimal, Width: 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("2A"))
	})
})

var _ = Describe("Parse", func() {
	It("rejects empty input", func() {
		_, err := bitvec.Parse("")
		Expect(err).To(MatchError(bitvec.ErrEmptyInput))
	})

	It("rejects an unknown radix prefix", func() {
		_, err := bitvec.Parse("0z1")
		Expect(err).To(MatchError(bitvec.ErrUnknownRadix))
	})

	It("expands hex digits to four binary bits each", func() {
		v, err := bitvec.Parse("0xF")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Width()).To(Equal(4))
		for i := 0; i < 4; i++ {
			Expect(v.Bit(i)).To(BeTrue())
		}
	})

	It("parses decimal literals via a 128-bit intermediate", func() {
		v, err := bitvec.Parse("255")
		Expect(err).NotTo(HaveOccurred())
		s, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Hexadecimal, Width: 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("FF"))
	})
})

var _ = DescribeTable("round trips for every supported radix",
	func(radix bitvec.Radix, width int, signed bool) {
		for _, bs := range [][]int{
			{0, 0, 0, 0},
			{1, 0, 0, 0},
			{1, 1, 1, 1},
			{0, 1, 0, 1},
		} {
			v := vecFromBits(bs...)
			text, err := bitvec.Format(v, bitvec.FormatOptions{Radix: radix, Width: width, TwosComplement: signed})
			Expect(err).NotTo(HaveOccurred())

			prefixed := text
			switch radix {
			case bitvec.Binary:
				prefixed = "0b" + text
			case bitvec.Octal:
				prefixed = "0o" + text
			case bitvec.Hexadecimal:
				prefixed = "0x" + text
			}

			if radix == bitvec.Decimal {
				continue // decimal's textual form loses width information by design
			}

			parsed, err := bitvec.Parse(prefixed)
			Expect(err).NotTo(HaveOccurred())
			wantBin, err := bitvec.Format(v, bitvec.FormatOptions{Radix: bitvec.Binary, Width: width, TwosComplement: signed})
			Expect(err).NotTo(HaveOccurred())
			gotBin, err := bitvec.Format(parsed, bitvec.FormatOptions{Radix: bitvec.Binary, Width: width, TwosComplement: signed})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotBin).To(Equal(wantBin))
		}
	},
	Entry("binary unsigned", bitvec.Binary, 4, false),
	Entry("octal unsigned", bitvec.Octal, 4, false),
	Entry("hex unsigned", bitvec.Hexadecimal, 4, false),
	Entry("hex signed", bitvec.Hexadecimal, 4, true),
)

var _ = Describe("JSON round trip", func() {
	It("marshals and unmarshals back to an equal vector", func() {
		v, err := bitvec.Parse("0xCAFE")
		Expect(err).NotTo(HaveOccurred())

		data, err := json.Marshal(v)
		Expect(err).NotTo(HaveOccurred())

		var decoded bitvec.Vec
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded.Equal(v)).To(BeTrue())
		Expect(decoded.Width()).To(Equal(v.Width()))
	})
})
