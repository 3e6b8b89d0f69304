package dcmst_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xs2maverick/flint/cmd/dcmst"
)

func TestDcmst(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dcmst Suite")
}

const pathInstance = `3
1 1
2 2
3 1
1 2 5
2 3 7
`

var _ = Describe("Instance parsing", func() {
	It("parses a valid instance", func() {
		inst, err := dcmst.ParseInstance("path3", strings.NewReader(pathInstance))
		Expect(err).ToNot(HaveOccurred())
		Expect(inst.N).To(Equal(3))
		Expect(inst.DMax).To(Equal([]int{1, 2, 1}))
		Expect(inst.Dist[0][1]).To(Equal(5))
		Expect(inst.Dist[1][0]).To(Equal(5))
		Expect(inst.Dist[1][2]).To(Equal(7))
		Expect(inst.Dist[0][2]).To(Equal(-1))
		Expect(inst.Arcs()).To(Equal([][2]int{{0, 1}, {1, 2}}))
		Expect(inst.TotalCost()).To(Equal(12))
	})
	It("rejects an empty stream", func() {
		_, err := dcmst.ParseInstance("empty", strings.NewReader(""))
		Expect(err).To(HaveOccurred())
	})
	It("rejects a missing degree line", func() {
		_, err := dcmst.ParseInstance("short", strings.NewReader("3\n1 1\n2 2\n"))
		Expect(err).To(HaveOccurred())
	})
	It("rejects a duplicate arc", func() {
		problem := pathInstance + "2 1 4\n"
		_, err := dcmst.ParseInstance("dup", strings.NewReader(problem))
		Expect(err).To(MatchError(ContainSubstring("duplicate arc")))
	})
	It("rejects a self loop", func() {
		problem := pathInstance + "2 2 4\n"
		_, err := dcmst.ParseInstance("loop", strings.NewReader(problem))
		Expect(err).To(MatchError(ContainSubstring("self loop")))
	})
	It("rejects an out-of-range node", func() {
		problem := pathInstance + "1 4 2\n"
		_, err := dcmst.ParseInstance("range", strings.NewReader(problem))
		Expect(err).To(MatchError(ContainSubstring("invalid node")))
	})
})

var _ = Describe("Bound parsing", func() {
	It("parses semicolon rows keyed by node count", func() {
		bounds, err := dcmst.ParseBounds(strings.NewReader("# best known\n3;12\n100;2561\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(bounds).To(Equal(map[int]int{3: 12, 100: 2561}))
	})
	It("rejects a malformed row", func() {
		_, err := dcmst.ParseBounds(strings.NewReader("3-12\n"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Solve", func() {
	// Complete graph on four nodes: arcs 1-2 and 3-4 cost 1, the rest
	// cost 5. Every degree capped at two, so the optimum tree is 7.
	const k4 = `4
1 2
2 2
3 2
4 2
1 2 1
3 4 1
1 3 5
1 4 5
2 3 5
2 4 5
`

	parse := func(name, text string) *dcmst.Instance {
		inst, err := dcmst.ParseInstance(name, strings.NewReader(text))
		Expect(err).ToNot(HaveOccurred())
		return inst
	}

	for _, mode := range []string{dcmst.SearchFirst, dcmst.SearchBotUp, dcmst.SearchDicho} {
		mode := mode
		It("proves the optimum in "+mode+" mode", func() {
			out, err := dcmst.Solve(context.Background(), parse("k4", k4), dcmst.Config{
				SearchMode: mode,
				TimeLimit:  time.Minute,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(out.BestCost).To(Equal(7))
			Expect(out.Result.Complete).To(BeTrue())
			Expect(out.Tree).To(HaveLen(3))
			Expect(out.Solutions).To(BeNumerically(">", 0))
		})
	}

	It("reports unsatisfiability when a cap is zero", func() {
		const capped = `3
1 0
2 2
3 2
1 2 1
2 3 1
1 3 1
`
		out, err := dcmst.Solve(context.Background(), parse("capped", capped), dcmst.Config{
			SearchMode: dcmst.SearchBotUp,
			TimeLimit:  time.Minute,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Solutions).To(BeZero())
		Expect(out.BestCost).To(Equal(-1))
		Expect(out.Result.Complete).To(BeTrue())
	})

	It("stops after root propagation under a zero time limit", func() {
		out, err := dcmst.Solve(context.Background(), parse("k4", k4), dcmst.Config{
			SearchMode: dcmst.SearchBotUp,
			TimeLimit:  0,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Solutions).To(BeZero())
		Expect(out.Nodes).To(BeZero())
		Expect(out.Result.Complete).To(BeFalse())
	})

	It("renders the result line", func() {
		out, err := dcmst.Solve(context.Background(), parse("k4", k4), dcmst.Config{
			SearchMode: dcmst.SearchBotUp,
			TimeLimit:  time.Minute,
		})
		Expect(err).ToNot(HaveOccurred())

		var buf bytes.Buffer
		Expect(dcmst.Report(&buf, out)).To(Succeed())
		line := buf.String()
		Expect(line).To(HavePrefix("k4;"))
		Expect(line).To(HaveSuffix(";7;botup;\n"))
		Expect(strings.Count(line, ";")).To(Equal(7))
	})
})
