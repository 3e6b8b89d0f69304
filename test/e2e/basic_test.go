package e2e

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xs2maverick/flint/cmd/root"
)

// k4Instance is a complete graph on four nodes where arcs 1-2 and 3-4 cost 1
// and every other arc costs 5. With all degrees capped at two the optimal
// spanning tree costs 7.
const k4Instance = `4
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

var _ = Describe("Basic dcmst run", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	runCommand := func(args ...string) error {
		cmd := root.NewRootCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("solves an instance and appends the result line", func() {
		instance := writeFile("k4.txt", k4Instance)
		results := writeFile("results.csv", "")

		Expect(runCommand("dcmst", instance, "--search", "botup", "--out", results)).To(Succeed())

		data, err := os.ReadFile(results)
		Expect(err).ToNot(HaveOccurred())
		line := strings.TrimSpace(string(data))
		fields := strings.Split(line, ";")
		Expect(fields).To(HaveLen(8))
		Expect(fields[0]).To(Equal("k4"))
		Expect(fields[5]).To(Equal("7"))
		Expect(fields[6]).To(Equal("botup"))
		Expect(fields[7]).To(BeEmpty())
	})

	It("uses the bound table to seed the upper bound", func() {
		instance := writeFile("k4.txt", k4Instance)
		bounds := writeFile("bounds.csv", "4;7\n")
		results := writeFile("results.csv", "")

		Expect(runCommand("dcmst", instance,
			"--search", "dicho", "--bounds", bounds, "--out", results)).To(Succeed())

		data, err := os.ReadFile(results)
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSpace(string(data))).To(HaveSuffix(";7;dicho;"))
	})

	It("appends one line per run", func() {
		instance := writeFile("k4.txt", k4Instance)
		results := writeFile("results.csv", "")

		Expect(runCommand("dcmst", instance, "--search", "first", "--out", results)).To(Succeed())
		Expect(runCommand("dcmst", instance, "--search", "botup", "--out", results)).To(Succeed())

		data, err := os.ReadFile(results)
		Expect(err).ToNot(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HaveSuffix(";first;"))
		Expect(lines[1]).To(HaveSuffix(";botup;"))
	})

	It("fails on a missing instance file", func() {
		Expect(runCommand("dcmst", filepath.Join(dir, "nope.txt"))).ToNot(Succeed())
	})

	It("fails on a malformed instance file", func() {
		instance := writeFile("bad.txt", "3\n1 1\n")
		Expect(runCommand("dcmst", instance)).ToNot(Succeed())
	})

	It("rejects an unknown search mode", func() {
		instance := writeFile("k4.txt", k4Instance)
		Expect(runCommand("dcmst", instance, "--search", "sideways")).ToNot(Succeed())
	})
})
