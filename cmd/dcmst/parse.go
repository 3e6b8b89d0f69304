package dcmst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Instance is a degree-constrained minimum spanning tree problem: n nodes, a
// degree cap per node, and a symmetric cost matrix with -1 marking absent
// arcs.
type Instance struct {
	Name string
	N    int
	DMax []int
	Dist [][]int
}

// Arcs returns the arc pairs of the instance, each with i < j.
func (inst *Instance) Arcs() [][2]int {
	var arcs [][2]int
	for i := 0; i < inst.N; i++ {
		for j := i + 1; j < inst.N; j++ {
			if inst.Dist[i][j] >= 0 {
				arcs = append(arcs, [2]int{i, j})
			}
		}
	}
	return arcs
}

// TotalCost sums every arc cost, a trivial upper bound on any spanning tree.
func (inst *Instance) TotalCost() int {
	total := 0
	for _, a := range inst.Arcs() {
		total += inst.Dist[a[0]][a[1]]
	}
	return total
}

// ParseInstance reads an instance: the first line holds the node count n,
// the next n lines hold `<1-based id> <maxDegree>` pairs, and every
// remaining line holds a `<from> <to> <cost>` triple with 1-based, distinct
// endpoints. Nodes and arcs may appear in any order; a repeated node or arc
// is an error.
func ParseInstance(name string, r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	next := func() ([]string, bool) {
		for scanner.Scan() {
			lineNo++
			fields := strings.Fields(scanner.Text())
			if len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	fields, ok := next()
	if !ok {
		return nil, fmt.Errorf("%s: empty instance", name)
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("%s:%d: want a single node count, got %q", name, lineNo, strings.Join(fields, " "))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%s:%d: invalid node count %q", name, lineNo, fields[0])
	}

	inst := &Instance{
		Name: name,
		N:    n,
		DMax: make([]int, n),
		Dist: make([][]int, n),
	}
	for i := range inst.Dist {
		inst.Dist[i] = make([]int, n)
		for j := range inst.Dist[i] {
			inst.Dist[i][j] = -1
		}
	}

	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		fields, ok := next()
		if !ok {
			return nil, fmt.Errorf("%s: want %d degree lines, got %d", name, n, i)
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want `<node> <maxDegree>`, got %q", name, lineNo, strings.Join(fields, " "))
		}
		id, err := parseNode(fields[0], n)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("%s:%d: node %d listed twice", name, lineNo, id+1)
		}
		seen[id] = true
		d, err := strconv.Atoi(fields[1])
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%s:%d: invalid degree cap %q", name, lineNo, fields[1])
		}
		inst.DMax[id] = d
	}

	for {
		fields, ok := next()
		if !ok {
			break
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: want `<from> <to> <cost>`, got %q", name, lineNo, strings.Join(fields, " "))
		}
		from, err := parseNode(fields[0], n)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		to, err := parseNode(fields[1], n)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		if from == to {
			return nil, fmt.Errorf("%s:%d: self loop on node %d", name, lineNo, from+1)
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil || cost < 0 {
			return nil, fmt.Errorf("%s:%d: invalid cost %q", name, lineNo, fields[2])
		}
		if inst.Dist[from][to] >= 0 {
			return nil, fmt.Errorf("%s:%d: duplicate arc %d-%d", name, lineNo, from+1, to+1)
		}
		inst.Dist[from][to] = cost
		inst.Dist[to][from] = cost
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return inst, nil
}

func parseNode(field string, n int) (int, error) {
	id, err := strconv.Atoi(field)
	if err != nil || id < 1 || id > n {
		return 0, fmt.Errorf("invalid node %q, want 1..%d", field, n)
	}
	return id - 1, nil
}

// ParseBounds reads a bound table of semicolon-separated `<n>;<upperBound>`
// rows, one per node count. Lines starting with '#' are skipped.
func ParseBounds(r io.Reader) (map[int]int, error) {
	bounds := make(map[int]int)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < 2 {
			return nil, fmt.Errorf("bounds:%d: want `<n>;<upperBound>`, got %q", lineNo, line)
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("bounds:%d: invalid node count %q", lineNo, parts[0])
		}
		ub, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("bounds:%d: invalid bound %q", lineNo, parts[1])
		}
		bounds[n] = ub
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return bounds, nil
}
