package services

import (
	"fmt"
	"testing"

	"slidecanvas/domain/core/entities"

	"github.com/stretchr/testify/assert"
)

func TestSortByConnectionFlow_ChainIgnoresStoreOrder(t *testing.T) {
	a := mustText(t, "A", 0, 0)
	b := mustText(t, "B", 300, 0)
	c := mustText(t, "C", 600, 0)
	conns := []*entities.Connection{mustConn(t, a, b), mustConn(t, b, c)}

	orders := [][]*entities.Node{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}
	for i, nodes := range orders {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got := NewFlowAnalyzer().SortByConnectionFlow(nodes, conns)
			assert.Equal(t, []string{"A", "B", "C"}, ids(got))
		})
	}
}

func TestSortByConnectionFlow_IsolatedCycleKeepsStoreOrder(t *testing.T) {
	a := mustText(t, "A", 500, 0)
	b := mustText(t, "B", 0, 0)
	conns := []*entities.Connection{mustConn(t, a, b), mustConn(t, b, a)}

	got := NewFlowAnalyzer().SortByConnectionFlow([]*entities.Node{a, b}, conns)
	assert.Equal(t, []string{"A", "B"}, ids(got))

	// An independent root comes first; the rootless cycle trails in store order.
	r := mustText(t, "R", 900, 900)
	got = NewFlowAnalyzer().SortByConnectionFlow([]*entities.Node{a, r, b}, conns)
	assert.Equal(t, []string{"R", "A", "B"}, ids(got))
}

func TestSortByConnectionFlow_RootsByPosition(t *testing.T) {
	left := mustText(t, "left", 0, 200)
	top := mustText(t, "top", 400, 0)
	bottom := mustText(t, "bottom", 400, 300)
	child := mustText(t, "child", 800, 0)
	conns := []*entities.Connection{mustConn(t, top, child)}

	got := NewFlowAnalyzer().SortByConnectionFlow([]*entities.Node{child, bottom, top, left}, conns)
	assert.Equal(t, []string{"left", "top", "child", "bottom"}, ids(got))
}

func TestSortByConnectionFlow_DepthFirstPreorder(t *testing.T) {
	root := mustText(t, "root", 0, 0)
	a := mustText(t, "a", 300, 0)
	b := mustText(t, "b", 300, 300)
	a1 := mustText(t, "a1", 600, 0)
	shared := mustText(t, "shared", 900, 0)
	conns := []*entities.Connection{
		mustConn(t, root, a),
		mustConn(t, root, b),
		mustConn(t, a, a1),
		mustConn(t, a1, shared),
		mustConn(t, b, shared),
	}

	got := NewFlowAnalyzer().SortByConnectionFlow([]*entities.Node{shared, b, a1, a, root}, conns)
	assert.Equal(t, []string{"root", "a", "a1", "shared", "b"}, ids(got))
}

func TestSortByConnectionFlow_IgnoresDanglingConnections(t *testing.T) {
	a := mustText(t, "a", 0, 0)
	b := mustText(t, "b", 300, 0)
	ghost := mustText(t, "ghost", 0, 0)

	got := NewFlowAnalyzer().SortByConnectionFlow([]*entities.Node{b, a}, []*entities.Connection{mustConn(t, ghost, b)})
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestAnalyzeConnectionFlow(t *testing.T) {
	root := mustText(t, "root", 0, 0)
	c1 := mustText(t, "c1", 300, 0)
	c2 := mustText(t, "c2", 300, 200)
	c3 := mustText(t, "c3", 300, 400)
	x := mustText(t, "x", 600, 0)
	y := mustText(t, "y", 600, 200)
	z := mustText(t, "z", 600, 400)

	tests := []struct {
		name      string
		nodes     []*entities.Node
		conns     []*entities.Connection
		style     FlowStyle
		cycles    bool
		branching bool
	}{
		{
			name:  "no connections",
			nodes: []*entities.Node{root, c1},
			style: FlowSpatial,
		},
		{
			name:      "root with three children",
			nodes:     []*entities.Node{root, c1, c2, c3},
			conns:     []*entities.Connection{mustConn(t, root, c1), mustConn(t, root, c2), mustConn(t, root, c3)},
			style:     FlowBranching,
			branching: true,
		},
		{
			name:  "sparse single link",
			nodes: []*entities.Node{root, c1, c2, c3, x},
			conns: []*entities.Connection{mustConn(t, root, c1), mustConn(t, c2, c3)},
			style: FlowLinear,
		},
		{
			name:   "cycle",
			nodes:  []*entities.Node{x, y, z},
			conns:  []*entities.Connection{mustConn(t, x, y), mustConn(t, y, z), mustConn(t, z, x)},
			style:  FlowNetwork,
			cycles: true,
		},
		{
			name:  "two nodes, links to unknown nodes ignored",
			nodes: []*entities.Node{x, y},
			conns: []*entities.Connection{mustConn(t, x, y), mustConn(t, y, z), mustConn(t, x, z)},
			style: FlowBranching,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFlowAnalyzer().AnalyzeConnectionFlow(tt.nodes, tt.conns)
			assert.Equal(t, tt.style, got.Style)
			assert.Equal(t, tt.cycles, got.HasCycles)
			assert.Equal(t, tt.branching, got.HasBranching)
		})
	}
}

func TestAnalyzeConnectionFlow_DensityAboveOneIsNetwork(t *testing.T) {
	a := mustText(t, "a", 0, 0)
	b := mustText(t, "b", 300, 0)
	c := mustText(t, "c", 600, 0)
	conns := []*entities.Connection{mustConn(t, a, b), mustConn(t, a, c), mustConn(t, b, c)}

	got := NewFlowAnalyzer().AnalyzeConnectionFlow([]*entities.Node{a, b, c}, conns)
	assert.InDelta(t, 1.5, got.Density, 1e-9)
	assert.False(t, got.HasCycles)
	assert.Equal(t, FlowNetwork, got.Style)
	assert.Equal(t, ComplexityComplex, got.Complexity)
	assert.Equal(t, []string{"a"}, []string{got.Roots[0].String()})
	assert.Len(t, got.Leaves, 1)
}

func TestComplexityIsMonotonic(t *testing.T) {
	rank := map[Complexity]int{ComplexitySimple: 0, ComplexityModerate: 1, ComplexityComplex: 2}
	prev := -1
	for d := 0.0; d <= 3; d += 0.05 {
		r := rank[ComplexityFor(d)]
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, ComplexitySimple, ComplexityFor(0.3))
	assert.Equal(t, ComplexityModerate, ComplexityFor(0.31))
	assert.Equal(t, ComplexityComplex, ComplexityFor(0.71))
}

func TestAnalyzeConnectionFlow_DeepChainDoesNotOverflow(t *testing.T) {
	const n = 20000
	nodes := make([]*entities.Node, n)
	conns := make([]*entities.Connection, 0, n)
	for i := range nodes {
		nodes[i] = mustText(t, fmt.Sprintf("n%d", i), float64(i), 0)
		if i > 0 {
			conns = append(conns, mustConn(t, nodes[i-1], nodes[i]))
		}
	}
	conns = append(conns, mustConn(t, nodes[n-1], nodes[0]))

	a := NewFlowAnalyzer()
	assert.True(t, a.AnalyzeConnectionFlow(nodes, conns).HasCycles)
	assert.Len(t, a.SortByConnectionFlow(nodes, conns), n)
}

func BenchmarkSortByConnectionFlow(b *testing.B) {
	nodes := make([]*entities.Node, 500)
	var conns []*entities.Connection
	for i := range nodes {
		nodes[i] = mustText(b, fmt.Sprintf("n%d", i), float64(i%25)*250, float64(i/25)*150)
		if i > 0 {
			conns = append(conns, mustConn(b, nodes[(i-1)/2], nodes[i]))
		}
	}
	a := NewFlowAnalyzer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.SortByConnectionFlow(nodes, conns)
	}
}
