package services

import (
	"sort"

	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
)

// FlowStyle classifies the shape of the connection graph
type FlowStyle string

const (
	FlowSpatial   FlowStyle = "spatial"
	FlowLinear    FlowStyle = "linear"
	FlowBranching FlowStyle = "branching"
	FlowNetwork   FlowStyle = "network"
)

// Complexity buckets the connection density
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

const (
	branchingDensity = 0.5
	networkDensity   = 1.0
	complexDensity   = 0.7
	moderateDensity  = 0.3
)

// ComplexityFor maps a density onto its bucket. The mapping is monotonic.
func ComplexityFor(density float64) Complexity {
	switch {
	case density > complexDensity:
		return ComplexityComplex
	case density > moderateDensity:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}

// FlowAnalysis summarises the connection graph
type FlowAnalysis struct {
	Style           FlowStyle             `json:"style"`
	Density         float64               `json:"density"`
	HasBranching    bool                  `json:"has_branching"`
	HasCycles       bool                  `json:"has_cycles"`
	Complexity      Complexity            `json:"complexity"`
	NodeCount       int                   `json:"node_count"`
	ConnectionCount int                   `json:"connection_count"`
	MaxOutDegree    int                   `json:"max_out_degree"`
	Roots           []valueobjects.NodeID `json:"roots"`
	Leaves          []valueobjects.NodeID `json:"leaves"`
}

// FlowAnalyzer orders nodes by connection flow and classifies the graph.
// Traversals use explicit stacks so deep graphs cannot exhaust the goroutine
// stack.
type FlowAnalyzer struct{}

// NewFlowAnalyzer creates a flow analyzer
func NewFlowAnalyzer() *FlowAnalyzer {
	return &FlowAnalyzer{}
}

// flowGraph is the directed adjacency view of a node set. Connections whose
// endpoints are not in the node set are ignored.
type flowGraph struct {
	nodes    []*entities.Node
	index    map[valueobjects.NodeID]int
	children [][]int
	inDegree []int
	edges    int
}

func buildFlowGraph(nodes []*entities.Node, connections []*entities.Connection) *flowGraph {
	g := &flowGraph{
		nodes:    nodes,
		index:    make(map[valueobjects.NodeID]int, len(nodes)),
		children: make([][]int, len(nodes)),
		inDegree: make([]int, len(nodes)),
	}
	for i, n := range nodes {
		g.index[n.ID()] = i
	}
	for _, c := range connections {
		from, okFrom := g.index[c.StartNodeID()]
		to, okTo := g.index[c.EndNodeID()]
		if !okFrom || !okTo {
			continue
		}
		g.children[from] = append(g.children[from], to)
		g.inDegree[to]++
		g.edges++
	}
	return g
}

// roots returns the zero in-degree nodes sorted by x, then y.
func (g *flowGraph) roots() []int {
	var roots []int
	for i, d := range g.inDegree {
		if d == 0 {
			roots = append(roots, i)
		}
	}
	sort.SliceStable(roots, func(a, b int) bool {
		pa, pb := g.nodes[roots[a]].Position(), g.nodes[roots[b]].Position()
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	return roots
}

// SortByConnectionFlow returns the nodes in presentation order: a depth-first
// walk from each root (left to right, then top to bottom), followed by every
// node the walk never reached in its original order. Nodes on a cycle with no
// root entry point therefore keep store order.
func (a *FlowAnalyzer) SortByConnectionFlow(nodes []*entities.Node, connections []*entities.Connection) []*entities.Node {
	g := buildFlowGraph(nodes, connections)
	visited := make([]bool, len(nodes))
	result := make([]*entities.Node, 0, len(nodes))

	var stack []int
	for _, root := range g.roots() {
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			result = append(result, nodes[cur])

			// Push in reverse so the first child is visited first.
			kids := g.children[cur]
			for i := len(kids) - 1; i >= 0; i-- {
				if !visited[kids[i]] {
					stack = append(stack, kids[i])
				}
			}
		}
	}

	for i, n := range nodes {
		if !visited[i] {
			result = append(result, n)
		}
	}
	return result
}

// AnalyzeConnectionFlow classifies the graph. With no connections the style
// is spatial. Otherwise density above 0.5 or any node with several outgoing
// connections makes it branching, and a cycle or density above 1 makes it a
// network.
func (a *FlowAnalyzer) AnalyzeConnectionFlow(nodes []*entities.Node, connections []*entities.Connection) FlowAnalysis {
	g := buildFlowGraph(nodes, connections)

	analysis := FlowAnalysis{
		NodeCount:       len(nodes),
		ConnectionCount: g.edges,
		Roots:           []valueobjects.NodeID{},
		Leaves:          []valueobjects.NodeID{},
	}
	for _, r := range g.roots() {
		analysis.Roots = append(analysis.Roots, nodes[r].ID())
	}
	for i, kids := range g.children {
		if len(kids) == 0 {
			analysis.Leaves = append(analysis.Leaves, nodes[i].ID())
		}
		if len(kids) > analysis.MaxOutDegree {
			analysis.MaxOutDegree = len(kids)
		}
	}

	if g.edges == 0 {
		analysis.Style = FlowSpatial
		analysis.Complexity = ComplexitySimple
		return analysis
	}

	denominator := len(nodes) - 1
	if denominator < 1 {
		denominator = 1
	}
	analysis.Density = float64(g.edges) / float64(denominator)
	analysis.HasBranching = analysis.MaxOutDegree > 1
	analysis.HasCycles = g.hasCycle()
	analysis.Complexity = ComplexityFor(analysis.Density)

	switch {
	case analysis.HasCycles || analysis.Density > networkDensity:
		analysis.Style = FlowNetwork
	case analysis.Density > branchingDensity || analysis.HasBranching:
		analysis.Style = FlowBranching
	default:
		analysis.Style = FlowLinear
	}
	return analysis
}

const (
	white = iota
	gray
	black
)

// hasCycle runs a three-colour DFS; reaching a gray node is a back edge.
func (g *flowGraph) hasCycle() bool {
	color := make([]int, len(g.nodes))
	type frame struct {
		node int
		next int
	}

	for start := range g.nodes {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := g.children[top.node]
			if top.next == len(kids) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := kids[top.next]
			top.next++

			switch color[child] {
			case gray:
				return true
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}
	return false
}
