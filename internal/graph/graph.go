package graph

import (
	"fmt"
	"sort"
	"strings"

	"arena/internal/statement"
)

// Node represents a statement in the dependency graph.
type Node struct {
	Statement statement.Statement
}

// Edge points from a consuming statement to the statement it consumes.
type Edge struct {
	From int // consumer position
	To   int // producer position
	Kind RelationKind
}

// Graph is the data-dependency DAG of a sequence specification.
type Graph struct {
	Nodes    map[int]*Node
	Edges    []Edge
	Problems []Problem

	order []int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int]*Node),
		Edges: []Edge{},
	}
}

// FromSpec builds and links the graph of spec.
func FromSpec(spec *statement.SequenceSpecification) *Graph {
	g := NewGraph()
	for _, st := range spec.Statements {
		g.AddStatement(st)
	}
	g.LinkRelations()
	return g
}

// AddStatement adds a statement as a node, keyed by its position.
func (g *Graph) AddStatement(st statement.Statement) {
	if st == nil {
		return
	}
	pos := st.Position()
	if _, dup := g.Nodes[pos]; dup {
		g.Problems = append(g.Problems, Problem{Position: pos, Reason: ReasonDuplicateSlot})
		return
	}
	g.Nodes[pos] = &Node{Statement: st}
	g.order = append(g.order, pos)
}

// LinkRelations derives edges from statement inputs and records problems for
// inputs that are unknown or appear later in program order.
func (g *Graph) LinkRelations() {
	g.Edges = []Edge{}
	for _, pos := range g.order {
		st := g.Nodes[pos].Statement
		for _, rel := range relations(st) {
			if rel.input == nil {
				g.Problems = append(g.Problems, Problem{Position: pos, Reason: ReasonMissingInput})
				continue
			}
			to := rel.input.Position()
			if _, ok := g.Nodes[to]; !ok {
				g.Problems = append(g.Problems, Problem{Position: pos, Input: to, Reason: ReasonMissingInput})
				continue
			}
			if to >= pos {
				g.Problems = append(g.Problems, Problem{Position: pos, Input: to, Reason: ReasonForwardInput})
			}
			g.Edges = append(g.Edges, Edge{From: pos, To: to, Kind: rel.kind})
		}
		if needsMember(st) {
			g.Problems = append(g.Problems, Problem{Position: pos, Reason: ReasonMissingMember})
		}
	}
	if g.hasCycle() {
		g.Problems = append(g.Problems, Problem{Reason: ReasonCycle})
	}
}

// Validate returns an error describing the first structural problem.
func (g *Graph) Validate() error {
	if len(g.Problems) == 0 {
		return nil
	}
	p := g.Problems[0]
	return fmt.Errorf("invalid statement graph: %s at position %d (input %d), problems: %s",
		p.Reason, p.Position, p.Input, g.problemSummary())
}

// problemSummary renders ProblemCounts as reason=count pairs sorted by reason.
func (g *Graph) problemSummary() string {
	counts := g.ProblemCounts()
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", r, counts[ProblemReason(r)])
	}
	return strings.Join(parts, " ")
}

func (g *Graph) hasCycle() bool {
	const (
		white = iota
		grey
		black
	)
	color := make(map[int]int, len(g.Nodes))
	adj := make(map[int][]int)
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	var visit func(int) bool
	visit = func(n int) bool {
		color[n] = grey
		for _, m := range adj[n] {
			switch color[m] {
			case grey:
				return true
			case white:
				if visit(m) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}
	for _, pos := range g.order {
		if color[pos] == white && visit(pos) {
			return true
		}
	}
	return false
}

type relation struct {
	input statement.Statement
	kind  RelationKind
}

func relations(st statement.Statement) []relation {
	var out []relation
	switch s := st.(type) {
	case *statement.Value:
		if s.AliasOf != nil {
			out = append(out, relation{s.AliasOf, RelationAliases})
		}
	case *statement.ConstructorCall:
		for _, a := range s.Args {
			out = append(out, relation{a, RelationConsumes})
		}
	case *statement.MethodCall:
		if s.Receiver != nil {
			out = append(out, relation{s.Receiver, RelationReceiver})
		}
		for _, a := range s.Args {
			out = append(out, relation{a, RelationConsumes})
		}
	case *statement.ArraySet:
		out = append(out, relation{s.Array, RelationConsumes}, relation{s.Value, RelationElement})
	}
	return out
}

func needsMember(st statement.Statement) bool {
	switch s := st.(type) {
	case *statement.ConstructorCall:
		return !s.ClassUnderTest && s.Member == nil
	case *statement.MethodCall:
		return !s.ClassUnderTest && s.Member == nil
	}
	return false
}
