package layout

import (
	"testing"

	"github.com/ritzau/code-intel/pkg/graph"
)

func chainGraph() *graph.Graph {
	b := graph.NewBuilder()
	for _, id := range []string{"a", "b", "c", "d"} {
		b.AddNode(&graph.Node{ID: id, Type: graph.NodeTypeFile, Name: id, Path: id})
	}
	b.AddEdge(&graph.Edge{Source: "a", Target: "b", Type: graph.EdgeTypeImports})
	b.AddEdge(&graph.Edge{Source: "b", Target: "c", Type: graph.EdgeTypeImports})
	b.AddEdge(&graph.Edge{Source: "b", Target: "d", Type: graph.EdgeTypeImports})
	return b.Build()
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"force", Force, false},
		{"force-directed", Force, false},
		{"", Force, false},
		{"hierarchical", Hierarchical, false},
		{"radial", Radial, false},
		{"organic", Organic, false},
		{"spiral", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApply_AssignsEveryNode(t *testing.T) {
	for _, algo := range []Algorithm{Force, Hierarchical, Radial, Organic} {
		g := chainGraph()
		Apply(g, algo)
		for _, n := range g.Nodes {
			if n.Position == nil {
				t.Errorf("%s left node %s without a position", algo, n.ID)
			}
		}
	}
}

func TestApply_Deterministic(t *testing.T) {
	for _, algo := range []Algorithm{Force, Hierarchical, Radial, Organic} {
		first := chainGraph()
		Apply(first, algo)

		for run := 0; run < 5; run++ {
			again := chainGraph()
			Apply(again, algo)
			for i := range first.Nodes {
				a, b := first.Nodes[i].Position, again.Nodes[i].Position
				if a.X != b.X || a.Y != b.Y {
					t.Fatalf("%s moved node %s between runs: (%v,%v) vs (%v,%v)",
						algo, first.Nodes[i].ID, a.X, a.Y, b.X, b.Y)
				}
			}
		}
	}
}

func TestApply_HierarchicalLayers(t *testing.T) {
	g := chainGraph()
	Apply(g, Hierarchical)

	// a is the only source, so it sits above b, which sits above c and d
	yOf := func(id string) float64 { return g.Node(id).Position.Y }
	if !(yOf("a") < yOf("b") && yOf("b") < yOf("c")) {
		t.Errorf("Expected descending layers a < b < c, got a=%v b=%v c=%v", yOf("a"), yOf("b"), yOf("c"))
	}
	if yOf("c") != yOf("d") {
		t.Errorf("Expected siblings c and d on the same layer, got %v and %v", yOf("c"), yOf("d"))
	}
}

func TestApply_RadialRootAtCenter(t *testing.T) {
	g := chainGraph()
	Apply(g, Radial)

	root := g.Node("a").Position
	if root.X != 0 || root.Y != 0 {
		t.Errorf("Expected single root at origin, got (%v,%v)", root.X, root.Y)
	}
}

func TestApply_EmptyGraph(t *testing.T) {
	g := graph.NewBuilder().Build()
	Apply(g, Force) // must not panic
}
