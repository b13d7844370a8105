package analysis

import (
	"testing"
)

func TestFindCircularDependencies_NoCycles(t *testing.T) {
	// Acyclic chain: a -> b -> c
	g := buildGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)
	a := NewAnalyzer(g)

	if cycles := a.FindCircularDependencies(); len(cycles) != 0 {
		t.Errorf("Expected no cycles, found %v", cycles)
	}
}

func TestFindCircularDependencies_Triangle(t *testing.T) {
	// a -> b -> c -> a must surface exactly once, not per rotation
	g := buildGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	a := NewAnalyzer(g)

	cycles := a.FindCircularDependencies()
	if len(cycles) != 1 {
		t.Fatalf("Expected exactly 1 cycle, found %d: %v", len(cycles), cycles)
	}

	members := make(map[string]bool)
	for _, id := range cycles[0] {
		members[id] = true
	}
	if len(members) != 3 || !members["a"] || !members["b"] || !members["c"] {
		t.Errorf("Expected cycle over {a b c}, got %v", cycles[0])
	}
}

func TestFindCircularDependencies_SelfLoop(t *testing.T) {
	g := buildGraph([]string{"a"}, [][2]string{{"a", "a"}})
	a := NewAnalyzer(g)

	cycles := a.FindCircularDependencies()
	if len(cycles) != 1 || len(cycles[0]) != 1 || cycles[0][0] != "a" {
		t.Errorf("Expected single-node cycle [a], got %v", cycles)
	}
}

func TestFindCircularDependencies_OverlappingCycles(t *testing.T) {
	// Two loops sharing node a: a -> b -> a and a -> c -> a
	g := buildGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}},
	)
	a := NewAnalyzer(g)

	cycles := a.FindCircularDependencies()
	if len(cycles) != 2 {
		t.Fatalf("Expected both overlapping cycles reported, got %v", cycles)
	}
}

func TestFindStronglyConnectedComponents_ExcludesSingletons(t *testing.T) {
	// Triangle plus a tail node d
	g := buildGraph(
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}},
	)
	a := NewAnalyzer(g)

	sccs := a.FindStronglyConnectedComponents()
	if len(sccs) != 1 {
		t.Fatalf("Expected one non-trivial component, got %v", sccs)
	}
	if len(sccs[0]) != 3 {
		t.Errorf("Expected component of size 3, got %v", sccs[0])
	}
	for _, id := range sccs[0] {
		if id == "d" {
			t.Errorf("Tail node d must not join the component: %v", sccs[0])
		}
	}
}

func TestFindStronglyConnectedComponents_TwoComponents(t *testing.T) {
	g := buildGraph(
		[]string{"a", "b", "x", "y"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"x", "y"}, {"y", "x"}, {"b", "x"}},
	)
	a := NewAnalyzer(g)

	sccs := a.FindStronglyConnectedComponents()
	if len(sccs) != 2 {
		t.Fatalf("Expected two components, got %v", sccs)
	}
	for _, scc := range sccs {
		if len(scc) != 2 {
			t.Errorf("Expected components of size 2, got %v", scc)
		}
	}
}

func TestFindStronglyConnectedComponents_Deterministic(t *testing.T) {
	g := buildGraph(
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}},
	)

	first := NewAnalyzer(g).FindStronglyConnectedComponents()
	for i := 0; i < 10; i++ {
		again := NewAnalyzer(g).FindStronglyConnectedComponents()
		if len(again) != len(first) {
			t.Fatalf("Component count changed between runs: %v vs %v", first, again)
		}
		for j := range again {
			if len(again[j]) != len(first[j]) || again[j][0] != first[j][0] {
				t.Fatalf("Component order changed between runs: %v vs %v", first, again)
			}
		}
	}
}
