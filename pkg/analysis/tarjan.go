package analysis

import (
	gograph "gonum.org/v1/gonum/graph"
)

// FindStronglyConnectedComponents runs Tarjan's algorithm over the directed
// mirror and returns every component with more than one member. Singleton
// components are just nodes, not cycles, so they are dropped.
func (a *Analyzer) FindStronglyConnectedComponents() [][]string {
	t := newTarjanSCC(a.directed)
	var components [][]string
	for _, scc := range t.findSCCs() {
		member := make([]string, 0, len(scc))
		for _, id := range scc {
			member = append(member, a.keyOf[id])
		}
		components = append(components, member)
	}
	return components
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// The descent is iterative with an explicit frame stack, so component size
// is bounded by memory rather than goroutine stack depth.
type tarjanSCC struct {
	graph   gograph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjanSCC(g gograph.Directed) *tarjanSCC {
	return &tarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// findSCCs visits all nodes in ascending ID order and returns the non-trivial
// strongly connected components
func (t *tarjanSCC) findSCCs() [][]int64 {
	for _, id := range sortedIDs(t.graph.Nodes()) {
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

// frame is one suspended node in the iterative descent
type tarjanFrame struct {
	v    int64
	succ []int64
	next int
}

func (t *tarjanSCC) strongConnect(root int64) {
	var frames []tarjanFrame

	push := func(v int64) {
		t.indices[v] = t.index
		t.lowLink[v] = t.index
		t.index++
		t.stack = append(t.stack, v)
		t.onStack[v] = true
		frames = append(frames, tarjanFrame{v: v, succ: sortedIDs(t.graph.From(v))})
	}
	push(root)

	for len(frames) > 0 {
		f := &frames[len(frames)-1]

		if f.next < len(f.succ) {
			w := f.succ[f.next]
			f.next++
			if _, visited := t.indices[w]; !visited {
				push(w)
			} else if t.onStack[w] {
				// w is in the current component
				t.lowLink[f.v] = min(t.lowLink[f.v], t.indices[w])
			}
			continue
		}

		// All successors handled: pop the frame, propagate the low link
		v := f.v
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := &frames[len(frames)-1]
			t.lowLink[parent.v] = min(t.lowLink[parent.v], t.lowLink[v])
		}

		// v roots a component when its low link never escaped it
		if t.lowLink[v] == t.indices[v] {
			var scc []int64
			for {
				w := t.stack[len(t.stack)-1]
				t.stack = t.stack[:len(t.stack)-1]
				t.onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 {
				t.sccs = append(t.sccs, scc)
			}
		}
	}
}
