package analysis

import (
	"sort"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/code-intel/pkg/graph"
)

// Analyzer answers structural questions about a built graph: reachability,
// cycles, strongly connected components, importance and statistics. It is
// read-only over the graph handed to it; all derived state is private.
//
// Traversal runs over dependency edges only. Containment edges describe the
// file/symbol tree and are acyclic by construction, so letting them into
// cycle or reachability analysis would only produce noise. Statistics still
// describe the graph exactly as given, containment included.
type Analyzer struct {
	g     *graph.Graph
	nodes map[string]*graph.Node
	order []string // node IDs in graph order, all traversal follows it

	out map[string][]string // dependency adjacency
	in  map[string][]string

	// gonum mirrors of the same graph: directed carries dependency edges
	// for SCC analysis, undirected carries every edge for component counts
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	idOf       map[string]int64
	keyOf      map[int64]string
}

// NewAnalyzer indexes the graph and builds the gonum mirrors
func NewAnalyzer(g *graph.Graph) *Analyzer {
	a := &Analyzer{
		g:          g,
		nodes:      make(map[string]*graph.Node, len(g.Nodes)),
		order:      make([]string, 0, len(g.Nodes)),
		out:        make(map[string][]string),
		in:         make(map[string][]string),
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		idOf:       make(map[string]int64, len(g.Nodes)),
		keyOf:      make(map[int64]string, len(g.Nodes)),
	}

	for i, n := range g.Nodes {
		a.nodes[n.ID] = n
		a.order = append(a.order, n.ID)
		id := int64(i)
		a.idOf[n.ID] = id
		a.keyOf[id] = n.ID
		a.directed.AddNode(simple.Node(id))
		a.undirected.AddNode(simple.Node(id))
	}

	for _, e := range g.Edges {
		src, okSrc := a.idOf[e.Source]
		dst, okDst := a.idOf[e.Target]
		if !okSrc || !okDst {
			// Dangling edge; nothing to traverse
			continue
		}

		if e.Type.IsDependency() {
			a.out[e.Source] = append(a.out[e.Source], e.Target)
			a.in[e.Target] = append(a.in[e.Target], e.Source)
			// simple graphs reject self loops; the string adjacency keeps them
			if src != dst && !a.directed.HasEdgeFromTo(src, dst) {
				a.directed.SetEdge(a.directed.NewEdge(a.directed.Node(src), a.directed.Node(dst)))
			}
		}
		if src != dst && !a.undirected.HasEdgeBetween(src, dst) {
			a.undirected.SetEdge(a.undirected.NewEdge(a.undirected.Node(src), a.undirected.Node(dst)))
		}
	}

	return a
}

// Graph returns the underlying graph snapshot
func (a *Analyzer) Graph() *graph.Graph {
	return a.g
}

// OutDegree returns how many dependency edges leave a node. Containment
// edges are not counted.
func (a *Analyzer) OutDegree(id string) int {
	return len(a.out[id])
}

// InDegree returns how many dependency edges point at a node
func (a *Analyzer) InDegree(id string) int {
	return len(a.in[id])
}

// FindReachable walks dependency edges forward from start and returns every
// node reached with its BFS depth, the start node included at depth 0.
// maxDepth <= 0 means unbounded. The first visit fixes a node's depth.
func (a *Analyzer) FindReachable(start string, maxDepth int) map[string]int {
	return a.bfs(start, maxDepth, a.out)
}

// FindDependents walks dependency edges backwards from start: everything
// that directly or transitively depends on it, with BFS depth
func (a *Analyzer) FindDependents(start string, maxDepth int) map[string]int {
	return a.bfs(start, maxDepth, a.in)
}

func (a *Analyzer) bfs(start string, maxDepth int, adjacency map[string][]string) map[string]int {
	result := make(map[string]int)
	if _, ok := a.nodes[start]; !ok {
		return result
	}

	result[start] = 0
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := result[cur]
		if maxDepth > 0 && depth >= maxDepth {
			continue
		}
		for _, next := range adjacency[cur] {
			if _, seen := result[next]; seen {
				continue
			}
			result[next] = depth + 1
			queue = append(queue, next)
		}
	}
	return result
}

// sortedIDs drains a gonum node iterator into ascending ID order. IDs are
// assigned in insertion order, so this keeps traversal deterministic even
// though gonum iterates maps underneath.
func sortedIDs(it gograph.Nodes) []int64 {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
