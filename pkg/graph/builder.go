package graph

import "time"

// Builder accumulates nodes and edges and produces Graph snapshots. It keeps
// insertion order and merges duplicate edges instead of stacking them.
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	adjacency map[string][]string // source -> target IDs
	reverse   map[string][]string // target -> source IDs
	rootFile  string
}

// NewBuilder creates an empty graph builder
func NewBuilder() *Builder {
	return &Builder{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
	}
}

// SetRootFile records the entry point the graph was assembled from
func (b *Builder) SetRootFile(path string) {
	b.rootFile = path
}

// AddNode inserts or replaces a node. A node added twice under the same ID
// keeps its original position in the output; the last write wins for its
// content.
func (b *Builder) AddNode(n *Node) {
	if _, exists := b.nodes[n.ID]; !exists {
		b.nodeOrder = append(b.nodeOrder, n.ID)
	}
	b.nodes[n.ID] = n

	// Make sure adjacency entries exist even for isolated nodes
	if _, ok := b.adjacency[n.ID]; !ok {
		b.adjacency[n.ID] = []string{}
	}
	if _, ok := b.reverse[n.ID]; !ok {
		b.reverse[n.ID] = []string{}
	}
}

// AddEdge inserts an edge or merges it into an existing one with the same
// source, type and target: weights add up and observation counts accumulate.
// Endpoints do not have to be present yet.
func (b *Builder) AddEdge(e *Edge) {
	count := e.Metadata.Count
	if count < 1 {
		count = 1
	}
	weight := e.Weight
	if weight == 0 {
		weight = 1
	}

	key := Key(e.Source, e.Type, e.Target)
	if existing, ok := b.edges[key]; ok {
		existing.Weight += weight
		existing.Metadata.Count += count
		if existing.Metadata.LineNumber == 0 {
			existing.Metadata.LineNumber = e.Metadata.LineNumber
		}
		if e.Metadata.IsCircular {
			existing.Metadata.IsCircular = true
		}
		return
	}

	stored := &Edge{
		ID:       key,
		Source:   e.Source,
		Target:   e.Target,
		Type:     e.Type,
		Weight:   weight,
		Metadata: EdgeMetadata{LineNumber: e.Metadata.LineNumber, IsCircular: e.Metadata.IsCircular, Count: count},
	}
	b.edges[key] = stored
	b.edgeOrder = append(b.edgeOrder, key)
	b.adjacency[e.Source] = append(b.adjacency[e.Source], e.Target)
	b.reverse[e.Target] = append(b.reverse[e.Target], e.Source)
}

// Node returns the stored node for an ID. The pointer is live: callers may
// extend Children or metrics while assembling.
func (b *Builder) Node(id string) (*Node, bool) {
	n, ok := b.nodes[id]
	return n, ok
}

// Neighbors returns a copy of the outgoing adjacency list for a node
func (b *Builder) Neighbors(id string) []string {
	out := b.adjacency[id]
	snapshot := make([]string, len(out))
	copy(snapshot, out)
	return snapshot
}

// IncomingNeighbors returns a copy of the incoming adjacency list for a node
func (b *Builder) IncomingNeighbors(id string) []string {
	in := b.reverse[id]
	snapshot := make([]string, len(in))
	copy(snapshot, in)
	return snapshot
}

// NodeCount returns the number of nodes added so far
func (b *Builder) NodeCount() int {
	return len(b.nodes)
}

// Build materializes the current state into a Graph snapshot
func (b *Builder) Build() *Graph {
	nodes := make([]*Node, 0, len(b.nodeOrder))
	for _, id := range b.nodeOrder {
		nodes = append(nodes, b.nodes[id])
	}
	edges := make([]*Edge, 0, len(b.edgeOrder))
	for _, key := range b.edgeOrder {
		edges = append(edges, b.edges[key])
	}

	return &Graph{
		Nodes: nodes,
		Edges: edges,
		Metadata: Metadata{
			NodeCount:   len(nodes),
			EdgeCount:   len(edges),
			MaxDepth:    b.maxDepth(),
			RootFile:    b.rootFile,
			GeneratedAt: time.Now(),
		},
	}
}

// maxDepth walks the containment tree breadth-first from the roots (nodes
// without a parent in the builder) and returns the deepest level reached.
func (b *Builder) maxDepth() int {
	children := make(map[string][]string)
	for _, id := range b.nodeOrder {
		n := b.nodes[id]
		if n.ParentID == "" {
			continue
		}
		if _, ok := b.nodes[n.ParentID]; !ok {
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], id)
	}

	depth := 0
	visited := make(map[string]bool)
	type item struct {
		id    string
		level int
	}
	var queue []item
	for _, id := range b.nodeOrder {
		n := b.nodes[id]
		if n.ParentID == "" {
			queue = append(queue, item{id, 0})
			visited[id] = true
		} else if _, ok := b.nodes[n.ParentID]; !ok {
			queue = append(queue, item{id, 0})
			visited[id] = true
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.level > depth {
			depth = cur.level
		}
		for _, child := range children[cur.id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, item{child, cur.level + 1})
		}
	}
	return depth
}
