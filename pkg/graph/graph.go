package graph

import "time"

// Metadata summarizes a built graph
type Metadata struct {
	NodeCount   int       `json:"nodeCount"`
	EdgeCount   int       `json:"edgeCount"`
	MaxDepth    int       `json:"maxDepth"` // Deepest containment level below a root
	RootFile    string    `json:"rootFile,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Graph is an immutable snapshot produced by a Builder. Nodes and Edges keep
// insertion order so repeated builds over the same input serialize identically.
type Graph struct {
	Nodes    []*Node  `json:"nodes"`
	Edges    []*Edge  `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Node returns the node with the given ID, or nil if absent
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Edge returns the edge with the given identity key, or nil if absent
func (g *Graph) Edge(key string) *Edge {
	for _, e := range g.Edges {
		if e.ID == key {
			return e
		}
	}
	return nil
}
