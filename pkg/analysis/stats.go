package analysis

import (
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/code-intel/pkg/graph"
)

// Statistics summarizes the shape of a graph. Unlike the traversal methods,
// these numbers describe the graph exactly as handed over, containment edges
// included.
type Statistics struct {
	NodeCount    int                      `json:"nodeCount"`
	EdgeCount    int                      `json:"edgeCount"`
	Density      float64                  `json:"density"` // E / (N * (N-1))
	AvgInDegree  float64                  `json:"avgInDegree"`
	AvgOutDegree float64                  `json:"avgOutDegree"`
	MaxInDegree  int                      `json:"maxInDegree"`
	MaxOutDegree int                      `json:"maxOutDegree"`
	Components   int                      `json:"components"` // Undirected connected components
	HasCycles    bool                     `json:"hasCycles"`
	NodesByType  map[graph.NodeType]int   `json:"nodesByType"`
	EdgesByType  map[graph.EdgeType]int   `json:"edgesByType"`
}

// GetStatistics computes summary statistics for the analyzed graph
func (a *Analyzer) GetStatistics() Statistics {
	stats := Statistics{
		NodeCount:   len(a.g.Nodes),
		EdgeCount:   len(a.g.Edges),
		NodesByType: make(map[graph.NodeType]int),
		EdgesByType: make(map[graph.EdgeType]int),
	}

	for _, n := range a.g.Nodes {
		stats.NodesByType[n.Type]++
	}

	inDegree := make(map[string]int)
	outDegree := make(map[string]int)
	for _, e := range a.g.Edges {
		stats.EdgesByType[e.Type]++
		outDegree[e.Source]++
		inDegree[e.Target]++
	}

	n := stats.NodeCount
	if n > 1 {
		stats.Density = float64(stats.EdgeCount) / float64(n*(n-1))
	}
	if n > 0 {
		stats.AvgInDegree = float64(stats.EdgeCount) / float64(n)
		stats.AvgOutDegree = stats.AvgInDegree
	}
	for _, d := range inDegree {
		if d > stats.MaxInDegree {
			stats.MaxInDegree = d
		}
	}
	for _, d := range outDegree {
		if d > stats.MaxOutDegree {
			stats.MaxOutDegree = d
		}
	}

	if n > 0 {
		stats.Components = len(topo.ConnectedComponents(a.undirected))
	}
	stats.HasCycles = len(a.FindCircularDependencies()) > 0

	return stats
}
