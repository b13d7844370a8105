package assembler

import (
	"github.com/ritzau/code-intel/pkg/graph"
)

// filter prunes the assembled graph down to the requested node and edge
// types plus the score and vulnerability criteria, then rebuilds so the
// metadata counts describe what actually survived. An edge survives only
// when its type was requested and both endpoints did too.
func (a *Assembler) filter(g *graph.Graph, opts Options) *graph.Graph {
	wantNode := typeSet(opts.NodeTypes)
	wantEdge := typeSet(opts.EdgeTypes)

	keep := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if !wantNode[n.Type] {
			continue
		}
		if opts.MinImpactScore > 0 && n.Metrics.ImpactScore < opts.MinImpactScore {
			continue
		}
		if opts.VulnerableOnly && len(n.Vulnerabilities) == 0 {
			continue
		}
		keep[n.ID] = true
	}

	fb := graph.NewBuilder()
	fb.SetRootFile(g.Metadata.RootFile)

	for _, n := range g.Nodes {
		if !keep[n.ID] {
			continue
		}
		// Containment references must not dangle into pruned territory
		if n.ParentID != "" && !keep[n.ParentID] {
			n.ParentID = ""
		}
		if len(n.Children) > 0 {
			var kept []string
			for _, child := range n.Children {
				if keep[child] {
					kept = append(kept, child)
				}
			}
			n.Children = kept
		}
		fb.AddNode(n)
	}

	dropped := 0
	for _, e := range g.Edges {
		if !wantEdge[e.Type] || !keep[e.Source] || !keep[e.Target] {
			dropped++
			continue
		}
		fb.AddEdge(e)
	}
	if dropped > 0 {
		a.logger.Debug("filtered graph", "nodesKept", len(keep), "edgesDropped", dropped)
	}

	return fb.Build()
}
