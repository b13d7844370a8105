package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/knowledge"
)

// enrichmentLimit caps how many knowledge results a single build consumes
const enrichmentLimit = 100

// enrich layers knowledge-source data over the structural graph: previously
// observed relationships become weighted edges, change history becomes a
// node metric. Everything here is best effort; a failed query costs nothing
// but the enrichment itself.
func (a *Assembler) enrich(ctx context.Context, b *graph.Builder, root string) {
	if a.knowledge == nil {
		return
	}
	a.enrichRelationships(ctx, b, root)
	a.enrichChangeFrequency(ctx, b, root)
}

func (a *Assembler) enrichRelationships(ctx context.Context, b *graph.Builder, root string) {
	results, err := a.knowledge.Search(ctx, fmt.Sprintf("code relationships in %s", root), knowledge.Options{
		Domain: knowledge.DomainRelationships,
		Limit:  enrichmentLimit,
	})
	if err != nil {
		a.logger.Warn("relationship enrichment failed, continuing without", "error", err)
		return
	}

	added := 0
	for _, res := range results {
		source, okSource := res.MetaString("source")
		target, okTarget := res.MetaString("target")
		if !okSource || !okTarget {
			continue
		}
		// Knowledge data may be stale: only connect nodes that exist now
		if _, ok := b.Node(source); !ok {
			continue
		}
		if _, ok := b.Node(target); !ok {
			continue
		}

		rel, _ := res.MetaString("relationship")
		line, _ := res.MetaInt("lineNumber")
		b.AddEdge(&graph.Edge{
			Source:   source,
			Target:   target,
			Type:     relationshipEdgeType(rel),
			Weight:   res.Score,
			Metadata: graph.EdgeMetadata{LineNumber: line},
		})
		added++
	}
	a.logger.Debug("relationship enrichment done", "results", len(results), "edgesAdded", added)
}

// relationshipEdgeType maps a knowledge relationship label onto an edge type
func relationshipEdgeType(rel string) graph.EdgeType {
	switch strings.ToLower(rel) {
	case "calls", "call":
		return graph.EdgeTypeCalls
	case "extends", "inherits":
		return graph.EdgeTypeExtends
	case "implements":
		return graph.EdgeTypeImplements
	case "imports", "import":
		return graph.EdgeTypeImports
	default:
		return graph.EdgeTypeReferences
	}
}

func (a *Assembler) enrichChangeFrequency(ctx context.Context, b *graph.Builder, root string) {
	results, err := a.knowledge.Search(ctx, fmt.Sprintf("change frequency in %s", root), knowledge.Options{
		Domain: knowledge.DomainChangeHistory,
		Limit:  enrichmentLimit,
	})
	if err != nil {
		a.logger.Warn("change history enrichment failed, continuing without", "error", err)
		return
	}

	updated := 0
	for _, res := range results {
		file, ok := res.MetaString("file")
		if !ok {
			file, ok = res.MetaString("path")
		}
		if !ok {
			continue
		}
		node, ok := b.Node(file)
		if !ok {
			continue
		}

		touched := false
		if freq, ok := res.MetaFloat("changeFrequency"); ok {
			node.Metrics.ChangeFrequency = freq
			touched = true
		} else if freq, ok := res.MetaFloat("frequency"); ok {
			node.Metrics.ChangeFrequency = freq
			touched = true
		}
		if score, ok := res.MetaFloat("impactScore"); ok {
			node.Metrics.ImpactScore = score
			touched = true
		}
		if vulns, ok := res.MetaStrings("vulnerabilities"); ok {
			node.Vulnerabilities = vulns
			touched = true
		}
		if touched {
			updated++
		}
	}
	a.logger.Debug("change history enrichment done", "results", len(results), "nodesUpdated", updated)
}
