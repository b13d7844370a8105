package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/graph"
)

// Detector thresholds. Calibrated against medium-sized TypeScript and Go
// codebases; tune with care, the health score moves with them.
const (
	godClassLines       = 500
	godClassComplexity  = 50
	godClassFanIn       = 10
	couplingWarnFanOut  = 15
	couplingErrorFanOut = 25
	unstableFanIn       = 10
	unstableRatio       = 0.5
	featureEnvyCalls    = 3
	abstractionSCCSize  = 3
)

// entrypointNames marks symbols that legitimately have no internal callers
var entrypointNames = []string{"index", "main", "app", "server", "cli"}

// detectCircularDependencies flags every dependency cycle. Short cycles are
// usually deliberate pairs and rate a warning; anything longer is an error.
func (ad *Advisor) detectCircularDependencies(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, cycle := range az.FindCircularDependencies() {
		severity := SeverityWarning
		if len(cycle) > 3 {
			severity = SeverityError
		}
		loop := strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
		out = append(out, Suggestion{
			ID:            uuid.NewString(),
			Type:          TypeCircularDependency,
			Severity:      severity,
			Title:         "Circular dependency",
			Description:   fmt.Sprintf("%d modules form a dependency cycle: %s", len(cycle), loop),
			AffectedNodes: cycle,
			Recommendation: "Break the cycle by moving the shared pieces into a module " +
				"both sides can depend on, or invert one of the dependencies.",
			Confidence: 0.95,
		})
	}
	return out
}

// detectGodClasses flags files and classes that concentrate too much code,
// complexity or fan-in. Both size limits exceeded at once upgrades the
// finding to an error.
func (ad *Advisor) detectGodClasses(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, n := range az.Graph().Nodes {
		if n.Type != graph.NodeTypeFile && n.Type != graph.NodeTypeClass {
			continue
		}
		tooLong := n.Metrics.LinesOfCode > godClassLines
		tooComplex := n.Metrics.Complexity > godClassComplexity
		tooPopular := az.InDegree(n.ID) > godClassFanIn
		if !tooLong && !tooComplex && !tooPopular {
			continue
		}

		severity := SeverityWarning
		if tooLong && tooComplex {
			severity = SeverityError
		}
		var reasons []string
		if tooLong {
			reasons = append(reasons, fmt.Sprintf("%d lines", n.Metrics.LinesOfCode))
		}
		if tooComplex {
			reasons = append(reasons, fmt.Sprintf("complexity %.1f", n.Metrics.Complexity))
		}
		if tooPopular {
			reasons = append(reasons, fmt.Sprintf("%d dependents", az.InDegree(n.ID)))
		}
		out = append(out, Suggestion{
			ID:            uuid.NewString(),
			Type:          TypeGodClass,
			Severity:      severity,
			Title:         "God class",
			Description:   fmt.Sprintf("%s has grown too large: %s", n.ID, strings.Join(reasons, ", ")),
			AffectedNodes: []string{n.ID},
			Recommendation: "Split responsibilities into smaller focused modules; " +
				"start with the least connected group of functions.",
			Confidence: 0.85,
		})
	}
	return out
}

// detectTightCoupling flags files that depend on too many other modules
func (ad *Advisor) detectTightCoupling(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, n := range az.Graph().Nodes {
		if n.Type != graph.NodeTypeFile {
			continue
		}
		fanOut := az.OutDegree(n.ID)
		if fanOut <= couplingWarnFanOut {
			continue
		}
		severity := SeverityWarning
		if fanOut > couplingErrorFanOut {
			severity = SeverityError
		}
		out = append(out, Suggestion{
			ID:            uuid.NewString(),
			Type:          TypeTightCoupling,
			Severity:      severity,
			Title:         "Tight coupling",
			Description:   fmt.Sprintf("%s depends on %d other modules", n.ID, fanOut),
			AffectedNodes: []string{n.ID},
			Recommendation: "Group related imports behind a facade so this module " +
				"only knows about a handful of collaborators.",
			Confidence: 0.8,
		})
	}
	return out
}

// detectUnstableDependencies flags nodes many others rely on that themselves
// depend outward more than inward. Instability is fan-out over total degree.
func (ad *Advisor) detectUnstableDependencies(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, n := range az.Graph().Nodes {
		fanIn := az.InDegree(n.ID)
		fanOut := az.OutDegree(n.ID)
		if fanIn <= unstableFanIn || fanIn+fanOut == 0 {
			continue
		}
		instability := float64(fanOut) / float64(fanIn+fanOut)
		if instability <= unstableRatio {
			continue
		}
		out = append(out, Suggestion{
			ID:       uuid.NewString(),
			Type:     TypeUnstableDependency,
			Severity: SeverityWarning,
			Title:    "Unstable dependency",
			Description: fmt.Sprintf("%s has %d dependents but is itself unstable (instability %.2f)",
				n.ID, fanIn, instability),
			AffectedNodes: []string{n.ID},
			Recommendation: "Stabilize this module: reduce its outgoing dependencies " +
				"or split the widely used part from the volatile part.",
			Confidence: 0.7,
		})
	}
	return out
}

// detectDeadCode flags functions and classes nothing depends on. Entry
// points are excluded by name since their callers live outside the graph.
func (ad *Advisor) detectDeadCode(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, n := range az.Graph().Nodes {
		if n.Type != graph.NodeTypeFunction && n.Type != graph.NodeTypeClass {
			continue
		}
		if az.InDegree(n.ID) > 0 {
			continue
		}
		if isEntrypoint(n) {
			continue
		}
		out = append(out, Suggestion{
			ID:            uuid.NewString(),
			Type:          TypeDeadCode,
			Severity:      SeverityInfo,
			Title:         "Possibly dead code",
			Description:   fmt.Sprintf("%s %s has no callers in the analyzed workspace", n.Type, n.ID),
			AffectedNodes: []string{n.ID},
			Recommendation: "Verify there are no external callers, then remove it " +
				"or mark it as public API.",
			Confidence: 0.6,
		})
	}
	return out
}

func isEntrypoint(n *graph.Node) bool {
	name := strings.ToLower(n.Name)
	for _, marker := range entrypointNames {
		if strings.Contains(name, marker) {
			return true
		}
	}
	// Barrel files re-export for outside consumers
	return strings.Contains(strings.ToLower(n.Path), "index")
}

// detectFeatureEnvy flags symbols that call into one foreign file more than
// they work with their own. Call counts accumulate across merged edges.
func (ad *Advisor) detectFeatureEnvy(az *analysis.Analyzer) []Suggestion {
	g := az.Graph()
	nodes := make(map[string]*graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	// symbol -> foreign file -> call count
	calls := make(map[string]map[string]int)
	var symbols []string
	for _, e := range g.Edges {
		if e.Type != graph.EdgeTypeCalls {
			continue
		}
		src, ok := nodes[e.Source]
		if !ok || src.Type == graph.NodeTypeFile || src.Type == graph.NodeTypeModule {
			continue
		}
		targetFile := owningFile(nodes, e.Target)
		if targetFile == "" || targetFile == src.Path {
			continue
		}
		if calls[e.Source] == nil {
			calls[e.Source] = make(map[string]int)
			symbols = append(symbols, e.Source)
		}
		count := e.Metadata.Count
		if count == 0 {
			count = 1
		}
		calls[e.Source][targetFile] += count
	}

	var out []Suggestion
	for _, symbol := range symbols {
		files := make([]string, 0, len(calls[symbol]))
		for file := range calls[symbol] {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			count := calls[symbol][file]
			if count < featureEnvyCalls {
				continue
			}
			out = append(out, Suggestion{
				ID:       uuid.NewString(),
				Type:     TypeFeatureEnvy,
				Severity: SeverityInfo,
				Title:    "Feature envy",
				Description: fmt.Sprintf("%s makes %d calls into %s",
					symbol, count, file),
				AffectedNodes: []string{symbol, file},
				Recommendation: "Consider moving this logic next to the data it " +
					"operates on.",
				Confidence: 0.65,
			})
		}
	}
	return out
}

// owningFile resolves the file a node belongs to: its Path for symbols, its
// own ID for files
func owningFile(nodes map[string]*graph.Node, id string) string {
	if n, ok := nodes[id]; ok {
		if n.Type == graph.NodeTypeFile {
			return n.ID
		}
		return n.Path
	}
	// Dangling target; fall back to the symbol ID convention path#name
	if idx := strings.Index(id, "#"); idx > 0 {
		return id[:idx]
	}
	return ""
}

// detectMissingAbstractions flags strongly connected clusters of three or
// more modules; a cluster that big usually hides an implicit shared concept
func (ad *Advisor) detectMissingAbstractions(az *analysis.Analyzer) []Suggestion {
	var out []Suggestion
	for _, component := range az.FindStronglyConnectedComponents() {
		if len(component) < abstractionSCCSize {
			continue
		}
		out = append(out, Suggestion{
			ID:       uuid.NewString(),
			Type:     TypeMissingAbstraction,
			Severity: SeverityInfo,
			Title:    "Missing abstraction",
			Description: fmt.Sprintf("%d modules are mutually dependent: %s",
				len(component), strings.Join(component, ", ")),
			AffectedNodes: component,
			Recommendation: "Extract the concept these modules share into an " +
				"interface they can all depend on.",
			Confidence: 0.7,
		})
	}
	return out
}
