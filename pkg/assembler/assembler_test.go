package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/knowledge"
	"github.com/ritzau/code-intel/pkg/parser"
)

// fakeParser returns canned summaries keyed by base name
type fakeParser struct {
	files  map[string]*parser.ParsedFile
	failOn string
	calls  int
}

func (p *fakeParser) Parse(ctx context.Context, path string) (*parser.ParsedFile, error) {
	p.calls++
	base := filepath.Base(path)
	if base == p.failOn {
		return nil, errors.New("syntax error")
	}
	pf, ok := p.files[base]
	if !ok {
		return nil, nil // unsupported
	}
	clone := *pf
	clone.Path = path
	return &clone, nil
}

// fakeKnowledge serves canned results per domain
type fakeKnowledge struct {
	byDomain map[string][]knowledge.Result
	err      error
}

func (k *fakeKnowledge) Search(ctx context.Context, query string, opts knowledge.Options) ([]knowledge.Result, error) {
	if k.err != nil {
		return nil, k.err
	}
	return k.byDomain[opts.Domain], nil
}

// writeWorkspace lays the given files (with trivial content) under a temp dir
func writeWorkspace(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("line1\nline2\nline3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestAssembler(t *testing.T, p parser.Parser, ks knowledge.Source) *Assembler {
	t.Helper()
	a, err := New(p, ks)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestAssemble_RootNotFound(t *testing.T) {
	a := newTestAssembler(t, &fakeParser{}, nil)

	_, err := a.Assemble(context.Background(), "/does/not/exist", Options{})
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("Expected ErrRootNotFound, got %v", err)
	}
}

func TestAssemble_FileImportGraph(t *testing.T) {
	root := writeWorkspace(t, "app.ts", "util.ts", "orphan.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"app.ts": {
			Language: "typescript",
			Imports:  []parser.Import{{Source: "./util", Line: 1}},
		},
		"util.ts":   {Language: "typescript"},
		"orphan.ts": {Language: "typescript"},
	}}
	a := newTestAssembler(t, p, nil)

	g, err := a.Assemble(context.Background(), root, Options{
		NodeTypes: []graph.NodeType{graph.NodeTypeFile},
		EdgeTypes: []graph.EdgeType{graph.EdgeTypeImports},
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if g.Metadata.NodeCount != 3 {
		t.Errorf("Expected 3 file nodes, got %d", g.Metadata.NodeCount)
	}
	if g.Metadata.EdgeCount != 1 {
		t.Fatalf("Expected 1 import edge, got %d", g.Metadata.EdgeCount)
	}
	e := g.Edges[0]
	if e.Source != "app.ts" || e.Target != "util.ts" || e.Type != graph.EdgeTypeImports {
		t.Errorf("Unexpected edge %+v", e)
	}
	if e.Metadata.LineNumber != 1 {
		t.Errorf("Expected import line 1, got %d", e.Metadata.LineNumber)
	}
	for _, n := range g.Nodes {
		if n.Type != graph.NodeTypeFile {
			t.Errorf("Only file nodes were requested, got %s of type %s", n.ID, n.Type)
		}
		if n.Position == nil {
			t.Errorf("Node %s missing layout position", n.ID)
		}
		if n.Metrics.LinesOfCode != 0 {
			t.Errorf("Expected 0 lines for entity-free %s, got %d", n.ID, n.Metrics.LinesOfCode)
		}
	}
}

func TestAssemble_ParseFailureSkipsFileOnly(t *testing.T) {
	root := writeWorkspace(t, "good.ts", "bad.ts")
	p := &fakeParser{
		files: map[string]*parser.ParsedFile{
			"good.ts": {Language: "typescript"},
			"bad.ts":  {Language: "typescript"},
		},
		failOn: "bad.ts",
	}
	a := newTestAssembler(t, p, nil)

	g, err := a.Assemble(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Assemble() must tolerate per-file parse failures, got %v", err)
	}
	if g.Node("good.ts") == nil {
		t.Error("Expected good.ts to survive the neighbor's parse failure")
	}
	if g.Node("bad.ts") != nil {
		t.Error("Expected bad.ts to be skipped")
	}
}

func TestAssemble_SymbolNodesAndContainment(t *testing.T) {
	root := writeWorkspace(t, "svc.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"svc.ts": {
			Language: "typescript",
			Entities: []parser.Entity{
				{Name: "Service", Type: parser.EntityClass, StartLine: 1, EndLine: 40},
				{Name: "helper", Type: parser.EntityFunction, StartLine: 42, EndLine: 50},
			},
			Imports: []parser.Import{{Source: "./other", Line: 1}, {Source: "./more", Line: 2}},
		},
	}}
	a := newTestAssembler(t, p, nil)

	g, err := a.Assemble(context.Background(), root, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	file := g.Node("svc.ts")
	if file == nil {
		t.Fatal("Expected file node svc.ts")
	}
	// complexity: 1 function + 1 class*2 + 2 imports*0.5 = 4.0
	if file.Metrics.Complexity != 4.0 {
		t.Errorf("Expected complexity 4.0, got %v", file.Metrics.Complexity)
	}
	// Service spans 1-40, helper 42-50, so 40 + 9 entity lines
	if file.Metrics.LinesOfCode != 49 {
		t.Errorf("Expected 49 lines of code, got %d", file.Metrics.LinesOfCode)
	}
	if len(file.Children) != 2 {
		t.Errorf("Expected 2 children on the file node, got %v", file.Children)
	}

	class := g.Node("svc.ts#Service")
	if class == nil {
		t.Fatal("Expected symbol node svc.ts#Service")
	}
	if class.ParentID != "svc.ts" || class.Type != graph.NodeTypeClass || class.StartLine != 1 {
		t.Errorf("Unexpected symbol node %+v", class)
	}
	if class.Metrics.LinesOfCode != 40 {
		t.Errorf("Expected class span of 40 lines, got %d", class.Metrics.LinesOfCode)
	}

	if g.Edge(graph.Key("svc.ts", graph.EdgeTypeContains, "svc.ts#Service")) == nil {
		t.Error("Expected contains edge file -> class")
	}
	if g.Metadata.MaxDepth != 1 {
		t.Errorf("Expected containment depth 1, got %d", g.Metadata.MaxDepth)
	}
}

func TestAssemble_ExternalImports(t *testing.T) {
	root := writeWorkspace(t, "app.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"app.ts": {
			Language: "typescript",
			Imports:  []parser.Import{{Source: "lodash", Line: 3}},
		},
	}}

	// Default: external imports are dropped
	a := newTestAssembler(t, p, nil)
	g, err := a.Assemble(context.Background(), root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Node("lodash") != nil || g.Metadata.EdgeCount != 0 {
		t.Errorf("Expected external import to be dropped, got %d edges", g.Metadata.EdgeCount)
	}

	// With IncludeExternal the module node and edge appear
	g, err = a.Assemble(context.Background(), root, Options{IncludeExternal: true})
	if err != nil {
		t.Fatal(err)
	}
	mod := g.Node("lodash")
	if mod == nil || mod.Type != graph.NodeTypeModule {
		t.Fatalf("Expected module node for lodash, got %+v", mod)
	}
	if g.Edge(graph.Key("app.ts", graph.EdgeTypeImports, "lodash")) == nil {
		t.Error("Expected import edge to the module node")
	}
}

func TestAssemble_KnowledgeEnrichment(t *testing.T) {
	root := writeWorkspace(t, "a.ts", "b.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"a.ts": {Language: "typescript"},
		"b.ts": {Language: "typescript"},
	}}
	ks := &fakeKnowledge{byDomain: map[string][]knowledge.Result{
		knowledge.DomainRelationships: {
			{Score: 0.9, Metadata: map[string]any{"source": "a.ts", "target": "b.ts", "relationship": "calls"}},
			{Score: 0.8, Metadata: map[string]any{"source": "a.ts", "target": "ghost.ts", "relationship": "calls"}},
			{Score: 0.7, Metadata: map[string]any{"target": "b.ts"}}, // malformed
		},
		knowledge.DomainChangeHistory: {
			{Score: 0.5, Metadata: map[string]any{"file": "b.ts", "changeFrequency": 12.5}},
		},
	}}
	a := newTestAssembler(t, p, ks)

	g, err := a.Assemble(context.Background(), root, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	e := g.Edge(graph.Key("a.ts", graph.EdgeTypeCalls, "b.ts"))
	if e == nil {
		t.Fatal("Expected knowledge-derived calls edge")
	}
	if e.Weight != 0.9 {
		t.Errorf("Expected edge weight from relevance 0.9, got %v", e.Weight)
	}
	if g.Metadata.EdgeCount != 1 {
		t.Errorf("Expected only the well-formed in-graph edge, got %d", g.Metadata.EdgeCount)
	}
	if got := g.Node("b.ts").Metrics.ChangeFrequency; got != 12.5 {
		t.Errorf("Expected change frequency 12.5, got %v", got)
	}
}

func TestAssemble_VulnerableOnlyFilter(t *testing.T) {
	root := writeWorkspace(t, "safe.ts", "risky.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"safe.ts":  {Language: "typescript"},
		"risky.ts": {Language: "typescript"},
	}}
	ks := &fakeKnowledge{byDomain: map[string][]knowledge.Result{
		knowledge.DomainChangeHistory: {
			{Score: 0.9, Metadata: map[string]any{"file": "risky.ts", "vulnerabilities": []any{"CVE-2024-1234"}}},
		},
	}}
	a := newTestAssembler(t, p, ks)

	g, err := a.Assemble(context.Background(), root, Options{VulnerableOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if g.Metadata.NodeCount != 1 || g.Node("risky.ts") == nil {
		t.Errorf("Expected only the vulnerable node to survive, got %d nodes", g.Metadata.NodeCount)
	}
	if got := g.Node("risky.ts").Vulnerabilities; len(got) != 1 || got[0] != "CVE-2024-1234" {
		t.Errorf("Expected vulnerability list to be carried, got %v", got)
	}
}

func TestAssemble_MinImpactScoreFilter(t *testing.T) {
	root := writeWorkspace(t, "hot.ts", "cold.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"hot.ts":  {Language: "typescript"},
		"cold.ts": {Language: "typescript"},
	}}
	ks := &fakeKnowledge{byDomain: map[string][]knowledge.Result{
		knowledge.DomainChangeHistory: {
			{Score: 0.9, Metadata: map[string]any{"file": "hot.ts", "impactScore": 8.0}},
		},
	}}
	a := newTestAssembler(t, p, ks)

	g, err := a.Assemble(context.Background(), root, Options{MinImpactScore: 5})
	if err != nil {
		t.Fatal(err)
	}
	if g.Metadata.NodeCount != 1 || g.Node("hot.ts") == nil {
		t.Errorf("Expected only the high-impact node to survive, got %d nodes", g.Metadata.NodeCount)
	}
	if got := g.Node("hot.ts").Metrics.ImpactScore; got != 8.0 {
		t.Errorf("Expected impact score 8.0 to be carried, got %v", got)
	}
}

func TestAssemble_KnowledgeFailureIsNonFatal(t *testing.T) {
	root := writeWorkspace(t, "a.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{"a.ts": {Language: "typescript"}}}
	a := newTestAssembler(t, p, &fakeKnowledge{err: errors.New("index offline")})

	g, err := a.Assemble(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Expected knowledge failure to degrade, got %v", err)
	}
	if g.Metadata.NodeCount != 1 {
		t.Errorf("Expected structural graph despite enrichment failure, got %d nodes", g.Metadata.NodeCount)
	}
}

func TestAssemble_ParseCacheAvoidsReparsing(t *testing.T) {
	root := writeWorkspace(t, "a.ts", "b.ts")
	p := &fakeParser{files: map[string]*parser.ParsedFile{
		"a.ts": {Language: "typescript"},
		"b.ts": {Language: "typescript"},
	}}
	a := newTestAssembler(t, p, nil)

	ctx := context.Background()
	if _, err := a.Assemble(ctx, root, Options{}); err != nil {
		t.Fatal(err)
	}
	first := p.calls
	if _, err := a.Assemble(ctx, root, Options{}); err != nil {
		t.Fatal(err)
	}

	if p.calls != first {
		t.Errorf("Expected second build to hit the parse cache, parser calls went %d -> %d", first, p.calls)
	}
}

func TestAssemble_DeterministicNodeOrder(t *testing.T) {
	root := writeWorkspace(t, "c.ts", "a.ts", "b.ts")
	files := map[string]*parser.ParsedFile{
		"a.ts": {Language: "typescript"},
		"b.ts": {Language: "typescript"},
		"c.ts": {Language: "typescript"},
	}

	var firstOrder []string
	for run := 0; run < 3; run++ {
		a := newTestAssembler(t, &fakeParser{files: files}, nil)
		g, err := a.Assemble(context.Background(), root, Options{})
		if err != nil {
			t.Fatal(err)
		}
		var order []string
		for _, n := range g.Nodes {
			order = append(order, n.ID)
		}
		if run == 0 {
			firstOrder = order
			continue
		}
		for i := range order {
			if order[i] != firstOrder[i] {
				t.Fatalf("Node order changed between runs: %v vs %v", firstOrder, order)
			}
		}
	}
}
