package assembler

import (
	"math"
	"path"
	"strings"

	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/parser"
)

// buildFileNodes adds one node per parsed file with its structural
// complexity. Node IDs are paths relative to the assembly base.
func (a *Assembler) buildFileNodes(b *graph.Builder, baseDir string, parsed []*parser.ParsedFile) {
	for _, pf := range parsed {
		id := relativeID(baseDir, pf.Path)
		b.AddNode(&graph.Node{
			ID:       id,
			Type:     graph.NodeTypeFile,
			Name:     path.Base(id),
			Path:     id,
			Language: pf.Language,
			Metrics: graph.Metrics{
				Complexity:  fileComplexity(pf),
				LinesOfCode: entityLines(pf),
			},
		})
	}
}

// fileComplexity scores a file from its parsed structure: each callable
// counts 1, each class-like 2, each import 0.5, rounded to one decimal
func fileComplexity(pf *parser.ParsedFile) float64 {
	c := float64(pf.Functions())*1 + float64(pf.Classes())*2 + float64(len(pf.Imports))*0.5
	return math.Round(c*10) / 10
}

// entityLines sizes a file as the sum of its entity spans. Imports and
// whitespace between declarations do not count.
func entityLines(pf *parser.ParsedFile) int {
	total := 0
	for _, e := range pf.Entities {
		total += entitySpan(e)
	}
	return total
}

// entitySpan is the inclusive line count of one declaration, 0 when the
// parser reported no usable range
func entitySpan(e parser.Entity) int {
	if e.StartLine <= 0 || e.EndLine < e.StartLine {
		return 0
	}
	return e.EndLine - e.StartLine + 1
}

// entityNodeTypes maps parser entity kinds onto graph node types
var entityNodeTypes = map[parser.EntityType]graph.NodeType{
	parser.EntityFunction:  graph.NodeTypeFunction,
	parser.EntityClass:     graph.NodeTypeClass,
	parser.EntityMethod:    graph.NodeTypeMethod,
	parser.EntityInterface: graph.NodeTypeInterface,
	parser.EntityVariable:  graph.NodeTypeVariable,
}

// buildSymbolNodes adds one node per parsed entity whose type was requested,
// parented under its file. Contains edges are only emitted when asked for.
func (a *Assembler) buildSymbolNodes(b *graph.Builder, baseDir string, parsed []*parser.ParsedFile, opts Options) {
	wantNode := typeSet(opts.NodeTypes)
	wantContains := typeSet(opts.EdgeTypes)[graph.EdgeTypeContains]

	for _, pf := range parsed {
		fileID := relativeID(baseDir, pf.Path)
		for _, entity := range pf.Entities {
			nodeType, known := entityNodeTypes[entity.Type]
			if !known || !wantNode[nodeType] {
				continue
			}

			symbolID := fileID + "#" + entity.Name
			b.AddNode(&graph.Node{
				ID:        symbolID,
				Type:      nodeType,
				Name:      entity.Name,
				Path:      fileID,
				Language:  pf.Language,
				StartLine: entity.StartLine,
				EndLine:   entity.EndLine,
				ParentID:  fileID,
				Metrics:   graph.Metrics{LinesOfCode: entitySpan(entity)},
			})

			if file, ok := b.Node(fileID); ok {
				file.Children = append(file.Children, symbolID)
			}
			if wantContains {
				b.AddEdge(&graph.Edge{
					Source: fileID,
					Target: symbolID,
					Type:   graph.EdgeTypeContains,
					Weight: 1,
				})
			}
		}
	}
}

// importSuffixes is the fixed candidate list tried when a relative import
// omits its extension, in resolution order
var importSuffixes = []string{
	"", ".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".rs", ".java",
	"/index.ts", "/index.tsx", "/index.js",
}

// buildImportEdges resolves each parsed import. Relative specifiers resolve
// against the importing file's directory through the suffix list; anything
// unresolved is either skipped or, with IncludeExternal, kept as a module
// node so third-party fan-out stays visible.
func (a *Assembler) buildImportEdges(b *graph.Builder, baseDir string, parsed []*parser.ParsedFile, opts Options) {
	wantImports := typeSet(opts.EdgeTypes)[graph.EdgeTypeImports]
	if !wantImports && !opts.IncludeExternal {
		return
	}

	for _, pf := range parsed {
		fileID := relativeID(baseDir, pf.Path)
		fileDir := path.Dir(fileID)

		for _, imp := range pf.Imports {
			targetID := ""

			if isRelativeImport(imp.Source) {
				targetID = resolveRelative(b, fileDir, imp.Source)
			}

			if targetID == "" {
				if !opts.IncludeExternal {
					continue
				}
				// External or unresolved: represent the module itself
				targetID = imp.Source
				if _, ok := b.Node(targetID); !ok {
					b.AddNode(&graph.Node{
						ID:   targetID,
						Type: graph.NodeTypeModule,
						Name: path.Base(targetID),
						Path: targetID,
					})
				}
			}

			if !wantImports || targetID == fileID {
				continue
			}
			b.AddEdge(&graph.Edge{
				Source:   fileID,
				Target:   targetID,
				Type:     graph.EdgeTypeImports,
				Weight:   1,
				Metadata: graph.EdgeMetadata{LineNumber: imp.Line},
			})
		}
	}
}

func isRelativeImport(source string) bool {
	return source == "." || source == ".." ||
		strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

// resolveRelative joins the specifier onto the importing directory and tries
// each suffix until a known file node matches. Empty string means no match.
func resolveRelative(b *graph.Builder, fileDir, source string) string {
	base := path.Join(fileDir, source)
	for _, suffix := range importSuffixes {
		candidate := path.Clean(base + suffix)
		if _, ok := b.Node(candidate); ok {
			return candidate
		}
	}
	return ""
}
