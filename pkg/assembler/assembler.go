package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ritzau/code-intel/pkg/finder"
	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/knowledge"
	"github.com/ritzau/code-intel/pkg/layout"
	"github.com/ritzau/code-intel/pkg/logging"
	"github.com/ritzau/code-intel/pkg/parser"
)

// ErrRootNotFound is returned when the root path can be resolved neither as
// a file nor as a directory. It is the one fatal condition in the pipeline;
// everything downstream degrades per file instead.
var ErrRootNotFound = errors.New("root path not found")

// parseCacheSize bounds the per-assembler parse cache. Entries are keyed by
// path and mtime, so touching a file naturally invalidates it.
const parseCacheSize = 1024

// Options steers what ends up in the assembled graph
type Options struct {
	NodeTypes       []graph.NodeType // Node types to build and keep
	EdgeTypes       []graph.EdgeType // Edge types to keep; contains edges are only built when listed
	IncludeExternal bool             // Keep module nodes for unresolved/external imports
	MinImpactScore  float64          // Drop nodes scored below this (0 keeps everything)
	VulnerableOnly  bool             // Keep only nodes with recorded vulnerabilities
	IgnoreDirs      []string         // Discovery prune list; nil means finder defaults
	Include         []string         // Discovery include substrings
	Exclude         []string         // Discovery exclude substrings
	Layout          layout.Algorithm
}

// DefaultOptions returns the standard full assembly: files plus class-like
// and callable symbols, every edge type, force-directed layout
func DefaultOptions() Options {
	return Options{
		NodeTypes: []graph.NodeType{
			graph.NodeTypeFile, graph.NodeTypeModule, graph.NodeTypeClass,
			graph.NodeTypeFunction, graph.NodeTypeMethod, graph.NodeTypeInterface,
		},
		EdgeTypes: []graph.EdgeType{
			graph.EdgeTypeImports, graph.EdgeTypeCalls, graph.EdgeTypeExtends,
			graph.EdgeTypeImplements, graph.EdgeTypeContains, graph.EdgeTypeReferences,
		},
		Layout: layout.Force,
	}
}

// Assembler builds code graphs from a workspace using an external parser and
// an optional knowledge source. Each instance keeps a private parse cache;
// instances do not share state and a single instance must not be used from
// multiple goroutines at once.
type Assembler struct {
	parser    parser.Parser
	knowledge knowledge.Source // may be nil: enrichment is skipped
	cache     *lru.Cache[string, *parser.ParsedFile]
	logger    *slog.Logger
}

// New creates an assembler around a parser and an optional knowledge source
func New(p parser.Parser, ks knowledge.Source) (*Assembler, error) {
	cache, err := lru.New[string, *parser.ParsedFile](parseCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &Assembler{
		parser:    p,
		knowledge: ks,
		cache:     cache,
		logger:    logging.New("assembler"),
	}, nil
}

// Assemble runs the full pipeline: discover, parse, build nodes and edges,
// enrich from the knowledge source, filter, and lay out. Only an unresolvable
// root aborts the build; per-file trouble is logged and skipped.
func (a *Assembler) Assemble(ctx context.Context, root string, opts Options) (*graph.Graph, error) {
	opts = withDefaults(opts)
	start := time.Now()

	// Stage 1: resolve the root into a file list
	files, baseDir, rootID, err := a.resolveRoot(root, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("discovered files", "root", root, "count", len(files))

	// Stage 2: parse what we can
	parsed := a.parseFiles(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := graph.NewBuilder()
	b.SetRootFile(rootID)

	// Stages 3-5: nodes, symbols, import edges
	a.buildFileNodes(b, baseDir, parsed)
	a.buildSymbolNodes(b, baseDir, parsed, opts)
	a.buildImportEdges(b, baseDir, parsed, opts)

	// Stage 6: best-effort enrichment
	a.enrich(ctx, b, root)

	// Stage 7: filter down to what was asked for
	g := a.filter(b.Build(), opts)

	// Stage 8: deterministic placement
	layout.Apply(g, opts.Layout)

	a.logger.Info("graph assembled",
		"root", root,
		"nodes", g.Metadata.NodeCount,
		"edges", g.Metadata.EdgeCount,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return g, nil
}

// resolveRoot turns the root argument into the file list to analyze, the
// directory node IDs are made relative to, and the root file ID when the
// root is a single file
func (a *Assembler) resolveRoot(root string, opts Options) ([]string, string, string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, "", "", fmt.Errorf("resolve root %s: %w", root, ErrRootNotFound)
	}

	if !info.IsDir() {
		baseDir := filepath.Dir(root)
		return []string{root}, baseDir, relativeID(baseDir, root), nil
	}

	files, err := finder.FindSourceFiles(root, finder.Options{
		IgnoreDirs: opts.IgnoreDirs,
		Include:    opts.Include,
		Exclude:    opts.Exclude,
	})
	if err != nil {
		return nil, "", "", fmt.Errorf("discover sources under %s: %w", root, err)
	}
	return files, root, "", nil
}

// parseFiles runs the parser over every file, consulting the cache first.
// Unsupported files (nil, nil) and parse failures are skipped.
func (a *Assembler) parseFiles(ctx context.Context, files []string) []*parser.ParsedFile {
	var out []*parser.ParsedFile
	for _, path := range files {
		if ctx.Err() != nil {
			return out
		}

		key := cacheKey(path)
		if key != "" {
			if hit, ok := a.cache.Get(key); ok {
				out = append(out, hit)
				continue
			}
		}

		pf, err := a.parser.Parse(ctx, path)
		if err != nil {
			a.logger.Warn("parse failed, skipping file", "path", path, "error", err)
			continue
		}
		if pf == nil {
			// Parser does not support this file
			continue
		}
		if pf.Path == "" {
			pf.Path = path
		}
		if key != "" {
			a.cache.Add(key, pf)
		}
		out = append(out, pf)
	}
	return out
}

// cacheKey builds a parse cache key that changes whenever the file does
func cacheKey(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
}

// relativeID normalizes a path into a slash-separated node ID relative to
// the assembly base directory
func relativeID(baseDir, path string) string {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.NodeTypes == nil {
		opts.NodeTypes = def.NodeTypes
	}
	if opts.EdgeTypes == nil {
		opts.EdgeTypes = def.EdgeTypes
	}
	if opts.Layout == "" {
		opts.Layout = def.Layout
	}
	return opts
}

// typeSet turns a slice of types into a membership map
func typeSet[T comparable](types []T) map[T]bool {
	set := make(map[T]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
