package impact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ritzau/code-intel/pkg/finder"
	"github.com/ritzau/code-intel/pkg/knowledge"
	"github.com/ritzau/code-intel/pkg/logging"
	"github.com/ritzau/code-intel/pkg/parser"
)

// ErrSymbolNotFound is returned when a symbol cannot be located by hint,
// knowledge lookup or workspace scan
var ErrSymbolNotFound = errors.New("symbol not found")

// maxDepth bounds the ripple walk: direct usages are depth 1, their
// dependents depth 2, and one more hop ends it
const maxDepth = 3

// Level buckets a score into severity for human consumption
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelHigh     Level = "HIGH"
	LevelMedium   Level = "MEDIUM"
	LevelLow      Level = "LOW"
)

// Item is one impacted file in the ripple
type Item struct {
	Symbol   string  `json:"symbol"` // The symbol searched at this depth
	FilePath string  `json:"filePath"`
	Depth    int     `json:"depth"`
	Score    float64 `json:"score"`
	Level    Level   `json:"level"`
	Reason   string  `json:"reason"`
	Usages   []Usage `json:"usages"`
}

// Summary counts items per level
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Result is a full impact analysis for one symbol
type Result struct {
	Symbol      string    `json:"symbol"`
	TargetFile  string    `json:"targetFile"`
	Items       []Item    `json:"items"` // Sorted by score, highest first
	TotalUsages int       `json:"totalUsages"`
	Summary     Summary   `json:"summary"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// Analyzer estimates the blast radius of changing a symbol. It works from
// raw source text plus optional knowledge relationships, so it needs neither
// a prebuilt graph nor a compile step. Instances are safe for concurrent
// use; the file cache is the only shared state and it is guarded.
type Analyzer struct {
	root      string
	parser    parser.Parser
	knowledge knowledge.Source // may be nil
	logger    *slog.Logger

	mu        sync.Mutex
	fileLines map[string][]string
}

// New creates an impact analyzer over a workspace root
func New(root string, p parser.Parser, ks knowledge.Source) *Analyzer {
	return &Analyzer{
		root:      root,
		parser:    p,
		knowledge: ks,
		logger:    logging.New("impact"),
		fileLines: make(map[string][]string),
	}
}

// AnalyzeImpact resolves where symbol lives, then walks outward: files with
// direct textual usages or knowledge-reported CALLED_BY/IMPORTED_BY links
// form depth 1, and their own dependents extend the ripple to depth 3.
// fileHint short-circuits resolution when the caller already knows the file.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, symbol, fileHint string) (*Result, error) {
	target, err := a.resolveTarget(ctx, symbol, fileHint)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("resolved symbol", "symbol", symbol, "file", target)

	result := &Result{
		Symbol:     symbol,
		TargetFile: target,
		AnalyzedAt: time.Now(),
	}

	type pending struct {
		file   string
		symbol string
		depth  int
	}

	visited := map[string]bool{} // keyed file@depth; the target is skipped outright
	var queue []pending

	// Depth 1: direct textual usages grouped per file
	usages, err := a.FindUsages(ctx, symbol, "")
	if err != nil {
		return nil, err
	}
	byFile := groupByFile(usages)
	for _, file := range sortedKeys(byFile) {
		if file == target {
			continue
		}
		item := a.buildItem(symbol, file, 1, byFile[file])
		result.Items = append(result.Items, item)
		visited[visitKey(file, 1)] = true
		queue = append(queue, pending{file: file, symbol: symbol, depth: 1})
	}

	// Depth 1 continued: relationships the knowledge source remembers
	for _, rel := range a.knowledgeFrontier(ctx, symbol) {
		if rel.file == target || visited[visitKey(rel.file, 1)] {
			continue
		}
		item := a.buildItem(symbol, rel.file, 1, []Usage{rel.usage})
		result.Items = append(result.Items, item)
		visited[visitKey(rel.file, 1)] = true
		queue = append(queue, pending{file: rel.file, symbol: symbol, depth: 1})
	}

	// Depths 2..3: each impacted file becomes a symbol of its own
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		derived := fileStem(cur.file)
		if derived == "" || derived == cur.symbol {
			continue
		}
		next, err := a.FindUsages(ctx, derived, "")
		if err != nil {
			a.logger.Warn("usage scan failed mid-walk", "symbol", derived, "error", err)
			continue
		}

		depth := cur.depth + 1
		nextByFile := groupByFile(next)
		for _, file := range sortedKeys(nextByFile) {
			if file == target || file == cur.file || visited[visitKey(file, depth)] {
				continue
			}
			item := a.buildItem(derived, file, depth, nextByFile[file])
			result.Items = append(result.Items, item)
			visited[visitKey(file, depth)] = true
			queue = append(queue, pending{file: file, symbol: derived, depth: depth})
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].Score > result.Items[j].Score
	})
	for _, item := range result.Items {
		result.TotalUsages += len(item.Usages)
		switch item.Level {
		case LevelCritical:
			result.Summary.Critical++
		case LevelHigh:
			result.Summary.High++
		case LevelMedium:
			result.Summary.Medium++
		default:
			result.Summary.Low++
		}
	}

	a.logger.Info("impact analyzed",
		"symbol", symbol,
		"files", len(result.Items),
		"usages", result.TotalUsages,
	)
	return result, nil
}

// resolveTarget finds the file that defines symbol: explicit hint first,
// then the knowledge source, then a full workspace scan
func (a *Analyzer) resolveTarget(ctx context.Context, symbol, fileHint string) (string, error) {
	if fileHint != "" {
		return a.normalize(fileHint), nil
	}

	if file := a.lookupDefinition(ctx, symbol); file != "" {
		return file, nil
	}

	if file := a.scanForDefinition(ctx, symbol); file != "" {
		return file, nil
	}

	return "", fmt.Errorf("resolve %q: %w", symbol, ErrSymbolNotFound)
}

// lookupDefinition asks the knowledge source where a symbol is defined.
// Results are verified against the filesystem before being trusted.
func (a *Analyzer) lookupDefinition(ctx context.Context, symbol string) string {
	if a.knowledge == nil {
		return ""
	}
	results, err := a.knowledge.Search(ctx, fmt.Sprintf("definition of %s", symbol), knowledge.Options{
		Domain: knowledge.DomainCodeSearch,
		Limit:  5,
	})
	if err != nil {
		a.logger.Warn("definition lookup failed, falling back to scan", "symbol", symbol, "error", err)
		return ""
	}
	for _, res := range results {
		file, ok := res.MetaString("file")
		if !ok {
			file, ok = res.MetaString("filePath")
		}
		if !ok {
			continue
		}
		file = a.normalize(file)
		if _, err := os.Stat(filepath.Join(a.root, filepath.FromSlash(file))); err == nil {
			return file
		}
	}
	return ""
}

// scanForDefinition parses workspace files until one declares the symbol
func (a *Analyzer) scanForDefinition(ctx context.Context, symbol string) string {
	files, err := finder.FindSourceFiles(a.root, finder.Options{})
	if err != nil {
		a.logger.Warn("definition scan failed", "error", err)
		return ""
	}
	for _, path := range files {
		if ctx.Err() != nil {
			return ""
		}
		pf, err := a.parser.Parse(ctx, path)
		if err != nil || pf == nil {
			continue
		}
		for _, entity := range pf.Entities {
			if entity.Name == symbol {
				return a.normalize(path)
			}
		}
	}
	return ""
}

// knowledgeRelation is one CALLED_BY/IMPORTED_BY hit turned into a frontier entry
type knowledgeRelation struct {
	file  string
	usage Usage
}

// knowledgeFrontier folds remembered caller/importer relationships into the
// depth-1 frontier. Best effort: failures only shrink the frontier.
func (a *Analyzer) knowledgeFrontier(ctx context.Context, symbol string) []knowledgeRelation {
	if a.knowledge == nil {
		return nil
	}
	results, err := a.knowledge.Search(ctx, fmt.Sprintf("relationships of %s", symbol), knowledge.Options{
		Domain: knowledge.DomainRelationships,
		Limit:  50,
	})
	if err != nil {
		a.logger.Warn("relationship lookup failed, textual usages only", "symbol", symbol, "error", err)
		return nil
	}

	var relations []knowledgeRelation
	for _, res := range results {
		rel, _ := res.MetaString("relationship")
		var usageType UsageType
		switch strings.ToUpper(rel) {
		case "CALLED_BY":
			usageType = UsageCall
		case "IMPORTED_BY":
			usageType = UsageImport
		default:
			continue
		}
		file, ok := res.MetaString("file")
		if !ok {
			file, ok = res.MetaString("source")
		}
		if !ok {
			continue
		}
		line, _ := res.MetaInt("lineNumber")
		relations = append(relations, knowledgeRelation{
			file: a.normalize(file),
			usage: Usage{
				FilePath: a.normalize(file),
				Line:     line,
				Type:     usageType,
				Context:  res.Content,
			},
		})
	}
	return relations
}

// buildItem scores one impacted file
func (a *Analyzer) buildItem(symbol, file string, depth int, usages []Usage) Item {
	score := scoreImpact(depth, len(usages), file)
	lvl := classifyLevel(score, depth, file)
	return Item{
		Symbol:   symbol,
		FilePath: file,
		Depth:    depth,
		Score:    score,
		Level:    lvl,
		Reason:   buildReason(lvl, depth, usages),
		Usages:   usages,
	}
}

// normalize maps any path form onto the workspace-relative slash form used
// throughout results
func (a *Analyzer) normalize(path string) string {
	if rel, err := filepath.Rel(a.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// fileStem derives the follow-up symbol for the next ripple: the file's base
// name without extension
func fileStem(file string) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

func visitKey(file string, depth int) string {
	return fmt.Sprintf("%s@%d", file, depth)
}

func groupByFile(usages []Usage) map[string][]Usage {
	grouped := make(map[string][]Usage)
	for _, u := range usages {
		grouped[u.FilePath] = append(grouped[u.FilePath], u)
	}
	return grouped
}

func sortedKeys(m map[string][]Usage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
