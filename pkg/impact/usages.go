package impact

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/ritzau/code-intel/pkg/finder"
)

// UsageType labels how a symbol occurrence reads in source
type UsageType string

const (
	UsageCall        UsageType = "call"
	UsageImport      UsageType = "import"
	UsageInheritance UsageType = "inheritance"
	UsageReference   UsageType = "reference"
)

// Usage is one occurrence of a symbol in a file
type Usage struct {
	FilePath string    `json:"filePath"`
	Line     int       `json:"line"` // 1-based
	Type     UsageType `json:"type"`
	Context  string    `json:"context"` // The line plus one line either side
}

// symbolPatterns holds the per-symbol compiled matchers. Classification is
// first match wins, in declaration order.
type symbolPatterns struct {
	ordered []struct {
		re  *regexp.Regexp
		typ UsageType
	}
}

func compilePatterns(symbol string) *symbolPatterns {
	q := regexp.QuoteMeta(symbol)
	p := &symbolPatterns{}
	add := func(expr string, typ UsageType) {
		p.ordered = append(p.ordered, struct {
			re  *regexp.Regexp
			typ UsageType
		}{regexp.MustCompile(expr), typ})
	}
	add(`\b`+q+`\s*\(`, UsageCall)
	add(`\.`+q+`\b|\b`+q+`\.`, UsageReference)
	add(`\bextends\s+`+q+`\b`, UsageInheritance)
	add(`\b(?:import|from|require)\b.*\b`+q+`\b`, UsageImport)
	add(`\b`+q+`\b`, UsageReference)
	return p
}

// classify returns the usage type for a line, or "" when the symbol does
// not occur on it
func (p *symbolPatterns) classify(line string) UsageType {
	for _, cand := range p.ordered {
		if cand.re.MatchString(line) {
			return cand.typ
		}
	}
	return ""
}

// FindUsages scans workspace source files line by line for occurrences of
// symbol. scope, when non-empty, restricts the scan to paths containing it.
// Trailing line comments are stripped before matching so commented-out code
// does not count. Unreadable files are logged and skipped.
func (a *Analyzer) FindUsages(ctx context.Context, symbol, scope string) ([]Usage, error) {
	opts := finder.Options{}
	if scope != "" {
		opts.Include = []string{scope}
	}
	files, err := finder.FindSourceFiles(a.root, opts)
	if err != nil {
		return nil, err
	}

	patterns := compilePatterns(symbol)
	var usages []Usage
	for _, path := range files {
		if ctx.Err() != nil {
			return usages, ctx.Err()
		}
		lines, err := a.readLines(path)
		if err != nil {
			a.logger.Warn("skipping unreadable file", "file", path, "error", err)
			continue
		}
		rel := a.normalize(path)
		for i, line := range lines {
			code := stripLineComment(line)
			if strings.TrimSpace(code) == "" {
				continue
			}
			typ := patterns.classify(code)
			if typ == "" {
				continue
			}
			usages = append(usages, Usage{
				FilePath: rel,
				Line:     i + 1,
				Type:     typ,
				Context:  contextWindow(lines, i),
			})
		}
	}
	return usages, nil
}

// readLines loads a file's lines through the analyzer's cache
func (a *Analyzer) readLines(path string) ([]string, error) {
	a.mu.Lock()
	cached, ok := a.fileLines[path]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")

	a.mu.Lock()
	a.fileLines[path] = lines
	a.mu.Unlock()
	return lines, nil
}

// InvalidateCache drops cached file contents so the next scan rereads from
// disk. Called after watch events.
func (a *Analyzer) InvalidateCache() {
	a.mu.Lock()
	a.fileLines = make(map[string][]string)
	a.mu.Unlock()
}

// stripLineComment removes // and # trailing comments. Comment markers
// inside string literals are not recognized; that level of precision is not
// needed for usage counting.
func stripLineComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return line
}

// contextWindow renders the matched line with one line either side
func contextWindow(lines []string, i int) string {
	start := i - 1
	if start < 0 {
		start = 0
	}
	end := i + 2
	if end > len(lines) {
		end = len(lines)
	}
	window := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		window = append(window, strings.TrimRight(l, "\r"))
	}
	return strings.Join(window, "\n")
}
