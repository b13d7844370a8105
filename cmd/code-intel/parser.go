package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ritzau/code-intel/pkg/parser"
)

// lineParser is the parser bundled with the CLI: a line-oriented scanner for
// TypeScript, JavaScript and Python that extracts imports and top-level
// declarations. It does not track class bodies or multi-line statements;
// hosts with a real parser plug in their own parser.Parser instead.
type lineParser struct{}

func newLineParser() *lineParser {
	return &lineParser{}
}

var (
	jsExportFrom = regexp.MustCompile(`^\s*export\s+(?:\*|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]`)
	jsImport     = regexp.MustCompile(`^\s*import\s+(?:(.+?)\s+from\s+)?['"]([^'"]+)['"]`)
	jsRequire    = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	jsFunction   = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+(\w+)`)
	jsClass      = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	jsInterface  = regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(\w+)`)
	jsArrow      = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?(?:\([^)]*\)|[\w$]+)\s*=>`)
	jsExportDecl = regexp.MustCompile(`^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function|class|interface|const|let|var)\s+(\w+)`)

	pyFrom   = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+(.+)`)
	pyImport = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pyDef    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)`)
	pyClass  = regexp.MustCompile(`^\s*class\s+(\w+)`)
)

// Parse reads the file and scans it line by line. Unsupported extensions
// return (nil, nil) so the caller skips them.
func (lp *lineParser) Parse(ctx context.Context, path string) (*parser.ParsedFile, error) {
	lang := languageFor(strings.ToLower(filepath.Ext(path)))
	if lang == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pf := &parser.ParsedFile{Path: path, Language: lang}
	lines := strings.Split(string(data), "\n")
	if lang == "python" {
		scanPython(pf, lines)
	} else {
		scanScript(pf, lines)
	}
	return pf, nil
}

func languageFor(ext string) string {
	switch ext {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".py":
		return "python"
	}
	return ""
}

// scanScript handles TypeScript and JavaScript lines
func scanScript(pf *parser.ParsedFile, lines []string) {
	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		// Re-exports pull the source in like an import does
		if m := jsExportFrom.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, parser.Import{Source: m[1], Line: n})
			continue
		}
		if m := jsImport.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, parser.Import{
				Source:    m[2],
				Names:     parseSpecifiers(m[1]),
				IsDefault: hasDefaultSpecifier(m[1]),
				Line:      n,
			})
			continue
		}
		if m := jsRequire.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, parser.Import{Source: m[1], Line: n})
		}

		switch {
		case jsFunction.MatchString(line):
			addEntity(pf, jsFunction.FindStringSubmatch(line)[1], parser.EntityFunction, n)
		case jsClass.MatchString(line):
			addEntity(pf, jsClass.FindStringSubmatch(line)[1], parser.EntityClass, n)
		case jsInterface.MatchString(line):
			addEntity(pf, jsInterface.FindStringSubmatch(line)[1], parser.EntityInterface, n)
		case jsArrow.MatchString(line):
			addEntity(pf, jsArrow.FindStringSubmatch(line)[1], parser.EntityFunction, n)
		}

		if m := jsExportDecl.FindStringSubmatch(line); m != nil {
			pf.Exports = append(pf.Exports, parser.Export{Name: m[1], Line: n})
		}
	}
}

// scanPython handles Python lines; indented defs are recorded as methods
func scanPython(pf *parser.ParsedFile, lines []string) {
	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := pyFrom.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, parser.Import{
				Source: m[1],
				Names:  parseSpecifiers(m[2]),
				Line:   n,
			})
			continue
		}
		if m := pyImport.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, parser.Import{Source: m[1], Line: n})
			continue
		}

		if m := pyDef.FindStringSubmatch(line); m != nil {
			typ := parser.EntityFunction
			if m[1] != "" {
				typ = parser.EntityMethod
			}
			addEntity(pf, m[2], typ, n)
			continue
		}
		if m := pyClass.FindStringSubmatch(line); m != nil {
			addEntity(pf, m[1], parser.EntityClass, n)
		}
	}
}

func addEntity(pf *parser.ParsedFile, name string, typ parser.EntityType, line int) {
	pf.Entities = append(pf.Entities, parser.Entity{
		Name:      name,
		Type:      typ,
		StartLine: line,
		EndLine:   line,
	})
}

// hasDefaultSpecifier reports whether an import clause binds the module's
// default export: "axios" or "Widget, { render }" do, "{ render }" and
// "* as ns" do not
func hasDefaultSpecifier(clause string) bool {
	clause = strings.TrimSpace(clause)
	if clause == "type" || strings.HasPrefix(clause, "type ") || strings.HasPrefix(clause, "type{") {
		clause = strings.TrimSpace(clause[4:])
	}
	return clause != "" && clause[0] != '{' && clause[0] != '*'
}

// parseSpecifiers splits an import clause like "Widget, { a, b as c }" into
// the locally bound names
func parseSpecifiers(spec string) []string {
	spec = strings.NewReplacer("{", "", "}", "").Replace(spec)
	var names []string
	for _, part := range strings.Split(spec, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) > 1 && fields[0] == "type" {
			// Type-only import; the bound name follows
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		// "a as b" and "* as ns" bind the right-hand name
		if len(fields) == 3 && fields[1] == "as" {
			name = fields[2]
		}
		if name == "*" || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
