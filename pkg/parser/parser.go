package parser

import "context"

// EntityType represents the kind of symbol a parser extracted
type EntityType string

const (
	EntityFunction  EntityType = "function"
	EntityClass     EntityType = "class"
	EntityMethod    EntityType = "method"
	EntityInterface EntityType = "interface"
	EntityVariable  EntityType = "variable"
)

// Entity is a named symbol found in a source file
type Entity struct {
	Name      string     `json:"name"`
	Type      EntityType `json:"type"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
}

// Import is a single import statement as written in the source
type Import struct {
	Source    string   `json:"source"`          // Module specifier, e.g. "./util" or "lodash"
	Names     []string `json:"names,omitempty"` // Imported names, when the language has them
	IsDefault bool     `json:"isDefault,omitempty"`
	Line      int      `json:"line"`
}

// Export is a symbol the file makes visible to importers
type Export struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// ParsedFile is the structural summary of one source file
type ParsedFile struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Entities []Entity `json:"entities"`
	Imports  []Import `json:"imports"`
	Exports  []Export `json:"exports"`
}

// Functions returns how many callable entities the file declares
func (f *ParsedFile) Functions() int {
	n := 0
	for _, e := range f.Entities {
		if e.Type == EntityFunction || e.Type == EntityMethod {
			n++
		}
	}
	return n
}

// Classes returns how many type-like entities the file declares
func (f *ParsedFile) Classes() int {
	n := 0
	for _, e := range f.Entities {
		if e.Type == EntityClass || e.Type == EntityInterface {
			n++
		}
	}
	return n
}

// Parser turns source files into structural summaries. Implementations are
// provided by the host application; the engine only depends on this contract.
//
// Parse returns (nil, nil) for files the implementation does not support.
// Callers treat that as "skip", not as an error.
type Parser interface {
	Parse(ctx context.Context, path string) (*ParsedFile, error)
}
