package graph

// EdgeType represents the kind of relationship an edge encodes
type EdgeType string

const (
	EdgeTypeImports    EdgeType = "imports"
	EdgeTypeCalls      EdgeType = "calls"
	EdgeTypeExtends    EdgeType = "extends"
	EdgeTypeImplements EdgeType = "implements"
	EdgeTypeContains   EdgeType = "contains" // Structural containment, not a dependency
	EdgeTypeReferences EdgeType = "references"
)

// IsDependency reports whether the edge type expresses a dependency rather
// than structural containment. Traversal and cycle analysis only follow
// dependency edges.
func (t EdgeType) IsDependency() bool {
	return t != EdgeTypeContains
}

// EdgeMetadata carries per-edge details accumulated across merges
type EdgeMetadata struct {
	LineNumber int  `json:"lineNumber,omitempty"` // Line of the first sighting
	IsCircular bool `json:"isCircular,omitempty"` // Set when the edge sits on a detected cycle
	Count      int  `json:"count"`                // Number of times this relationship was observed
}

// Edge represents a typed, weighted relationship between two nodes
type Edge struct {
	ID       string       `json:"id"` // Same as Key(source, type, target)
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Type     EdgeType     `json:"type"`
	Weight   float64      `json:"weight"`
	Metadata EdgeMetadata `json:"metadata"`
}

// Key returns the identity key for an edge. Two edges with the same key are
// the same relationship and get merged on insert.
func Key(source string, typ EdgeType, target string) string {
	return source + ":" + string(typ) + ":" + target
}
