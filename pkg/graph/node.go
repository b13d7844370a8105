package graph

// NodeType represents the kind of code element a node stands for
type NodeType string

const (
	NodeTypeFile      NodeType = "file"
	NodeTypeModule    NodeType = "module"
	NodeTypeClass     NodeType = "class"
	NodeTypeFunction  NodeType = "function"
	NodeTypeMethod    NodeType = "method"
	NodeTypeInterface NodeType = "interface"
	NodeTypeVariable  NodeType = "variable"
)

// Metrics holds the per-node measurements attached during assembly and enrichment
type Metrics struct {
	Complexity           float64 `json:"complexity"`           // Heuristic structural complexity
	ChangeFrequency      float64 `json:"changeFrequency"`      // Changes per time window, from the knowledge source
	ImpactScore          float64 `json:"impactScore"`          // Computed blast-radius score
	TestCoverage         float64 `json:"testCoverage,omitempty"`
	LinesOfCode          int     `json:"linesOfCode,omitempty"`
	CyclomaticComplexity int     `json:"cyclomaticComplexity,omitempty"`
}

// Position is a 2D placement assigned by the layout stage
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a file or symbol in the code graph
type Node struct {
	ID              string    `json:"id"`   // Unique within a graph; file path or path#symbol
	Type            NodeType  `json:"type"`
	Name            string    `json:"name"` // Display name (base name or symbol name)
	Path            string    `json:"path"` // Source file the node lives in
	Language        string    `json:"language,omitempty"`
	StartLine       int       `json:"startLine,omitempty"`
	EndLine         int       `json:"endLine,omitempty"`
	ParentID        string    `json:"parentId,omitempty"` // Containing node (file for symbols)
	Children        []string  `json:"children,omitempty"` // Contained node IDs
	Metrics         Metrics   `json:"metrics"`
	Vulnerabilities []string  `json:"vulnerabilities,omitempty"`
	Position        *Position `json:"position,omitempty"`
}
