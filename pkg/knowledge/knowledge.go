package knowledge

import (
	"context"
	"strconv"
)

// Search domains understood by the engine. Sources are free to support more.
const (
	DomainRelationships = "code-relationships"
	DomainChangeHistory = "change-history"
	DomainCodeSearch    = "code-search"
)

// Options narrows a knowledge query
type Options struct {
	Limit  int    // Maximum results, 0 means source default
	Domain string // Result domain, e.g. DomainRelationships
}

// Result is one hit returned by a Source. Metadata keys are source-defined;
// use the Meta accessors instead of asserting types directly.
type Result struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"` // Relevance in [0, 1]
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetaString reads a metadata value as a string
func (r Result) MetaString(key string) (string, bool) {
	v, ok := r.Metadata[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MetaFloat reads a metadata value as a float64, converting the numeric
// types JSON and YAML decoders tend to produce
func (r Result) MetaFloat(key string) (float64, bool) {
	v, ok := r.Metadata[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MetaInt reads a metadata value as an int
func (r Result) MetaInt(key string) (int, bool) {
	f, ok := r.MetaFloat(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// MetaStrings reads a metadata value as a string list. JSON decoding yields
// []any, so both shapes are accepted.
func (r Result) MetaStrings(key string) ([]string, bool) {
	v, ok := r.Metadata[key]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// Source answers fuzzy queries about the codebase: prior relationships,
// change history, symbol definitions. Implementations are external; results
// are advisory and may be stale, so consumers verify anything they act on.
type Source interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}
