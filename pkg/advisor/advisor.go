package advisor

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/logging"
)

// Severity grades how urgently a suggestion should be acted on
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// SuggestionType names the anti-pattern a detector looks for
type SuggestionType string

const (
	TypeCircularDependency SuggestionType = "circular-dependency"
	TypeGodClass           SuggestionType = "god-class"
	TypeTightCoupling      SuggestionType = "tight-coupling"
	TypeUnstableDependency SuggestionType = "unstable-dependency"
	TypeDeadCode           SuggestionType = "dead-code"
	TypeFeatureEnvy        SuggestionType = "feature-envy"
	TypeMissingAbstraction SuggestionType = "missing-abstraction"
)

// Suggestion is one detected problem with a proposed fix
type Suggestion struct {
	ID             string         `json:"id"`
	Type           SuggestionType `json:"type"`
	Severity       Severity       `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	AffectedNodes  []string       `json:"affectedNodes"`
	Recommendation string         `json:"recommendation"`
	Confidence     float64        `json:"confidence"` // Detector certainty in [0, 1]
}

// Analysis is the advisor's full report over one graph
type Analysis struct {
	Suggestions []Suggestion `json:"suggestions"` // Most severe first
	HealthScore float64      `json:"healthScore"` // 0 (bad) to 100 (clean)
	NodeCount   int          `json:"nodeCount"`
	EdgeCount   int          `json:"edgeCount"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Options tunes the advisor
type Options struct {
	MinConfidence  float64       // Suggestions below this are dropped; 0 keeps everything
	Enhancer       Enhancer      // Optional recommendation rewriter
	EnhanceTimeout time.Duration // Per-suggestion budget, defaults to 5s
}

// DefaultOptions returns the advisor defaults
func DefaultOptions() Options {
	return Options{
		MinConfidence:  0,
		EnhanceTimeout: 5 * time.Second,
	}
}

// Advisor inspects an analyzed graph for architectural anti-patterns and
// scores the overall health of the codebase
type Advisor struct {
	opts   Options
	logger *slog.Logger
}

// New creates an advisor
func New(opts Options) *Advisor {
	if opts.EnhanceTimeout <= 0 {
		opts.EnhanceTimeout = 5 * time.Second
	}
	return &Advisor{
		opts:   opts,
		logger: logging.New("advisor"),
	}
}

// Advise runs every detector over the analyzed graph, filters by confidence
// and computes the health score. Detectors cannot fail; optional enhancement
// failures are logged and the stock recommendation kept.
func (ad *Advisor) Advise(ctx context.Context, az *analysis.Analyzer) *Analysis {
	g := az.Graph()

	var suggestions []Suggestion
	suggestions = append(suggestions, ad.detectCircularDependencies(az)...)
	suggestions = append(suggestions, ad.detectGodClasses(az)...)
	suggestions = append(suggestions, ad.detectTightCoupling(az)...)
	suggestions = append(suggestions, ad.detectUnstableDependencies(az)...)
	suggestions = append(suggestions, ad.detectDeadCode(az)...)
	suggestions = append(suggestions, ad.detectFeatureEnvy(az)...)
	suggestions = append(suggestions, ad.detectMissingAbstractions(az)...)

	if ad.opts.MinConfidence > 0 {
		kept := suggestions[:0]
		for _, s := range suggestions {
			if s.Confidence >= ad.opts.MinConfidence {
				kept = append(kept, s)
			}
		}
		suggestions = kept
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if severityRank(suggestions[i].Severity) != severityRank(suggestions[j].Severity) {
			return severityRank(suggestions[i].Severity) > severityRank(suggestions[j].Severity)
		}
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return firstAffected(suggestions[i]) < firstAffected(suggestions[j])
	})

	ad.applyEnhancements(ctx, suggestions)

	report := &Analysis{
		Suggestions: suggestions,
		HealthScore: healthScore(len(g.Nodes), suggestions),
		NodeCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		GeneratedAt: time.Now(),
	}
	ad.logger.Info("architecture reviewed",
		"suggestions", len(suggestions),
		"health", report.HealthScore,
	)
	return report
}

// healthScore penalizes each suggestion by severity weight times affected
// node count, normalized so a graph where every node carries a critical
// finding lands at 0. An empty graph is perfectly healthy.
func healthScore(nodeCount int, suggestions []Suggestion) float64 {
	if nodeCount == 0 {
		return 100
	}
	var penalty float64
	for _, s := range suggestions {
		penalty += severityWeight(s.Severity) * float64(len(s.AffectedNodes))
	}
	score := 100 - 100*penalty/(float64(nodeCount)*10)
	if score < 0 {
		return 0
	}
	return math.Round(score*10) / 10
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}

func severityWeight(s Severity) float64 {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityError:
		return 5
	case SeverityWarning:
		return 2
	default:
		return 0.5
	}
}

func firstAffected(s Suggestion) string {
	if len(s.AffectedNodes) == 0 {
		return ""
	}
	return s.AffectedNodes[0]
}
