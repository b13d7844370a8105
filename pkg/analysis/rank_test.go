package analysis

import (
	"math"
	"testing"
)

func TestCalculateImportanceScores_SumsToOne(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
	}{
		{"acyclic with dangling sink", []string{"a", "b", "c"}, [][2]string{{"a", "c"}, {"b", "c"}}},
		{"cycle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}},
		{"isolated nodes", []string{"a", "b"}, nil},
		{"single node", []string{"a"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(buildGraph(tt.nodes, tt.edges))
			scores := a.CalculateImportanceScores()

			sum := 0.0
			for _, s := range scores {
				sum += s
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("Expected scores to sum to 1.0, got %v (scores %v)", sum, scores)
			}
		})
	}
}

func TestCalculateImportanceScores_HubScoresHighest(t *testing.T) {
	// Everything points at core
	a := NewAnalyzer(buildGraph(
		[]string{"core", "a", "b", "c"},
		[][2]string{{"a", "core"}, {"b", "core"}, {"c", "core"}},
	))

	scores := a.CalculateImportanceScores()
	for _, id := range []string{"a", "b", "c"} {
		if scores["core"] <= scores[id] {
			t.Errorf("Expected core (%v) above %s (%v)", scores["core"], id, scores[id])
		}
	}
}

func TestCalculateImportanceScores_EmptyGraph(t *testing.T) {
	a := NewAnalyzer(buildGraph(nil, nil))
	if scores := a.CalculateImportanceScores(); len(scores) != 0 {
		t.Errorf("Expected empty scores, got %v", scores)
	}
}

func TestCalculateBetweennessCentrality_BrokerGetsTheCredit(t *testing.T) {
	// Chain: a -> broker -> b. Only the broker sits on an interior.
	a := NewAnalyzer(buildGraph(
		[]string{"a", "broker", "b"},
		[][2]string{{"a", "broker"}, {"broker", "b"}},
	))

	scores := a.CalculateBetweennessCentrality()
	if scores["broker"] != 1.0 {
		t.Errorf("Expected normalized broker score 1.0, got %v", scores["broker"])
	}
	if scores["a"] != 0 || scores["b"] != 0 {
		t.Errorf("Expected endpoints at 0, got a=%v b=%v", scores["a"], scores["b"])
	}
}

func TestCalculateBetweennessCentrality_NoPathsMeansAllZero(t *testing.T) {
	a := NewAnalyzer(buildGraph([]string{"a", "b"}, nil))

	scores := a.CalculateBetweennessCentrality()
	if len(scores) != 2 || scores["a"] != 0 || scores["b"] != 0 {
		t.Errorf("Expected zero scores for edgeless graph, got %v", scores)
	}
}
