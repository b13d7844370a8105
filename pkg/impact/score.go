package impact

import (
	"fmt"
	"math"
	"strings"
)

// Path fragments that adjust how much a file matters. Checked in order:
// test code barely matters, config files a little, core modules double.
var (
	testMarkers   = []string{"test", "spec", "__tests__", "__mocks__"}
	configMarkers = []string{"config", "webpack", "babel", "settings", "setup"}
	coreMarkers   = []string{"core", "main", "index", "app", "server"}
	apiMarkers    = []string{"api", "service", "controller"}
)

// scoreImpact combines depth decay, usage volume and file criticality:
//
//	score = 100/2^(depth-1) * min(usages,10)/10 * criticality
//
// rounded to two decimals. A heavily used symbol in a core file at depth 1
// tops out at 200.
func scoreImpact(depth, usageCount int, filePath string) float64 {
	base := 100.0 / math.Pow(2, float64(depth-1))
	volume := math.Min(float64(usageCount), 10) / 10.0
	score := base * volume * criticality(filePath)
	return math.Round(score*100) / 100
}

// criticality weighs a file by what its path suggests it is
func criticality(filePath string) float64 {
	p := strings.ToLower(filePath)
	switch {
	case containsAny(p, testMarkers):
		return 0.3
	case containsAny(p, configMarkers):
		return 0.5
	case containsAny(p, coreMarkers):
		return 2.0
	case containsAny(p, apiMarkers):
		return 1.5
	default:
		return 1.0
	}
}

// classifyLevel buckets a score. Critical is reserved for direct usages in
// core files; medium catches everything at depth 2 regardless of score so
// second-order effects stay visible.
func classifyLevel(score float64, depth int, filePath string) Level {
	isCore := containsAny(strings.ToLower(filePath), coreMarkers)
	switch {
	case score >= 80 && depth == 1 && isCore:
		return LevelCritical
	case score >= 50 && depth == 1:
		return LevelHigh
	case score >= 20 || depth == 2:
		return LevelMedium
	default:
		return LevelLow
	}
}

// buildReason produces the one-line justification attached to each item
func buildReason(lvl Level, depth int, usages []Usage) string {
	count := len(usages)
	switch lvl {
	case LevelCritical:
		return fmt.Sprintf("%d direct %s usage(s) in a core module", count, dominantType(usages))
	case LevelHigh:
		return fmt.Sprintf("%d direct usage(s) likely to break on change", count)
	case LevelMedium:
		return fmt.Sprintf("%d usage(s) at depth %d may need updates", count, depth)
	default:
		return fmt.Sprintf("%d distant usage(s), low breakage risk", count)
	}
}

// dominantType returns the most frequent usage type, defaulting to reference
func dominantType(usages []Usage) UsageType {
	counts := make(map[UsageType]int)
	for _, u := range usages {
		counts[u.Type]++
	}
	best := UsageReference
	bestCount := 0
	for _, typ := range []UsageType{UsageCall, UsageImport, UsageInheritance, UsageReference} {
		if counts[typ] > bestCount {
			best = typ
			bestCount = counts[typ]
		}
	}
	return best
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
