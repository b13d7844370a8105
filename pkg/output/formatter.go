package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/code-intel/pkg/advisor"
	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/impact"
)

// maxAffectedShown caps how many affected nodes a suggestion lists before
// eliding the rest
const maxAffectedShown = 5

// PrintReport prints a nicely formatted architecture report with colors
func PrintReport(workspace string, stats analysis.Statistics, report *advisor.Analysis) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Println("Code Intel - Architecture Report")
	bold.Println("================================")
	fmt.Printf("Workspace: %s\n", workspace)
	fmt.Printf("Graph: %d nodes, %d edges\n", stats.NodeCount, stats.EdgeCount)
	fmt.Printf("Components: %d\n", stats.Components)

	// Cycle status with colors
	if stats.HasCycles {
		yellow.Println("Cycles: detected")
	} else {
		green.Println("Cycles: none")
	}
	fmt.Println()

	// Suggestion list, most severe first
	if len(report.Suggestions) > 0 {
		red.Println("FINDINGS:")
		for _, s := range report.Suggestions {
			severityColor(s.Severity).Printf("  [%s] %s\n", strings.ToUpper(string(s.Severity)), s.Title)
			fmt.Printf("    %s\n", s.Description)
			cyan.Printf("    Affected: %s\n", joinAffected(s.AffectedNodes))
			fmt.Printf("    Recommendation: %s\n", s.Recommendation)
			fmt.Println()
		}
	}

	// Summary with color based on health score
	summaryColor := green
	if report.HealthScore < 90.0 {
		summaryColor = yellow
	}
	if report.HealthScore < 60.0 {
		summaryColor = red
	}

	summaryColor.Printf("Summary: health %.1f/100 (%d finding(s))\n", report.HealthScore, len(report.Suggestions))

	// Success check mark if nothing was flagged
	if len(report.Suggestions) == 0 {
		green.Println("✓ No anti-patterns detected!")
	}
}

// PrintImpact prints a formatted impact analysis with colors
func PrintImpact(result *impact.Result) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Println("Code Intel - Impact Analysis")
	bold.Println("============================")
	fmt.Printf("Symbol: %s\n", result.Symbol)
	fmt.Printf("Defined in: %s\n", result.TargetFile)
	fmt.Printf("Usages: %d\n", result.TotalUsages)
	fmt.Println()

	if len(result.Items) == 0 {
		green.Println("✓ No usages found — safe to change!")
		return
	}

	bold.Println("AFFECTED FILES:")
	for _, item := range result.Items {
		levelColor(item.Level).Printf("  [%s] %s (score %.2f)\n", item.Level, item.FilePath, item.Score)
		fmt.Printf("    Depth %d, %d usage(s) of %s\n", item.Depth, len(item.Usages), item.Symbol)
		cyan.Printf("    %s\n", item.Reason)
	}
	fmt.Println()

	// Summary with color based on the worst level present
	summaryColor := green
	if result.Summary.Medium > 0 {
		summaryColor = color.New(color.FgYellow)
	}
	if result.Summary.Critical > 0 || result.Summary.High > 0 {
		summaryColor = color.New(color.FgRed)
	}

	summaryColor.Printf("Summary: %d critical, %d high, %d medium, %d low\n",
		result.Summary.Critical, result.Summary.High, result.Summary.Medium, result.Summary.Low)
}

func severityColor(s advisor.Severity) *color.Color {
	switch s {
	case advisor.SeverityCritical, advisor.SeverityError:
		return color.New(color.FgRed)
	case advisor.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func levelColor(l impact.Level) *color.Color {
	switch l {
	case impact.LevelCritical:
		return color.New(color.FgRed, color.Bold)
	case impact.LevelHigh:
		return color.New(color.FgRed)
	case impact.LevelMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func joinAffected(nodes []string) string {
	if len(nodes) <= maxAffectedShown {
		return strings.Join(nodes, ", ")
	}
	shown := strings.Join(nodes[:maxAffectedShown], ", ")
	return fmt.Sprintf("%s and %d more", shown, len(nodes)-maxAffectedShown)
}
