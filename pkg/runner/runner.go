package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ritzau/code-intel/pkg/advisor"
	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/assembler"
	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/impact"
	"github.com/ritzau/code-intel/pkg/logging"
	"github.com/ritzau/code-intel/pkg/watcher"
	"github.com/ritzau/code-intel/pkg/web"
)

// totalSteps is the number of status steps a full run publishes
const totalSteps = 4

// Runner drives the analysis pipeline behind a web server: assemble the
// graph, analyze it, review the architecture, and push every result into
// the server as it lands.
type Runner struct {
	workspace string
	server    *web.Server
	assembler *assembler.Assembler
	advisor   *advisor.Advisor
	impact    *impact.Analyzer // may be nil; its cache is flushed before re-runs
	assemble  assembler.Options
	mu        sync.Mutex // Prevent concurrent analysis runs
	logger    *slog.Logger
}

// Config wires the pipeline stages a Runner drives
type Config struct {
	Workspace string
	Server    *web.Server
	Assembler *assembler.Assembler
	Advisor   *advisor.Advisor
	Impact    *impact.Analyzer  // optional
	Assemble  assembler.Options // passed to every Assemble call
}

// Options configures a single analysis run
type Options struct {
	Reason string // e.g., "initial analysis", "files changed"
}

// New creates a runner around an already-wired server and pipeline
func New(cfg Config) *Runner {
	return &Runner{
		workspace: cfg.Workspace,
		server:    cfg.Server,
		assembler: cfg.Assembler,
		advisor:   cfg.Advisor,
		impact:    cfg.Impact,
		assemble:  cfg.Assemble,
		logger:    logging.New("runner"),
	}
}

// Run executes the full pipeline once and publishes progress along the way.
// Runs are serialized: a run triggered while another is in flight waits for
// it to finish.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	// Lock to prevent concurrent analysis
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("starting analysis", "reason", opts.Reason)

	if r.impact != nil {
		r.impact.InvalidateCache()
	}

	// Phase 1: Assemble the code graph
	r.server.PublishAnalysisStatus("assembling", "Assembling code graph...", 1, totalSteps)

	g, err := r.assembler.Assemble(ctx, r.workspace, r.assemble)
	if err != nil {
		r.server.PublishAnalysisStatus("error", fmt.Sprintf("Error assembling graph: %v", err), 1, totalSteps)
		return fmt.Errorf("assemble workspace: %w", err)
	}
	r.logger.Info("graph assembled", "nodes", len(g.Nodes), "edges", len(g.Edges))

	// Phase 2: Graph analysis. Cycle flags are stamped before the graph is
	// handed to the server so nothing mutates it once it is being served.
	r.server.PublishAnalysisStatus("analyzing", "Analyzing dependencies...", 2, totalSteps)

	az := analysis.NewAnalyzer(g)
	cycles := az.FindCircularDependencies()
	markCircularEdges(g, cycles)
	if len(cycles) > 0 {
		r.logger.Warn("circular dependencies detected", "count", len(cycles))
	}

	r.server.SetGraph(g)
	r.server.PublishGraphUpdate("partial_data", false)

	stats := az.GetStatistics()
	r.server.SetStatistics(stats)

	// Phase 3: Architecture review
	r.server.PublishAnalysisStatus("advising", "Reviewing architecture...", 3, totalSteps)

	report := r.advisor.Advise(ctx, az)
	r.server.SetArchitecture(report)
	r.logger.Info("architecture reviewed",
		"suggestions", len(report.Suggestions),
		"health", report.HealthScore)

	// Publish final state: the graph event carries the health score now that
	// the review is in place
	r.server.PublishGraphUpdate("complete", true)
	r.server.PublishAnalysisStatus("ready", "Analysis complete", totalSteps, totalSteps)

	r.logger.Info("analysis complete", "reason", opts.Reason)
	return nil
}

// Watch consumes debounced change batches and re-runs the pipeline for each.
// It returns when ctx is cancelled or the channel closes.
func (r *Runner) Watch(ctx context.Context, events <-chan watcher.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			change := watcher.AnalyzeChanges(event)

			// A single debouncer flush can emit a tree batch immediately
			// followed by a source batch; fold whatever is already queued
			// into the same run.
		drain:
			for {
				select {
				case next, ok := <-events:
					if !ok {
						break drain
					}
					more := watcher.AnalyzeChanges(next)
					change.NeedRescan = change.NeedRescan || more.NeedRescan
					change.NeedReanalysis = change.NeedReanalysis || more.NeedReanalysis
					change.ChangedFiles = append(change.ChangedFiles, more.ChangedFiles...)
				default:
					break drain
				}
			}

			if !change.NeedReanalysis {
				continue
			}

			reason := fmt.Sprintf("%d files changed", len(change.ChangedFiles))
			if change.NeedRescan {
				reason = "workspace layout changed"
			}
			if err := r.Run(ctx, Options{Reason: reason}); err != nil {
				r.logger.Error("re-analysis failed", "reason", reason, "error", err)
			}
		}
	}
}

// markCircularEdges stamps IsCircular on every dependency edge that sits on
// one of the detected cycles
func markCircularEdges(g *graph.Graph, cycles [][]string) {
	if len(cycles) == 0 {
		return
	}

	onCycle := make(map[string]bool)
	for _, cycle := range cycles {
		for i, src := range cycle {
			dst := cycle[(i+1)%len(cycle)]
			onCycle[src+" -> "+dst] = true
		}
	}

	for _, e := range g.Edges {
		if e.Type.IsDependency() && onCycle[e.Source+" -> "+e.Target] {
			e.Metadata.IsCircular = true
		}
	}
}
