package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/code-intel/pkg/advisor"
	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/assembler"
	"github.com/ritzau/code-intel/pkg/config"
	"github.com/ritzau/code-intel/pkg/impact"
	"github.com/ritzau/code-intel/pkg/layout"
	"github.com/ritzau/code-intel/pkg/logging"
	"github.com/ritzau/code-intel/pkg/output"
	"github.com/ritzau/code-intel/pkg/parser"
	"github.com/ritzau/code-intel/pkg/runner"
	"github.com/ritzau/code-intel/pkg/watcher"
	"github.com/ritzau/code-intel/pkg/web"
)

// Debounce windows for --watch: flush after a quiet spell, but never sit on
// changes longer than the max wait
const (
	debounceQuiet   = 500 * time.Millisecond
	debounceMaxWait = 5 * time.Second
)

func main() {
	flags := pflag.NewFlagSet("code-intel", pflag.ExitOnError)
	flags.String("workspace", ".", "Path to the workspace root")
	flags.Bool("web", false, "Start web server instead of printing to console")
	flags.Int("port", 8080, "Port for web server (only used with --web)")
	flags.Bool("watch", false, "Re-run analysis when files change (only used with --web)")
	flags.Bool("open", true, "Open the browser once the web server is up")
	flags.String("layout", "force", "Graph layout: force, hierarchical, radial or organic")
	flags.String("impact", "", "Print the impact of changing this symbol and exit")
	flags.String("file", "", "File hint for --impact when the symbol is ambiguous")
	flags.Bool("external", false, "Keep external module nodes in the graph")
	flags.Float64("confidence", 0.5, "Minimum advisor suggestion confidence")
	flags.String("include", "", "Comma-separated path substrings to keep")
	flags.String("exclude", "", "Comma-separated path substrings to drop")
	flags.Bool("jsonlogs", false, "Emit logs as JSON")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	flags.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	configureLogging(cfg)

	algo, err := layout.Parse(cfg.Layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := assembler.DefaultOptions()
	opts.IncludeExternal = cfg.External
	opts.Include = cfg.IncludePatterns()
	opts.Exclude = cfg.ExcludePatterns()
	opts.Layout = algo

	p := newLineParser()

	switch {
	case cfg.WebMode:
		startWebServer(cfg, p, opts)
	case cfg.Impact != "":
		runImpact(cfg, p)
	default:
		runConsole(cfg, p, opts)
	}
}

// configureLogging maps --verbosity / -v flags onto the log level
func configureLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch {
	case cfg.Verbosity != "":
		switch strings.ToLower(cfg.Verbosity) {
		case "trace":
			level = logging.LevelTrace
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	case cfg.VerboseCnt >= 2:
		level = logging.LevelTrace
	case cfg.VerboseCnt == 1:
		level = slog.LevelDebug
	}

	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
		return
	}
	logging.SetLevel(level)
}

// runConsole assembles, analyzes and prints the colorized report
func runConsole(cfg *config.Config, p parser.Parser, opts assembler.Options) {
	ctx := context.Background()

	asm, err := assembler.New(p, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g, err := asm.Assemble(ctx, cfg.Workspace, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	az := analysis.NewAnalyzer(g)
	report := advisor.New(advisor.Options{MinConfidence: cfg.Confidence}).Advise(ctx, az)

	output.PrintReport(cfg.Workspace, az.GetStatistics(), report)
}

// runImpact resolves one symbol and prints its blast radius
func runImpact(cfg *config.Config, p parser.Parser) {
	ia := impact.New(cfg.Workspace, p, nil)

	result, err := ia.AnalyzeImpact(context.Background(), cfg.Impact, cfg.File)
	if err != nil {
		if errors.Is(err, impact.ErrSymbolNotFound) {
			fmt.Fprintf(os.Stderr, "Error: symbol %q not found under %s\n", cfg.Impact, cfg.Workspace)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	output.PrintImpact(result)
}

// startWebServer serves the UI immediately and runs the analysis in the
// background; progress streams to the browser over SSE
func startWebServer(cfg *config.Config, p parser.Parser, opts assembler.Options) {
	asm, err := assembler.New(p, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	server := web.NewServer()
	ia := impact.New(cfg.Workspace, p, nil)
	server.SetImpactAnalyzer(ia)

	r := runner.New(runner.Config{
		Workspace: cfg.Workspace,
		Server:    server,
		Assembler: asm,
		Advisor:   advisor.New(advisor.Options{MinConfidence: cfg.Confidence}),
		Impact:    ia,
		Assemble:  opts,
	})

	ctx := context.Background()
	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	fmt.Printf("Starting web server on %s\n", url)

	// Start server in background
	go func() {
		if err := server.Start(cfg.Port); err != nil {
			logging.Fatal("web server failed", "error", err)
		}
	}()

	// Wait a moment for server to start
	time.Sleep(500 * time.Millisecond)

	if cfg.OpenBrowser {
		fmt.Println("Opening browser...")
		openBrowser(url)
	}

	// Initial analysis; the UI follows along via the status stream
	go func() {
		if err := r.Run(ctx, runner.Options{Reason: "initial analysis"}); err != nil {
			logging.Error("analysis failed", "error", err)
		}
	}()

	if cfg.Watch {
		fw, err := watcher.NewFileWatcher(cfg.Workspace, nil)
		if err != nil {
			logging.Fatal("file watcher setup failed", "error", err)
		}
		if err := fw.Start(ctx); err != nil {
			logging.Fatal("file watcher start failed", "error", err)
		}

		deb := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		deb.Start(ctx)
		go r.Watch(ctx, deb.Output())

		fmt.Println("Watching for file changes...")
	}

	// Block forever (server runs in goroutine)
	select {}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
