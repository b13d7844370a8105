package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ritzau/code-intel/pkg/advisor"
	"github.com/ritzau/code-intel/pkg/analysis"
	"github.com/ritzau/code-intel/pkg/graph"
	"github.com/ritzau/code-intel/pkg/impact"
	"github.com/ritzau/code-intel/pkg/logging"
	"github.com/ritzau/code-intel/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// Server exposes the analysis results over HTTP: JSON endpoints for the
// current graph, statistics, architecture report and on-demand impact
// queries, plus SSE streams the UI uses to follow a running analysis.
//
// The runner replaces the served data after every analysis pass, so all
// state access goes through the mutex.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu           sync.RWMutex
	graph        *graph.Graph
	stats        *analysis.Statistics
	architecture *advisor.Analysis
	impact       *impact.Analyzer
}

// NewServer creates a new web server
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// Status events: keep a short history, new subscribers only need the
	// current state
	ssePublisher.ConfigureTopic(pubsub.TopicAnalysisStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})
	ssePublisher.ConfigureTopic(pubsub.TopicGraph, pubsub.TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
	}
	s.router.Use(logging.RequestIDMiddleware)
	s.setupRoutes()
	return s
}

// SetGraph replaces the served graph snapshot
func (s *Server) SetGraph(g *graph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
}

// SetStatistics replaces the served statistics
func (s *Server) SetStatistics(stats analysis.Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = &stats
}

// SetArchitecture replaces the served architecture report
func (s *Server) SetArchitecture(report *advisor.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.architecture = report
}

// SetImpactAnalyzer installs the analyzer used by /api/impact queries
func (s *Server) SetImpactAnalyzer(a *impact.Analyzer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impact = a
}

// PublishAnalysisStatus publishes an analysis status event
func (s *Server) PublishAnalysisStatus(state, message string, step, total int) error {
	status := pubsub.AnalysisStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	}
	return s.publisher.Publish(pubsub.TopicAnalysisStatus, state, status)
}

// PublishGraphUpdate publishes a graph availability event with the counts of
// whatever is currently served
func (s *Server) PublishGraphUpdate(eventType string, complete bool) error {
	s.mu.RLock()
	update := pubsub.GraphUpdate{Complete: complete}
	if s.graph != nil {
		update.NodesCount = len(s.graph.Nodes)
		update.EdgesCount = len(s.graph.Edges)
	}
	if s.architecture != nil {
		update.HealthScore = s.architecture.HealthScore
	}
	s.mu.RUnlock()

	return s.publisher.Publish(pubsub.TopicGraph, eventType, update)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/"+pubsub.TopicAnalysisStatus, s.handleSubscribe(pubsub.TopicAnalysisStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/"+pubsub.TopicGraph, s.handleSubscribe(pubsub.TopicGraph)).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/statistics", s.handleStatistics).Methods("GET")
	s.router.HandleFunc("/api/architecture", s.handleArchitecture).Methods("GET")
	s.router.HandleFunc("/api/impact", s.handleImpact).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("static assets missing from binary", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// handleSubscribe streams a topic over SSE until the client disconnects
func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Send initial comment to establish connection (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.Debug("SSE client went away", "topic", topic, "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		// Analysis has not finished yet; an empty graph keeps the UI simple
		json.NewEncoder(w).Encode(&graph.Graph{Nodes: []*graph.Node{}, Edges: []*graph.Edge{}})
		return
	}

	json.NewEncoder(w).Encode(g)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()

	if stats == nil {
		http.Error(w, "Statistics not available", http.StatusServiceUnavailable)
		return
	}

	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleArchitecture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s.mu.RLock()
	report := s.architecture
	s.mu.RUnlock()

	if report == nil {
		http.Error(w, "Architecture report not available", http.StatusServiceUnavailable)
		return
	}

	json.NewEncoder(w).Encode(report)
}

// handleImpact runs an on-demand impact analysis:
// GET /api/impact?symbol=name[&file=path]
func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol query parameter required", http.StatusBadRequest)
		return
	}
	file := r.URL.Query().Get("file")

	s.mu.RLock()
	analyzer := s.impact
	s.mu.RUnlock()

	if analyzer == nil {
		http.Error(w, "Impact analysis not available", http.StatusServiceUnavailable)
		return
	}

	result, err := analyzer.AnalyzeImpact(r.Context(), symbol, file)
	if err != nil {
		if errors.Is(err, impact.ErrSymbolNotFound) {
			http.Error(w, fmt.Sprintf("Symbol not found: %s", symbol), http.StatusNotFound)
			return
		}
		logging.ErrorContext(r.Context(), "impact analysis failed", "symbol", symbol, "error", err)
		http.Error(w, "Impact analysis failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Handler returns the router so the API can be mounted or driven directly
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server on the specified port. SSE streams stay open
// indefinitely, so no write timeout is set.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.router)
}
