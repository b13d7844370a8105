package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the analysis runner. The web server exposes one SSE
// endpoint per topic.
const (
	TopicAnalysisStatus = "analysis_status"
	TopicGraph          = "graph"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "analysis_status", "graph")
	Type    string          `json:"type"`    // Event type (e.g., "initializing", "assembling", "ready", "partial_data")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// AnalysisStatus reports where a running analysis currently is
type AnalysisStatus struct {
	State   string `json:"state"`   // initializing, assembling, analyzing, advising, ready, error
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// GraphUpdate announces new graph data being available
type GraphUpdate struct {
	NodesCount  int     `json:"nodes_count"`
	EdgesCount  int     `json:"edges_count"`
	HealthScore float64 `json:"health_score"`
	Complete    bool    `json:"complete"` // True when analysis and advice are both in
}
