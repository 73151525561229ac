package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry through promauto.

var (
	// HttpRequestsTotal counts API requests by method, route and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures API response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hashgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// RecordsProcessed counts post records folded into graphs.
	RecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashgraph_records_processed_total",
			Help: "Post records folded into interaction graphs",
		},
		[]string{"campaign"},
	)

	// RecordsRejected counts records dropped for failing validation.
	RecordsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashgraph_records_rejected_total",
			Help: "Post records rejected before graph construction",
		},
		[]string{"campaign"},
	)

	// EdgesAdded counts new interactions by rule ("mention" or "reshare").
	EdgesAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashgraph_edges_added_total",
			Help: "New interaction edges by rule",
		},
		[]string{"campaign", "rule"},
	)

	// SelfInteractionsDropped counts self mentions and self reshares.
	SelfInteractionsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashgraph_self_interactions_dropped_total",
			Help: "Self mentions and self reshares ignored by the builder",
		},
		[]string{"campaign"},
	)

	// FetchDuration measures one campaign fetch against the upstream API.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hashgraph_fetch_duration_seconds",
			Help:    "Duration of campaign fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"campaign", "status"},
	)

	// GraphNodes tracks the current actor count per campaign graph.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hashgraph_graph_nodes",
			Help: "Actors in the current campaign graph",
		},
		[]string{"campaign"},
	)

	// GraphEdges tracks the current interaction count per campaign graph.
	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hashgraph_graph_edges",
			Help: "Interactions in the current campaign graph",
		},
		[]string{"campaign"},
	)
)
