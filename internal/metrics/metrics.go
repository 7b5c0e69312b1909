// Package metrics exposes Prometheus instrumentation for the scout: queue
// depth, discovery throughput, credit spend, tier distribution and connector
// health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job queue
	QueueJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_queue_jobs",
			Help: "Point-in-time job counts by state",
		},
		[]string{"state"}, // waiting, active, completed, failed
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_jobs_processed_total",
			Help: "Jobs finished by type and outcome",
		},
		[]string{"type", "outcome"}, // completed, retried, failed
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_job_duration_seconds",
			Help:    "Job handler duration in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"type"},
	)

	// Discovery
	DiscoveryCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_discovery_created_total",
			Help: "Creator records created by discovery",
		},
		[]string{"platform", "method"},
	)

	DiscoverySkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_discovery_skipped_total",
			Help: "Discovery candidates skipped because they already exist",
		},
		[]string{"platform", "method"},
	)

	DiscoveryFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_discovery_filtered_total",
			Help: "Discovery candidates below the quality threshold",
		},
		[]string{"platform"},
	)

	DedupEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scout_dedup_entries",
			Help: "Identifiers held by the deduplication cache",
		},
	)

	// Credits
	CreditsConsumed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_credits_consumed",
			Help: "Credits consumed today by provider",
		},
		[]string{"provider"},
	)

	CreditsCap = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_credits_daily_cap",
			Help: "Configured daily credit cap by provider",
		},
		[]string{"provider"},
	)

	BudgetSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_budget_skips_total",
			Help: "Scheduled work skipped because a provider ran out of credits",
		},
		[]string{"provider", "operation"},
	)

	// Tiers
	TierCreators = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_tier_creators",
			Help: "Creators per sync tier after the last recalculation",
		},
		[]string{"tier"},
	)

	TierSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_tier_synced_total",
			Help: "Creators refreshed by tier dispatch",
		},
		[]string{"tier", "platform"},
	)

	// Connectors
	ConnectorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_connector_requests_total",
			Help: "Connector HTTP requests by platform and outcome",
		},
		[]string{"platform", "outcome"}, // success, error, retry
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scout_circuit_breaker_state",
			Help: "Connector circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
