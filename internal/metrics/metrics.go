// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

// Package metrics defines the Prometheus collectors of Eventrec.
//
// Collectors are registered with the default registry through promauto and
// exposed by the HTTP server at /metrics. Callers use the Record* helpers
// rather than touching collectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventrec_store_query_duration_seconds",
			Help:    "Duration of interaction store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_store_query_errors_total",
			Help: "Total number of interaction store query errors",
		},
		[]string{"operation", "table"},
	)

	DBRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_store_rows_read_total",
			Help: "Total number of rows read per table after deduplication",
		},
		[]string{"table"},
	)

	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_pipeline_runs_total",
			Help: "Total number of pipeline runs by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: production, simulation; outcome: success, empty, error
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventrec_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"stage"}, // fetch, matrix, factorize, select, persist
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventrec_matrix_users",
			Help: "Number of eligible users (rows) in the last interaction matrix",
		},
	)

	MatrixEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventrec_matrix_events",
			Help: "Number of events (columns) in the last interaction matrix",
		},
	)

	RankClamped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventrec_rank_clamped_total",
			Help: "Total number of factorizations whose requested rank was clamped",
		},
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_recommendations_generated_total",
			Help: "Total number of (user, event) recommendations produced",
		},
		[]string{"mode"},
	)

	RecommendationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_recommendations_persisted_total",
			Help: "Total number of recommendation rows committed to the store",
		},
		[]string{"model_version"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventrec_last_production_run_timestamp_seconds",
			Help: "Unix time of the last successful production run",
		},
	)

	// Simulation Metrics
	SimulationCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_simulation_checkpoints_total",
			Help: "Total number of simulation checkpoints by status",
		},
		[]string{"status"}, // success, error
	)

	SimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventrec_simulation_duration_seconds",
			Help:    "Wall-clock duration of complete simulations",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)

	ReportsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_reports_written_total",
			Help: "Total number of report artifacts written",
		},
		[]string{"kind"}, // simulation, evaluation
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventrec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventrec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records the duration and outcome of a store query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordStage records the duration of one pipeline stage.
func RecordStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordMatrixShape publishes the dimensions of the latest interaction matrix.
func RecordMatrixShape(users, events int) {
	MatrixUsers.Set(float64(users))
	MatrixEvents.Set(float64(events))
}

// RecordPipelineRun counts a finished pipeline run.
// An empty run produced no recommendations because there was too little data.
func RecordPipelineRun(mode string, recommendations int, empty bool, err error) {
	switch {
	case err != nil:
		PipelineRuns.WithLabelValues(mode, "error").Inc()
	case empty:
		PipelineRuns.WithLabelValues(mode, "empty").Inc()
	default:
		PipelineRuns.WithLabelValues(mode, "success").Inc()
	}
	if err == nil && recommendations > 0 {
		RecommendationsGenerated.WithLabelValues(mode).Add(float64(recommendations))
	}
}

// RecordPersist counts committed recommendation rows.
func RecordPersist(modelVersion string, rows int, at time.Time) {
	RecommendationsPersisted.WithLabelValues(modelVersion).Add(float64(rows))
	LastRunTimestamp.Set(float64(at.Unix()))
}

// RecordCheckpoint counts a finished simulation checkpoint.
func RecordCheckpoint(err error) {
	if err != nil {
		SimulationCheckpoints.WithLabelValues("error").Inc()
		return
	}
	SimulationCheckpoints.WithLabelValues("success").Inc()
}

// RecordReport counts a written report artifact.
func RecordReport(kind string) {
	ReportsWritten.WithLabelValues(kind).Inc()
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
