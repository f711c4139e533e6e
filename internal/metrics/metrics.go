// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package metrics exposes the Prometheus series the Ingestion API and Loop
// Controller emit. The spec-required surface (§4.D "Metrics") is small --
// total_runs, precision_pct, discovery_rate_pct, jobs_total -- everything
// else here is the ambient API/DB instrumentation the teacher always pairs
// with a handler/query layer.
//
// The series that are fed: the API request series (by the middleware
// package), total_runs (by the Loop Controller), precision_pct and
// discovery_rate_pct (set on each GET /loop/progress), and jobs_total (on
// job creation and video upload). The DB query, discovery-ingestion,
// loop-tick, rate-limit, KV-rejection and event-bus-failure series are
// registered and exported, but nothing in the service updates them, so they
// stay at zero.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRuns is the cumulative count of Loop Controller ticks that
	// completed a job (spec §4.D metrics surface).
	TotalRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motionloop_total_runs",
			Help: "Total number of Loop Controller ticks that completed a job",
		},
	)

	// PrecisionPct mirrors the last /loop/progress precision_pct sample so
	// scrapers don't need to poll the HTTP endpoint separately.
	PrecisionPct = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "motionloop_precision_pct",
			Help: "Fraction of recent completed jobs that produced any learning_run, as a percentage",
		},
	)

	// DiscoveryRatePct mirrors the last /loop/progress discovery_rate_pct
	// sample.
	DiscoveryRatePct = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "motionloop_discovery_rate_pct",
			Help: "Fraction of recent completed jobs that produced any discovery_run row, as a percentage",
		},
	)

	// JobsTotal counts job status changes: "pending" when a job is created,
	// "completed" when its video is uploaded.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_jobs_total",
			Help: "Total number of jobs created, by status",
		},
		[]string{"status"}, // pending, completed
	)

	// DBQueryDuration times Registry Store queries reported through
	// ObserveDBQuery.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "motionloop_db_query_duration_seconds",
			Help:    "Duration of registry store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// DBQueryErrors counts registry store query failures.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_db_query_errors_total",
			Help: "Total number of registry store query errors",
		},
		[]string{"operation", "table"},
	)

	// DiscoveriesIngested counts discovery items accepted per category.
	DiscoveriesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_discoveries_ingested_total",
			Help: "Total number of discovery items accepted via POST /knowledge/discoveries",
		},
		[]string{"category"},
	)

	// DiscoveriesTruncated counts requests that tripped the 14-item cap.
	DiscoveriesTruncated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "motionloop_discoveries_truncated_total",
			Help: "Total number of discovery ingestion requests that tripped the per-request item cap",
		},
	)

	// LoopTicks counts Loop Controller ticks by outcome.
	LoopTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_loop_ticks_total",
			Help: "Total number of Loop Controller ticks, by outcome",
		},
		[]string{"mode", "outcome"}, // mode: exploit|explore, outcome: completed|failed|timeout|disabled
	)

	// APIRequestsTotal counts every HTTP response by route/status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// APIRequestDuration times every HTTP response.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "motionloop_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// RateLimitHits counts httprate rejections.
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// KVWriteRejected counts KV side-channel writes rejected by the per-key
	// rate limiter (spec §7 "Rate limit").
	KVWriteRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_kv_write_rejected_total",
			Help: "Total number of KV side-channel writes rejected by the per-key rate limiter",
		},
		[]string{"key"},
	)

	// EventBusPublishFailures counts best-effort event-bus publishes that
	// failed (circuit open or transport error); these failures never surface
	// to callers.
	EventBusPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motionloop_eventbus_publish_failures_total",
			Help: "Total number of best-effort event bus publishes that failed",
		},
		[]string{"topic"},
	)
)

// ObserveDBQuery records a registry store query's duration and, on error,
// increments the error counter.
func ObserveDBQuery(operation, table string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// ObserveAPIRequest records one HTTP response's outcome.
func ObserveAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
