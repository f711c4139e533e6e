// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing the spec-required learning-loop series (total_runs,
precision_pct, discovery_rate_pct, jobs_total) alongside the ambient API and
registry-store instrumentation the service needs operationally.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Learning loop (spec §4.D):
  - motionloop_total_runs
  - motionloop_precision_pct
  - motionloop_discovery_rate_pct
  - motionloop_jobs_total{status}
  - motionloop_loop_ticks_total{mode,outcome}

Discovery ingestion:
  - motionloop_discoveries_ingested_total{category}
  - motionloop_discoveries_truncated_total

API and storage:
  - motionloop_api_requests_total{method,route,status_code}
  - motionloop_api_request_duration_seconds{method,route}
  - motionloop_rate_limit_hits_total{route}
  - motionloop_db_query_duration_seconds{operation,table}
  - motionloop_db_query_errors_total{operation,table}
  - motionloop_kv_write_rejected_total{key}
  - motionloop_eventbus_publish_failures_total{topic}
*/
package metrics
