// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
Package api provides the HTTP Ingestion API for the learning-loop service.

It implements the complete write/read surface a renderer worker, an
interpretation worker, the Loop Controller, and the UI talk to: job
lifecycle, learning runs and the event log, the interpretation queue, the
discoveries hot-write path, the three-tier registries view, loop
config/state/progress, coverage, and the backfill/migration endpoints.

Key Components:

  - Router: Chi route tree and middleware stack (chi_router.go)
  - Handler: request handlers grouped one file per concern (handlers_*.go)
  - Response formatting: the shared `{error, details}` envelope on failure,
    bare JSON bodies on success (handlers_helpers.go)
  - ChiMiddleware: CORS, per-route rate limiting, request-ID propagation,
    security headers (chi_middleware.go)

API Categories:

 1. Jobs: POST/GET /jobs, GET /jobs/:id, upload/download, feedback.
 2. Learning & events: POST/GET /learning, POST/GET /events.
 3. Interpretations: the queue (web/worker priority) and the batch-write path.
 4. Discoveries: POST /knowledge/discoveries (the 14-item hot write path) and
    GET /knowledge/for-creation.
 5. Registries: GET /registries (three-tier composite view) and
    GET /registries/coverage.
 6. Loop: GET/POST /loop/config, /loop/state, /loop/status, /loop/progress,
    /loop/diagnostics.
 7. Backfill: /registries/backfill-names, /registries/backfill-rows,
    /registries/backfill-depths.
 8. Metrics: GET /metrics (Prometheus text exposition).
 9. Health: GET /health, GET /api/health, and the supplemented
    /healthz/live, /healthz/ready Kubernetes-style probes.

No authentication or authorization lives in this package — auth is an
external collaborator per the system's scope. CORS is permissive for the
enumerated methods/headers.

See Also:

  - internal/database: the registry store
  - internal/kv: the loop_state/loop_config/learning:stats side-channel
  - internal/blobstore: the video blob interface
  - internal/namealloc: semantic name allocation
  - internal/depth: depth-breakdown computation
  - internal/loopctl: the Loop Controller
  - internal/models: request/response data structures
*/
package api
