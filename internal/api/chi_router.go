// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package api provides HTTP routing using Chi router (ADR-0016).
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chiku524/motionloop/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler, so PrometheusMetrics can sit in r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the full route tree for the learning-loop service.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(RequestIDWithLogging())
	r.Use(E2EDebugLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(APISecurityHeaders())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", h.Health)
	r.With(router.chiMiddleware.RateLimitHealth()).Get("/api/health", h.Health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/healthz/live", h.HealthLive)
		r.With(router.chiMiddleware.RateLimitHealth()).Get("/healthz/ready", h.HealthReady)

		r.Route("/jobs", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", h.CreateJob)
			r.Get("/", h.ListJobs)
			r.Get("/{id}", h.GetJob)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/{id}/upload", h.UploadJobVideo)
			r.Get("/{id}/download", h.DownloadJobVideo)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/{id}/feedback", h.SubmitFeedback)
		})

		r.With(router.chiMiddleware.RateLimitWrite()).Post("/learning", h.CreateLearningRun)
		r.Get("/learning/runs", h.ListLearningRuns)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/events", h.CreateEvent)
		r.Get("/events", h.ListEvents)

		r.Route("/interpret", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/queue", h.QueueInterpretation)
			r.Get("/queue", h.GetQueuedInterpretation)
			r.With(router.chiMiddleware.RateLimitWrite()).Patch("/{id}", h.PatchInterpretation)
		})
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/interpretations", h.CreateInterpretation)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/interpretations/batch", h.CreateInterpretationBatch)

		r.With(router.chiMiddleware.RateLimitWrite()).Post("/knowledge/discoveries", h.CreateDiscoveries)
		r.With(router.chiMiddleware.RateLimitRead()).Get("/knowledge/for-creation", h.GetKnowledgeForCreation)

		r.Route("/registries", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitRead()).Get("/", h.GetRegistries)
			r.With(router.chiMiddleware.RateLimitRead()).Get("/coverage", h.GetCoverage)
			r.With(router.chiMiddleware.RateLimitBackfill()).Post("/backfill-names", h.PostBackfillNames)
			r.With(router.chiMiddleware.RateLimitBackfill()).Get("/backfill-rows", h.GetBackfillRows)
			r.With(router.chiMiddleware.RateLimitBackfill()).Post("/backfill-depths", h.PostBackfillDepths)
		})

		r.Route("/loop", func(r chi.Router) {
			r.Get("/config", h.GetLoopConfig)
			r.Post("/config", h.PostLoopConfig)
			r.Get("/state", h.GetLoopState)
			r.Post("/state", h.PostLoopState)
			r.Get("/status", h.GetLoopStatus)
			r.Get("/progress", h.GetLoopProgress)
			r.Get("/diagnostics", h.GetLoopDiagnostics)
		})
	})

	return r
}
