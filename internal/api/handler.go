// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"time"

	"github.com/chiku524/motionloop/internal/blobstore"
	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/database"
	"github.com/chiku524/motionloop/internal/eventbus"
	"github.com/chiku524/motionloop/internal/kv"
	"github.com/chiku524/motionloop/internal/namealloc"
)

// Handler holds every dependency the Ingestion API's handlers need: the
// registry store, the KV side-channel, the blob store, the name allocator,
// the event bus, and the loaded configuration.
type Handler struct {
	db        *database.DB
	kv        *kv.Store
	blobs     *blobstore.LocalStore
	names     *namealloc.Allocator
	bus       *eventbus.Bus
	config    *config.Config
	startTime time.Time
}

// NewHandler wires the Ingestion API's dependencies into a Handler.
func NewHandler(db *database.DB, kvStore *kv.Store, blobs *blobstore.LocalStore, names *namealloc.Allocator, bus *eventbus.Bus, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		kv:        kvStore,
		blobs:     blobs,
		names:     names,
		bus:       bus,
		config:    cfg,
		startTime: time.Now(),
	}
}

// Router builds the HTTP route tree on top of a Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router from a Handler and the security config the
// middleware factories need (CORS origins, rate-limit window).
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
		mwConfig.CORSAllowedMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
		mwConfig.CORSAllowCredentials = false
		if cfg.Security.RateLimitRequests > 0 {
			mwConfig.RateLimitRequests = cfg.Security.RateLimitRequests
		}
		if cfg.Security.RateLimitWindow > 0 {
			mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
		}
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}
