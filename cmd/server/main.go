// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chiku524/motionloop/internal/api"
	"github.com/chiku524/motionloop/internal/blobstore"
	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/database"
	"github.com/chiku524/motionloop/internal/eventbus"
	"github.com/chiku524/motionloop/internal/kv"
	"github.com/chiku524/motionloop/internal/logging"
	"github.com/chiku524/motionloop/internal/loopctl"
	"github.com/chiku524/motionloop/internal/namealloc"
	"github.com/chiku524/motionloop/internal/supervisor"
	"github.com/chiku524/motionloop/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		println("failed to load configuration:", err.Error())
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("starting motionloop server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open registry database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing registry database")
		}
	}()

	kvStore, err := kv.Open(&cfg.KV)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open loop-state KV store")
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing KV store")
		}
	}()

	blobs, err := blobstore.Open(&cfg.Blob)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open video blob store")
	}

	bus, err := eventbus.Open(&cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing event bus")
		}
	}()

	names := namealloc.New(db, time.Now().UnixNano())

	handler := api.NewHandler(db, kvStore, blobs, names, bus, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build supervisor tree")
	}

	tree.AddMessagingService(bus)

	selfAPIBaseURL := cfg.Loop.SelfAPIBaseURL
	if selfAPIBaseURL == "" {
		selfAPIBaseURL = "http://" + cfg.Server.Addr()
	}
	controller := loopctl.New(kvStore, db, selfAPIBaseURL, time.Now().UnixNano())
	tree.AddMessagingService(controller)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("motionloop server stopped gracefully")
}
