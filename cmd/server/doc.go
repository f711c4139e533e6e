// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

/*
Package main is the entry point for the motionloop server.

motionloop is the Ingestion API and Loop Controller for a generative-media
learning loop: render jobs feed discoveries and interpretations into a
growing registry of named primitives (colors, sounds, motion, gradients,
camera moves, narrative vocabulary), and the Loop Controller closes the
loop by polling for completed jobs, requesting interpretations, and tracking
coverage/precision over time.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("motionloop")
	├── DataSupervisor ("data-layer")
	│   └── reserved for background store maintenance
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event Bus (watermill, optional NATS durability)
	│   └── Loop Controller
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Registry Store: embedded DuckDB
 4. KV Side-Channel: embedded BadgerDB for loop_state/loop_config
 5. Blob Store: local-disk job video storage
 6. Event Bus: watermill gochannel, or NATS/JetStream when enabled
 7. Name Allocator: unique display-name reservation over the registry store
 8. Supervisor Tree: Suture v4 process supervision
 9. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority
wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	SERVER_PORT=8080             # HTTP server port
	LOGGING_LEVEL=info           # trace, debug, info, warn, error
	LOGGING_FORMAT=json          # json or console

	# Registry store
	DATABASE_PATH=./motionloop.duckdb

	# KV side-channel
	KV_DIR=./motionloop-kv

	# Blob store
	BLOB_ROOT_DIR=./motionloop-blobs

	# Event bus (optional durability)
	NATS_ENABLED=false
	NATS_URL=nats://localhost:4222

No authentication or authorization is in scope for this service; it is
designed to sit behind an API gateway or service mesh that handles that
concern externally.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (shutdown_timeout)
 3. Stops the event bus router
 4. Flushes pending KV writes and closes the registry store
 5. Reports any services that failed to stop

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/database: DuckDB-backed registry store
  - internal/kv: BadgerDB loop-state side-channel
  - internal/eventbus: watermill event bridge
  - internal/loopctl: Loop Controller
*/
package main
