// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package eventbus is additive instrumentation, not on the critical path:
// job completion writes an Event row to the registry store before it
// publishes, and discovery ingestion publishes once it has committed at
// least one item. Publishing is best-effort; the service registers no
// subscribers of its own. By
// default messages flow over an in-process watermill gochannel. When
// NATSConfig.Enabled, a watermill-nats publisher backed by an embedded
// nats-server/JetStream instance is used instead, trading simplicity for
// durability across restarts.
package eventbus

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"

	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/logging"
)

// TopicDiscoveryCommitted is published whenever a discoveries-ingestion
// request commits at least one row.
const TopicDiscoveryCommitted = "discovery.committed"

// TopicJobCompleted is published when a job transitions to completed.
const TopicJobCompleted = "job.completed"

// Bus wraps a watermill publisher/subscriber pair and the background router
// wiring internal subscribers to topics.
type Bus struct {
	pub    message.Publisher
	sub    message.Subscriber
	router *message.Router
	cb     *gobreaker.CircuitBreaker[interface{}]
	embed  *natsserver.Server
	logger watermill.LoggerAdapter
}

// Open constructs the bus. With cfg.Enabled false (the default) it wires an
// in-process gochannel pub/sub; with cfg.Enabled true it starts an embedded
// NATS server (unless cfg.URL points elsewhere) and connects a JetStream
// publisher/subscriber pair, mirroring the teacher's resilient-publisher
// pattern (circuit breaker over Publish).
func Open(cfg *config.NATSConfig) (*Bus, error) {
	logger := watermill.NewStdLogger(false, false)
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "eventbus-publish",
		MaxRequests: 1,
	})

	if !cfg.Enabled {
		gc := gochannel.NewGoChannel(gochannel.Config{}, logger)
		return &Bus{pub: gc, sub: gc, router: router, cb: cb, logger: logger}, nil
	}

	var embed *natsserver.Server
	url := cfg.URL
	if url == "" {
		srv, err := natsserver.NewServer(&natsserver.Options{JetStream: true})
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded nats server: %w", err)
		}
		go srv.Start()
		if !srv.ReadyForConnections(cfg.ConnectTimeout) {
			return nil, fmt.Errorf("embedded nats server did not become ready in time")
		}
		embed = srv
		url = srv.ClientURL()
	}

	streamName := cfg.StreamName
	if streamName == "" {
		streamName = "motionloop"
	}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         url,
		NatsOptions: []natsgo.Option{natsgo.RetryOnFailedConnect(true), natsgo.MaxReconnects(5)},
		Marshaler:   &wmnats.NATSMarshaler{},
		JetStream: wmnats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create nats publisher: %w", err)
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:            url,
		QueueGroupPrefix: streamName,
		NatsOptions:    []natsgo.Option{natsgo.RetryOnFailedConnect(true)},
		Unmarshaler:    &wmnats.NATSMarshaler{},
		JetStream:      wmnats.JetStreamConfig{AutoProvision: true, DurablePrefix: streamName},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create nats subscriber: %w", err)
	}

	return &Bus{pub: pub, sub: sub, router: router, cb: cb, embed: embed, logger: logger}, nil
}

// Publish sends payload (pre-marshaled JSON) to topic, circuit-broken so a
// down event bridge never blocks the caller's hot path.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.pub.Publish(topic, msg)
	})
	if err != nil {
		logging.Warn().Err(err).Str("topic", topic).Msg("event bus publish failed, dropping (best-effort)")
	}
	return nil // additive instrumentation: never surfaces an error to the caller
}

// Subscribe registers handler for topic and starts it once Run is called.
func (b *Bus) Subscribe(topic string, handler message.NoPublishHandlerFunc) {
	b.router.AddNoPublisherHandler(topic+"-handler", topic, b.sub, handler)
}

// Run blocks serving the subscriber router until ctx is canceled.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Serve implements suture.Service so the bus can be supervised directly.
func (b *Bus) Serve(ctx context.Context) error {
	return b.Run(ctx)
}

// Close shuts down the publisher, subscriber, router, and any embedded NATS
// server.
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		logging.Warn().Err(err).Msg("event router close failed")
	}
	if err := b.pub.Close(); err != nil {
		logging.Warn().Err(err).Msg("event publisher close failed")
	}
	if b.sub != nil {
		if err := b.sub.Close(); err != nil {
			logging.Warn().Err(err).Msg("event subscriber close failed")
		}
	}
	if b.embed != nil {
		b.embed.Shutdown()
	}
	return nil
}
