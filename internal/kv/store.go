// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package kv wraps BadgerDB as the Loop Controller's single-writer KV
// side-channel: loop_state, loop_config, and a 60s-TTL learning:stats cache.
// Keyed writes are rate-limited to one per second per key so a misbehaving
// caller can't wear out the value log with rapid rewrites of the same key.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/chiku524/motionloop/internal/config"
	"github.com/chiku524/motionloop/internal/logging"
)

const (
	keyLoopState  = "loop_state"
	keyLoopConfig = "loop_config"
	keyStatsCache = "learning:stats"
)

// ErrNotFound is returned when a key has no value yet.
var ErrNotFound = errors.New("kv: key not found")

// Store wraps a BadgerDB handle with the loop-state/config/cache helpers the
// rest of the service needs; every exported method is safe for concurrent
// use (Badger serializes transactions internally).
type Store struct {
	db  *badger.DB
	ttl time.Duration

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
	rateLimit  float64
	rateBurst  int

	stopGC context.CancelFunc
}

// Open opens (or creates) the BadgerDB directory at cfg.Dir, or an in-memory
// instance when cfg.InMemory is set (used by tests and :memory: database
// configurations).
func Open(cfg *config.KVConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	opts = opts.WithLogger(badgerLogAdapter{})
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	ttl := cfg.StatsCacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	rateLimit := cfg.WriteRateLimit
	if rateLimit <= 0 {
		rateLimit = 1.0
	}
	rateBurst := cfg.WriteBurst
	if rateBurst <= 0 {
		rateBurst = 1
	}

	s := &Store{
		db:        db,
		ttl:       ttl,
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rateLimit,
		rateBurst: rateBurst,
	}

	if cfg.GCIntervalSeconds > 0 {
		gcCtx, cancel := context.WithCancel(context.Background())
		s.stopGC = cancel
		go s.runValueLogGC(gcCtx, time.Duration(cfg.GCIntervalSeconds)*time.Second)
	}

	return s, nil
}

// Close stops the value-log GC goroutine, if one was started, and closes the
// underlying Badger handle.
func (s *Store) Close() error {
	if s.stopGC != nil {
		s.stopGC()
	}
	return s.db.Close()
}

// limiterFor returns this key's token-bucket limiter, creating it on first
// use. One bucket per key bounds rewrite frequency without serializing
// unrelated keys behind each other.
func (s *Store) limiterFor(key string) *rate.Limiter {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.rateLimit), s.rateBurst)
		s.limiters[key] = l
	}
	return l
}

// set writes raw to key, subject to the per-key write budget.
func (s *Store) set(key string, raw []byte, ttl time.Duration) error {
	if !s.limiterFor(key).Allow() {
		return fmt.Errorf("kv: write budget exceeded for key %q", key)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (s *Store) get(key string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	return raw, err
}

// GetLoopState reads the Loop Controller's single-writer state blob.
func (s *Store) GetLoopState(dst interface{}) error {
	raw, err := s.get(keyLoopState)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetLoopState writes the Loop Controller's state blob. Callers must hold
// the loop's own single-writer discipline; this method does not arbitrate
// between concurrent writers.
func (s *Store) SetLoopState(state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal loop state: %w", err)
	}
	return s.set(keyLoopState, raw, 0)
}

// GetLoopConfig reads the live, mutable Loop Controller configuration.
func (s *Store) GetLoopConfig(dst interface{}) error {
	raw, err := s.get(keyLoopConfig)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetLoopConfig writes the live Loop Controller configuration.
func (s *Store) SetLoopConfig(cfg interface{}) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal loop config: %w", err)
	}
	return s.set(keyLoopConfig, raw, 0)
}

// GetCachedStats reads the learning:stats cache, returning ErrNotFound when
// it is unset or its TTL has expired. No handler currently reads or writes
// this cache.
func (s *Store) GetCachedStats(dst interface{}) error {
	raw, err := s.get(keyStatsCache)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetCachedStats writes the learning:stats cache with the store's configured
// TTL (default 60s).
func (s *Store) SetCachedStats(stats interface{}) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats cache: %w", err)
	}
	return s.set(keyStatsCache, raw, s.ttl)
}

// runValueLogGC periodically reclaims space in Badger's value log.
func (s *Store) runValueLogGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		again:
			err := s.db.RunValueLogGC(0.5)
			if err == nil {
				goto again
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

// badgerLogAdapter routes Badger's internal logging through zerolog.
type badgerLogAdapter struct{}

func (badgerLogAdapter) Errorf(format string, args ...interface{}) {
	logging.Error().Msg(fmt.Sprintf(format, args...))
}
func (badgerLogAdapter) Warningf(format string, args ...interface{}) {
	logging.Warn().Msg(fmt.Sprintf(format, args...))
}
func (badgerLogAdapter) Infof(format string, args ...interface{}) {
	logging.Debug().Msg(fmt.Sprintf(format, args...))
}
func (badgerLogAdapter) Debugf(format string, args ...interface{}) {
	logging.Debug().Msg(fmt.Sprintf(format, args...))
}
