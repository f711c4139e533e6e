// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package blobstore provides a local-disk implementation of the put/get
// interface a production deployment would back with an external object
// store (S3/R2). Keys are relative paths rooted at a configured directory;
// this service always keys generated video as "jobs/<id>/video.mp4" (spec
// external interfaces).
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chiku524/motionloop/internal/config"
)

// ErrNotFound is returned by Get when key has no blob.
var ErrNotFound = errors.New("blobstore: key not found")

// defaultContentType is used when the key's extension has no registered MIME
// type (blobstore stores opaque bytes, not a content-type header itself).
const defaultContentType = "application/octet-stream"

// Store is the put/get interface callers depend on; a production deployment
// substitutes an S3/R2-backed implementation without touching callers. Get
// reports contentType and size alongside the reader so HTTP callers can set
// Content-Type/Content-Length without a second stat.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (r io.ReadCloser, contentType string, size int64, err error)
	Delete(ctx context.Context, key string) error
}

// LocalStore implements Store rooted at a directory on local disk.
type LocalStore struct {
	root string
}

// Open creates the root directory (if needed) and returns a LocalStore
// rooted there.
func Open(cfg *config.BlobConfig) (*LocalStore, error) {
	root := cfg.RootDir
	if root == "" {
		root = "./data/blobs"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob store root %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

// resolve validates key stays within root (no path traversal) and returns
// the absolute file path.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)[1:] // anchor, then strip the leading slash
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes r's contents to key, creating parent directories as needed.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path validated by resolve
	if err != nil {
		return fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close blob file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize blob: %w", err)
	}
	return nil
}

// Get opens key for reading; callers must Close the returned reader. size is
// the exact stat'd file size, for callers that set Content-Length.
func (s *LocalStore) Get(ctx context.Context, key string) (r io.ReadCloser, contentType string, size int64, err error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", 0, err
	}
	f, err := os.Open(path) //nolint:gosec // path validated by resolve
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", 0, ErrNotFound
		}
		return nil, "", 0, fmt.Errorf("failed to open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, fmt.Errorf("failed to stat blob: %w", err)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = defaultContentType
	}
	return f, ct, info.Size(), nil
}

// Delete removes key's blob, no-op if it does not exist.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// JobVideoKey returns the canonical blob key for a job's generated video.
func JobVideoKey(jobID string) string {
	return fmt.Sprintf("jobs/%s/video.mp4", jobID)
}
