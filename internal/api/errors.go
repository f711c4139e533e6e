// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

// Package api provides HTTP handlers for the learning-loop service.
//
// errors.go - Common API error definitions.
package api

import "errors"

// Common API errors.
var (
	// ErrJobNotFound indicates the requested job id has no matching row.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyCompleted indicates an upload was attempted against a job
	// that already has a video attached (spec §4.D upload contract).
	ErrJobAlreadyCompleted = errors.New("job already has video")

	// ErrEmptyUpload indicates an upload body had zero bytes.
	ErrEmptyUpload = errors.New("upload body is empty")

	// ErrUnknownDiscoveryCategory indicates a discoveries payload referenced a
	// category outside the fixed enum (spec §9 "tagged variant" design note).
	ErrUnknownDiscoveryCategory = errors.New("unknown discovery category")

	// ErrBlobNotResolvable indicates a completed job's r2_key does not resolve
	// to a blob in the store.
	ErrBlobNotResolvable = errors.New("blob not resolvable")

	errEmptyPrompt     = errors.New("prompt is required")
	errGibberishPrompt = errors.New("prompt rejected by gibberish detector")
)
