// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/chiku524/motionloop/internal/eventbus"
	"github.com/chiku524/motionloop/internal/logging"
	"github.com/chiku524/motionloop/internal/models"
	"github.com/chiku524/motionloop/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
// This includes newlines, carriage returns, tabs, and other control characters that could
// allow attackers to forge log entries or corrupt log files.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		// Replace control characters (0x00-0x1F and 0x7F) with a safe representation
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers and an FNV-1a ETag.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends the shared `{error, details}` envelope every handler
// uses on failure.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	details := ""
	if err != nil {
		details = sanitizeLogValue(err.Error())
	}
	respondJSON(w, status, &models.APIError{
		Error:   message,
		Details: details,
	})
}

// validateRequest validates a struct using go-playground/validator, returning
// a ready-to-send *models.APIError on failure.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Error:   apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// decodeJSON decodes the request body into v using goccy/go-json, capping
// the body at 25 MB per spec §4.D's loop_state payload ceiling (applied
// uniformly since no handler in this API legitimately needs more).
func decodeJSON(r *http.Request, v interface{}) error {
	body := io.LimitReader(r.Body, 25<<20)
	return json.NewDecoder(body).Decode(v)
}

// publishEvent appends an Event row and, for kinds other handlers care to
// react to, best-effort publishes it on the event bus. Failures are logged,
// never surfaced — the append-only event log is diagnostic, not
// authoritative (spec §3 "Event").
func (h *Handler) publishEvent(ctx context.Context, eventType models.EventType, jobID *string, payload string) {
	if h.db == nil {
		return
	}
	if _, err := h.db.InsertEvent(ctx, &models.Event{EventType: eventType, JobID: jobID, Payload: payload}); err != nil {
		logging.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to append event")
	}
	if h.bus != nil && eventType == models.EventJobCompleted {
		data, err := json.Marshal(map[string]interface{}{"job_id": jobID})
		if err == nil {
			_ = h.bus.Publish(ctx, eventbus.TopicJobCompleted, data)
		}
	}
}

// respondErrorLog logs a failure that happened after the response was
// already decided (best-effort bookkeeping like discovery_run inserts),
// without writing anything further to the client.
func respondErrorLog(message string, err error) {
	logging.Error().Err(err).Msg(message)
}

// strconvItoa is a tiny local alias kept next to the other parse helpers so
// discoveries key-building doesn't need a second strconv import grouping.
func strconvItoa(i int) string {
	return strconv.Itoa(i)
}

// atoiOrZero parses an integer, defaulting to zero on any failure — used for
// splitting "r,g,b" canonical keys back into components.
func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
