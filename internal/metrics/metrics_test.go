// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobsTotalByStatus(t *testing.T) {
	JobsTotal.WithLabelValues("completed").Inc()
	JobsTotal.WithLabelValues("completed").Inc()
	JobsTotal.WithLabelValues("failed").Inc()

	if got := testutil.ToFloat64(JobsTotal.WithLabelValues("completed")); got != 2 {
		t.Fatalf("expected 2 completed jobs, got %v", got)
	}
	if got := testutil.ToFloat64(JobsTotal.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected 1 failed job, got %v", got)
	}
}

func TestPrecisionAndDiscoveryGauges(t *testing.T) {
	PrecisionPct.Set(85)
	DiscoveryRatePct.Set(65)

	if got := testutil.ToFloat64(PrecisionPct); got != 85 {
		t.Fatalf("expected precision_pct 85, got %v", got)
	}
	if got := testutil.ToFloat64(DiscoveryRatePct); got != 65 {
		t.Fatalf("expected discovery_rate_pct 65, got %v", got)
	}
}

func TestObserveDBQueryRecordsErrors(t *testing.T) {
	start := time.Now()
	ObserveDBQuery("insert", "static_color", start, nil)
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "static_color"))

	ObserveDBQuery("insert", "static_color", start, errTest{})
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "static_color"))

	if after != before+1 {
		t.Fatalf("expected error counter to increment by 1, went from %v to %v", before, after)
	}
}

func TestObserveAPIRequestLabelsRoute(t *testing.T) {
	ObserveAPIRequest("POST", "/knowledge/discoveries", "201", 12*time.Millisecond)

	got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/knowledge/discoveries", "201"))
	if got < 1 {
		t.Fatalf("expected at least 1 recorded request, got %v", got)
	}
}

func TestDiscoveriesIngestedTracksCategory(t *testing.T) {
	DiscoveriesIngested.WithLabelValues("static_colors").Add(14)
	DiscoveriesTruncated.Inc()

	if got := testutil.ToFloat64(DiscoveriesIngested.WithLabelValues("static_colors")); got < 14 {
		t.Fatalf("expected at least 14 static_colors ingested, got %v", got)
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }

func TestMetricNamesUseMotionloopPrefix(t *testing.T) {
	// spec-named series must be discoverable under the motionloop_ namespace
	// so dashboards built against this service don't collide with unrelated
	// exporters sharing the same Prometheus instance.
	names := []string{
		"motionloop_total_runs",
		"motionloop_precision_pct",
		"motionloop_discovery_rate_pct",
		"motionloop_jobs_total",
	}
	for _, n := range names {
		if !strings.HasPrefix(n, "motionloop_") {
			t.Fatalf("metric %q missing motionloop_ prefix", n)
		}
	}
}
