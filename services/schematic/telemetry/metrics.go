// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the service-level instruments of gearscan.
//
// Description:
//
//	HTTP instruments are fed by GinMetrics. Analysis instruments are fed by
//	the schematic service after every Analyze call. Index-level operation
//	metrics live in the index package itself.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks in-flight HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal metric.Int64Counter

	// --- Analysis Metrics ---

	// AnalysesTotal counts Analyze calls by status.
	AnalysesTotal metric.Int64Counter

	// AnalysisDuration records Analyze duration in seconds.
	AnalysisDuration metric.Float64Histogram

	// GridBytes records the size of analyzed grids.
	GridBytes metric.Int64Histogram
}

// NewMetrics creates all instruments on meter.
//
// Example:
//
//	m, err := telemetry.NewMetrics(otel.Meter("gearscan"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// --- HTTP Metrics ---
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"gearscan_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"gearscan_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"gearscan_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	m.RateLimitedTotal, err = meter.Int64Counter(
		"gearscan_http_rate_limited_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_rate_limited_total: %w", err)
	}

	// --- Analysis Metrics ---
	m.AnalysesTotal, err = meter.Int64Counter(
		"gearscan_analyses_total",
		metric.WithDescription("Total schematic analyses"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create analyses_total: %w", err)
	}

	m.AnalysisDuration, err = meter.Float64Histogram(
		"gearscan_analysis_duration_seconds",
		metric.WithDescription("Schematic analysis duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("create analysis_duration: %w", err)
	}

	m.GridBytes, err = meter.Int64Histogram(
		"gearscan_grid_bytes",
		metric.WithDescription("Size of analyzed grids in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create grid_bytes: %w", err)
	}

	return m, nil
}

// RecordAnalysis records one Analyze call. A nil receiver is a no-op.
func (m *Metrics) RecordAnalysis(ctx context.Context, gridBytes int, duration time.Duration, status string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, duration.Seconds(), attrs)
	m.GridBytes.Record(ctx, int64(gridBytes))
}

// RecordRateLimited records one rejected request. A nil receiver is a no-op.
func (m *Metrics) RecordRateLimited(ctx context.Context, route string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
