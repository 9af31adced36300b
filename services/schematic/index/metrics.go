// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for schematic operations.
var (
	tracer = otel.Tracer("gearscan.index")
	meter  = otel.Meter("gearscan.index")
)

// Metrics for schematic operations.
var (
	operationLatency metric.Float64Histogram
	operationTotal   metric.Int64Counter
	entriesBuilt     metric.Int64Histogram
	gearsEvaluated   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		operationLatency, err = meter.Float64Histogram(
			"schematic_operation_duration_seconds",
			metric.WithDescription("Duration of schematic index operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		operationTotal, err = meter.Int64Counter(
			"schematic_operation_total",
			metric.WithDescription("Total number of schematic index operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		entriesBuilt, err = meter.Int64Histogram(
			"schematic_entries",
			metric.WithDescription("Number of tokens stored per built schematic"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		gearsEvaluated, err = meter.Int64Counter(
			"schematic_gears_evaluated_total",
			metric.WithDescription("Gears evaluated for ratios, by whether they counted"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startOperationSpan creates a span for a schematic operation.
func startOperationSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Schematic."+operation,
		trace.WithAttributes(
			attribute.String("schematic.operation", operation),
		),
	)
}

// setOperationSpanResult sets the result attributes on an operation span.
func setOperationSpanResult(span trace.Span, result uint64, success bool) {
	span.SetAttributes(
		attribute.Int64("schematic.result", int64(result)),
		attribute.Bool("schematic.success", success),
	)
}

// recordOperationMetrics records metrics for a schematic operation.
func recordOperationMetrics(ctx context.Context, operation string, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	)

	operationLatency.Record(ctx, duration.Seconds(), attrs)
	operationTotal.Add(ctx, 1, attrs)
}

// recordEntries records the size of a freshly built schematic.
func recordEntries(ctx context.Context, count int) {
	if err := initMetrics(); err != nil {
		return
	}
	entriesBuilt.Record(ctx, int64(count))
}

// recordGear records one gear evaluation.
func recordGear(ctx context.Context, counted bool) {
	if err := initMetrics(); err != nil {
		return
	}
	gearsEvaluated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("counted", counted)))
}
