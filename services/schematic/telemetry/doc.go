// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides OpenTelemetry-based observability for gearscan.
//
// This package initializes the OTel SDK for tracing and metrics. Code uses
// the OTel APIs directly; the backend is picked by exporter configuration.
//
// # Trace Backends
//
//   - otlp: OTLP over gRPC (Jaeger, Tempo, any OTLP collector)
//   - stdout: pretty-printed spans on stdout, for debugging
//   - none: the global no-op provider
//
// # Metrics Backends
//
//   - prometheus: pull-based, served by MetricsHandler() at /metrics
//   - stdout: periodic pretty-printed dumps
//   - none: the global no-op provider
//
// The CLI defaults both to none so that solve output stays clean; the
// serve command defaults metrics to prometheus.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
//	router.Use(otelgin.Middleware("gearscan"), telemetry.GinMetrics(metrics))
//
// # Environment Variables
//
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: none)
//   - GEARSCAN_ENV: environment name (default: development)
//
// # Thread Safety
//
// All exported functions are safe for concurrent use after Init() returns.
package telemetry
