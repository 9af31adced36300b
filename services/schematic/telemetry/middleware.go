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
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GinMetrics returns gin middleware that records HTTP request metrics.
//
// Description:
//
//	Tracks active requests, counts requests and records their duration,
//	labelled by method, route template and status. The route template
//	(c.FullPath) keeps label cardinality bounded; unmatched routes are
//	labelled "unmatched". Tracing is left to otelgin.
//
// Inputs:
//
//	metrics - Instruments from NewMetrics. A nil value disables recording.
//
// Example:
//
//	router.Use(otelgin.Middleware("gearscan"), telemetry.GinMetrics(m))
func GinMetrics(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		start := time.Now()

		metrics.HTTPActiveRequests.Add(ctx, 1)
		defer metrics.HTTPActiveRequests.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status", c.Writer.Status()),
		)

		metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
