// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schematic

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
)

// RateLimit returns gin middleware that admits requests through limiter.
//
// Description:
//
//	A single token bucket shared by every client. Rejected requests get
//	429 with code RATE_LIMITED and a Retry-After header in whole seconds.
//	A nil limiter admits everything.
//
// Inputs:
//
//	limiter - Token bucket, e.g. rate.NewLimiter(rate.Limit(50), 100).
//	metrics - Optional; counts rejections.
func RateLimit(limiter *rate.Limiter, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		r := limiter.Reserve()
		if !r.OK() {
			reject(c, 0, metrics)
			return
		}
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			reject(c, int(math.Ceil(delay.Seconds())), metrics)
			return
		}
		c.Next()
	}
}

// reject aborts the request with 429.
func reject(c *gin.Context, retryAfter int, metrics *telemetry.Metrics) {
	route := c.FullPath()
	metrics.RecordRateLimited(c.Request.Context(), route)
	slog.Warn("Request rate limited", "route", route, "retry_after_s", retryAfter)

	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error: "rate limit exceeded",
		Code:  "RATE_LIMITED",
	})
}
