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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
)

// RegisterRoutes registers all schematic routes with the router.
//
// Description:
//
//	Registers the /schematic/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/schematic/analyze - Solve both parts with gear detail
//	POST /v1/schematic/tokens - Per-row token listing
//	GET  /v1/schematic/health - Liveness and version
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	sg := rg.Group("/schematic")
	{
		sg.POST("/analyze", handlers.HandleAnalyze)
		sg.POST("/tokens", handlers.HandleTokens)
		sg.GET("/health", handlers.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName names the otelgin server spans.
	ServiceName string

	// Metrics feeds the HTTP metrics middleware. Optional.
	Metrics *telemetry.Metrics

	// Limiter rate-limits the /v1 group. Optional.
	Limiter *rate.Limiter
}

// NewRouter builds the complete HTTP surface.
//
// Description:
//
//	Installs recovery, otelgin tracing and HTTP metrics on every route,
//	rate limiting on /v1, and /metrics when the prometheus exporter is
//	active.
//
// Example:
//
//	router := schematic.NewRouter(handlers, schematic.RouterConfig{
//	    ServiceName: "gearscan",
//	    Metrics:     metrics,
//	    Limiter:     rate.NewLimiter(rate.Limit(50), 100),
//	})
//	srv := &http.Server{Addr: ":12230", Handler: router}
func NewRouter(handlers *Handlers, cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "gearscan"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(telemetry.GinMetrics(cfg.Metrics))

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	v1 := router.Group("/v1")
	v1.Use(RateLimit(cfg.Limiter, cfg.Metrics))
	RegisterRoutes(v1, handlers)

	return router
}
