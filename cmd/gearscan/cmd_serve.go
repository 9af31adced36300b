// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/gearscan/cmd/gearscan/config"
	"github.com/AleutianAI/gearscan/services/schematic"
	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schematic API over HTTP",
		Long: `Starts the HTTP API:

  POST /v1/schematic/analyze   both answers with per-gear detail
  POST /v1/schematic/tokens    the token index row by row
  GET  /v1/schematic/health    liveness and version
  GET  /metrics                prometheus metrics (metric_exporter: prometheus)

Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scfg := c.cfg.Server
			if cmd.Flags().Changed("host") {
				scfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				scfg.Port = port
			}

			tcfg := c.cfg.Telemetry
			tcfg.MetricExporter = scfg.MetricExporter
			tcfg.ServiceVersion = version

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withTelemetry(ctx, tcfg, func(ctx context.Context) error {
				return c.serve(ctx, cmd, scfg)
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port, 0 for any free port (overrides config)")
	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts it down within
// scfg.ShutdownTimeout.
func (c *cli) serve(ctx context.Context, cmd *cobra.Command, scfg config.ServerConfig) error {
	metrics, err := telemetry.NewMetrics(otel.Meter("gearscan"))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	svc := schematic.NewService(schematic.ServiceConfig{
		MaxGridBytes: c.cfg.Analysis.MaxGridBytes,
		Logger:       c.logger.Slog(),
		Metrics:      metrics,
	})

	var limiter *rate.Limiter
	if scfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(scfg.RateLimit), scfg.RateBurst)
	}

	gin.SetMode(gin.ReleaseMode)
	router := schematic.NewRouter(
		schematic.NewHandlers(svc).WithVersion(version),
		schematic.RouterConfig{
			ServiceName: "gearscan",
			Metrics:     metrics,
			Limiter:     limiter,
		},
	)

	addr := net.JoinHostPort(scfg.Host, strconv.Itoa(scfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.logger.Info("gearscan server listening",
		"addr", ln.Addr().String(),
		"version", version,
		"rate_limit", scfg.RateLimit,
		"metric_exporter", scfg.MetricExporter)
	fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down server", "timeout", scfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), scfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
