// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schematic exposes engine-schematic analysis as a service.
//
// The Service wraps the token index with size limits, tracing, metrics
// and logging. Handlers expose it over HTTP with gin; the gearscan CLI
// calls it directly.
package schematic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/gearscan/services/schematic/index"
	"github.com/AleutianAI/gearscan/services/schematic/telemetry"
	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// tracerName is the tracer used for service-level spans.
const tracerName = "gearscan.service"

// ServiceConfig configures the schematic service.
type ServiceConfig struct {
	// MaxGridBytes is the largest accepted grid, in bytes. Zero disables
	// the check.
	// Default: 1MB
	MaxGridBytes int

	// Logger receives completion and failure logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics receives analysis metrics. Optional.
	Metrics *telemetry.Metrics
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxGridBytes: 1 << 20,
	}
}

// Service analyzes engine schematics.
//
// Thread Safety:
//
//	Service holds no per-grid state and is safe for concurrent use.
type Service struct {
	config ServiceConfig
	logger *slog.Logger
}

// NewService creates a service with the given configuration.
func NewService(config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{config: config, logger: logger}
}

// Config returns the service configuration.
func (s *Service) Config() ServiceConfig {
	return s.config
}

// Build checks the grid against the size limit and builds its index.
//
// Outputs:
//
//	*index.Schematic - The built index.
//	error - ErrNilContext, ErrGridTooLarge, or a wrapped *token.ParseError.
func (s *Service) Build(ctx context.Context, grid string) (*index.Schematic, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if s.config.MaxGridBytes > 0 && len(grid) > s.config.MaxGridBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrGridTooLarge, len(grid), s.config.MaxGridBytes)
	}
	sch, err := index.Build(ctx, grid)
	if err != nil {
		return nil, fmt.Errorf("build schematic: %w", err)
	}
	return sch, nil
}

// Analyze solves both parts for a grid and reports per-gear detail.
//
// Description:
//
//	Builds the index once, then computes the sum of symbol-adjacent
//	numbers, the sum of gear ratios, every gear's evaluation and the
//	token statistics. An empty grid yields an all-zero report.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	grid - The full schematic text.
//
// Outputs:
//
//	*Report - The analysis.
//	error - ErrNilContext, ErrGridTooLarge, a wrapped *token.ParseError, or
//	        a wrapped index.ErrAggregateOverflow.
//
// Example:
//
//	report, err := svc.Analyze(ctx, grid)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Part1, report.Part2)
func (s *Service) Analyze(ctx context.Context, grid string) (*Report, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("grid.bytes", len(grid)))

	logger := telemetry.LoggerWithTrace(ctx, s.logger)

	fail := func(err error) (*Report, error) {
		telemetry.RecordError(span, err)
		s.config.Metrics.RecordAnalysis(ctx, len(grid), time.Since(start), statusFor(err))
		logger.Warn("schematic analysis failed", "error", err, "grid_bytes", len(grid))
		return nil, err
	}

	sch, err := s.Build(ctx, grid)
	if err != nil {
		return fail(err)
	}

	part1, err := sch.SumEligibleNumbers(ctx)
	if err != nil {
		return fail(fmt.Errorf("sum eligible numbers: %w", err))
	}

	part2, err := sch.SumGearRatios(ctx)
	if err != nil {
		return fail(fmt.Errorf("sum gear ratios: %w", err))
	}

	ratios, err := sch.GearRatios(ctx)
	if err != nil {
		return fail(fmt.Errorf("evaluate gears: %w", err))
	}

	report := &Report{
		Part1: part1,
		Part2: part2,
		Gears: make([]GearReport, 0, len(ratios)),
		Stats: ReportStats{Stats: sch.Stats()},
	}
	for _, g := range ratios {
		report.Gears = append(report.Gears, newGearReport(g))
	}
	for row := 0; row <= sch.MaxRow(); row++ {
		report.Stats.Eligible += len(sch.EligibleNumbers(row))
	}

	telemetry.SetSpanOK(span)
	s.config.Metrics.RecordAnalysis(ctx, len(grid), time.Since(start), "ok")
	logger.Info("schematic analyzed",
		"rows", report.Stats.Rows,
		"tokens", report.Stats.Entries,
		"gears", report.Stats.Gears,
		"part1", report.Part1,
		"part2", report.Part2,
		"duration_ms", time.Since(start).Milliseconds())

	return report, nil
}

// Tokens returns the indexed tokens of a grid, row by row.
//
// Description:
//
//	With no rows given, every row of the grid is returned, including rows
//	without tokens. Otherwise only the requested rows are returned, in the
//	order requested; rows outside the grid come back empty.
func (s *Service) Tokens(ctx context.Context, grid string, rows ...int) ([]RowTokens, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.Tokens")
	defer span.End()

	sch, err := s.Build(ctx, grid)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if len(rows) == 0 {
		n := sch.Stats().Rows
		rows = make([]int, n)
		for i := range rows {
			rows[i] = i
		}
	}

	out := make([]RowTokens, 0, len(rows))
	for _, row := range rows {
		entries := sch.Row(row)
		rt := RowTokens{Row: row, Tokens: make([]TokenView, 0, len(entries))}
		for _, e := range entries {
			rt.Tokens = append(rt.Tokens, newTokenView(e))
		}
		out = append(out, rt)
	}

	telemetry.SetSpanOK(span)
	return out, nil
}

// newGearReport flattens an index gear evaluation.
func newGearReport(g index.GearRatio) GearReport {
	nums := make([]uint64, 0, len(g.Numbers))
	for _, e := range g.Numbers {
		nums = append(nums, e.Token.Value)
	}
	return GearReport{
		Row:     g.Gear.Row,
		Col:     g.Gear.Span.Start,
		Numbers: nums,
		Ratio:   g.Ratio,
		Counted: g.Counted(),
	}
}

// statusFor maps an Analyze error to a metric status label.
func statusFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrGridTooLarge):
		return "too_large"
	case errors.Is(err, token.ErrNumberOverflow):
		return "parse_failed"
	case errors.Is(err, index.ErrAggregateOverflow):
		return "overflow"
	default:
		return "error"
	}
}
