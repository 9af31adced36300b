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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/gearscan/services/schematic/index"
	"github.com/AleutianAI/gearscan/services/schematic/token"
)

// ServiceVersion is the schematic service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the schematic service.
type Handlers struct {
	svc     *Service
	version string
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, version: ServiceVersion}
}

// WithVersion overrides the version reported by the health endpoint.
func (h *Handlers) WithVersion(version string) *Handlers {
	if version != "" {
		h.version = version
	}
	return h
}

// HandleAnalyze handles POST /v1/schematic/analyze.
//
// Description:
//
//	Solves both parts for the posted grid and returns per-gear detail.
//
// Request Body:
//
//	AnalyzeRequest
//
// Response:
//
//	200 OK: Report
//	400 Bad Request: INVALID_REQUEST or PARSE_FAILED
//	413 Request Entity Too Large: GRID_TOO_LARGE
//	422 Unprocessable Entity: AGGREGATE_OVERFLOW
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	report, err := h.svc.Analyze(c.Request.Context(), *req.Grid)
	if err != nil {
		statusCode, errCode := classifyError(err)
		logger.Warn("Analyze failed", "error", err, "code", errCode)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Schematic analyzed",
		"part1", report.Part1,
		"part2", report.Part2,
		"gears", len(report.Gears))

	c.JSON(http.StatusOK, report)
}

// HandleTokens handles POST /v1/schematic/tokens.
//
// Response:
//
//	200 OK: TokensResponse
//	400 Bad Request: INVALID_REQUEST or PARSE_FAILED
//	413 Request Entity Too Large: GRID_TOO_LARGE
func (h *Handlers) HandleTokens(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleTokens")

	var req TokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	rows, err := h.svc.Tokens(c.Request.Context(), *req.Grid, req.Rows...)
	if err != nil {
		statusCode, errCode := classifyError(err)
		logger.Warn("Tokens failed", "error", err, "code", errCode)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	c.JSON(http.StatusOK, TokensResponse{Rows: rows})
}

// HandleHealth handles GET /v1/schematic/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: h.version,
	})
}

// classifyError maps a service error to an HTTP status and error code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrGridTooLarge):
		return http.StatusRequestEntityTooLarge, "GRID_TOO_LARGE"
	case errors.Is(err, token.ErrNumberOverflow):
		return http.StatusBadRequest, "PARSE_FAILED"
	case errors.Is(err, index.ErrAggregateOverflow):
		return http.StatusUnprocessableEntity, "AGGREGATE_OVERFLOW"
	default:
		return http.StatusInternalServerError, "ANALYZE_FAILED"
	}
}

// getOrCreateRequestID returns the X-Request-ID header or a fresh UUID,
// and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
