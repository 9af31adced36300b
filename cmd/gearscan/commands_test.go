// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/gearscan/services/schematic"
)

const sampleGrid = `467..114..
...*......
..35..633.
......#...
617*......
.....+.58.
..592.....
......755.
...$.*....
.664.598..`

// syncBuffer is a bytes.Buffer safe for a command goroutine to write while
// the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolateCLI points HOME at a temp dir and clears every override variable.
func isolateCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"GEARSCAN_LOG_LEVEL", "GEARSCAN_PORT", "GEARSCAN_MAX_GRID_BYTES", "GEARSCAN_ENV",
		"OTEL_TRACES_EXPORTER", "OTEL_METRICS_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"NO_COLOR",
	} {
		t.Setenv(k, "")
	}
	return home
}

func writeGrid(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schematic.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the command tree with args and returns stdout and stderr.
func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// =============================================================================
// solve
// =============================================================================

func TestSolve_File(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	out, _, err := run(t, nil, "solve", path)
	require.NoError(t, err)
	assert.Equal(t, "part 1: 4361\npart 2: 467835\n", out)
}

func TestSolve_Stdin(t *testing.T) {
	isolateCLI(t)

	for _, args := range [][]string{{"solve"}, {"solve", "-"}} {
		out, _, err := run(t, strings.NewReader(sampleGrid+"\n"), args...)
		require.NoError(t, err, args)
		assert.Equal(t, "part 1: 4361\npart 2: 467835\n", out, args)
	}
}

func TestSolve_JSON(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	out, _, err := run(t, nil, "solve", "--json", path)
	require.NoError(t, err)

	var got solveResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, solveResult{Part1: 4361, Part2: 467835}, got)
}

func TestSolve_EmptyGrid(t *testing.T) {
	isolateCLI(t)

	out, _, err := run(t, strings.NewReader(""), "solve")
	require.NoError(t, err)
	assert.Equal(t, "part 1: 0\npart 2: 0\n", out)
}

func TestSolve_Errors(t *testing.T) {
	isolateCLI(t)

	_, _, err := run(t, nil, "solve", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, _, err = run(t, strings.NewReader("99999999999999999999999*"), "solve")
	assert.Error(t, err)

	_, _, err = run(t, strings.NewReader(sampleGrid), "solve", "--watch")
	assert.ErrorContains(t, err, "needs a file path")
}

func TestSolve_MaxGridBytesFromEnv(t *testing.T) {
	isolateCLI(t)
	t.Setenv("GEARSCAN_MAX_GRID_BYTES", "8")

	_, _, err := run(t, strings.NewReader(sampleGrid), "solve")
	assert.ErrorIs(t, err, schematic.ErrGridTooLarge)
}

func TestSolve_Watch(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"solve", "--watch", "--debounce", "10ms", path})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "watching for changes")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, stdout.String(), "part 1: 4361\n")

	// Rewrite until seen: the first write can land before the watch is armed.
	require.Eventually(t, func() bool {
		if strings.Contains(stdout.String(), "part 1: 3\npart 2: 2\n") {
			return true
		}
		_ = os.WriteFile(path, []byte("1*2\n"), 0644)
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

// =============================================================================
// gears, tokens, render
// =============================================================================

func TestGears_Text(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	out, _, err := run(t, nil, "gears", path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"row 2 col 4: 467 * 35 = 16345",
		"row 5 col 4: 617 (not counted)",
		"row 9 col 6: 755 * 598 = 451490",
		"total: 467835",
		"",
	}, "\n"), out)
}

func TestGears_JSON(t *testing.T) {
	isolateCLI(t)

	out, _, err := run(t, strings.NewReader(sampleGrid), "gears", "--json")
	require.NoError(t, err)

	var got gearsResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, uint64(467835), got.Total)
	require.Len(t, got.Gears, 3)
	assert.False(t, got.Gears[1].Counted)
	assert.Equal(t, []uint64{617}, got.Gears[1].Numbers)
}

func TestFormatGear(t *testing.T) {
	tests := []struct {
		name string
		gear schematic.GearReport
		want string
	}{
		{"counted", schematic.GearReport{Row: 0, Col: 1, Numbers: []uint64{2, 3}, Ratio: 6, Counted: true}, "row 1 col 2: 2 * 3 = 6"},
		{"three numbers", schematic.GearReport{Row: 1, Col: 1, Numbers: []uint64{1, 2, 3}}, "row 2 col 2: 1, 2, 3 (not counted)"},
		{"isolated", schematic.GearReport{Row: 4, Col: 0}, "row 5 col 1: no numbers (not counted)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatGear(tt.gear); got != tt.want {
				t.Errorf("formatGear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokens_Text(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	out, _, err := run(t, nil, "tokens", "--row", "0", "--row", "1", path)
	require.NoError(t, err)
	assert.Equal(t, "row 0: [0,3) 467 [5,8) 114\nrow 1: [3,4) \"*\" gear\n", out)
}

func TestTokens_JSON(t *testing.T) {
	isolateCLI(t)

	out, _, err := run(t, strings.NewReader(sampleGrid), "tokens", "--json")
	require.NoError(t, err)

	var got schematic.TokensResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Rows, 10)
	assert.Equal(t, "#", got.Rows[3].Tokens[0].Char)
	assert.Equal(t, "non-gear", got.Rows[3].Tokens[0].Symbol)
}

func TestTokens_NegativeRow(t *testing.T) {
	isolateCLI(t)

	_, _, err := run(t, strings.NewReader(sampleGrid), "tokens", "--row", "-1")
	assert.ErrorContains(t, err, "0-based")
}

func TestRender_Plain(t *testing.T) {
	isolateCLI(t)
	path := writeGrid(t, sampleGrid)

	out, _, err := run(t, nil, "render", "--color", "never", path)
	require.NoError(t, err)
	assert.Equal(t, sampleGrid+"\n", out)

	out, _, err = run(t, nil, "render", "--color", "never", "--legend", path)
	require.NoError(t, err)
	assert.Contains(t, out, "part number")
}

func TestRender_Always(t *testing.T) {
	isolateCLI(t)

	out, _, err := run(t, strings.NewReader(sampleGrid), "render", "--color", "always")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

func TestRender_BadColor(t *testing.T) {
	isolateCLI(t)

	_, _, err := run(t, strings.NewReader(sampleGrid), "render", "--color", "sometimes")
	assert.Error(t, err)
}

// =============================================================================
// config
// =============================================================================

func TestConfig_InitAndShow(t *testing.T) {
	home := isolateCLI(t)
	path := filepath.Join(home, "custom", "gearscan.yaml")

	out, _, err := run(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, _, err = run(t, nil, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	out, _, err = run(t, nil, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 12230")
	assert.Contains(t, out, "max_grid_bytes: 1048576")
}

func TestConfig_InitDefaultPath(t *testing.T) {
	home := isolateCLI(t)

	_, _, err := run(t, nil, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".gearscan", "gearscan.yaml"))
}

func TestConfig_ShowAppliesFlags(t *testing.T) {
	isolateCLI(t)

	out, _, err := run(t, nil, "--log-level", "debug", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")
}

func TestRoot_BadLogLevel(t *testing.T) {
	isolateCLI(t)

	_, _, err := run(t, strings.NewReader(sampleGrid), "--log-level", "loud", "solve")
	assert.Error(t, err)
}

// =============================================================================
// serve
// =============================================================================

var listenRE = regexp.MustCompile(`listening on (\S+)`)

func TestServe_LifeCycle(t *testing.T) {
	isolateCLI(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve", "--host", "127.0.0.1", "--port", "0"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	var addr string
	require.Eventually(t, func() bool {
		m := listenRE.FindStringSubmatch(stderr.String())
		if m == nil {
			return false
		}
		addr = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + addr + "/v1/schematic/health")
	require.NoError(t, err)
	var health schematic.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, version, health.Version)

	body := strings.NewReader(`{"grid":"467..114..\n...*......\n..35..633."}`)
	resp, err = http.Post("http://"+addr+"/v1/schematic/analyze", "application/json", body)
	require.NoError(t, err)
	var report schematic.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(t, uint64(502), report.Part1)
	assert.Equal(t, uint64(16345), report.Part2)

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	metrics, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(metrics), "gearscan_")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_PortInUse(t *testing.T) {
	isolateCLI(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	_, _, err = run(t, nil, "serve", "--host", "127.0.0.1", "--port", port)
	assert.ErrorContains(t, err, "listen on")
}
