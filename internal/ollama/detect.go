// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// =============================================================================
// INSTALLATION DETECTION
// =============================================================================

// Status describes the state of the local Ollama installation.
type Status int

const (
	// StatusNotInstalled means no Ollama binary was found.
	StatusNotInstalled Status = iota
	// StatusInstalledNotRunning means the binary exists but the API is unreachable.
	StatusInstalledNotRunning
	// StatusRunning means the API answered a health check.
	StatusRunning
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not installed"
	case StatusInstalledNotRunning:
		return "installed, not running"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// DetectionResult holds everything learned while probing the installation.
type DetectionResult struct {
	Status        Status
	BinaryPath    string // empty when not installed
	Version       string // empty when unknown
	APIAccessible bool
}

// Detect probes the local Ollama installation.
//
// It checks the binary (PATH plus common install locations), asks the
// binary for its version, and finally performs an API health check. A
// reachable API wins even when no binary is found, which covers Ollama
// running in a container or on a remote host.
func (c *Client) Detect(ctx context.Context) DetectionResult {
	result := DetectionResult{Status: StatusNotInstalled}

	if path, err := locateServerBinary(); err == nil {
		result.BinaryPath = path
		result.Status = StatusInstalledNotRunning
		result.Version = binaryVersion(ctx, path)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.CheckRunning(checkCtx); err == nil {
		result.APIAccessible = true
		result.Status = StatusRunning

		if result.Version == "" {
			if v, err := c.Version(checkCtx); err == nil {
				result.Version = v
			}
		}
	}

	return result
}

// binaryVersion runs "ollama --version" and extracts the version number.
// The output looks like "ollama version is 0.1.32"; the last whitespace
// separated token is the version.
func binaryVersion(ctx context.Context, path string) string {
	cmdCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, path, "--version").Output()
	if err != nil {
		return ""
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
