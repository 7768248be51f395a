// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	startProbeInterval = 500 * time.Millisecond
	startProbeTimeout  = 500 * time.Millisecond
)

// startServerProcess spawns `ollama serve` detached from this process and
// polls until the API answers or the startup window closes. Binary lookup
// and detach mechanics live in start_unix.go / start_windows.go.
func (c *Client) startServerProcess(ctx context.Context) error {
	binPath, err := locateServerBinary()
	if err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "failed to find Ollama executable",
			Cause:   err,
		}
	}

	cmd := exec.Command(binPath, "serve")
	// The child needs the parent environment so OLLAMA_* tuning vars
	// (e.g. OLLAMA_VULKAN) reach the server.
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detachServerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: fmt.Sprintf("failed to start Ollama (path: %s)", binPath),
			Cause:   err,
		}
	}
	if cmd.Process != nil {
		// Let the server outlive us. A failed release is harmless; the
		// process is already running.
		_ = cmd.Process.Release()
	}

	return c.awaitServerReady(ctx, binPath)
}

// awaitServerReady polls the API until it responds, the context is
// cancelled, or the platform startup window elapses.
func (c *Client) awaitServerReady(ctx context.Context, binPath string) error {
	deadline := time.Now().Add(serverStartupWindow)
	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return &ClientError{
				Type:    ErrTypeConnection,
				Message: "Ollama startup cancelled",
				Cause:   ctx.Err(),
			}
		default:
		}

		probeCtx, cancel := context.WithTimeout(ctx, startProbeTimeout)
		lastErr = c.CheckRunning(probeCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		time.Sleep(startProbeInterval)
	}

	return &ClientError{
		Type: ErrTypeConnection,
		Message: fmt.Sprintf("Ollama started but not responding after %s (path: %s)",
			serverStartupWindow, binPath),
		Cause: lastErr,
	}
}
