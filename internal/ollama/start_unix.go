// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// serverStartupWindow is how long awaitServerReady polls after a spawn.
const serverStartupWindow = 10 * time.Second

// locateServerBinary resolves the ollama binary: PATH first, then the
// usual Unix and macOS install locations.
func locateServerBinary() (string, error) {
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	candidates := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}
	if home := os.Getenv("HOME"); home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}
	candidates = append(candidates, "/Applications/Ollama.app/Contents/Resources/ollama")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("ollama not found in PATH, /usr/local/bin, /usr/bin, ~/.local/bin, or /Applications")
}

// detachServerProcess puts the child in its own process group so it
// survives this process exiting.
func detachServerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
