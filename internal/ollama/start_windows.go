// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

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
// Ollama is slow to come up on Windows, especially on first launch.
const serverStartupWindow = 15 * time.Second

// Process creation flags not exposed by the syscall package.
const (
	createNoWindow  = 0x08000000
	detachedProcess = 0x00000008
)

// locateServerBinary resolves ollama.exe: PATH first, then the per-user
// and machine-wide install locations.
func locateServerBinary() (string, error) {
	if path, err := exec.LookPath("ollama.exe"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("ollama"); err == nil {
		return path, nil
	}

	var candidates []string
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		candidates = append(candidates, filepath.Join(localAppData, "Programs", "Ollama", "ollama.exe"))
	}
	candidates = append(candidates,
		`C:\Program Files\Ollama\ollama.exe`,
		`C:\Program Files (x86)\Ollama\ollama.exe`,
	)
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		candidates = append(candidates,
			filepath.Join(userProfile, "Ollama", "ollama.exe"),
			filepath.Join(userProfile, ".ollama", "ollama.exe"),
		)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf(`ollama.exe not found in PATH, %%LOCALAPPDATA%%\Programs\Ollama, or C:\Program Files\Ollama`)
}

// detachServerProcess detaches the child from our console and process
// group so it keeps running after we exit, without flashing a window.
func detachServerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | createNoWindow | detachedProcess,
	}
}
