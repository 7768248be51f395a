// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package platform probes host resources and estimates model compatibility.
package platform

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// =============================================================================
// HOST RESOURCES
// =============================================================================

// Resources is a snapshot of the host hardware relevant to running
// local models.
type Resources struct {
	OS            string  // runtime.GOOS
	Arch          string  // runtime.GOARCH
	CPUCores      int     // logical cores
	TotalMemoryGB float64
	FreeMemoryGB  float64
	FreeDiskGB    float64
}

// IsMac reports whether the host is macOS. The keyboard layer uses this
// to pick the primary modifier (cmd on Mac, ctrl elsewhere).
func IsMac() bool {
	return runtime.GOOS == "darwin"
}

// Probe collects a resource snapshot. Disk usage is measured for the
// user's home directory since that is where models are stored.
func Probe(ctx context.Context) (*Resources, error) {
	res := &Resources{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory info: %w", err)
	}
	res.TotalMemoryGB = bytesToGB(vm.Total)
	res.FreeMemoryGB = bytesToGB(vm.Available)

	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil || counts == 0 {
		counts = runtime.NumCPU()
	}
	res.CPUCores = counts

	if usage, err := disk.UsageWithContext(ctx, homeOrRoot()); err == nil {
		res.FreeDiskGB = bytesToGB(usage.Free)
	}

	return res, nil
}

// Summary returns a one-line description for status displays.
func (r *Resources) Summary() string {
	return fmt.Sprintf("%s/%s | %d cores | %.1f GB RAM (%.1f free) | %.1f GB disk free",
		r.OS, r.Arch, r.CPUCores, r.TotalMemoryGB, r.FreeMemoryGB, r.FreeDiskGB)
}

// Warnings lists host conditions that degrade the local model experience.
func (r *Resources) Warnings() []string {
	var warnings []string

	if r.TotalMemoryGB > 0 && r.FreeMemoryGB/r.TotalMemoryGB < 0.25 {
		warnings = append(warnings, "System memory is mostly in use; model loading may be slow")
	}
	if r.CPUCores > 0 && r.CPUCores < 4 {
		warnings = append(warnings, "Fewer than 4 CPU cores; generation will be slow without a GPU")
	}
	if r.FreeDiskGB > 0 && r.FreeDiskGB < 5 {
		warnings = append(warnings, "Less than 5 GB of free disk; model downloads may fail")
	}

	return warnings
}

func bytesToGB(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}

// homeOrRoot returns the user's home directory, falling back to the
// filesystem root when it cannot be determined.
func homeOrRoot() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return "/"
}
