// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package platform probes host resources and estimates model compatibility.
package platform

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODEL COMPATIBILITY
// =============================================================================

// Memory headroom constants, in GB. Runtime overhead on top of the
// model weights, plus scratch space for the download.
const (
	memoryBufferGB    = 2.0
	storageOverheadGB = 1.0
	minRequiredGB     = 2.0
)

// Compatibility is the verdict for running one model on this host.
type Compatibility struct {
	ModelID          string
	CanRun           bool
	RequiredMemoryGB float64
	RequiredDiskGB   float64
	// Confidence in [0, 1]. Above 0.7 the model should run comfortably.
	Confidence float64
	Warnings   []string
}

// CheckModel estimates whether a model of the given quantized size can
// run on the probed host. modelID is used to pick a memory multiplier
// by parameter-count class; sizeGB is the on-disk size of the weights.
func CheckModel(res *Resources, modelID string, sizeGB float64) Compatibility {
	required := sizeGB * memoryMultiplier(modelID)
	if required < minRequiredGB {
		required = minRequiredGB
	}

	compat := Compatibility{
		ModelID:          modelID,
		RequiredMemoryGB: required,
		RequiredDiskGB:   sizeGB + storageOverheadGB,
	}

	if res == nil || res.TotalMemoryGB == 0 {
		// Resources are advisory; without them assume it runs.
		compat.CanRun = true
		compat.Confidence = 0.5
		compat.Warnings = append(compat.Warnings, "Could not probe system resources")
		return compat
	}

	availableGB := res.TotalMemoryGB - memoryBufferGB
	memRatio := availableGB / required

	compat.CanRun = memRatio >= 1.0
	compat.Confidence = confidence(memRatio, res.FreeDiskGB, compat.RequiredDiskGB)

	if memRatio < 1.0 {
		compat.Warnings = append(compat.Warnings,
			fmt.Sprintf("Needs about %.1f GB of memory, only %.1f GB available", required, availableGB))
	} else if memRatio < 1.5 {
		compat.Warnings = append(compat.Warnings, "Memory is tight; close other applications before loading")
	}

	if res.CPUCores > 0 && res.CPUCores < 4 {
		compat.Warnings = append(compat.Warnings, "Fewer than 4 CPU cores; expect slow generation")
	}

	if res.FreeDiskGB > 0 && res.FreeDiskGB < compat.RequiredDiskGB {
		compat.CanRun = false
		compat.Warnings = append(compat.Warnings,
			fmt.Sprintf("Needs %.1f GB of disk, only %.1f GB free", compat.RequiredDiskGB, res.FreeDiskGB))
	}

	return compat
}

// memoryMultiplier maps a model ID to the ratio of runtime memory to
// on-disk size. Larger models and vision models need proportionally
// more memory for KV cache and activations.
func memoryMultiplier(modelID string) float64 {
	id := strings.ToLower(modelID)

	multiplier := 1.2
	switch {
	case strings.Contains(id, "70b"):
		multiplier = 1.8
	case strings.Contains(id, "13b"):
		multiplier = 1.6
	case strings.Contains(id, "7b"):
		multiplier = 1.5
	}

	if strings.Contains(id, "vision") || strings.Contains(id, "llava") {
		multiplier = 1.7
	} else if strings.Contains(id, "coder") || strings.Contains(id, "code") {
		multiplier = 1.4
	}

	return multiplier
}

// confidence combines a memory score and a storage score, weighted
// toward memory since that is what actually kills model loads.
func confidence(memRatio, freeDiskGB, requiredDiskGB float64) float64 {
	var memScore float64
	switch {
	case memRatio >= 2.0:
		memScore = 1.0
	case memRatio >= 1.5:
		memScore = 0.8
	case memRatio >= 1.0:
		memScore = 0.6
	default:
		memScore = 0.0
	}

	storScore := 1.0
	if freeDiskGB > 0 {
		storRatio := freeDiskGB / requiredDiskGB
		switch {
		case storRatio >= 2.0:
			storScore = 1.0
		case storRatio >= 1.5:
			storScore = 0.9
		case storRatio >= 1.0:
			storScore = 0.7
		default:
			storScore = 0.0
		}
	}

	return 0.7*memScore + 0.3*storScore
}
