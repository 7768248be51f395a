// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package platform probes host resources and estimates model compatibility.
//
// This package answers two questions for the rest of the application:
// what machine are we on (OS, CPU cores, memory, free disk) and can it
// comfortably run a given local model. The compatibility estimate is a
// heuristic based on parameter count and quantized file size, not a
// guarantee.
//
// # Key Types
//
//   - Resources: Snapshot of host memory, disk, and CPU
//   - Compatibility: Verdict for one model on this host
//
// # Usage
//
//	res, err := platform.Probe(ctx)
//	if err != nil {
//	    // degrade gracefully, resources are advisory
//	}
//	compat := platform.CheckModel(res, "llama3.2:3b", 2.0)
//	if !compat.CanRun {
//	    // warn before downloading
//	}
package platform
