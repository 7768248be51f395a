// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the openchat application.
//
// It holds the small helpers the storage and config layers share:
// crash-safe file writing and UTF-8 safe truncation.
//
//	// Truncate long strings safely for display
//	title := util.TruncateRunes(longText, 50)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
