// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the openchat TUI.
//
// The package defines the adaptive color palette, the Theme aggregate of
// Lip Gloss styles for every screen region, and small animation helpers
// (spinner frames, progress bars) used while streaming.
//
// # Usage
//
// Create a theme honoring the configured variant:
//
//	theme := styles.NewThemeWithVariant(cfg.UI.Theme)
//	theme.SetSize(width, height)
//	header := theme.Header.Render("openchat")
//
// Colors adapt to light and dark terminal backgrounds automatically via
// lipgloss.AdaptiveColor.
package styles
