// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the openchat TUI.
//
// This file holds spinner frame sets and the text progress bar used while
// waiting on model responses and downloads.
package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPINNER FRAME SETS
// =============================================================================

// SpinnerConfig pairs a frame sequence with its playback rate.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// BrailleSpinner is the default "thinking" spinner.
var BrailleSpinner = SpinnerConfig{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    10,
}

// DotsSpinner is a lower-key alternative for status lines.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    5,
}

// LineSpinner is an ASCII-only fallback for limited terminals.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    8,
}

// =============================================================================
// PROGRESS INDICATORS
// =============================================================================

// Progress bar characters for model download displays.
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+", "#", "#", "#", "#"}
)

// RenderProgressBar creates a progress bar string.
// width is the total width in characters; percent is 0-100.
func RenderProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filledWidth := float64(width) * percent / 100
	fullBlocks := int(filledWidth)
	partialIndex := int((filledWidth - float64(fullBlocks)) * float64(len(ProgressPartial)))

	var sb strings.Builder
	sb.Grow(width * 3)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}

	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}

	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}

	return sb.String()
}

// =============================================================================
// CURSOR
// =============================================================================

// TypingCursor frames for the blinking streaming cursor.
var TypingCursor = []string{"_", " "}

// CursorBlinkRate matches the common terminal cursor blink interval.
var CursorBlinkRate = 530 * time.Millisecond
