// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file holds small width-aware text helpers used by the renderer.
package chat

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// TEXT HELPERS
// =============================================================================

// formatTimestamp renders a message time for the transcript: clock time
// for today, date plus time otherwise.
func formatTimestamp(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}

// truncateToWidth shortens a string to the given display width,
// accounting for wide runes, appending an ellipsis when cut.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}

// wrapText wraps text to the given display width on word boundaries,
// breaking words longer than the width.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var out strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(wrapLine(line, maxWidth))
	}
	return out.String()
}

func wrapLine(line string, maxWidth int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return line
	}

	var out strings.Builder
	lineWidth := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)

		// Hard-break words wider than the line.
		for w > maxWidth {
			head := runewidth.Truncate(word, maxWidth, "")
			if lineWidth > 0 {
				out.WriteString("\n")
				lineWidth = 0
			}
			out.WriteString(head)
			out.WriteString("\n")
			word = strings.TrimPrefix(word, head)
			w = runewidth.StringWidth(word)
		}

		switch {
		case lineWidth == 0:
			out.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= maxWidth:
			out.WriteString(" ")
			out.WriteString(word)
			lineWidth += 1 + w
		default:
			out.WriteString("\n")
			out.WriteString(word)
			lineWidth = w
		}
	}
	return out.String()
}

// contentWidth computes the usable message width inside a bubble.
func contentWidth(totalWidth, margin int) int {
	w := totalWidth - margin
	if w < 20 {
		w = 20
	}
	return w
}
