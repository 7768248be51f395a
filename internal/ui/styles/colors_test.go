// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the openchat TUI.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// PALETTE TESTS
// =============================================================================

func TestPrimaryColors(t *testing.T) {
	colors := map[string]lipgloss.AdaptiveColor{
		"Teal":   Teal,
		"Indigo": Indigo,
		"Green":  Green,
		"Red":    Red,
		"Yellow": Yellow,
	}

	for name, c := range colors {
		if c.Light == "" || c.Dark == "" {
			t.Errorf("%s missing a light or dark value", name)
		}
		if !strings.HasPrefix(c.Light, "#") || !strings.HasPrefix(c.Dark, "#") {
			t.Errorf("%s values should be hex colors, got %q / %q", name, c.Light, c.Dark)
		}
	}
}

func TestSurfaceAndTextColors(t *testing.T) {
	colors := []lipgloss.AdaptiveColor{
		Surface, SurfaceDim, SurfaceBright, Border, BorderDim,
		TextPrimary, TextSecondary, TextMuted, TextInverse,
	}

	for i, c := range colors {
		if c.Light == "" || c.Dark == "" {
			t.Errorf("surface/text color %d missing a variant", i)
		}
	}
}

func TestMessageBubbleColors(t *testing.T) {
	pairs := [][2]lipgloss.AdaptiveColor{
		{UserBubbleBg, UserBubbleFg},
		{AssistantBubbleBg, AssistantBubbleFg},
		{SystemBubbleBg, SystemBubbleFg},
	}

	for i, pair := range pairs {
		bg, fg := pair[0], pair[1]
		if bg.Dark == fg.Dark {
			t.Errorf("bubble %d: dark background equals foreground", i)
		}
		if bg.Light == fg.Light {
			t.Errorf("bubble %d: light background equals foreground", i)
		}
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestStatusIndicators(t *testing.T) {
	indicators := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	}

	seen := make(map[string]bool)
	for _, ind := range indicators {
		if ind == "" {
			t.Error("status indicator should not be empty")
		}
		for _, r := range ind {
			if r > 127 {
				t.Errorf("indicator %q should be ASCII-only", ind)
			}
		}
		if ind != StatusIndicators.Pending && seen[ind] {
			t.Errorf("duplicate indicator %q", ind)
		}
		seen[ind] = true
	}
}

// =============================================================================
// RENDER HELPER TESTS
// =============================================================================

func TestRenderHelpers(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.render("model loaded")
			if !strings.Contains(out, tc.indicator) {
				t.Errorf("output %q missing indicator %q", out, tc.indicator)
			}
			if !strings.Contains(out, "model loaded") {
				t.Errorf("output %q missing message", out)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	ok := RenderStatus(true, "saved")
	if !strings.Contains(ok, StatusIndicators.Success) {
		t.Errorf("success output %q missing success indicator", ok)
	}

	fail := RenderStatus(false, "save failed")
	if !strings.Contains(fail, StatusIndicators.Error) {
		t.Errorf("failure output %q missing error indicator", fail)
	}
}

func TestRenderHelpers_EmptyAndUnicode(t *testing.T) {
	if out := RenderSuccess(""); !strings.Contains(out, StatusIndicators.Success) {
		t.Error("empty message should still render the indicator")
	}
	if out := RenderError("モデルが見つかりません"); !strings.Contains(out, "モデル") {
		t.Error("unicode message should survive rendering")
	}
}
