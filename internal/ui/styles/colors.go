// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the openchat TUI.
// All colors use Lip Gloss AdaptiveColor so the palette works on both
// light and dark terminal backgrounds.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Teal - Brand color, prompts, user highlights
var Teal = lipgloss.AdaptiveColor{Light: "#0D9488", Dark: "#2DD4BF"}

// TealDeep - Darker teal for backgrounds
var TealDeep = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#134E4A"}

// Indigo - Secondary accent, assistant messages, selections
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// IndigoDeep - Darker indigo for backgrounds
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#312E81"}

// Green - Success states, model-ready indicator
var Green = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Red - Errors, cancelled streams, danger states
var Red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// RedDeep - Darker red for error backgrounds
var RedDeep = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#7F1D1D"}

// Yellow - Warnings, compatibility cautions
var Yellow = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FACC15"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#16161E"}

// SurfaceDim - Slightly darker/lighter surface for headers and footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#101016"}

// SurfaceBright - Raised surface for highlights and popovers
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#24242E"}

// Border - Borders and separators
var Border = lipgloss.AdaptiveColor{Light: "#E4E4E7", Dark: "#2E2E3A"}

// BorderDim - Dimmer border for less prominent elements
var BorderDim = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#3F3F4D"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4EF"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#52525B", Dark: "#A1A1B5"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#60606E"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#16161E"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Teal tones
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#CCFBF1", Dark: "#115E59"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#134E4A", Dark: "#CCFBF1"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#14B8A6", Dark: "#14B8A6"}

// Assistant message bubble - Muted indigo tones
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#EEF2FF", Dark: "#2B2B45"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#3730A3", Dark: "#E0E7FF"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#A5B4FC", Dark: "#818CF8"}

// System message bubble - Yellow tones
var SystemBubbleBg = lipgloss.AdaptiveColor{Light: "#FEF9C3", Dark: "#713F12"}
var SystemBubbleFg = lipgloss.AdaptiveColor{Light: "#854D0E", Dark: "#FEF9C3"}
var SystemBubbleBorder = lipgloss.AdaptiveColor{Light: "#EAB308", Dark: "#EAB308"}

// =============================================================================
// SPECIAL EFFECTS
// =============================================================================

// Focus ring color
var FocusRing = Teal

// Selection highlight
var SelectionBg = lipgloss.AdaptiveColor{Light: "#99F6E4", Dark: "#1E3A3A"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains text/shape indicators for status states.
// The symbols provide visual cues beyond color for colorblind users.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators provides ASCII shape indicators alongside colors.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}

// =============================================================================
// STATUS RENDER HELPERS
// =============================================================================

// RenderSuccess renders a success message with its shape indicator.
func RenderSuccess(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Green).
		Bold(true)
	return style.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its shape indicator.
func RenderError(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)
	return style.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its shape indicator.
func RenderWarning(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Yellow).
		Bold(true)
	return style.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an informational message with its shape indicator.
func RenderInfo(message string) string {
	style := lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	return style.Render(StatusIndicators.Info + " " + message)
}

// RenderStatus renders a message as success or error based on the flag.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}
