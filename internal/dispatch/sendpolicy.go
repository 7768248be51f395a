// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

import "strings"

// =============================================================================
// SEND MODE
// =============================================================================

// SendMode selects which keystroke submits the composer content.
type SendMode int

const (
	// SendModeEnter submits on plain Enter; Shift+Enter inserts a newline.
	SendModeEnter SendMode = iota

	// SendModeModEnter submits on primary-modifier+Enter; plain Enter
	// inserts a newline.
	SendModeModEnter
)

// String returns the configuration spelling of the mode.
func (m SendMode) String() string {
	if m == SendModeModEnter {
		return "mod+enter"
	}
	return "enter"
}

// ParseSendMode parses a configured send-mode string. Unknown or empty
// values fall back to SendModeEnter; a malformed preference must never
// fail dispatch.
func ParseSendMode(s string) SendMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mod+enter", "cmd+enter", "ctrl+enter":
		return SendModeModEnter
	default:
		return SendModeEnter
	}
}

// =============================================================================
// SEND-KEY POLICY
// =============================================================================

// ResolveComposerKey decides what a keystroke means inside the composer:
// submit, newline insertion, or nothing. It is a pure lookup keyed on
// (mode, key, shift-or-modifier) with no hidden state.
//
// Newline insertion is returned as ActionInsertNewline so composers that
// suppress the widget default can insert one themselves; the dispatcher
// surfaces it as NoOp otherwise.
func ResolveComposerKey(ev KeyEvent, mode SendMode) Action {
	if ev.Key != KeyEnter {
		return ActionNoOp
	}

	switch mode {
	case SendModeModEnter:
		if ev.ModifierPrimary {
			return ActionSend
		}
		return ActionInsertNewline

	default: // SendModeEnter
		if ev.Shift {
			return ActionInsertNewline
		}
		return ActionSend
	}
}
