// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

import "strings"

// =============================================================================
// GLOBAL SHORTCUT TABLE
// =============================================================================

// Shortcut is one entry in the application-wide hotkey table.
type Shortcut struct {
	// Key is the logical key name, matched case-insensitively.
	Key string

	// RequireShift restricts the entry to shifted presses.
	RequireShift bool

	// Action is produced when the entry matches.
	Action Action

	// Help is the description shown in the shortcut-help overlay.
	Help string
}

// DefaultHotkeyTable returns the static global hotkey table. All entries
// require the primary modifier; the table is constant configuration, not
// runtime-mutable state.
func DefaultHotkeyTable() []Shortcut {
	return []Shortcut{
		{Key: "n", Action: ActionNewChat, Help: "new chat"},
		{Key: "t", Action: ActionNewChat, Help: "new chat"},
		{Key: "s", Action: ActionToggleSidebar, Help: "toggle sidebar"},
		{Key: ",", Action: ActionToggleSettings, Help: "open settings"},
		{Key: "/", Action: ActionToggleShortcuts, Help: "shortcut help"},
		{Key: "f", RequireShift: true, Action: ActionSendFeedback, Help: "send feedback"},
		{Key: "l", Action: ActionFocusInput, Help: "focus input"},
	}
}

// TableWithoutKeys returns the default table with the named keys removed.
// Entries can only be switched off, never rebound.
func TableWithoutKeys(disabled []string) []Shortcut {
	if len(disabled) == 0 {
		return DefaultHotkeyTable()
	}

	off := make(map[string]bool, len(disabled))
	for _, k := range disabled {
		off[strings.ToLower(k)] = true
	}

	var table []Shortcut
	for _, sc := range DefaultHotkeyTable() {
		if off[strings.ToLower(sc.Key)] {
			continue
		}
		table = append(table, sc)
	}
	return table
}

// =============================================================================
// GLOBAL SHORTCUT ROUTER
// =============================================================================

// RouteGlobalShortcut matches an event against the hotkey table. It is
// consulted only when no text input is focused (or for Escape, which is
// exempt from the modifier requirement but has no table entry of its
// own). Every entry requires the primary modifier to be held.
//
// A nil table means the default table.
func RouteGlobalShortcut(ev KeyEvent, modifierHeld bool, table []Shortcut) Action {
	if !modifierHeld && ev.Key != KeyEscape {
		return ActionNoOp
	}
	if table == nil {
		table = DefaultHotkeyTable()
	}

	key := strings.ToLower(ev.Key)
	for _, sc := range table {
		if strings.ToLower(sc.Key) != key {
			continue
		}
		if sc.RequireShift && !ev.Shift {
			continue
		}
		return sc.Action
	}
	return ActionNoOp
}
