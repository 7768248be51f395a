// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings for the chat interface and the
// help entries rendered in the shortcut overlay. The semantic routing
// of key presses lives in the dispatch package; KeyMap exists for the
// bindings the viewport and overlays handle locally, plus help text.
package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/openchat-tui/internal/dispatch"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the locally-handled keyboard bindings: transcript
// navigation and overlay movement. Composer submit/cancel and global
// hotkeys are resolved by the dispatcher, not matched here.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default local key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the compact help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// FullHelp returns the bindings grouped for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Home, k.End},
		{k.Select, k.Quit},
	}
}

// =============================================================================
// SHORTCUT HELP ENTRIES
// =============================================================================

// HelpEntry is one row in the shortcut overlay.
type HelpEntry struct {
	Chord string
	Desc  string
}

// ShortcutHelp builds the overlay rows from the active hotkey table and
// send mode. The modifier is spelled per platform.
func ShortcutHelp(table []dispatch.Shortcut, mode dispatch.SendMode, isMac bool) []HelpEntry {
	mod := "ctrl"
	if isMac {
		mod = "cmd"
	}

	var entries []HelpEntry

	if mode == dispatch.SendModeModEnter {
		entries = append(entries,
			HelpEntry{Chord: mod + "+enter", Desc: "send message"},
			HelpEntry{Chord: "enter", Desc: "insert newline"},
		)
	} else {
		entries = append(entries,
			HelpEntry{Chord: "enter", Desc: "send message"},
			HelpEntry{Chord: "shift+enter", Desc: "insert newline"},
		)
	}

	entries = append(entries,
		HelpEntry{Chord: "esc", Desc: "cancel stream / close overlay"},
	)

	if table == nil {
		table = dispatch.DefaultHotkeyTable()
	}
	seen := make(map[dispatch.Action]bool)
	for _, sc := range table {
		// Aliases for the same action collapse to the first chord.
		if seen[sc.Action] {
			continue
		}
		seen[sc.Action] = true

		chord := fmt.Sprintf("%s+%s", mod, sc.Key)
		if sc.RequireShift {
			chord = fmt.Sprintf("%s+shift+%s", mod, sc.Key)
		}
		entries = append(entries, HelpEntry{Chord: chord, Desc: sc.Help})
	}

	return entries
}
