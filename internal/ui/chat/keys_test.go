// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/openchat-tui/internal/dispatch"
)

// =============================================================================
// KEY MAP TESTS
// =============================================================================

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	if got := km.Quit.Keys(); len(got) != 1 || got[0] != "ctrl+q" {
		t.Errorf("Quit keys = %v, want [ctrl+q]", got)
	}
	if got := km.Select.Keys(); len(got) != 1 || got[0] != "enter" {
		t.Errorf("Select keys = %v, want [enter]", got)
	}

	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(km.FullHelp()) != 3 {
		t.Errorf("FullHelp groups = %d, want 3", len(km.FullHelp()))
	}
}

// =============================================================================
// SHORTCUT HELP TESTS
// =============================================================================

func TestShortcutHelp_EnterMode(t *testing.T) {
	entries := ShortcutHelp(nil, dispatch.SendModeEnter, false)

	if len(entries) == 0 {
		t.Fatal("no entries")
	}
	if entries[0].Chord != "enter" || entries[0].Desc != "send message" {
		t.Errorf("first entry = %+v, want enter sends", entries[0])
	}
	if entries[1].Chord != "shift+enter" {
		t.Errorf("second entry chord = %q, want shift+enter", entries[1].Chord)
	}
}

func TestShortcutHelp_ModEnterMode(t *testing.T) {
	entries := ShortcutHelp(nil, dispatch.SendModeModEnter, false)

	if entries[0].Chord != "ctrl+enter" || entries[0].Desc != "send message" {
		t.Errorf("first entry = %+v, want ctrl+enter sends", entries[0])
	}
	if entries[1].Chord != "enter" || entries[1].Desc != "insert newline" {
		t.Errorf("second entry = %+v, want enter newline", entries[1])
	}
}

func TestShortcutHelp_MacModifierSpelling(t *testing.T) {
	entries := ShortcutHelp(nil, dispatch.SendModeModEnter, true)

	if entries[0].Chord != "cmd+enter" {
		t.Errorf("first entry chord = %q, want cmd+enter", entries[0].Chord)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Chord, "ctrl+") {
			t.Errorf("mac help should not spell ctrl: %q", e.Chord)
		}
	}
}

func TestShortcutHelp_DedupesAliases(t *testing.T) {
	// The default table maps both n and t to new chat; the overlay
	// shows only the first chord.
	entries := ShortcutHelp(dispatch.DefaultHotkeyTable(), dispatch.SendModeEnter, false)

	count := 0
	for _, e := range entries {
		if e.Desc == "new chat" {
			count++
			if e.Chord != "ctrl+n" {
				t.Errorf("new chat chord = %q, want ctrl+n", e.Chord)
			}
		}
	}
	if count != 1 {
		t.Errorf("new chat rows = %d, want 1", count)
	}
}

func TestShortcutHelp_ShiftedChord(t *testing.T) {
	table := []dispatch.Shortcut{
		{Key: "f", RequireShift: true, Action: dispatch.ActionSendFeedback, Help: "send feedback"},
	}
	entries := ShortcutHelp(table, dispatch.SendModeEnter, false)

	last := entries[len(entries)-1]
	if last.Chord != "ctrl+shift+f" {
		t.Errorf("shifted chord = %q, want ctrl+shift+f", last.Chord)
	}
}

func TestShortcutHelp_EscRowAlwaysPresent(t *testing.T) {
	for _, mode := range []dispatch.SendMode{dispatch.SendModeEnter, dispatch.SendModeModEnter} {
		entries := ShortcutHelp(nil, mode, false)
		found := false
		for _, e := range entries {
			if e.Chord == "esc" {
				found = true
			}
		}
		if !found {
			t.Errorf("mode %v: missing esc row", mode)
		}
	}
}
