// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// KEY EVENT
// =============================================================================

// Logical key names used throughout the dispatch pipeline.
const (
	KeyEnter  = "enter"
	KeyEscape = "escape"
)

// KeyEvent is the normalized form of a single physical key press.
// It is constructed once per keystroke, consumed synchronously by the
// dispatch pipeline, and never stored.
type KeyEvent struct {
	// Key is the logical key name, lowercased ("enter", "escape", "n").
	Key string

	// ModifierPrimary reports whether the platform-normalized primary
	// modifier (Cmd on macOS, Ctrl elsewhere) was held.
	ModifierPrimary bool

	// Shift reports whether Shift was held.
	Shift bool

	// TargetIsTextInput reports whether the composer (or another text
	// input) had focus when the key was pressed.
	TargetIsTextInput bool
}

// =============================================================================
// BUBBLE TEA ADAPTER
// =============================================================================

// FromKeyMsg normalizes a Bubble Tea key message into a KeyEvent.
//
// Terminals report the Command key as the meta/alt prefix (where they
// report it at all) and Control as the ctrl prefix; the classifier folds
// whichever one is primary for the host platform into ModifierPrimary.
// Shifted letters arrive as uppercase runes and are lowered here so the
// shortcut table can stay case-insensitive.
func FromKeyMsg(msg tea.KeyMsg, cl Classifier, targetIsTextInput bool) KeyEvent {
	name := msg.String()

	ev := KeyEvent{TargetIsTextInput: targetIsTextInput}
	var meta, ctrl bool

	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			ctrl = true
			name = strings.TrimPrefix(name, "ctrl+")
		case strings.HasPrefix(name, "alt+"):
			meta = true
			name = strings.TrimPrefix(name, "alt+")
		case strings.HasPrefix(name, "shift+"):
			ev.Shift = true
			name = strings.TrimPrefix(name, "shift+")
		default:
			ev.Key = normalizeKeyName(name)
			ev.ModifierPrimary = cl.Primary(meta, ctrl)
			// Uppercase single letters imply a held Shift.
			if r := singleRune(name); r != 0 && unicode.IsUpper(r) {
				ev.Shift = true
				ev.Key = strings.ToLower(ev.Key)
			}
			return ev
		}
	}
}

// normalizeKeyName maps Bubble Tea key names onto the logical names the
// pipeline uses.
func normalizeKeyName(name string) string {
	switch name {
	case "esc":
		return KeyEscape
	default:
		return strings.ToLower(name)
	}
}

// singleRune returns the rune for single-character key names, 0 otherwise.
func singleRune(name string) rune {
	runes := []rune(name)
	if len(runes) != 1 {
		return 0
	}
	return runes[0]
}
