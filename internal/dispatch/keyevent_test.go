// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// KEY EVENT NORMALIZATION TESTS
// =============================================================================

func TestFromKeyMsg_Enter(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyEnter})
	ev := FromKeyMsg(msg, NewClassifier(false), true)

	if ev.Key != KeyEnter {
		t.Errorf("Key = %q, want %q", ev.Key, KeyEnter)
	}
	if ev.ModifierPrimary || ev.Shift {
		t.Errorf("plain enter reported modifiers: %+v", ev)
	}
	if !ev.TargetIsTextInput {
		t.Error("TargetIsTextInput not carried through")
	}
}

func TestFromKeyMsg_EscNormalized(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyEsc})
	ev := FromKeyMsg(msg, NewClassifier(false), false)

	if ev.Key != KeyEscape {
		t.Errorf("Key = %q, want %q", ev.Key, KeyEscape)
	}
}

func TestFromKeyMsg_CtrlIsPrimaryOffMac(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyCtrlN})
	ev := FromKeyMsg(msg, NewClassifier(false), false)

	if ev.Key != "n" {
		t.Errorf("Key = %q, want %q", ev.Key, "n")
	}
	if !ev.ModifierPrimary {
		t.Error("ctrl not classified as primary on non-Mac")
	}
}

func TestFromKeyMsg_CtrlIsNotPrimaryOnMac(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyCtrlN})
	ev := FromKeyMsg(msg, NewClassifier(true), false)

	if ev.ModifierPrimary {
		t.Error("ctrl classified as primary on Mac")
	}
}

func TestFromKeyMsg_MetaIsPrimaryOnMac(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{'n'}, Alt: true})
	ev := FromKeyMsg(msg, NewClassifier(true), false)

	if ev.Key != "n" {
		t.Errorf("Key = %q, want %q", ev.Key, "n")
	}
	if !ev.ModifierPrimary {
		t.Error("meta not classified as primary on Mac")
	}
}

func TestFromKeyMsg_MetaIsNotPrimaryOffMac(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{'n'}, Alt: true})
	ev := FromKeyMsg(msg, NewClassifier(false), false)

	if ev.ModifierPrimary {
		t.Error("meta classified as primary off Mac")
	}
}

func TestFromKeyMsg_UppercaseRuneImpliesShift(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}, Alt: true})
	ev := FromKeyMsg(msg, NewClassifier(true), false)

	if !ev.Shift {
		t.Error("uppercase rune did not set Shift")
	}
	if ev.Key != "f" {
		t.Errorf("Key = %q, want lowered %q", ev.Key, "f")
	}
}

func TestFromKeyMsg_PlainRune(t *testing.T) {
	msg := tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{'a'}})
	ev := FromKeyMsg(msg, NewClassifier(false), true)

	if ev.Key != "a" {
		t.Errorf("Key = %q, want %q", ev.Key, "a")
	}
	if ev.ModifierPrimary || ev.Shift {
		t.Errorf("plain rune reported modifiers: %+v", ev)
	}
}
