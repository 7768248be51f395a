// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

import "testing"

// =============================================================================
// PURE RESOLUTION TESTS
// =============================================================================

func TestResolve_SendPaths(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		st   State
		want Action
	}{
		{
			name: "enter mode plain enter sends",
			ev:   KeyEvent{Key: KeyEnter, TargetIsTextInput: true},
			st:   State{SendMode: SendModeEnter},
			want: ActionSend,
		},
		{
			name: "enter mode shift+enter is noop at this layer",
			ev:   KeyEvent{Key: KeyEnter, Shift: true, TargetIsTextInput: true},
			st:   State{SendMode: SendModeEnter},
			want: ActionNoOp,
		},
		{
			name: "mod+enter mode plain enter is noop at this layer",
			ev:   KeyEvent{Key: KeyEnter, TargetIsTextInput: true},
			st:   State{SendMode: SendModeModEnter},
			want: ActionNoOp,
		},
		{
			name: "mod+enter mode modified enter sends",
			ev:   KeyEvent{Key: KeyEnter, ModifierPrimary: true, TargetIsTextInput: true},
			st:   State{SendMode: SendModeModEnter},
			want: ActionSend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.ev, tt.st); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_StreamingConvertsSendToCancel(t *testing.T) {
	ev := KeyEvent{Key: KeyEnter, TargetIsTextInput: true}
	st := State{SendMode: SendModeEnter, Streaming: true}

	if got := Resolve(ev, st); got != ActionCancel {
		t.Errorf("got %v, want cancel", got)
	}
}

func TestResolve_StreamingEscapeCancels(t *testing.T) {
	st := State{Streaming: true}

	// Inside the composer.
	ev := KeyEvent{Key: KeyEscape, TargetIsTextInput: true}
	if got := Resolve(ev, st); got != ActionCancel {
		t.Errorf("composer escape: got %v, want cancel", got)
	}

	// Focus elsewhere, no modifier held.
	ev = KeyEvent{Key: KeyEscape}
	if got := Resolve(ev, st); got != ActionCancel {
		t.Errorf("global escape: got %v, want cancel", got)
	}
}

func TestResolve_EscapeIdleIsNoOp(t *testing.T) {
	ev := KeyEvent{Key: KeyEscape}
	if got := Resolve(ev, State{}); got != ActionNoOp {
		t.Errorf("got %v, want noop", got)
	}
}

func TestResolve_ModalEscapeBeatsStreamCancel(t *testing.T) {
	ev := KeyEvent{Key: KeyEscape}
	st := State{
		Streaming: true,
		Modal:     ModalVisibility{SettingsOpen: true},
	}

	if got := Resolve(ev, st); got != ActionCloseModal {
		t.Errorf("got %v, want close_modal", got)
	}
}

func TestResolve_ModalEscapeWithoutStreaming(t *testing.T) {
	ev := KeyEvent{Key: KeyEscape, TargetIsTextInput: true}
	st := State{Modal: ModalVisibility{ShortcutsOpen: true}}

	if got := Resolve(ev, st); got != ActionCloseModal {
		t.Errorf("got %v, want close_modal", got)
	}
}

func TestResolve_ModalDoesNotClaimOtherKeys(t *testing.T) {
	// An open modal reserves Escape only; other chords resolve normally.
	ev := KeyEvent{Key: "n", ModifierPrimary: true}
	st := State{Modal: ModalVisibility{SettingsOpen: true}}

	if got := Resolve(ev, st); got != ActionNewChat {
		t.Errorf("got %v, want new_chat", got)
	}
}

func TestResolve_GlobalShortcuts(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		shift bool
		want  Action
	}{
		{"mod+n new chat", "n", false, ActionNewChat},
		{"mod+shift+f feedback", "f", true, ActionSendFeedback},
		{"mod+f without shift noop", "f", false, ActionNoOp},
		{"mod+l focus input", "l", false, ActionFocusInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := KeyEvent{Key: tt.key, ModifierPrimary: true, Shift: tt.shift}
			if got := Resolve(ev, State{}); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_ComposerSwallowsGlobalChords(t *testing.T) {
	// With a text input focused, non-Enter chords never reach the
	// shortcut router.
	ev := KeyEvent{Key: "n", ModifierPrimary: true, TargetIsTextInput: true}
	if got := Resolve(ev, State{}); got != ActionNoOp {
		t.Errorf("got %v, want noop", got)
	}
}

func TestResolve_ExactlyOneActionPerEvent(t *testing.T) {
	// Sweep a grid of inputs; every combination must resolve without
	// panicking, including unknown keys and zero-value state.
	keys := []string{KeyEnter, KeyEscape, "n", "t", "s", ",", "/", "f", "l", "z", ""}
	for _, key := range keys {
		for _, mod := range []bool{false, true} {
			for _, shift := range []bool{false, true} {
				for _, input := range []bool{false, true} {
					for _, streaming := range []bool{false, true} {
						ev := KeyEvent{Key: key, ModifierPrimary: mod, Shift: shift, TargetIsTextInput: input}
						action := Resolve(ev, State{Streaming: streaming})
						if action.String() == "unknown" {
							t.Errorf("Resolve(%+v) produced unknown action %d", ev, action)
						}
					}
				}
			}
		}
	}
}

// =============================================================================
// DISPATCHER TESTS
// =============================================================================

func TestDispatcher_CancelFiresOncePerEvent(t *testing.T) {
	cancels := 0
	d := New(
		Stores{Streaming: func() bool { return true }},
		Handlers{OnCancel: func() { cancels++ }},
	)

	ev := KeyEvent{Key: KeyEnter, TargetIsTextInput: true}
	if got := d.Dispatch(ev); got != ActionCancel {
		t.Fatalf("got %v, want cancel", got)
	}
	if cancels != 1 {
		t.Errorf("cancel handler fired %d times, want 1", cancels)
	}

	// A repeated keypress is a fresh event and fires again.
	d.Dispatch(ev)
	if cancels != 2 {
		t.Errorf("cancel handler fired %d times after second press, want 2", cancels)
	}
}

func TestDispatcher_ModalEscapeSuppressesCancel(t *testing.T) {
	cancels, closes := 0, 0
	d := New(
		Stores{
			Streaming:    func() bool { return true },
			SettingsOpen: func() bool { return true },
		},
		Handlers{
			OnCancel:     func() { cancels++ },
			OnCloseModal: func() { closes++ },
		},
	)

	if got := d.Dispatch(KeyEvent{Key: KeyEscape}); got != ActionCloseModal {
		t.Fatalf("got %v, want close_modal", got)
	}
	if cancels != 0 {
		t.Errorf("cancel handler fired %d times, want 0", cancels)
	}
	if closes != 1 {
		t.Errorf("close handler fired %d times, want 1", closes)
	}
}

func TestDispatcher_SendHandler(t *testing.T) {
	sends := 0
	d := New(
		Stores{SendMode: func() SendMode { return SendModeModEnter }},
		Handlers{OnSend: func() { sends++ }},
	)

	ev := KeyEvent{Key: KeyEnter, ModifierPrimary: true, TargetIsTextInput: true}
	if got := d.Dispatch(ev); got != ActionSend {
		t.Fatalf("got %v, want send", got)
	}
	if sends != 1 {
		t.Errorf("send handler fired %d times, want 1", sends)
	}
}

func TestDispatcher_NilStoresAndHandlers(t *testing.T) {
	// Missing accessors fall back to EnterSends, idle, no modals; missing
	// handlers are skipped without panicking.
	d := New(Stores{}, Handlers{})

	ev := KeyEvent{Key: KeyEnter, TargetIsTextInput: true}
	if got := d.Dispatch(ev); got != ActionSend {
		t.Errorf("got %v, want send under default mode", got)
	}

	ev = KeyEvent{Key: "n", ModifierPrimary: true}
	if got := d.Dispatch(ev); got != ActionNewChat {
		t.Errorf("got %v, want new_chat under default table", got)
	}
}

func TestDispatcher_CustomHotkeyStore(t *testing.T) {
	focusCalls := 0
	d := New(
		Stores{
			Hotkeys: func() []Shortcut {
				return []Shortcut{{Key: "k", Action: ActionFocusInput}}
			},
		},
		Handlers{OnFocusInput: func() { focusCalls++ }},
	)

	if got := d.Dispatch(KeyEvent{Key: "k", ModifierPrimary: true}); got != ActionFocusInput {
		t.Fatalf("got %v, want focus_input", got)
	}
	if focusCalls != 1 {
		t.Errorf("focus handler fired %d times, want 1", focusCalls)
	}

	// Default bindings are gone when a custom table is supplied.
	if got := d.Dispatch(KeyEvent{Key: "n", ModifierPrimary: true}); got != ActionNoOp {
		t.Errorf("got %v, want noop for unbound key", got)
	}
}

// =============================================================================
// STREAM GATE TESTS
// =============================================================================

func TestApplyStreamGate_Passthrough(t *testing.T) {
	ev := KeyEvent{Key: KeyEnter}
	if got := ApplyStreamGate(ActionSend, ev, false, false); got != ActionSend {
		t.Errorf("idle gate altered action: got %v", got)
	}
}

func TestApplyStreamGate_SendBecomesCancel(t *testing.T) {
	ev := KeyEvent{Key: KeyEnter}
	if got := ApplyStreamGate(ActionSend, ev, true, false); got != ActionCancel {
		t.Errorf("got %v, want cancel", got)
	}
}

func TestApplyStreamGate_EscapeRespectsModalClaim(t *testing.T) {
	ev := KeyEvent{Key: KeyEscape}
	if got := ApplyStreamGate(ActionNoOp, ev, true, true); got != ActionNoOp {
		t.Errorf("claimed escape reached the gate: got %v", got)
	}
	if got := ApplyStreamGate(ActionNoOp, ev, true, false); got != ActionCancel {
		t.Errorf("unclaimed escape not converted: got %v", got)
	}
}

func TestApplyStreamGate_OtherActionsUntouched(t *testing.T) {
	ev := KeyEvent{Key: "s"}
	if got := ApplyStreamGate(ActionToggleSidebar, ev, true, false); got != ActionToggleSidebar {
		t.Errorf("streaming gate altered unrelated action: got %v", got)
	}
}
