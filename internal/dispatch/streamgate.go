// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

// =============================================================================
// STREAM-CANCEL INTERCEPTOR
// =============================================================================

// ApplyStreamGate converts a would-be submit into a cancellation while an
// assistant response is streaming. Escape is checked independently of the
// candidate action, but only when no modal claimed the event first; that
// lets Escape cancel a stream even when focus is outside the composer.
//
// When not streaming, the candidate action passes through unchanged.
func ApplyStreamGate(candidate Action, ev KeyEvent, streaming bool, modalClaimed bool) Action {
	if !streaming {
		return candidate
	}
	if candidate == ActionSend {
		return ActionCancel
	}
	if ev.Key == KeyEscape && !modalClaimed {
		return ActionCancel
	}
	return candidate
}
