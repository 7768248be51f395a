// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

// =============================================================================
// MODAL-PRIORITY RESOLVER
// =============================================================================

// ModalVisibility is the snapshot of open overlays read at dispatch time.
// It is owned by top-level application state; the dispatcher only reads it.
type ModalVisibility struct {
	SettingsOpen  bool
	ShortcutsOpen bool
}

// Any reports whether any modal is open.
func (v ModalVisibility) Any() bool {
	return v.SettingsOpen || v.ShortcutsOpen
}

// ResolveModalPriority runs first in the dispatch pipeline: while any
// modal is open, Escape is reserved for closing it, bypassing the
// send-key policy, the stream gate, and the global shortcut router.
//
// The second return value reports whether the event was claimed; an
// unclaimed event continues through the normal pipeline.
func ResolveModalPriority(ev KeyEvent, modal ModalVisibility) (Action, bool) {
	if ev.Key == KeyEscape && modal.Any() {
		return ActionCloseModal, true
	}
	return ActionNoOp, false
}
