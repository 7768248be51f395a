// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

// =============================================================================
// PURE RESOLUTION
// =============================================================================

// State is the snapshot of externally-owned state a single dispatch reads.
// All fields are captured synchronously before resolution so a racing
// state change cannot split one keystroke across two worlds.
type State struct {
	SendMode  SendMode
	Streaming bool
	Modal     ModalVisibility

	// Hotkeys is the global shortcut table snapshot; nil means default.
	Hotkeys []Shortcut
}

// Resolve maps one key event to exactly one action. It is the pure core
// of the dispatcher: no side effects, defined for all inputs, never more
// or less than one action per event.
//
// Pipeline order: modal priority, then the composer path (send-key policy
// through the stream gate) when a text input is focused, otherwise the
// global shortcut path. Escape reaches the stream gate on both paths so
// it cancels streaming regardless of focus.
func Resolve(ev KeyEvent, st State) Action {
	if action, claimed := ResolveModalPriority(ev, st.Modal); claimed {
		return action
	}

	if ev.TargetIsTextInput {
		candidate := ResolveComposerKey(ev, st.SendMode)
		action := ApplyStreamGate(candidate, ev, st.Streaming, false)
		if action == ActionInsertNewline {
			// The text widget owns default newline insertion.
			return ActionNoOp
		}
		return action
	}

	candidate := RouteGlobalShortcut(ev, ev.ModifierPrimary, st.Hotkeys)
	return ApplyStreamGate(candidate, ev, st.Streaming, false)
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Stores are the read accessors for externally-owned state. Nil accessors
// default to the safe branch: EnterSends, not streaming, modals closed,
// default hotkey table.
type Stores struct {
	SendMode      func() SendMode
	Streaming     func() bool
	SettingsOpen  func() bool
	ShortcutsOpen func() bool
	Hotkeys       func() []Shortcut
}

// Handlers are the caller-supplied delegation points for resolved
// actions. Nil handlers are skipped; the dispatcher never owns the
// mutation a handler performs.
type Handlers struct {
	OnSend            func()
	OnCancel          func()
	OnCloseModal      func()
	OnNewChat         func()
	OnToggleSidebar   func()
	OnToggleSettings  func()
	OnToggleShortcuts func()
	OnSendFeedback    func()
	OnFocusInput      func()
}

// Dispatcher composes the resolution pipeline with injected state
// accessors and handlers. It holds no state of its own beyond the wiring,
// so a single instance serves the whole application surface.
type Dispatcher struct {
	stores   Stores
	handlers Handlers
}

// New creates a dispatcher with the given state accessors and handlers.
func New(stores Stores, handlers Handlers) *Dispatcher {
	return &Dispatcher{stores: stores, handlers: handlers}
}

// Dispatch resolves one key event, invokes the matching handler exactly
// once, and returns the resolved action. The cancel handler in particular
// fires once per resolved Cancel; repeated keypresses each trigger a
// fresh call, and cancelling an already-finished stream is the external
// store's safe no-op.
func (d *Dispatcher) Dispatch(ev KeyEvent) Action {
	action := Resolve(ev, d.snapshot())
	d.invoke(action)
	return action
}

// snapshot reads the externally-owned state once per dispatch.
func (d *Dispatcher) snapshot() State {
	st := State{}
	if d.stores.SendMode != nil {
		st.SendMode = d.stores.SendMode()
	}
	if d.stores.Streaming != nil {
		st.Streaming = d.stores.Streaming()
	}
	if d.stores.SettingsOpen != nil {
		st.Modal.SettingsOpen = d.stores.SettingsOpen()
	}
	if d.stores.ShortcutsOpen != nil {
		st.Modal.ShortcutsOpen = d.stores.ShortcutsOpen()
	}
	if d.stores.Hotkeys != nil {
		st.Hotkeys = d.stores.Hotkeys()
	}
	return st
}

// invoke forwards the action to its handler, if one is registered.
// Handler panics are deliberately not recovered here; propagation policy
// is "surface to the caller's own error boundary".
func (d *Dispatcher) invoke(action Action) {
	var fn func()
	switch action {
	case ActionSend:
		fn = d.handlers.OnSend
	case ActionCancel:
		fn = d.handlers.OnCancel
	case ActionCloseModal:
		fn = d.handlers.OnCloseModal
	case ActionNewChat:
		fn = d.handlers.OnNewChat
	case ActionToggleSidebar:
		fn = d.handlers.OnToggleSidebar
	case ActionToggleSettings:
		fn = d.handlers.OnToggleSettings
	case ActionToggleShortcuts:
		fn = d.handlers.OnToggleShortcuts
	case ActionSendFeedback:
		fn = d.handlers.OnSendFeedback
	case ActionFocusInput:
		fn = d.handlers.OnFocusInput
	}
	if fn != nil {
		fn()
	}
}
