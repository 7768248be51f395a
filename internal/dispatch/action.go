// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

// =============================================================================
// RESOLVED ACTIONS
// =============================================================================

// Action is the semantic result of dispatching a single key event.
// Exactly one Action is produced per event; ActionNoOp is the explicit
// "handled, nothing matched" terminal value so callers can distinguish
// it from an unhandled event.
type Action int

const (
	// ActionNoOp means no rule matched; the event falls through to the
	// default behavior of whatever widget currently has focus.
	ActionNoOp Action = iota

	// ActionSend submits the composer content as a new user message.
	ActionSend

	// ActionCancel interrupts the currently streaming assistant response.
	ActionCancel

	// ActionInsertNewline asks the composer to insert a literal newline.
	// Produced by the send-key policy when the submit chord is reserved;
	// the dispatcher surfaces it as NoOp when the underlying text widget
	// performs its own newline insertion.
	ActionInsertNewline

	// ActionCloseModal dismisses the topmost open overlay.
	ActionCloseModal

	// ActionNewChat starts a fresh conversation.
	ActionNewChat

	// ActionToggleSidebar shows or hides the conversation sidebar.
	ActionToggleSidebar

	// ActionToggleSettings shows or hides the settings overlay.
	ActionToggleSettings

	// ActionToggleShortcuts shows or hides the shortcut-help overlay.
	ActionToggleShortcuts

	// ActionSendFeedback opens the feedback flow.
	ActionSendFeedback

	// ActionFocusInput moves focus to the composer.
	ActionFocusInput
)

// String returns a stable name for the action, used in logs and tests.
func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "noop"
	case ActionSend:
		return "send"
	case ActionCancel:
		return "cancel"
	case ActionInsertNewline:
		return "insert_newline"
	case ActionCloseModal:
		return "close_modal"
	case ActionNewChat:
		return "new_chat"
	case ActionToggleSidebar:
		return "toggle_sidebar"
	case ActionToggleSettings:
		return "toggle_settings"
	case ActionToggleShortcuts:
		return "toggle_shortcuts"
	case ActionSendFeedback:
		return "send_feedback"
	case ActionFocusInput:
		return "focus_input"
	default:
		return "unknown"
	}
}
