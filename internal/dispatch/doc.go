// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package dispatch implements keyboard-event routing for the chat composer.

Every physical keystroke entering the application is normalized into a
KeyEvent and resolved into exactly one Action. The resolution pipeline is
a fixed priority chain:

 1. Modal priority: while the settings or shortcut-help overlay is open,
    Escape always closes it, pre-empting everything else.
 2. Composer path: when a text input is focused, the send-key policy
    decides between submit and newline insertion based on the configured
    send mode, and the stream gate converts a would-be submit (or Escape)
    into a cancellation while a response is streaming.
 3. Global path: when no text input is focused, the event is matched
    against the application-wide hotkey table (new chat, sidebar,
    settings, shortcut help, feedback, focus input).

All resolution functions are pure: they depend only on the event, the
configuration snapshot, and the streaming/modal state read at dispatch
time. The Dispatcher type composes them with injected state accessors and
caller-supplied action handlers so the pipeline can be exercised without
any UI framework attached.

# Platform Normalization

The "primary" modifier differs per platform (Command on macOS terminals,
Control elsewhere). A Classifier is resolved once at startup from the
platform probe and applied while translating raw key messages, so the
rest of the pipeline only ever sees the normalized ModifierPrimary flag.
*/
package dispatch
