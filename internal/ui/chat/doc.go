// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The package implements the main Bubble Tea model for openchat: the
// message transcript, the composer, streaming display, the conversation
// sidebar, and the settings and shortcut overlays.
//
// # Keyboard routing
//
// Every key press is normalized into a dispatch.KeyEvent and resolved
// by the dispatch package before any widget sees it. The dispatcher
// decides whether a keystroke sends the composer content, cancels the
// active stream, closes an overlay, or triggers a global shortcut;
// anything it leaves unresolved falls through to the focused widget.
//
// # Streaming
//
// Responses stream from the Ollama client on a background goroutine
// into a rate-limited buffer. A tick loop drains the buffer into the
// conversation at a capped frame rate so fast models do not force a
// re-render per token.
package chat
