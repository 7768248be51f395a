// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks chat session activity and drives auto-save.
//
// This package manages the lifecycle of a chat session: when it
// started, when the user last did something, and whether the active
// conversation has unsaved changes that are due for an auto-save.
//
// # Key Types
//
//   - Manager: Session manager with activity and dirty tracking
//   - TickMsg: Bubble Tea message driving periodic checks
//   - AutoSaveMsg: Bubble Tea message requesting a save
//
// # Usage
//
// Create a session manager and wire the auto-save callback:
//
//	mgr := session.NewManager(session.DefaultConfig())
//	mgr.SetAutoSaveCallback(saveConversation)
//
// Record activity on user input:
//
//	mgr.RecordActivity()
//
// Mark the session dirty whenever the conversation changes:
//
//	mgr.MarkDirty()
package session
