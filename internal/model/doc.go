// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, messages, and local model information.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, timestamp, and statistics
//   - ModelInfo: Information about a local model (ID, family, size)
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("Hello!")
//
// Work with model information:
//
//	info, ok := model.GetModelInfo("qwen2.5:7b")
//	if ok {
//	    fmt.Printf("Model: %s, Size: %s\n", info.Name, info.SizeString())
//	}
package model
