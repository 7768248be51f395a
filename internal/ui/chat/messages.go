// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages exchanged between the chat
// model, the streaming goroutine, and persistence commands.
package chat

import (
	"strings"
	"time"

	"github.com/jeranaias/openchat-tui/internal/dispatch"
	"github.com/jeranaias/openchat-tui/internal/history"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a streaming response has started.
type StreamStartMsg struct {
	MessageID string
}

// StreamCompleteMsg signals that streaming finished, successfully or not.
type StreamCompleteMsg struct {
	MessageID string
	Stats     *model.Statistics
	Err       error
}

// StreamTickMsg drives the flush loop while a stream is active.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// OLLAMA STATUS MESSAGES
// =============================================================================

// OllamaStatusMsg reports the result of a server detection probe.
type OllamaStatusMsg struct {
	Detection ollama.DetectionResult
	Err       error
}

// OllamaModelsMsg carries the installed model list.
type OllamaModelsMsg struct {
	Models []ollama.ModelInfo
	Err    error
}

// ModelSwitchedMsg reports the outcome of a model switch.
type ModelSwitchedMsg struct {
	Model string
	Err   error
}

// =============================================================================
// PERSISTENCE MESSAGES
// =============================================================================

// ConversationSavedMsg reports the outcome of a save.
type ConversationSavedMsg struct {
	ID  string
	Err error
}

// ConversationLoadedMsg carries a conversation restored from disk.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// SessionListMsg carries conversation metadata for the sidebar.
type SessionListMsg struct {
	Sessions []storage.ConversationMeta
	Err      error
}

// HistorySearchMsg carries full-text search results.
type HistorySearchMsg struct {
	Query   string
	Results []history.SearchResult
	Err     error
}

// ExportCompleteMsg reports the outcome of a conversation export.
type ExportCompleteMsg struct {
	Path string
	Err  error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ConfigReloadedMsg applies configuration picked up from disk while the
// program is running.
type ConfigReloadedMsg struct {
	SendMode dispatch.SendMode
	Hotkeys  []dispatch.Shortcut
}

// StatusNoteMsg shows a transient note in the status bar.
type StatusNoteMsg struct {
	Note string
}

// ErrorMsg displays an error box with optional recovery suggestions.
type ErrorMsg struct {
	Title       string
	Message     string
	Suggestions []string
}

// ErrorDismissMsg clears the current error display.
type ErrorDismissMsg struct{}

// =============================================================================
// MESSAGE CONSTRUCTORS
// =============================================================================

// NewErrorMsg creates a basic error message.
func NewErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{Title: title, Message: message}
}

// SmartErrorMsg creates an error message with suggestions derived from
// common failure patterns.
func SmartErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{
		Title:       title,
		Message:     message,
		Suggestions: detectErrorSuggestions(message),
	}
}

// detectErrorSuggestions maps well-known error text to recovery hints.
func detectErrorSuggestions(errMsg string) []string {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "not running"):
		return []string{
			"Start the server with: ollama serve",
			"Check the configured URL with /status",
		}
	case strings.Contains(lower, "not found") && strings.Contains(lower, "model"):
		return []string{
			"Pull the model with: ollama pull <name>",
			"List installed models with /models",
		}
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline"):
		return []string{
			"Large models take a while to load on first use",
			"Try a smaller model with /model",
		}
	case strings.Contains(lower, "no such host"), strings.Contains(lower, "dns"):
		return []string{
			"Check the ollama_url setting in ~/.openchat/config.toml",
		}
	default:
		return nil
	}
}
