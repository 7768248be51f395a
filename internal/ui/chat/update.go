// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the asynchronous commands the chat model issues:
// streaming, server probes, model management, and persistence.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/history"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

// =============================================================================
// STREAMING STATE
// =============================================================================

// StreamingState tracks one in-flight response. The streaming goroutine
// writes it; the render loop polls it on each tick. Always hold it as a
// pointer so Bubble Tea model copies observe the same stream.
type StreamingState struct {
	mu         sync.Mutex
	messageID  string
	startTime  time.Time
	firstToken time.Time
	tokenCount int
	done       bool
	err        error
	final      *ollama.StreamChunk
}

// NewStreamingState creates tracking state for a new stream.
func NewStreamingState(messageID string) *StreamingState {
	return &StreamingState{
		messageID: messageID,
		startTime: time.Now(),
	}
}

// MessageID returns the conversation message this stream feeds.
func (s *StreamingState) MessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// RecordToken counts one received token, noting time-to-first-token.
func (s *StreamingState) RecordToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenCount == 0 {
		s.firstToken = time.Now()
	}
	s.tokenCount++
}

// TokenCount returns the number of tokens received so far.
func (s *StreamingState) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCount
}

// MarkDone records stream completion with an optional error and the
// final chunk carrying server-side timing.
func (s *StreamingState) MarkDone(final *ollama.StreamChunk, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.err = err
	s.final = final
}

// Done reports whether the stream finished and with what error.
func (s *StreamingState) Done() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.err
}

// Elapsed returns time since the stream started.
func (s *StreamingState) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startTime)
}

// Stats builds message statistics from the accumulated counters,
// preferring server-reported token counts when the final chunk has them.
func (s *StreamingState) Stats() *model.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &model.Statistics{StartTime: s.startTime}
	if !s.firstToken.IsZero() {
		stats.FirstTokenTime = s.firstToken
		stats.TTFT = s.firstToken.Sub(s.startTime)
	}

	tokens := s.tokenCount
	if s.final != nil && s.final.CompletionTokens > 0 {
		tokens = s.final.CompletionTokens
	}
	stats.Finalize(tokens)
	return stats
}

// =============================================================================
// STREAMING COMMAND
// =============================================================================

// startStreamCmd launches the streaming goroutine for one response.
// Tokens flow into the buffer; completion is recorded on the state and
// picked up by the tick loop. The returned message starts that loop.
func startStreamCmd(client *ollama.Client, modelName string, messages []ollama.Message,
	state *StreamingState, buffer *StreamingBuffer, cancelMgr *cancelManager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		cancelMgr.set(cancel)

		go func() {
			defer cancel()

			var final *ollama.StreamChunk
			err := client.ChatStream(ctx, modelName, messages, func(chunk ollama.StreamChunk) {
				if chunk.Done {
					c := chunk
					final = &c
					return
				}
				if chunk.Content != "" {
					buffer.Write(chunk.Content)
					state.RecordToken()
				}
			})

			// Context cancellation is the user's own interrupt, not a failure.
			if ctx.Err() != nil {
				err = nil
			}
			state.MarkDone(final, err)
		}()

		return StreamStartMsg{MessageID: state.MessageID()}
	}
}

// =============================================================================
// SERVER AND MODEL COMMANDS
// =============================================================================

// checkOllamaCmd probes the server and local installation.
func checkOllamaCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return OllamaStatusMsg{Detection: client.Detect(ctx)}
	}
}

// listModelsCmd fetches the installed model list.
func listModelsCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		return OllamaModelsMsg{Models: models, Err: err}
	}
}

// switchModelCmd verifies a model exists and switches the client to it.
func switchModelCmd(client *ollama.Client, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if !client.ModelExists(ctx, name) {
			return ModelSwitchedMsg{
				Model: name,
				Err:   fmt.Errorf("model %q is not installed (try: ollama pull %s)", name, name),
			}
		}
		client.SetModel(name)
		return ModelSwitchedMsg{Model: name}
	}
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

// saveConversationCmd persists the conversation and refreshes the
// search index. Index failures are non-fatal: the JSON store is the
// source of truth and the index can be rebuilt.
func saveConversationCmd(store *storage.ConversationStore, idx *history.Index,
	conv *model.Conversation) tea.Cmd {
	return func() tea.Msg {
		if store == nil || conv == nil || conv.IsEmpty() {
			return ConversationSavedMsg{}
		}

		stored := storage.FromConversation(conv)
		id, err := store.Save(stored)
		if err != nil {
			return ConversationSavedMsg{Err: err}
		}

		if idx != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = idx.IndexConversation(ctx, stored)
		}

		return ConversationSavedMsg{ID: id}
	}
}

// loadConversationCmd restores a conversation by sidebar position.
func loadConversationCmd(store *storage.ConversationStore, index int) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return ConversationLoadedMsg{Err: fmt.Errorf("conversation store unavailable")}
		}

		stored, err := store.LoadByIndex(index)
		if err != nil {
			return ConversationLoadedMsg{Err: err}
		}
		return ConversationLoadedMsg{Conversation: stored.ToConversation()}
	}
}

// listSessionsCmd fetches conversation metadata for the sidebar.
func listSessionsCmd(store *storage.ConversationStore) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return SessionListMsg{}
		}
		sessions, err := store.List()
		return SessionListMsg{Sessions: sessions, Err: err}
	}
}

// searchHistoryCmd runs a full-text search over past conversations.
func searchHistoryCmd(idx *history.Index, query string) tea.Cmd {
	return func() tea.Msg {
		if idx == nil {
			return HistorySearchMsg{Query: query, Err: fmt.Errorf("history search is disabled")}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		results, err := idx.Search(ctx, query, 20)
		return HistorySearchMsg{Query: query, Results: results, Err: err}
	}
}

// exportConversationCmd writes the conversation to a file in the
// working directory as markdown or JSON.
func exportConversationCmd(conv *model.Conversation, format string) tea.Cmd {
	return func() tea.Msg {
		if conv == nil || conv.IsEmpty() {
			return ExportCompleteMsg{Err: fmt.Errorf("nothing to export")}
		}

		stored := storage.FromConversation(conv)

		var data []byte
		ext := "md"
		switch strings.ToLower(format) {
		case "json":
			var err error
			data, err = stored.ExportJSON()
			if err != nil {
				return ExportCompleteMsg{Err: err}
			}
			ext = "json"
		default:
			data = []byte(stored.ExportMarkdown())
		}

		name := fmt.Sprintf("openchat-%s.%s", time.Now().Format("20060102-150405"), ext)
		path := filepath.Join(".", name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ExportCompleteMsg{Err: err}
		}
		return ExportCompleteMsg{Path: path}
	}
}

// =============================================================================
// SETTINGS PERSISTENCE
// =============================================================================

// persistSettingCmd writes a settings-overlay change back to the config
// file so it survives a restart. The key uses dot notation, e.g.
// "keyboard.send_mode".
func persistSettingCmd(key string, value interface{}) tea.Cmd {
	return func() tea.Msg {
		cfg := config.Global().Clone()
		if err := cfg.Set(key, value); err != nil {
			return StatusNoteMsg{Note: "settings not saved: " + err.Error()}
		}
		config.SetGlobal(cfg)
		if err := config.SaveActive(cfg); err != nil {
			return StatusNoteMsg{Note: "settings not saved: " + err.Error()}
		}
		return nil
	}
}

// =============================================================================
// ERROR HANDLING
// =============================================================================

// handleOllamaError converts a client error into a user-facing message.
func handleOllamaError(err error) ErrorMsg {
	switch {
	case ollama.IsNotRunning(err):
		return SmartErrorMsg("Ollama is not running", err.Error())
	case ollama.IsModelNotFound(err):
		return SmartErrorMsg("Model not found", err.Error())
	case ollama.IsTimeout(err):
		return SmartErrorMsg("Request timed out", err.Error())
	default:
		return NewErrorMsg("Chat error", err.Error())
	}
}
