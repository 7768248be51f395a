// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/openchat-tui/internal/ollama"
)

// MaxMessages caps the in-memory history. Older messages are pruned past
// this point so a long-lived session cannot grow without bound.
const MaxMessages = 1000

// defaultContextWindow is assumed until a model reports its real limit.
const defaultContextWindow = 128000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat transcript plus the metadata needed to resume
// it: model, system prompt, and token accounting. The JSON tags define the
// on-disk format used by the storage package.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []*Message `json:"messages"`

	Model string `json:"model"`

	TokensUsed     int     `json:"tokens_used"`
	MaxTokens      int     `json:"max_tokens"`
	ContextPercent float64 `json:"-"` // computed, not persisted

	SystemPrompt string `json:"system_prompt,omitempty"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
		MaxTokens: defaultContextWindow,
	}
}

// NewConversationWithModel creates an empty conversation bound to a model.
func NewConversationWithModel(model string) *Conversation {
	conv := NewConversation()
	conv.Model = model
	return conv
}

// Clone returns a deep copy; messages are copied so mutating the clone
// does not touch the original.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]*Message, len(c.Messages))
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return &clone
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes derived state: timestamp,
// token estimate, auto-title, and the history cap.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.refreshTokens()
	c.refreshTitle()
	c.prune()
}

// AddUserMessage creates and adds a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and adds an assistant message in streaming
// state, bound to the conversation's model.
func (c *Conversation) AddAssistantMessage() *Message {
	msg := NewAssistantMessage()
	msg.Model = c.Model
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and adds a system message.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.AddMessage(msg)
	return msg
}

// GetLastAssistantMessage returns the most recent assistant message, or
// nil when the transcript has none.
func (c *Conversation) GetLastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// streamingTail returns the last message if it is still streaming.
func (c *Conversation) streamingTail() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	last := c.Messages[len(c.Messages)-1]
	if !last.IsStreaming {
		return nil
	}
	return last
}

// AppendToLast appends a token to the streaming tail message, if any.
func (c *Conversation) AppendToLast(token string) {
	if tail := c.streamingTail(); tail != nil {
		tail.AppendToken(token)
	}
}

// FinalizeLast completes the streaming tail message with its statistics.
func (c *Conversation) FinalizeLast(stats *Statistics) {
	if tail := c.streamingTail(); tail != nil {
		tail.FinalizeStream(stats)
		c.refreshTokens()
	}
}

// CancelLast marks the streaming tail message cancelled. Partial content
// already received stays in the transcript.
func (c *Conversation) CancelLast() {
	if tail := c.streamingTail(); tail != nil {
		tail.CancelStream()
		c.refreshTokens()
	}
}

// ClearHistory removes all messages.
func (c *Conversation) ClearHistory() {
	c.Messages = make([]*Message, 0)
	c.TokensUsed = 0
	c.ContextPercent = 0
	c.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// prune drops the oldest non-system messages once the cap is exceeded.
// System messages always survive.
func (c *Conversation) prune() {
	if len(c.Messages) <= MaxMessages {
		return
	}

	var system, rest []*Message
	for _, msg := range c.Messages {
		if msg.Role == RoleSystem {
			system = append(system, msg)
		} else {
			rest = append(rest, msg)
		}
	}
	if len(rest) > MaxMessages {
		rest = rest[len(rest)-MaxMessages:]
	}

	c.Messages = append(system, rest...)
}

// =============================================================================
// OLLAMA CONVERSION
// =============================================================================

// ToOllamaMessages flattens the conversation into the wire format: the
// system prompt first, then every non-empty message in order.
func (c *Conversation) ToOllamaMessages() []ollama.Message {
	messages := make([]ollama.Message, 0, len(c.Messages)+1)

	if c.SystemPrompt != "" {
		messages = append(messages, ollama.NewSystemMessage(c.SystemPrompt))
	}

	for _, msg := range c.Messages {
		role, ok := msg.Role.wireName()
		if !ok {
			continue
		}
		if content := msg.GetDisplayContent(); content != "" {
			messages = append(messages, ollama.Message{Role: role, Content: content})
		}
	}

	return messages
}

// =============================================================================
// TOKEN TRACKING
// =============================================================================

// EstimateTokens approximates the conversation's context usage: roughly
// four characters per token, plus per-message structural overhead.
func (c *Conversation) EstimateTokens() int {
	total := 0
	if c.SystemPrompt != "" {
		total += (len(c.SystemPrompt) + 3) / 4
	}
	for _, msg := range c.Messages {
		total += msg.EstimateTokens() + 4
	}
	return total
}

// refreshTokens recomputes usage and the context percentage.
func (c *Conversation) refreshTokens() {
	c.TokensUsed = c.EstimateTokens()
	if c.MaxTokens > 0 {
		c.ContextPercent = float64(c.TokensUsed) / float64(c.MaxTokens) * 100
	}
}

// GetContextPercent returns the percentage of the context window in use.
func (c *Conversation) GetContextPercent() float64 {
	return c.ContextPercent
}

// =============================================================================
// TITLE
// =============================================================================

// refreshTitle derives a title from the first user message when none has
// been set yet.
func (c *Conversation) refreshTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(50)
			return
		}
	}
}

// GetTitle returns the conversation title or a default placeholder.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}
