// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MODEL REGISTRY TESTS
// =============================================================================

func TestModels_Registry(t *testing.T) {
	// Verify essential models are in the registry
	essentialModels := []string{"llama3.2:3b", "llama3.1:8b", "mistral:7b", "qwen2.5:7b"}

	for _, id := range essentialModels {
		if _, ok := Models[id]; !ok {
			t.Errorf("Essential model %q missing from registry", id)
		}
	}
}

func TestModels_HaveRequiredFields(t *testing.T) {
	for id, m := range Models {
		t.Run(id, func(t *testing.T) {
			if m.ID == "" {
				t.Error("Model.ID should not be empty")
			}
			if m.Name == "" {
				t.Error("Model.Name should not be empty")
			}
			if m.Family == "" {
				t.Error("Model.Family should not be empty")
			}
			if m.MaxTokens <= 0 {
				t.Error("Model.MaxTokens should be positive")
			}
			if m.SizeGB <= 0 {
				t.Error("Model.SizeGB should be positive")
			}
		})
	}
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestGetModelInfo(t *testing.T) {
	// Exact ID
	m, ok := GetModelInfo("mistral:7b")
	if !ok {
		t.Fatal("GetModelInfo(mistral:7b) should return true")
	}
	if m.Name != "Mistral 7B" {
		t.Errorf("Name = %q, want 'Mistral 7B'", m.Name)
	}

	// Bare name with a single matching tag
	m, ok = GetModelInfo("mistral")
	if !ok {
		t.Error("GetModelInfo(mistral) should match mistral:7b")
	}
	if m.ID != "mistral:7b" {
		t.Errorf("ID = %q, want mistral:7b", m.ID)
	}

	// Bare name with multiple tags is ambiguous
	if _, ok := GetModelInfo("llama3.1"); ok {
		t.Error("GetModelInfo(llama3.1) should be ambiguous")
	}

	// Unknown model
	if _, ok := GetModelInfo("nonexistent-model"); ok {
		t.Error("GetModelInfo(nonexistent-model) should return false")
	}
}

func TestGetModelsByFamily(t *testing.T) {
	llamaModels := GetModelsByFamily("llama")
	if len(llamaModels) == 0 {
		t.Fatal("Should have llama family models")
	}
	for _, m := range llamaModels {
		if m.Family != "llama" {
			t.Errorf("GetModelsByFamily(llama) returned %s family model", m.Family)
		}
	}
}

func TestModelIDs_Sorted(t *testing.T) {
	ids := ModelIDs()
	if len(ids) != len(Models) {
		t.Errorf("ModelIDs returned %d entries, want %d", len(ids), len(Models))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("ModelIDs not sorted at %d: %q >= %q", i, ids[i-1], ids[i])
		}
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AddMessages(t *testing.T) {
	conv := NewConversationWithModel("llama3.2:3b")

	if !conv.IsEmpty() {
		t.Error("New conversation should be empty")
	}

	user := conv.AddUserMessage("hello there")
	if user.Role != RoleUser {
		t.Errorf("Role = %v, want user", user.Role)
	}
	if conv.MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want 1", conv.MessageCount())
	}

	// Title is auto-generated from the first user message
	if conv.GetTitle() != "hello there" {
		t.Errorf("Title = %q, want %q", conv.GetTitle(), "hello there")
	}
}

func TestConversation_StreamingLifecycle(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	asst := conv.AddAssistantMessage()

	if !asst.IsStreaming {
		t.Fatal("Assistant message should start streaming")
	}

	conv.AppendToLast("Hello")
	conv.AppendToLast(", world")

	if got := asst.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("Streaming content = %q, want %q", got, "Hello, world")
	}

	stats := NewStatistics()
	stats.RecordFirstToken()
	stats.Finalize(2)
	conv.FinalizeLast(stats)

	if asst.IsStreaming {
		t.Error("Message should no longer be streaming after finalize")
	}
	if asst.Content != "Hello, world" {
		t.Errorf("Content = %q, want %q", asst.Content, "Hello, world")
	}
	if asst.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", asst.TokenCount)
	}
}

func TestConversation_CancelLast(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	asst := conv.AddAssistantMessage()

	conv.AppendToLast("partial answ")
	conv.CancelLast()

	if asst.IsStreaming {
		t.Error("Cancelled message should not be streaming")
	}
	if !asst.Cancelled {
		t.Error("Cancelled flag not set")
	}
	if asst.Content != "partial answ" {
		t.Errorf("Content = %q, partial content should survive", asst.Content)
	}

	// Cancelling again is a no-op
	conv.CancelLast()
	if asst.Content != "partial answ" {
		t.Error("Second cancel altered content")
	}
}

func TestConversation_ToOllamaMessages(t *testing.T) {
	conv := NewConversation()
	conv.SystemPrompt = "be brief"
	conv.AddUserMessage("hi")
	asst := conv.AddAssistantMessage()
	asst.AppendToken("hey")
	conv.FinalizeLast(nil)

	msgs := conv.ToOllamaMessages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "be brief" {
		t.Errorf("first message = %+v, want system prompt", msgs[0])
	}
	if msgs[1].Role != "user" || msgs[2].Role != "assistant" {
		t.Errorf("roles = %s, %s, want user, assistant", msgs[1].Role, msgs[2].Role)
	}
}

func TestConversation_Prune(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("system rules")
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddMessage(NewUserMessage("filler"))
	}

	if conv.MessageCount() != MaxMessages+1 {
		t.Errorf("MessageCount = %d, want %d", conv.MessageCount(), MaxMessages+1)
	}
	if conv.Messages[0].Role != RoleSystem {
		t.Error("System message should survive pruning")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("a", 100))
	preview := msg.Preview(50)
	if len([]rune(preview)) != 50 {
		t.Errorf("Preview length = %d, want 50", len([]rune(preview)))
	}
	if !strings.HasSuffix(preview, "...") {
		t.Error("Preview should end with ellipsis")
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	a := NewUserMessage("one")
	b := NewUserMessage("two")
	if a.ID == b.ID {
		t.Error("Message IDs should be unique")
	}
	if !strings.HasPrefix(a.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", a.ID)
	}
}
