// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/openchat-tui/internal/ollama"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestStreamingBuffer_BatchFlush(t *testing.T) {
	// Large interval so only the batch threshold can trigger a flush
	// after the limiter's initial slot is consumed.
	sb := NewStreamingBufferWithConfig(3, time.Hour)

	sb.Write("one")
	if _, ok := sb.Flush(); !ok {
		t.Fatal("first flush should use the limiter's initial slot")
	}

	sb.Write("a")
	if content, ok := sb.Flush(); ok {
		t.Fatalf("flush below batch size should wait, got %q", content)
	}

	sb.Write("b")
	sb.Write("c")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("reaching the batch size should flush")
	}
	if content != "abc" {
		t.Errorf("content = %q, want abc", content)
	}
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after flush, want 0", sb.Pending())
	}
}

func TestStreamingBuffer_TimeFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1000, 5*time.Millisecond)

	sb.Write("x")
	sb.Flush() // consumes the initial limiter slot

	sb.Write("y")
	if _, ok := sb.Flush(); ok {
		t.Fatal("flush immediately after previous should be limited")
	}

	time.Sleep(10 * time.Millisecond)
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("flush after the interval should succeed")
	}
	if !strings.Contains(content, "y") {
		t.Errorf("content = %q, want to contain y", content)
	}
}

func TestStreamingBuffer_ForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1000, time.Hour)
	sb.Write("a")
	sb.Flush() // drain the initial slot
	sb.Write("tail")

	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("ForceFlush = %q, %v; want tail, true", content, ok)
	}

	if _, ok := sb.ForceFlush(); ok {
		t.Error("second ForceFlush should report nothing to drain")
	}
}

func TestStreamingBuffer_Reset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discard me")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("pending = %d after reset, want 0", sb.Pending())
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset buffer should have nothing to flush")
	}
}

func TestStreamingBuffer_EmptyFlush(t *testing.T) {
	sb := NewStreamingBuffer()
	if _, ok := sb.Flush(); ok {
		t.Error("empty buffer should not flush")
	}
}

func TestStreamingBuffer_DefaultsForBadConfig(t *testing.T) {
	sb := NewStreamingBufferWithConfig(0, 0)
	if sb.batchSize != defaultBatchSize {
		t.Errorf("batchSize = %d, want default %d", sb.batchSize, defaultBatchSize)
	}
}

// =============================================================================
// STREAMING STATE TESTS
// =============================================================================

func TestStreamingState_Lifecycle(t *testing.T) {
	st := NewStreamingState("msg_1")

	if st.MessageID() != "msg_1" {
		t.Errorf("MessageID = %q", st.MessageID())
	}
	if done, _ := st.Done(); done {
		t.Error("new state should not be done")
	}

	st.RecordToken()
	st.RecordToken()
	if st.TokenCount() != 2 {
		t.Errorf("TokenCount = %d, want 2", st.TokenCount())
	}

	st.MarkDone(nil, nil)
	done, err := st.Done()
	if !done || err != nil {
		t.Errorf("Done = %v, %v; want true, nil", done, err)
	}

	stats := st.Stats()
	if stats.CompletionTokens != 2 {
		t.Errorf("CompletionTokens = %d, want 2", stats.CompletionTokens)
	}
	if stats.TTFT <= 0 {
		t.Error("TTFT should be recorded once a token arrived")
	}
}

func TestStreamingState_ServerTokenCountWins(t *testing.T) {
	st := NewStreamingState("msg_2")
	st.RecordToken()
	st.MarkDone(&ollama.StreamChunk{Done: true, CompletionTokens: 42}, nil)

	if got := st.Stats().CompletionTokens; got != 42 {
		t.Errorf("CompletionTokens = %d, want server-reported 42", got)
	}
}

// =============================================================================
// CANCEL MANAGER TESTS
// =============================================================================

func TestCancelManager(t *testing.T) {
	cm := newCancelManager()
	if cm.active() {
		t.Error("fresh manager should have no cancel stored")
	}

	called := 0
	cm.set(func() { called++ })
	if !cm.active() {
		t.Error("manager should report an active cancel after set")
	}

	cm.cancel()
	if called != 1 {
		t.Errorf("cancel calls = %d, want 1", called)
	}
	cm.cancel() // repeat is a no-op
	if called != 1 || cm.active() {
		t.Error("repeated cancel should do nothing")
	}
}

func TestCancelManager_SetCancelsPrevious(t *testing.T) {
	cm := newCancelManager()

	prev := 0
	cm.set(func() { prev++ })
	cm.set(func() {})

	if prev != 1 {
		t.Errorf("previous cancel calls = %d, want 1 on replacement", prev)
	}
}
