// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements token batching for smooth, flicker-free streaming.
// Tokens are buffered off the hot path and drained into the transcript
// at a capped frame rate.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

const (
	// defaultBatchSize flushes eagerly once this many tokens accumulate.
	defaultBatchSize = 15

	// flushInterval caps render updates at roughly 30 fps.
	flushInterval = 33 * time.Millisecond
)

// StreamingBuffer batches tokens between the streaming goroutine and the
// Bubble Tea render loop. A flush happens when the batch size threshold
// is reached or when the rate limiter grants a slot, whichever comes
// first. Without batching a fast model forces a re-render per token.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int

	batchSize int
	limiter   *rate.Limiter
}

// NewStreamingBuffer creates a buffer with the default batch size and
// frame cap.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, flushInterval)
}

// NewStreamingBufferWithConfig creates a buffer with a custom batch size
// and minimum flush interval. Non-positive values fall back to defaults.
func NewStreamingBufferWithConfig(batchSize int, minInterval time.Duration) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if minInterval <= 0 {
		minInterval = flushInterval
	}

	return &StreamingBuffer{
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Write appends a token. Called from the streaming goroutine.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush drains the buffer if a flush is due. Returns the accumulated
// content and whether anything was drained. Called from the render loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}

	// Batch threshold flushes immediately; otherwise ask the limiter.
	if sb.tokenCount < sb.batchSize && !sb.limiter.Allow() {
		return "", false
	}

	return sb.drainLocked(), true
}

// ForceFlush drains everything regardless of thresholds. Used when a
// stream completes or is cancelled so no tokens are lost.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.drainLocked(), true
}

// Reset discards buffered content without rendering it.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.tokenCount = 0
}

// Pending returns the number of buffered tokens.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokenCount
}

func (sb *StreamingBuffer) drainLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	return content
}

// =============================================================================
// STREAM TICK COMMAND
// =============================================================================

// streamTickCmd schedules the next flush check while a stream is active.
func streamTickCmd() tea.Cmd {
	return tea.Tick(flushInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
