// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// This package implements a client for the Ollama local LLM server,
// supporting streaming and non-streaming chat completions, installation
// detection, and filesystem discovery of locally downloaded models.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - ChatRequest: Request structure for chat completions
//   - ChatResponse: Response structure with message and metrics
//   - StreamReader: Line-by-line reader for streaming responses
//   - DetectionResult: Outcome of probing the local installation
//   - LocalModel: Model file found on disk
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := ollama.NewClient()
//	resp, err := client.Chat(ctx, "llama3.2:3b", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	})
//
// For streaming responses:
//
//	err := client.ChatStream(ctx, "llama3.2:3b", messages, func(chunk ollama.StreamChunk) {
//	    fmt.Print(chunk.Content)
//	})
//
// To check the installation before connecting:
//
//	result := client.Detect(ctx)
//	if result.Status == ollama.StatusNotInstalled {
//	    // prompt the user to install Ollama
//	}
package ollama
