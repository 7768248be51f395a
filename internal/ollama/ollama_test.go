// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != "user" {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}

	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Response")

	if msg.Role != "assistant" {
		t.Errorf("Role = %q, want 'assistant'", msg.Role)
	}

	if msg.Content != "Response" {
		t.Errorf("Content = %q, want 'Response'", msg.Content)
	}
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("You are a helpful assistant")

	if msg.Role != "system" {
		t.Errorf("Role = %q, want 'system'", msg.Role)
	}
}

// =============================================================================
// CHAT RESPONSE TESTS
// =============================================================================

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{
				EvalCount:    tc.evalCount,
				EvalDuration: tc.evalDuration,
			}

			got := resp.TokensPerSecond()

			// Allow small floating point differences
			if tc.want != 0 && (got < tc.want*0.99 || got > tc.want*1.01) {
				t.Errorf("TokensPerSecond() = %f, want %f", got, tc.want)
			}
			if tc.want == 0 && got != 0 {
				t.Errorf("TokensPerSecond() = %f, want 0", got)
			}
		})
	}
}

func TestChatResponse_TTFT(t *testing.T) {
	resp := &ChatResponse{
		PromptEvalDuration: int64(500 * time.Millisecond),
	}

	if resp.TTFT() != 500*time.Millisecond {
		t.Errorf("TTFT() = %v, want 500ms", resp.TTFT())
	}
}

// =============================================================================
// MODEL INFO TESTS
// =============================================================================

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{2 * 1024 * 1024, "2.0 MB"},
		{2 * 1024 * 1024 * 1024, "2.0 GB"},
	}

	for _, tc := range tests {
		m := &ModelInfo{Size: tc.size}
		if got := m.FormatSize(); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	})
}

func TestClient_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})

	if c.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q", c.config.BaseURL)
	}
	if c.config.DefaultModel != "llama3.2:3b" {
		t.Errorf("DefaultModel = %q", c.config.DefaultModel)
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", c.config.Timeout)
	}
}

func TestClient_CheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning failed: %v", err)
	}
}

func TestClient_CheckRunning_Down(t *testing.T) {
	// Port from a closed server guarantees a connection error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	err := c.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("expected not-running error, got %v", err)
	}
}

func TestClient_Version(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"version":"0.1.32"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if v != "0.1.32" {
		t.Errorf("Version = %q, want 0.1.32", v)
	}
}

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:3b","size":2000000000},{"name":"mistral:7b","size":4100000000}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Name != "llama3.2:3b" {
		t.Errorf("Models[0].Name = %q", models[0].Name)
	}
}

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"model":"llama3.2:3b","message":{"role":"assistant","content":"Hi!"},"done":true,"eval_count":3,"eval_duration":1000000000}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Chat(context.Background(), "", []Message{NewUserMessage("Hello")})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "Hi!" {
		t.Errorf("Content = %q, want 'Hi!'", resp.Message.Content)
	}
	if !resp.Done {
		t.Error("Done should be true")
	}
}

func TestClient_Chat_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Chat(context.Background(), "nope:1b", []Message{NewUserMessage("hi")})
	if !IsModelNotFound(err) {
		t.Errorf("expected model-not-found error, got %v", err)
	}
}

func TestClient_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"model":"llama3.2:3b","message":{"role":"assistant","content":"Hel"},"done":false}`,
			`{"model":"llama3.2:3b","message":{"role":"assistant","content":"lo"},"done":false}`,
			`{"model":"llama3.2:3b","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","eval_count":2,"eval_duration":1000000000,"prompt_eval_count":5}`,
		}
		for _, l := range lines {
			w.Write([]byte(l + "\n"))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	var content strings.Builder
	var final *StreamChunk
	err := c.ChatStream(context.Background(), "llama3.2:3b", []Message{NewUserMessage("hi")}, func(chunk StreamChunk) {
		content.WriteString(chunk.Content)
		if chunk.Done {
			c := chunk
			final = &c
		}
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	if content.String() != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", content.String())
	}
	if final == nil {
		t.Fatal("no final chunk received")
	}
	if final.CompletionTokens != 2 {
		t.Errorf("CompletionTokens = %d, want 2", final.CompletionTokens)
	}
	if final.PromptTokens != 5 {
		t.Errorf("PromptTokens = %d, want 5", final.PromptTokens)
	}
}

func TestClient_ChatStream_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"role":"assistant","content":"tok"},"done":false}` + "\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())

	c := newTestClient(srv.URL)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ChatStream(ctx, "llama3.2:3b", []Message{NewUserMessage("hi")}, func(chunk StreamChunk) {
			cancel()
		})
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("cancelled stream should return an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

func TestClient_ChatStreamChan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"role":"assistant","content":"a"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}` + "\n"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var content strings.Builder
	for chunk := range c.ChatStreamChan(context.Background(), "", []Message{NewUserMessage("hi")}) {
		if chunk.Error != nil {
			t.Fatalf("chunk error: %v", chunk.Error)
		}
		content.WriteString(chunk.Content)
	}
	if content.String() != "a" {
		t.Errorf("Content = %q, want 'a'", content.String())
	}
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_SkipsMalformedLines(t *testing.T) {
	input := `{"message":{"role":"assistant","content":"ok"},"done":false}
not json at all
{"message":{"role":"assistant","content":""},"done":true}
`
	reader := NewStreamReader(strings.NewReader(input))

	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if reader.GetAccumulated() != "ok" {
		t.Errorf("Accumulated = %q, want 'ok'", reader.GetAccumulated())
	}
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
	if !chunks[len(chunks)-1].Done {
		t.Error("final chunk should be done")
	}
}

// =============================================================================
// ERROR CLASSIFICATION TESTS
// =============================================================================

func TestErrorClassifiers(t *testing.T) {
	if !IsNotRunning(ErrNotRunning) {
		t.Error("IsNotRunning(ErrNotRunning) should be true")
	}
	if !IsTimeout(ErrTimeout) {
		t.Error("IsTimeout(ErrTimeout) should be true")
	}
	if !IsModelNotFound(ErrModelNotFound) {
		t.Error("IsModelNotFound(ErrModelNotFound) should be true")
	}
	if IsNotRunning(ErrTimeout) {
		t.Error("IsNotRunning(ErrTimeout) should be false")
	}

	wrapped := &ClientError{Type: ErrTypeTimeout, Message: "slow", Cause: context.DeadlineExceeded}
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout should match wrapped ClientError")
	}
}

// =============================================================================
// DETECTION TESTS
// =============================================================================

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNotInstalled, "not installed"},
		{StatusInstalledNotRunning, "installed, not running"},
		{StatusRunning, "running"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestDetect_RunningAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/version" {
			w.Write([]byte(`{"version":"0.1.32"}`))
			return
		}
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	result := c.Detect(context.Background())

	if result.Status != StatusRunning {
		t.Errorf("Status = %v, want running", result.Status)
	}
	if !result.APIAccessible {
		t.Error("APIAccessible should be true")
	}
}

// =============================================================================
// MODEL DISCOVERY TESTS
// =============================================================================

func TestModelFileFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		ok     bool
	}{
		{"llama.gguf", "gguf", true},
		{"weights.BIN", "bin", true},
		{"model.safetensors", "safetensors", true},
		{"model", "blob", true},
		{"readme.txt", "", false},
		{"config.json", "", false},
	}

	for _, tc := range tests {
		format, ok := modelFileFormat(tc.name)
		if ok != tc.ok || format != tc.format {
			t.Errorf("modelFileFormat(%q) = (%q, %v), want (%q, %v)",
				tc.name, format, ok, tc.format, tc.ok)
		}
	}
}

func TestDiscoverLocalModels_OllamaLayout(t *testing.T) {
	root := t.TempDir()
	t.Setenv("OLLAMA_MODELS", root)
	t.Setenv("HOME", t.TempDir())

	manifestDir := filepath.Join(root, "manifests", "registry.ollama.ai", "library", "llama3.2", "3b")
	if err := os.MkdirAll(filepath.Dir(manifestDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "blobs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(manifestDir, []byte(`{"layers":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "blobs", "sha256-abc"), make([]byte, 1024), 0644); err != nil {
		t.Fatal(err)
	}

	models := DiscoverLocalModels()
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1", len(models))
	}
	if models[0].Name != "llama3.2:3b" {
		t.Errorf("Name = %q, want llama3.2:3b", models[0].Name)
	}
	if models[0].Source != SourceOllama {
		t.Errorf("Source = %q, want ollama", models[0].Source)
	}
	if models[0].SizeBytes != 1024 {
		t.Errorf("SizeBytes = %d, want 1024", models[0].SizeBytes)
	}
}

func TestDiscoverLocalModels_LMStudioLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OLLAMA_MODELS", filepath.Join(home, "no-such-dir"))

	dir := filepath.Join(home, ".cache", "lm-studio", "models", "TheBloke")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mistral-7b.Q4_K_M.gguf"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	models := DiscoverLocalModels()
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1", len(models))
	}
	if models[0].Source != SourceLMStudio {
		t.Errorf("Source = %q, want lmstudio", models[0].Source)
	}
	if models[0].Format != "gguf" {
		t.Errorf("Format = %q, want gguf", models[0].Format)
	}
	if models[0].Name != "mistral-7b.Q4_K_M" {
		t.Errorf("Name = %q", models[0].Name)
	}
}

func TestDiscoverLocalModels_Empty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_MODELS", filepath.Join(t.TempDir(), "missing"))

	if models := DiscoverLocalModels(); len(models) != 0 {
		t.Errorf("got %d models, want 0", len(models))
	}
}
