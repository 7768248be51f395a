// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo contains detailed information about a local model.
// This is used for model selection and display in the UI.
type ModelInfo struct {
	// ID is the model identifier used in Ollama API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Family is the base architecture family (llama, mistral, qwen, ...)
	Family string `json:"family"`

	// Params describes the parameter count (e.g. "3B", "7B")
	Params string `json:"params"`

	// SizeGB is the approximate on-disk size in gigabytes
	SizeGB float64 `json:"size_gb"`

	// MaxTokens is the maximum context window size
	MaxTokens int `json:"max_tokens"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// Models is the registry of well-known local models with their metadata.
// Models discovered from Ollama that are not listed here still work; the
// registry only enriches display and compatibility estimates.
var Models = map[string]ModelInfo{
	"llama3.2:3b": {
		ID:          "llama3.2:3b",
		Name:        "Llama 3.2 3B",
		Family:      "llama",
		Params:      "3B",
		SizeGB:      2.0,
		MaxTokens:   128000,
		Description: "Small general-purpose model, fast on modest hardware",
	},
	"llama3.1:8b": {
		ID:          "llama3.1:8b",
		Name:        "Llama 3.1 8B",
		Family:      "llama",
		Params:      "8B",
		SizeGB:      4.7,
		MaxTokens:   128000,
		Description: "Balanced quality and speed for everyday chat",
	},
	"llama3.1:70b": {
		ID:          "llama3.1:70b",
		Name:        "Llama 3.1 70B",
		Family:      "llama",
		Params:      "70B",
		SizeGB:      40.0,
		MaxTokens:   128000,
		Description: "High quality, needs a workstation-class machine",
	},
	"mistral:7b": {
		ID:          "mistral:7b",
		Name:        "Mistral 7B",
		Family:      "mistral",
		Params:      "7B",
		SizeGB:      4.1,
		MaxTokens:   32768,
		Description: "Efficient general-purpose model",
	},
	"qwen2.5:7b": {
		ID:          "qwen2.5:7b",
		Name:        "Qwen 2.5 7B",
		Family:      "qwen",
		Params:      "7B",
		SizeGB:      4.4,
		MaxTokens:   131072,
		Description: "Strong multilingual chat model",
	},
	"qwen2.5-coder:7b": {
		ID:          "qwen2.5-coder:7b",
		Name:        "Qwen 2.5 Coder 7B",
		Family:      "qwen",
		Params:      "7B",
		SizeGB:      4.4,
		MaxTokens:   131072,
		Description: "Code-focused variant of Qwen 2.5",
	},
	"gemma2:9b": {
		ID:          "gemma2:9b",
		Name:        "Gemma 2 9B",
		Family:      "gemma",
		Params:      "9B",
		SizeGB:      5.4,
		MaxTokens:   8192,
		Description: "Google's open model, good reasoning for its size",
	},
	"phi3:3.8b": {
		ID:          "phi3:3.8b",
		Name:        "Phi-3 Mini",
		Family:      "phi",
		Params:      "3.8B",
		SizeGB:      2.2,
		MaxTokens:   128000,
		Description: "Compact model tuned for instruction following",
	},
	"llava:7b": {
		ID:          "llava:7b",
		Name:        "LLaVA 7B",
		Family:      "llava",
		Params:      "7B",
		SizeGB:      4.7,
		MaxTokens:   32768,
		Description: "Vision-language model for image understanding",
	},
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// SizeString returns the model size formatted for display.
func (m ModelInfo) SizeString() string {
	if m.SizeGB <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.1f GB", m.SizeGB)
}

// ContextString returns the context window formatted for display.
func (m ModelInfo) ContextString() string {
	if m.MaxTokens >= 1000 {
		return fmt.Sprintf("%dK context", m.MaxTokens/1000)
	}
	return fmt.Sprintf("%d context", m.MaxTokens)
}

// =============================================================================
// LOOKUP FUNCTIONS
// =============================================================================

// GetModelInfo looks up a model by ID. Tags are matched loosely: a bare
// name like "mistral" matches "mistral:7b" when unambiguous.
func GetModelInfo(nameOrID string) (ModelInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrID))
	if info, ok := Models[key]; ok {
		return info, true
	}

	// Bare name without a tag: match on the name prefix
	if !strings.Contains(key, ":") {
		var match ModelInfo
		count := 0
		for id, info := range Models {
			if strings.HasPrefix(id, key+":") {
				match = info
				count++
			}
		}
		if count == 1 {
			return match, true
		}
	}

	return ModelInfo{}, false
}

// GetModelsByFamily returns all registry models in a family.
func GetModelsByFamily(family string) []ModelInfo {
	var result []ModelInfo
	for _, info := range Models {
		if info.Family == family {
			result = append(result, info)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ModelIDs returns all registry model IDs, sorted.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for id := range Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
