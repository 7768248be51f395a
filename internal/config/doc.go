// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for openchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - KeyboardConfig: Composer send mode and hotkey overrides
//   - LocalConfig: Ollama server connection settings
//   - HistoryConfig: Conversation persistence behavior
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPENCHAT_*)
//   - ~/.openchat/config.toml
//   - ~/.openchat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	mode := cfg.Keyboard.SendMode
//	url := cfg.Local.OllamaURL
package config
