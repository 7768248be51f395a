// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for openchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.openchat/config.toml
//   - ~/.openchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/openchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete openchat configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Keyboard configuration
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard"`

	// Local (Ollama) configuration
	Local LocalConfig `toml:"local" json:"local"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// History configuration
	History HistoryConfig `toml:"history" json:"history"`
}

// KeyboardConfig contains composer and hotkey configuration.
type KeyboardConfig struct {
	// SendMode selects the submit keystroke: "enter" or "mod+enter".
	// "enter" (default): plain Enter sends, Shift+Enter inserts a newline.
	// "mod+enter": Cmd/Ctrl+Enter sends, plain Enter inserts a newline.
	SendMode string `toml:"send_mode" json:"send_mode"`
	// DisabledShortcuts lists global hotkey keys to disable (e.g. ["t", "/"]).
	// The hotkey table itself is static; entries can only be switched off.
	DisabledShortcuts []string `toml:"disabled_shortcuts" json:"disabled_shortcuts"`
}

// LocalConfig contains local Ollama configuration.
type LocalConfig struct {
	// OllamaURL is the URL of the Ollama server
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	// OllamaModel is the default model to use with Ollama
	OllamaModel string `toml:"ollama_model" json:"ollama_model"`
	// TimeoutSecs is the request timeout for non-streaming calls
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig contains UI appearance configuration.
type UIConfig struct {
	// Theme is the color theme: "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// ShowSidebar controls whether the conversation sidebar starts visible
	ShowSidebar bool `toml:"show_sidebar" json:"show_sidebar"`
	// CompactMode reduces padding in the chat transcript
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// MarkdownEnabled renders assistant messages as markdown
	MarkdownEnabled bool `toml:"markdown_enabled" json:"markdown_enabled"`
	// ShowTimestamps shows message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// HistoryConfig contains conversation history configuration.
type HistoryConfig struct {
	// Enabled controls whether conversations are persisted to disk
	Enabled bool `toml:"enabled" json:"enabled"`
	// MaxConversations caps the number of stored conversations (0 = unlimited)
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
	// SearchIndexEnabled maintains the sqlite search index alongside storage
	SearchIndexEnabled bool `toml:"search_index_enabled" json:"search_index_enabled"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:      "1.0.0",
		DefaultModel: "llama3.2:3b",

		Keyboard: KeyboardConfig{
			SendMode:          "enter",
			DisabledShortcuts: nil,
		},

		Local: LocalConfig{
			OllamaURL:   "http://127.0.0.1:11434",
			OllamaModel: "llama3.2:3b",
			TimeoutSecs: 30,
		},

		UI: UIConfig{
			Theme:           "dark",
			ShowSidebar:     true,
			CompactMode:     false,
			MarkdownEnabled: true,
			ShowTimestamps:  false,
		},

		History: HistoryConfig{
			Enabled:            true,
			MaxConversations:   0, // unlimited
			SearchIndexEnabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the openchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".openchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Apply environment overrides to defaults
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies the override/default/validate sequence after a
// successful file read.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// General
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}

	// Keyboard
	if cfg.Keyboard.SendMode == "" {
		cfg.Keyboard.SendMode = defaults.Keyboard.SendMode
	}

	// Local
	if cfg.Local.OllamaURL == "" {
		cfg.Local.OllamaURL = defaults.Local.OllamaURL
	}
	if cfg.Local.OllamaModel == "" {
		cfg.Local.OllamaModel = defaults.Local.OllamaModel
	}
	if cfg.Local.TimeoutSecs == 0 {
		cfg.Local.TimeoutSecs = defaults.Local.TimeoutSecs
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# openchat configuration file")
	fmt.Fprintln(file, "# Generated by openchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file via an atomic write.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveActive writes cfg back to the file Load reads, preserving the
// format in use: config.toml when it exists, config.json when that is
// the active file, TOML otherwise.
func SaveActive(cfg *Config) error {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return SaveTOML(cfg, tomlPath)
	}

	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return SaveJSON(cfg, jsonPath)
	}

	return SaveTOML(cfg, tomlPath)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Keyboard send mode must be a known spelling. A dispatcher fed an
	// unknown value would silently fall back to "enter"; catching it here
	// makes the typo visible instead.
	switch strings.ToLower(strings.TrimSpace(c.Keyboard.SendMode)) {
	case "", "enter", "mod+enter", "cmd+enter", "ctrl+enter":
	default:
		errs = append(errs, ValidationError{
			Field:   "keyboard.send_mode",
			Message: fmt.Sprintf("unknown send mode %q (valid: enter, mod+enter)", c.Keyboard.SendMode),
		})
	}

	// Ollama URL must parse and use http/https.
	if c.Local.OllamaURL != "" {
		u, err := url.Parse(c.Local.OllamaURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "local.ollama_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "local.ollama_url",
				Message: fmt.Sprintf("unsupported scheme %q (must be http or https)", u.Scheme),
			})
		}
	}

	if c.Local.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "local.timeout_secs",
			Message: "must not be negative",
		})
	}

	if c.UI.Theme != "" && c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (valid: dark, light)", c.UI.Theme),
		})
	}

	if c.History.MaxConversations < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.max_conversations",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults normalizes fields that validation allows but downstream
// code expects in canonical form.
func (c *Config) SetDefaults() {
	c.Keyboard.SendMode = strings.ToLower(strings.TrimSpace(c.Keyboard.SendMode))
	if c.Keyboard.SendMode == "" {
		c.Keyboard.SendMode = "enter"
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
	if c.Local.TimeoutSecs == 0 {
		c.Local.TimeoutSecs = 30
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OPENCHAT_MODEL: overrides default_model and local.ollama_model
//   - OPENCHAT_OLLAMA_URL: overrides local.ollama_url
//   - OPENCHAT_SEND_MODE: overrides keyboard.send_mode
//   - OPENCHAT_THEME: overrides ui.theme
//   - OPENCHAT_NO_HISTORY: set to "1" or "true" to disable persistence
func (c *Config) ApplyEnvOverrides() {
	// OPENCHAT_MODEL
	if model := os.Getenv("OPENCHAT_MODEL"); model != "" {
		c.DefaultModel = model
		c.Local.OllamaModel = model
	}

	// OPENCHAT_OLLAMA_URL
	if url := os.Getenv("OPENCHAT_OLLAMA_URL"); url != "" {
		c.Local.OllamaURL = url
	}

	// OPENCHAT_SEND_MODE
	if mode := os.Getenv("OPENCHAT_SEND_MODE"); mode != "" {
		c.Keyboard.SendMode = mode
	}

	// OPENCHAT_THEME
	if theme := os.Getenv("OPENCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	// OPENCHAT_NO_HISTORY
	if noHistory := os.Getenv("OPENCHAT_NO_HISTORY"); noHistory != "" {
		if noHistory == "1" || strings.ToLower(noHistory) == "true" {
			c.History.Enabled = false
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "keyboard.send_mode").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "keyboard.send_mode").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("field '%s' cannot be set", key)
			}
			return setFieldValue(field, value)
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case/kebab-case keys to Go field names.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Keyboard.DisabledShortcuts != nil {
		clone.Keyboard.DisabledShortcuts = append([]string(nil), c.Keyboard.DisabledShortcuts...)
	}
	return &clone
}

// String returns a redaction-safe single-line summary for logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{model=%s send_mode=%s ollama=%s theme=%s history=%v}",
		c.DefaultModel, c.Keyboard.SendMode, c.Local.OllamaURL, c.UI.Theme, c.History.Enabled)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
