// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the slash commands typed into the composer.
// Commands run locally and report through system messages or the
// status bar; they never reach the model as chat input.
package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/platform"
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// CommandHandler executes one slash command with its arguments.
type CommandHandler func(m Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names (without the slash) to handlers.
var commandHandlers = map[string]CommandHandler{
	"help":     handleHelpCommand,
	"quit":     handleQuitCommand,
	"exit":     handleQuitCommand,
	"clear":    handleClearCommand,
	"new":      handleNewCommand,
	"save":     handleSaveCommand,
	"load":     handleLoadCommand,
	"sessions": handleSessionsCommand,
	"export":   handleExportCommand,
	"search":   handleSearchCommand,
	"model":    handleModelCommand,
	"models":   handleModelsCommand,
	"system":   handleSystemCommand,
	"stats":    handleStatsCommand,
	"status":   handleStatusCommand,
	"compat":   handleCompatCommand,
}

// handleCommand parses and runs a slash command line.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(content, "/"))
	if len(fields) == 0 {
		return m, nil
	}

	name := strings.ToLower(fields[0])
	handler, ok := commandHandlers[name]
	if !ok {
		m.statusNote = fmt.Sprintf("unknown command /%s (try /help)", name)
		return m, nil
	}
	return handler(m, fields[1:])
}

// note appends a system message and refreshes the transcript.
func (m *Model) note(text string) {
	m.conversation.AddSystemMessage(text)
	m.updateViewport()
}

// =============================================================================
// GENERAL COMMANDS
// =============================================================================

func handleHelpCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	var sb strings.Builder
	sb.WriteString("Commands:\n")

	help := []struct{ cmd, desc string }{
		{"/help", "show this help"},
		{"/new", "start a new conversation"},
		{"/clear", "clear the current conversation"},
		{"/save", "save the conversation"},
		{"/sessions", "list saved conversations"},
		{"/load <n>", "resume saved conversation n"},
		{"/search <text>", "full-text search across history"},
		{"/export [md|json]", "export the conversation to a file"},
		{"/model <name>", "switch model"},
		{"/models", "list installed models"},
		{"/system <prompt>", "set the system prompt"},
		{"/compat <model>", "check if this machine can run a model"},
		{"/stats", "conversation statistics"},
		{"/status", "server and host status"},
		{"/quit", "exit"},
	}
	for _, h := range help {
		fmt.Fprintf(&sb, "  %-18s %s\n", h.cmd, h.desc)
	}

	m.note(sb.String())
	return m, nil
}

func handleQuitCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

func handleClearCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	m.conversation.ClearHistory()
	m.updateViewport()
	m.statusNote = "conversation cleared"
	return m, nil
}

func handleNewCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	return m.newConversation()
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

func handleSaveCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if m.conversation.IsEmpty() {
		m.statusNote = "nothing to save"
		return m, nil
	}
	return m, saveConversationCmd(m.store, m.index, m.conversation)
}

func handleLoadCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusNote = "usage: /load <number> (see /sessions)"
		return m, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		m.statusNote = "usage: /load <number> (see /sessions)"
		return m, nil
	}
	return m, loadConversationCmd(m.store, n-1)
}

func handleSessionsCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(m.sessions) == 0 {
		m.note("No saved conversations yet. /save stores the current one.")
		return m, listSessionsCmd(m.store)
	}

	var sb strings.Builder
	sb.WriteString("Saved conversations:\n")
	for i, meta := range m.sessions {
		title := meta.Title
		if title == "" {
			title = meta.Preview
		}
		fmt.Fprintf(&sb, "%d. %s (%d messages, %s)\n",
			i+1, title, meta.MessageCount, formatTimestamp(meta.UpdatedAt))
	}
	sb.WriteString("Resume with /load <n> or the sidebar.")

	m.note(sb.String())
	return m, nil
}

func handleExportCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	format := "md"
	if len(args) > 0 {
		format = args[0]
	}
	return m, exportConversationCmd(m.conversation, format)
}

func handleSearchCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusNote = "usage: /search <text>"
		return m, nil
	}
	return m, searchHistoryCmd(m.index, strings.Join(args, " "))
}

// =============================================================================
// MODEL COMMANDS
// =============================================================================

func handleModelCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		current := m.conversation.Model
		if current == "" && m.client != nil {
			current = m.client.GetDefaultModel()
		}
		m.statusNote = "current model: " + current
		return m, nil
	}
	if m.client == nil {
		m.statusNote = "chat backend is not configured"
		return m, nil
	}
	return m, switchModelCmd(m.client, args[0])
}

func handleModelsCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(m.installedModels) == 0 {
		m.note("No installed models reported yet. Is Ollama running?")
		if m.client != nil {
			return m, listModelsCmd(m.client)
		}
		return m, nil
	}

	models := make([]ollama.ModelInfo, len(m.installedModels))
	copy(models, m.installedModels)
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })

	var sb strings.Builder
	sb.WriteString("Installed models:\n")
	for _, mi := range models {
		fmt.Fprintf(&sb, "  %-28s %s\n", mi.Name, mi.FormatSize())
	}
	sb.WriteString("Switch with /model <name>.")

	m.note(sb.String())
	return m, nil
}

func handleSystemCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		if m.conversation.SystemPrompt == "" {
			m.statusNote = "no system prompt set"
		} else {
			m.statusNote = "system prompt: " + truncateToWidth(m.conversation.SystemPrompt, 60)
		}
		return m, nil
	}

	m.conversation.SystemPrompt = strings.Join(args, " ")
	m.statusNote = "system prompt updated"
	return m, nil
}

// =============================================================================
// DIAGNOSTIC COMMANDS
// =============================================================================

func handleStatsCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	conv := m.conversation

	var sb strings.Builder
	fmt.Fprintf(&sb, "Conversation: %s\n", conv.GetTitle())
	fmt.Fprintf(&sb, "Messages: %d\n", conv.MessageCount())
	fmt.Fprintf(&sb, "Estimated tokens: %d (%.0f%% of context)\n",
		conv.EstimateTokens(), conv.GetContextPercent())

	if last := conv.GetLastAssistantMessage(); last != nil && last.TokenCount > 0 {
		fmt.Fprintf(&sb, "Last response: %s\n", last.FormatStats())
	}

	m.note(sb.String())
	return m, nil
}

func handleStatusCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	var sb strings.Builder

	switch m.serverStatus.Status {
	case ollama.StatusRunning:
		fmt.Fprintf(&sb, "Ollama: running (version %s)\n", m.serverStatus.Version)
	case ollama.StatusInstalledNotRunning:
		fmt.Fprintf(&sb, "Ollama: installed at %s but not running\n", m.serverStatus.BinaryPath)
	default:
		sb.WriteString("Ollama: not detected\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if res, err := platform.Probe(ctx); err == nil {
		fmt.Fprintf(&sb, "Host: %s\n", res.Summary())
		for _, w := range res.Warnings() {
			fmt.Fprintf(&sb, "Warning: %s\n", w)
		}
	}

	m.note(sb.String())
	return m, nil
}

func handleCompatCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusNote = "usage: /compat <model> (e.g. /compat mistral:7b)"
		return m, nil
	}
	modelID := args[0]

	info, ok := model.GetModelInfo(modelID)
	if !ok {
		m.statusNote = fmt.Sprintf("unknown model %q", modelID)
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	res, err := platform.Probe(ctx)
	if err != nil {
		m.statusNote = "could not probe host resources: " + err.Error()
		return m, nil
	}

	compat := platform.CheckModel(res, info.ID, info.SizeGB)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s download, needs ~%.1f GB memory)\n",
		info.Name, info.SizeString(), compat.RequiredMemoryGB)
	if compat.CanRun {
		fmt.Fprintf(&sb, "Verdict: should run (confidence %.0f%%)\n", compat.Confidence*100)
	} else {
		sb.WriteString("Verdict: this machine cannot run it\n")
	}
	for _, w := range compat.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}

	m.note(sb.String())
	return m, nil
}
