// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file renders the chat screen: transcript, composer, status bar,
// sidebar, and the settings and shortcut overlays. Completed assistant
// messages go through the glamour markdown renderer; the in-flight
// message renders raw with a typing cursor.
package chat

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/openchat-tui/internal/dispatch"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/ui/styles"
)

// sidebarWidth is the fixed column width of the conversation sidebar.
const sidebarWidth = 32

// =============================================================================
// MARKDOWN CACHE
// =============================================================================

// markdownCache holds the glamour renderer behind a pointer so model
// copies share one instance. The renderer is rebuilt when the wrap
// width changes.
type markdownCache struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

func (mc *markdownCache) render(content string, width int) string {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.renderer == nil || mc.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		mc.renderer = r
		mc.width = width
	}

	out, err := mc.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// TOP-LEVEL LAYOUT
// =============================================================================

// renderChat assembles the full screen.
func (m *Model) renderChat() string {
	if m.shared.settingsOpen {
		return m.renderOverlayScreen(m.renderSettings())
	}
	if m.shared.shortcutsOpen {
		return m.renderOverlayScreen(m.renderShortcuts())
	}

	sections := []string{m.renderHeader()}

	body := m.viewport.View()
	if m.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	sections = append(sections, body)

	if m.shared.streaming && m.streamState != nil && m.streamState.TokenCount() == 0 {
		sections = append(sections, m.renderThinking())
	}

	if m.errBox != nil {
		sections = append(sections, m.renderError())
	}

	sections = append(sections, m.renderInput(), m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderOverlayScreen centers an overlay box on the screen.
func (m *Model) renderOverlayScreen(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// HEADER AND STATUS
// =============================================================================

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("openchat")

	sub := m.conversation.GetTitle()
	if sub == "" {
		sub = "new conversation"
	}
	subtitle := m.theme.HeaderSubtitle.Render(truncateToWidth(sub, m.width/2))

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle)
	return m.theme.Header.Width(m.width).Render(line)
}

func (m *Model) renderStatusBar() string {
	var parts []string

	modelName := m.conversation.Model
	if modelName == "" && m.client != nil {
		modelName = m.client.GetDefaultModel()
	}
	parts = append(parts, m.theme.ModelBadge.Render(modelName))

	switch m.serverStatus.Status {
	case ollama.StatusRunning:
		parts = append(parts, m.theme.SuccessStyle.Render("online"))
	case ollama.StatusInstalledNotRunning:
		parts = append(parts, m.theme.WarningStyle.Render("stopped"))
	case ollama.StatusNotInstalled:
		parts = append(parts, m.theme.ErrorStyle.Render("offline"))
	}

	if m.shared.streaming {
		parts = append(parts, m.theme.Streaming.Render("streaming"))
	}

	if m.sess != nil {
		parts = append(parts, m.theme.ShortcutDesc.Render(session.FormatDuration(m.sess.Duration())))
	}

	if m.statusNote != "" {
		parts = append(parts, m.theme.ShortcutDesc.Render(truncateToWidth(m.statusNote, m.width/2)))
	}

	mod := "ctrl"
	if m.classifier.IsMac() {
		mod = "cmd"
	}
	hint := m.theme.ShortcutKey.Render(mod+"+/") + m.theme.ShortcutDesc.Render(" shortcuts")

	left := strings.Join(parts, " | ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + hint)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the whole transcript for the viewport.
func (m *Model) renderMessages() string {
	if m.conversation.IsEmpty() {
		return m.renderWelcome()
	}

	var sb strings.Builder
	msgs := m.conversation.Messages
	for i, msg := range msgs {
		sb.WriteString(m.renderMessage(msg, i == len(msgs)-1))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (m *Model) renderMessage(msg *model.Message, isLast bool) string {
	switch msg.Role {
	case model.RoleUser:
		return m.renderUserMessage(msg)
	case model.RoleAssistant:
		return m.renderAssistantMessage(msg, isLast)
	default:
		return m.renderSystemMessage(msg)
	}
}

func (m *Model) renderUserMessage(msg *model.Message) string {
	width := contentWidth(m.viewport.Width, 10)
	body := wrapText(msg.Content, width)

	bubble := m.theme.UserBubble.Render(body)
	stamp := m.theme.ShortcutDesc.Render(formatTimestamp(msg.Timestamp))
	return lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
}

func (m *Model) renderAssistantMessage(msg *model.Message, isLast bool) string {
	width := contentWidth(m.viewport.Width, 10)

	var body string
	if msg.IsStreaming {
		body = wrapText(msg.GetDisplayContent(), width) + "_"
	} else {
		body = m.md.render(msg.Content, width)
	}

	bubble := m.theme.AssistantBubble.Render(body)

	var footer []string
	if msg.Cancelled {
		footer = append(footer, m.theme.CancelledNote.Render("cancelled"))
	}
	if !msg.IsStreaming && msg.TokenCount > 0 && isLast {
		footer = append(footer, m.theme.StatsValue.Render(msg.FormatStats()))
	}

	if len(footer) == 0 {
		return bubble
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		bubble, m.theme.StatsBar.Render(strings.Join(footer, " | ")))
}

func (m *Model) renderSystemMessage(msg *model.Message) string {
	width := contentWidth(m.viewport.Width, 8)
	return m.theme.SystemBubble.Render(wrapText(msg.Content, width))
}

func (m *Model) renderThinking() string {
	elapsed := ""
	if m.streamState != nil {
		elapsed = fmt.Sprintf(" %.0fs", m.streamState.Elapsed().Seconds())
	}
	return m.theme.Container.Render(
		m.spin.View() + m.theme.ThinkingText.Render(" thinking") +
			m.theme.ThinkingTime.Render(elapsed))
}

// renderWelcome fills the empty transcript with a startup card.
func (m *Model) renderWelcome() string {
	mod := "ctrl"
	if m.classifier.IsMac() {
		mod = "cmd"
	}

	lines := []string{
		m.theme.WelcomeLogo.Render("openchat"),
		m.theme.WelcomeVersion.Render("local chat for Ollama models"),
		"",
		m.theme.WelcomeInfo.Render("Type a message and press Enter to chat."),
		m.theme.WelcomeInfo.Render("Slash commands: /help /model /save /search"),
		"",
		m.theme.WelcomeKey.Render(mod+"+n") + m.theme.WelcomeInfo.Render(" new chat   ") +
			m.theme.WelcomeKey.Render(mod+"+s") + m.theme.WelcomeInfo.Render(" sidebar   ") +
			m.theme.WelcomeKey.Render(mod+"+/") + m.theme.WelcomeInfo.Render(" shortcuts"),
	}

	box := m.theme.WelcomeBox.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// COMPOSER AND ERROR BOX
// =============================================================================

func (m *Model) renderInput() string {
	hint := "enter sends | shift+enter newline"
	if m.shared.sendMode == dispatch.SendModeModEnter {
		mod := "ctrl"
		if m.classifier.IsMac() {
			mod = "cmd"
		}
		hint = mod + "+enter sends | enter newline"
	}

	area := m.textarea.View()
	hintLine := m.theme.SendModeHint.Width(m.width - 2).Render(hint)
	return m.theme.InputContainer.Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, area, hintLine))
}

func (m *Model) renderError() string {
	e := m.errBox

	lines := []string{
		m.theme.ErrorTitle.Render(e.Title),
		m.theme.ErrorMessage.Render(wrapText(e.Message, contentWidth(m.width, 12))),
	}
	for _, s := range e.Suggestions {
		lines = append(lines, m.theme.ErrorSuggestion.Render("- "+s))
	}
	lines = append(lines, m.theme.OverlayHint.Render("esc to dismiss"))

	return m.theme.ErrorBox.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) renderSidebar() string {
	var lines []string
	lines = append(lines, m.theme.SidebarTitle.Render("Conversations"))

	if len(m.sessions) == 0 {
		lines = append(lines, m.theme.SidebarMeta.Render("nothing saved yet"))
	}

	for i, meta := range m.sessions {
		title := meta.Title
		if title == "" {
			title = meta.Preview
		}
		title = truncateToWidth(title, sidebarWidth-4)

		if i == m.sidebarIndex {
			lines = append(lines, m.theme.SidebarItemSelected.Render(title))
		} else {
			lines = append(lines, m.theme.SidebarItem.Render(title))
		}
		lines = append(lines, m.theme.SidebarMeta.Render(
			"  "+formatTimestamp(meta.UpdatedAt)))
	}

	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(m.viewport.Height).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// OVERLAYS
// =============================================================================

// Settings entries toggled by the settings overlay, in display order.
const (
	settingTheme = iota
	settingSendMode
	settingAutoSave
	settingsEntryCount
)

func (m *Model) renderSettings() string {
	entries := []struct {
		label string
		value string
	}{
		{"Theme", map[bool]string{true: "dark", false: "light"}[m.theme.IsDark]},
		{"Send mode", m.shared.sendMode.String()},
		{"Auto-save", m.autoSaveLabel()},
	}

	lines := []string{m.theme.OverlayTitle.Render("Settings"), ""}
	for i, e := range entries {
		row := fmt.Sprintf("%-12s %s", e.label, e.value)
		if i == m.settingsIndex {
			lines = append(lines, m.theme.OverlayItemSelected.Render(row))
		} else {
			lines = append(lines, m.theme.OverlayItem.Render(row))
		}
	}
	lines = append(lines, "", m.theme.OverlayHint.Render("enter toggles | esc closes"))

	return m.theme.OverlayBox.Render(strings.Join(lines, "\n"))
}

func (m *Model) autoSaveLabel() string {
	if m.sess == nil {
		return "unavailable"
	}
	if m.sess.GetStatus().IsDirty {
		return "on (pending)"
	}
	return "on"
}

func (m *Model) renderShortcuts() string {
	entries := ShortcutHelp(m.shared.hotkeys, m.shared.sendMode, m.classifier.IsMac())

	lines := []string{m.theme.OverlayTitle.Render("Keyboard shortcuts"), ""}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %s",
			m.theme.ShortcutKey.Render(fmt.Sprintf("%-16s", e.Chord)),
			m.theme.ShortcutDesc.Render(e.Desc)))
	}
	lines = append(lines, "", m.theme.OverlayHint.Render("esc closes"))

	return m.theme.OverlayBox.Render(strings.Join(lines, "\n"))
}

// toggleSetting flips the currently selected settings entry.
func (m Model) toggleSetting() (tea.Model, tea.Cmd) {
	switch m.settingsIndex {
	case settingTheme:
		variant := "dark"
		if m.theme.IsDark {
			variant = "light"
		}
		m.theme = styles.NewThemeWithVariant(variant)
		m.theme.SetSize(m.width, m.height)
		m.updateViewport()
		return m, persistSettingCmd("ui.theme", variant)
	case settingSendMode:
		if m.shared.sendMode == dispatch.SendModeEnter {
			m.shared.sendMode = dispatch.SendModeModEnter
		} else {
			m.shared.sendMode = dispatch.SendModeEnter
		}
		return m, persistSettingCmd("keyboard.send_mode", m.shared.sendMode.String())
	case settingAutoSave:
		// Auto-save stays on; a manual save is the useful action here.
		return m, saveConversationCmd(m.store, m.index, m.conversation)
	}
	return m, nil
}

// appendSearchResults writes history search results into the transcript
// as a system message.
func (m *Model) appendSearchResults() {
	var sb strings.Builder
	if len(m.searchResults) == 0 {
		fmt.Fprintf(&sb, "No matches for %q.", m.searchQuery)
	} else {
		fmt.Fprintf(&sb, "Matches for %q:\n", m.searchQuery)
		for i, r := range m.searchResults {
			fmt.Fprintf(&sb, "%d. %s (%s) %s\n", i+1,
				r.Title, formatTimestamp(r.UpdatedAt), r.Snippet)
		}
		sb.WriteString("Open the sidebar to resume a conversation.")
	}
	m.conversation.AddSystemMessage(sb.String())
}
