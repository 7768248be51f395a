// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea model and its update loop. Every key
// press is normalized and routed through the dispatch package so that
// send, cancel, modal close, and global shortcuts resolve to exactly one
// action per event.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/openchat-tui/internal/dispatch"
	"github.com/jeranaias/openchat-tui/internal/history"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/platform"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/storage"
	"github.com/jeranaias/openchat-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// dispatchState carries the dispatcher-read state behind a pointer so
// every Bubble Tea model copy and the dispatcher's store closures see
// the same values.
type dispatchState struct {
	sendMode        dispatch.SendMode
	hotkeys         []dispatch.Shortcut
	streaming       bool
	settingsOpen    bool
	shortcutsOpen   bool
	cancelRequested bool
}

// Options configures a new chat model.
type Options struct {
	Theme        *styles.Theme
	Client       *ollama.Client
	Store        *storage.ConversationStore
	Index        *history.Index
	Session      *session.Manager
	SendMode     dispatch.SendMode
	SystemPrompt string
	// Hotkeys overrides the global shortcut table; nil means default.
	Hotkeys []dispatch.Shortcut
}

// Model is the top-level Bubble Tea model for the chat screen.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	client *ollama.Client
	store  *storage.ConversationStore
	index  *history.Index
	sess   *session.Manager

	conversation *model.Conversation

	textarea textarea.Model
	viewport viewport.Model
	spin     spinner.Model

	classifier dispatch.Classifier
	disp       *dispatch.Dispatcher
	shared     *dispatchState

	streamState *StreamingState
	buffer      *StreamingBuffer
	cancelMgr   *cancelManager
	md          *markdownCache

	sidebarOpen   bool
	sidebarIndex  int
	sessions      []storage.ConversationMeta
	settingsIndex int

	installedModels []ollama.ModelInfo
	serverStatus    ollama.DetectionResult

	searchQuery   string
	searchResults []history.SearchResult

	width  int
	height int
	ready  bool

	errBox     *ErrorMsg
	statusNote string
}

// New creates a chat model wired to the given services.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask anything..."
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.BrailleSpinner.Frames,
		FPS:    styles.BrailleSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	conv := model.NewConversation()
	if opts.SystemPrompt != "" {
		conv.SystemPrompt = opts.SystemPrompt
	}

	shared := &dispatchState{sendMode: opts.SendMode, hotkeys: opts.Hotkeys}
	cancelMgr := newCancelManager()

	m := Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		client:       opts.Client,
		store:        opts.Store,
		index:        opts.Index,
		sess:         opts.Session,
		conversation: conv,
		textarea:     ta,
		viewport:     vp,
		spin:         sp,
		classifier:   dispatch.NewClassifier(platform.IsMac()),
		shared:       shared,
		buffer:       NewStreamingBuffer(),
		cancelMgr:    cancelMgr,
		md:           &markdownCache{},
	}

	// The dispatcher reads modal and stream state through the shared
	// pointer and owns exactly one side effect: firing the cancel handle.
	m.disp = dispatch.New(dispatch.Stores{
		SendMode:      func() dispatch.SendMode { return shared.sendMode },
		Streaming:     func() bool { return shared.streaming },
		SettingsOpen:  func() bool { return shared.settingsOpen },
		ShortcutsOpen: func() bool { return shared.shortcutsOpen },
		Hotkeys:       func() []dispatch.Shortcut { return shared.hotkeys },
	}, dispatch.Handlers{
		OnCancel: func() {
			shared.cancelRequested = true
			cancelMgr.cancel()
		},
	})

	return m
}

// Init starts the initial background probes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.client != nil {
		cmds = append(cmds, checkOllamaCmd(m.client), listModelsCmd(m.client))
	}
	if m.store != nil {
		cmds = append(cmds, listSessionsCmd(m.store))
	}
	if m.sess != nil {
		cmds = append(cmds, session.TickCmd())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes incoming messages to their handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		m.shared.streaming = true
		return m, tea.Batch(streamTickCmd(), m.spin.Tick)

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case spinner.TickMsg:
		if m.shared.streaming && m.streamState != nil && m.streamState.TokenCount() == 0 {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case OllamaStatusMsg:
		return m.handleOllamaStatus(msg)

	case OllamaModelsMsg:
		if msg.Err == nil {
			m.installedModels = msg.Models
		}
		return m, nil

	case ModelSwitchedMsg:
		if msg.Err != nil {
			e := SmartErrorMsg("Model switch failed", msg.Err.Error())
			m.errBox = &e
			return m, nil
		}
		m.conversation.Model = msg.Model
		m.statusNote = "model: " + msg.Model
		return m, nil

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.statusNote = "save failed: " + msg.Err.Error()
		} else if msg.ID != "" {
			m.statusNote = "saved " + msg.ID
			if m.sess != nil {
				m.sess.MarkClean()
			}
		}
		return m, listSessionsCmd(m.store)

	case ConversationLoadedMsg:
		return m.handleConversationLoaded(msg)

	case SessionListMsg:
		if msg.Err == nil {
			m.sessions = msg.Sessions
			if m.sidebarIndex >= len(m.sessions) {
				m.sidebarIndex = 0
			}
		}
		return m, nil

	case HistorySearchMsg:
		return m.handleHistorySearch(msg)

	case ExportCompleteMsg:
		if msg.Err != nil {
			m.statusNote = "export failed: " + msg.Err.Error()
		} else {
			m.statusNote = "exported to " + msg.Path
		}
		return m, nil

	case ConfigReloadedMsg:
		m.shared.sendMode = msg.SendMode
		m.shared.hotkeys = msg.Hotkeys
		m.statusNote = "config reloaded"
		return m, nil

	case StatusNoteMsg:
		m.statusNote = msg.Note
		return m, nil

	case ErrorMsg:
		e := msg
		m.errBox = &e
		return m, nil

	case ErrorDismissMsg:
		m.errBox = nil
		return m, nil

	case session.TickMsg:
		if m.sess == nil {
			return m, nil
		}
		return m, m.sess.HandleTick()

	case session.AutoSaveMsg:
		if m.sess != nil && m.sess.IsDirty() {
			return m, saveConversationCmd(m.store, m.index, m.conversation)
		}
		return m, nil
	}

	return m.forwardMsg(msg)
}

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.renderChat()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes one keystroke. The dispatcher resolves the semantic
// action; everything it leaves as NoOp falls through to the focused
// widget's default behavior.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.sess != nil {
		m.sess.RecordActivity()
	}

	// An error box claims Escape and Enter for dismissal.
	if m.errBox != nil {
		switch msg.String() {
		case "esc", "enter":
			m.errBox = nil
			return m, nil
		}
	}

	ev := dispatch.FromKeyMsg(msg, m.classifier, m.textarea.Focused())
	action := m.disp.Dispatch(ev)

	switch action {
	case dispatch.ActionSend:
		return m.submitInput()

	case dispatch.ActionCancel:
		// The dispatcher already fired the cancel handle; completion
		// surfaces through the stream tick loop.
		return m, nil

	case dispatch.ActionCloseModal:
		m.closeTopModal()
		return m, nil

	case dispatch.ActionNewChat:
		return m.newConversation()

	case dispatch.ActionToggleSidebar:
		m.sidebarOpen = !m.sidebarOpen
		if m.sidebarOpen {
			m.textarea.Blur()
			return m, listSessionsCmd(m.store)
		}
		m.textarea.Focus()
		return m, nil

	case dispatch.ActionToggleSettings:
		m.shared.settingsOpen = !m.shared.settingsOpen
		m.shared.shortcutsOpen = false
		m.syncComposerFocus()
		return m, nil

	case dispatch.ActionToggleShortcuts:
		m.shared.shortcutsOpen = !m.shared.shortcutsOpen
		m.shared.settingsOpen = false
		m.syncComposerFocus()
		return m, nil

	case dispatch.ActionSendFeedback:
		m.statusNote = "feedback: https://github.com/jeranaias/openchat-tui/issues"
		return m, nil

	case dispatch.ActionFocusInput:
		m.sidebarOpen = false
		m.textarea.Focus()
		return m, nil
	}

	return m.handleLocalKey(msg)
}

// handleLocalKey covers the keys the dispatcher leaves to widgets:
// overlay navigation, sidebar selection, transcript scrolling, typing.
func (m Model) handleLocalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.shared.settingsOpen {
		return m.handleSettingsKey(msg)
	}
	if m.shared.shortcutsOpen {
		// Any unclaimed key closes the static overlay.
		m.shared.shortcutsOpen = false
		return m, nil
	}

	if m.sidebarOpen && !m.textarea.Focused() {
		return m.handleSidebarKey(msg)
	}

	if m.textarea.Focused() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSidebarKey navigates and selects saved conversations.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sidebarIndex < len(m.sessions)-1 {
			m.sidebarIndex++
		}
	case key.Matches(msg, m.keys.Select):
		if len(m.sessions) > 0 {
			return m, loadConversationCmd(m.store, m.sidebarIndex)
		}
	case msg.String() == "esc":
		m.sidebarOpen = false
		m.textarea.Focus()
	}
	return m, nil
}

// handleSettingsKey cycles the editable settings.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.settingsIndex > 0 {
			m.settingsIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.settingsIndex < settingsEntryCount-1 {
			m.settingsIndex++
		}
	case key.Matches(msg, m.keys.Select):
		return m.toggleSetting()
	}
	return m, nil
}

// closeTopModal dismisses whichever overlay the dispatcher resolved.
func (m *Model) closeTopModal() {
	if m.shared.shortcutsOpen {
		m.shared.shortcutsOpen = false
	} else {
		m.shared.settingsOpen = false
	}
	m.syncComposerFocus()
}

// syncComposerFocus blurs the composer while an overlay is open so the
// dispatcher routes keys down the global path, and restores focus when
// the last overlay closes.
func (m *Model) syncComposerFocus() {
	if m.shared.settingsOpen || m.shared.shortcutsOpen {
		m.textarea.Blur()
		return
	}
	if !m.sidebarOpen {
		m.textarea.Focus()
	}
}

// =============================================================================
// COMPOSER SUBMIT
// =============================================================================

// submitInput sends the composer content: slash commands run locally,
// anything else becomes a user message and starts a stream.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" {
		return m, nil
	}

	if strings.HasPrefix(content, "/") {
		m.textarea.Reset()
		return m.handleCommand(content)
	}

	if m.client == nil {
		e := NewErrorMsg("No client", "chat backend is not configured")
		m.errBox = &e
		return m, nil
	}

	m.textarea.Reset()
	m.conversation.AddUserMessage(content)
	asst := m.conversation.AddAssistantMessage()

	m.streamState = NewStreamingState(asst.ID)
	m.buffer.Reset()
	m.shared.cancelRequested = false
	if m.sess != nil {
		m.sess.MarkDirty()
	}

	m.updateViewport()

	modelName := m.conversation.Model
	if modelName == "" {
		modelName = m.client.GetDefaultModel()
	}

	return m, startStreamCmd(
		m.client, modelName, m.conversation.ToOllamaMessages(),
		m.streamState, m.buffer, m.cancelMgr,
	)
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

// handleStreamTick drains buffered tokens into the transcript and
// detects completion.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.streamState == nil {
		return m, nil
	}

	if content, ok := m.buffer.Flush(); ok {
		m.conversation.AppendToLast(content)
		m.updateViewport()
	}

	if done, err := m.streamState.Done(); done {
		if content, ok := m.buffer.ForceFlush(); ok {
			m.conversation.AppendToLast(content)
		}
		state := m.streamState
		return m, func() tea.Msg {
			return StreamCompleteMsg{
				MessageID: state.MessageID(),
				Stats:     state.Stats(),
				Err:       err,
			}
		}
	}

	return m, streamTickCmd()
}

// handleStreamComplete finalizes the assistant message and kicks off an
// auto-save.
func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	m.shared.streaming = false
	m.streamState = nil

	switch {
	case m.shared.cancelRequested:
		m.conversation.CancelLast()
		m.shared.cancelRequested = false
		m.statusNote = "generation cancelled"
	case msg.Err != nil:
		m.conversation.CancelLast()
		e := handleOllamaError(msg.Err)
		m.errBox = &e
	default:
		m.conversation.FinalizeLast(msg.Stats)
		if msg.Stats != nil {
			m.statusNote = msg.Stats.Format()
		}
	}

	m.updateViewport()

	if m.sess != nil {
		m.sess.MarkDirty()
	}
	return m, saveConversationCmd(m.store, m.index, m.conversation)
}

// =============================================================================
// OTHER MESSAGE HANDLERS
// =============================================================================

func (m Model) handleOllamaStatus(msg OllamaStatusMsg) (tea.Model, tea.Cmd) {
	m.serverStatus = msg.Detection

	if msg.Detection.Status == ollama.StatusNotInstalled {
		e := SmartErrorMsg("Ollama not found",
			"no local Ollama installation detected and the API is unreachable: connection refused")
		m.errBox = &e
	}
	return m, nil
}

func (m Model) handleConversationLoaded(msg ConversationLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		e := NewErrorMsg("Load failed", msg.Err.Error())
		m.errBox = &e
		return m, nil
	}

	m.conversation = msg.Conversation
	m.sidebarOpen = false
	m.textarea.Focus()
	m.updateViewport()
	m.statusNote = "resumed: " + m.conversation.GetTitle()
	return m, nil
}

func (m Model) handleHistorySearch(msg HistorySearchMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusNote = "search failed: " + msg.Err.Error()
		return m, nil
	}

	m.searchQuery = msg.Query
	m.searchResults = msg.Results
	m.appendSearchResults()
	m.updateViewport()
	return m, nil
}

// =============================================================================
// LAYOUT AND STATE HELPERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	contentWidth := msg.Width
	if m.sidebarOpen {
		contentWidth -= sidebarWidth
	}

	headerHeight := 1
	inputHeight := m.textarea.Height() + 2
	statusHeight := 1

	m.viewport.Width = contentWidth
	m.viewport.Height = msg.Height - headerHeight - inputHeight - statusHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.textarea.SetWidth(msg.Width - 4)

	m.ready = true
	m.updateViewport()
	return m, nil
}

// newConversation saves the current chat and starts a fresh one.
func (m Model) newConversation() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if !m.conversation.IsEmpty() {
		cmds = append(cmds, saveConversationCmd(m.store, m.index, m.conversation))
	}

	prompt := m.conversation.SystemPrompt
	modelName := m.conversation.Model
	m.conversation = model.NewConversationWithModel(modelName)
	m.conversation.SystemPrompt = prompt

	m.buffer.Reset()
	m.streamState = nil
	m.shared.streaming = false
	m.textarea.Focus()
	m.updateViewport()
	m.statusNote = "new conversation"

	return m, tea.Batch(cmds...)
}

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// forwardMsg passes unrecognized messages to the focused widgets.
func (m Model) forwardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// GetConversation returns the active conversation.
func (m *Model) GetConversation() *model.Conversation {
	return m.conversation
}

// SetConversation replaces the active conversation.
func (m *Model) SetConversation(conv *model.Conversation) {
	m.conversation = conv
	m.updateViewport()
}

// Streaming reports whether a response is currently streaming.
func (m *Model) Streaming() bool {
	return m.shared.streaming
}

// SettingsOpen reports whether the settings overlay is visible.
func (m *Model) SettingsOpen() bool {
	return m.shared.settingsOpen
}

// ShortcutsOpen reports whether the shortcut overlay is visible.
func (m *Model) ShortcutsOpen() bool {
	return m.shared.shortcutsOpen
}

// SidebarOpen reports whether the conversation sidebar is visible.
func (m *Model) SidebarOpen() bool {
	return m.sidebarOpen
}

// SendMode returns the active composer send mode.
func (m *Model) SendMode() dispatch.SendMode {
	return m.shared.sendMode
}
