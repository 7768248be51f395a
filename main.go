// openchat TUI - A terminal interface for chatting with local Ollama models.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/dispatch"
	"github.com/jeranaias/openchat-tui/internal/history"
	"github.com/jeranaias/openchat-tui/internal/ollama"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/storage"
	"github.com/jeranaias/openchat-tui/internal/ui/chat"
	"github.com/jeranaias/openchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		flagConfig   = flag.String("config", "", "load configuration from this file instead of ~/.openchat")
		flagModel    = flag.String("model", "", "model to chat with (overrides config)")
		flagTheme    = flag.String("theme", "", "color theme: dark or light (overrides config)")
		flagSendMode = flag.String("send-mode", "", "composer send mode: enter or mod+enter (overrides config)")
		flagSystem   = flag.String("system", "", "system prompt for new conversations")
		flagVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("openchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "openchat is an interactive TUI and needs a terminal")
		os.Exit(1)
	}

	var (
		cfg *config.Config
		err error
	)
	if *flagConfig != "" {
		cfg, err = config.LoadFromPath(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load config, using defaults: %v\n", err)
			cfg = config.Default()
		}
	}
	config.SetGlobal(cfg)

	// Reload on file change only makes sense for the default location;
	// an explicit --config file is a one-shot load.
	watchConfig := *flagConfig == ""

	if err := run(cfg, *flagModel, *flagTheme, *flagSendMode, *flagSystem, watchConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the services together and drives the TUI until exit.
func run(cfg *config.Config, modelOverride, themeOverride, sendModeOverride, systemPrompt string, watchConfig bool) error {
	themeVariant := cfg.UI.Theme
	if themeOverride != "" {
		themeVariant = themeOverride
	}
	theme := styles.NewThemeWithVariant(themeVariant)

	defaultModel := cfg.Local.OllamaModel
	if defaultModel == "" {
		defaultModel = cfg.DefaultModel
	}
	if modelOverride != "" {
		defaultModel = modelOverride
	}

	clientCfg := &ollama.ClientConfig{
		BaseURL:      cfg.Local.OllamaURL,
		DefaultModel: defaultModel,
	}
	if cfg.Local.TimeoutSecs > 0 {
		clientCfg.Timeout = time.Duration(cfg.Local.TimeoutSecs) * time.Second
	}
	client := ollama.NewClientWithConfig(clientCfg)

	// Best effort: start a locally installed server that isn't running.
	// The TUI surfaces the detection result either way.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = client.EnsureRunning(ctx)
		cancel()
	}

	var store *storage.ConversationStore
	if cfg.History.Enabled {
		var err error
		store, err = storage.NewConversationStore(cfg.History.MaxConversations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: conversation persistence disabled: %v\n", err)
		}
	}

	var index *history.Index
	if store != nil && cfg.History.SearchIndexEnabled {
		if path, err := history.DefaultPath(); err == nil {
			index, err = history.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: history search disabled: %v\n", err)
			}
		}
	}
	if index != nil {
		defer index.Close()
	}

	sendModeStr := cfg.Keyboard.SendMode
	if sendModeOverride != "" {
		sendModeStr = sendModeOverride
	}

	m := chat.New(chat.Options{
		Theme:        theme,
		Client:       client,
		Store:        store,
		Index:        index,
		Session:      session.NewManager(session.DefaultConfig()),
		SendMode:     dispatch.ParseSendMode(sendModeStr),
		SystemPrompt: systemPrompt,
		Hotkeys:      dispatch.TableWithoutKeys(cfg.Keyboard.DisabledShortcuts),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if watchConfig {
		watcher, err := config.NewWatcher(500*time.Millisecond, func(next *config.Config) {
			mode := next.Keyboard.SendMode
			if sendModeOverride != "" {
				mode = sendModeOverride
			}
			p.Send(chat.ConfigReloadedMsg{
				SendMode: dispatch.ParseSendMode(mode),
				Hotkeys:  dispatch.TableWithoutKeys(next.Keyboard.DisabledShortcuts),
			})
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	_, err := p.Run()
	return err
}
