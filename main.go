// pollen - a terminal client for the Pollinations chat API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/pollen-tui/internal/api"
	"github.com/jeranaias/pollen-tui/internal/cli"
	"github.com/jeranaias/pollen-tui/internal/config"
	"github.com/jeranaias/pollen-tui/internal/session"
	"github.com/jeranaias/pollen-tui/internal/storage"
	"github.com/jeranaias/pollen-tui/internal/store"
	"github.com/jeranaias/pollen-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		plainMode   = flag.Bool("plain", false, "line-based interface instead of the TUI")
		askText     = flag.String("ask", "", "send one message, print the reply, and exit")
		modelFlag   = flag.String("model", "", "model id (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pollen %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfgPath, err := config.Path()
	if err != nil {
		fatalf("resolve config path: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	dbPath, err := storage.DefaultPath()
	if err != nil {
		fatalf("resolve database path: %v", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer db.Close()

	chats, err := db.LoadChats()
	if err != nil {
		fatalf("load chats: %v", err)
	}
	st := store.FromChats(chats)

	settings, err := db.LoadSettings()
	if err != nil {
		fatalf("load settings: %v", err)
	}

	// SECURITY: An environment key wins for this process but is never
	// written back to settings.
	apiKey := settings.APIKey
	if envKey := config.EnvAPIKey(); envKey != "" {
		apiKey = envKey
	}

	client := api.NewClient(cfg.Endpoint).WithAPIKey(apiKey)
	orch := session.New(st, db, client)

	if cfg.Debug {
		if logger, closeLog, err := openDebugLog(); err == nil {
			defer closeLog()
			orch.SetLogger(logger)
		}
	}

	modelID := cfg.Model
	if *modelFlag != "" {
		modelID = *modelFlag
	}

	switch {
	case *askText != "":
		runAsk(orch, *askText, modelID)
	case *plainMode || !term.IsTerminal(int(os.Stdout.Fd())):
		if err := cli.Run(orch, st, modelID); err != nil {
			fatalf("%v", err)
		}
	default:
		runTUI(cfg, cfgPath, st, db, orch, client, settings)
	}
}

// runAsk is the one-shot mode: a single turn against a fresh chat,
// reply on stdout.
func runAsk(orch *session.Orchestrator, text, modelID string) {
	reply, ok, err := orch.RunTurn(context.Background(), session.Input{
		Text:  text,
		Model: modelID,
	})
	if err != nil {
		fatalf("%v", err)
	}
	if !ok {
		// Gateway timeout: nothing to show, per the suppression rule.
		os.Exit(1)
	}
	fmt.Println(reply)
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, cfgPath string, st *store.Store, db *storage.Store, orch *session.Orchestrator, client *api.Client, settings storage.Settings) {
	app := ui.New(cfg, st, db, orch, client, settings)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Live config reload: edits to the config file reach the running
	// program as a message, not a restart.
	stopWatch, err := config.Watch(cfgPath, func(next *config.Config) {
		p.Send(ui.ConfigReloadedMsg{Config: next})
	})
	if err == nil {
		defer stopWatch()
	}

	if _, err := p.Run(); err != nil {
		fatalf("%v", err)
	}
}

func openDebugLog() (*log.Logger, func(), error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds), func() { f.Close() }, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
