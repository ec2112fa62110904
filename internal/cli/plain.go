// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/config"
	"github.com/jeranaias/pollen-tui/internal/export"
	"github.com/jeranaias/pollen-tui/internal/session"
	"github.com/jeranaias/pollen-tui/internal/store"
	"github.com/jeranaias/pollen-tui/internal/util"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// pendingRetry remembers a blocked turn so /retry can roll it back and
// resend on the fallback model.
type pendingRetry struct {
	chatID    string
	messageID string
	text      string
}

// repl is the plain-mode session state.
type repl struct {
	orch  *session.Orchestrator
	store *store.Store
	line  *liner.State

	modelID         string
	reasoningEffort string
	thinkingEnabled bool
	imageDataURI    string
	retry           *pendingRetry

	render func(string) string
}

// Run starts the plain REPL. It returns when the user exits.
func Run(orch *session.Orchestrator, st *store.Store, modelID string) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyFile := ""
	if dir, err := config.Dir(); err == nil {
		historyFile = filepath.Join(dir, "plain_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveHistory(line, historyFile)

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	render := func(s string) string { return s }
	if err == nil {
		render = func(s string) string {
			if out, err := renderer.Render(s); err == nil {
				return out
			}
			return s
		}
	}

	r := &repl{
		orch:            orch,
		store:           st,
		line:            line,
		modelID:         modelID,
		reasoningEffort: "medium",
		render:          render,
	}

	fmt.Println(infoStyle.Render("pollen plain mode - /help for commands, Ctrl+D to exit"))
	return r.loop()
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

func (r *repl) loop() error {
	for {
		input, err := r.line.Prompt(promptStyle.Render("pollen> "))
		if err != nil {
			// Ctrl+C or Ctrl+D both exit.
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.handleCommand(input); quit {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		r.sendTurn(session.Input{
			Text:            input,
			ImageDataURI:    r.imageDataURI,
			Model:           r.modelID,
			ReasoningEffort: r.reasoningEffort,
			ThinkingEnabled: r.thinkingEnabled,
		})
		r.imageDataURI = ""
	}
}

// sendTurn runs one turn synchronously and prints the result.
func (r *repl) sendTurn(in session.Input) {
	turn, err := r.orch.Compose(in)
	if err != nil {
		if errors.Is(err, session.ErrEmptyInput) {
			return
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}

	out := r.orch.Await(context.Background(), turn)
	if _, err := r.orch.Resolve(out); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}

	switch out.Kind {
	case session.OutcomeReply:
		fmt.Print(r.render(out.Reply))
	case session.OutcomeSuppressed:
		// Gateway timeout: stay silent, history holds only the user turn.
	case session.OutcomeBlocked:
		r.retry = &pendingRetry{chatID: turn.ChatID, messageID: turn.UserMessageID, text: turn.Text}
		fmt.Println(noticeStyle.Render(
			"The request was declined by the content filter.\n" +
				"Type /retry to resend on " + catalog.FallbackModel + "."))
	case session.OutcomeError:
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[Error]"), out.ErrMessage)
	}
}

// handleCommand processes one slash command; returns true to exit.
func (r *repl) handleCommand(input string) bool {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/q":
		return true

	case "/help", "/h":
		r.printHelp()

	case "/new":
		r.store.ClearActive()
		fmt.Println(infoStyle.Render("Started a new chat; it is created on your next message."))

	case "/chats":
		if r.store.Len() == 0 {
			fmt.Println(infoStyle.Render("No chats yet."))
			break
		}
		for _, c := range r.store.Chats() {
			marker := "  "
			if c.ID == r.store.ActiveID() {
				marker = "* "
			}
			fmt.Printf("%s%s  %s (%d messages)\n", marker, c.ID, c.Title, len(c.Messages))
		}

	case "/switch":
		if len(args) != 1 {
			fmt.Println(infoStyle.Render("Usage: /switch <chat-id>"))
			break
		}
		if !r.store.SetActive(args[0]) {
			fmt.Fprintf(os.Stderr, "%s no chat %s\n", errorStyle.Render("[Error]"), args[0])
		}

	case "/model":
		if len(args) == 0 {
			fmt.Printf("Current model: %s\n", r.modelID)
			break
		}
		r.modelID = args[0]
		info := catalog.Lookup(r.modelID)
		notes := []string{}
		if info.Caps&catalog.CapVision != 0 {
			notes = append(notes, "vision")
		}
		if catalog.IsReasoningCapable(r.modelID) {
			notes = append(notes, "reasoning")
		}
		if len(notes) > 0 {
			fmt.Printf("Switched to %s (%s)\n", r.modelID, strings.Join(notes, ", "))
		} else {
			fmt.Printf("Switched to %s\n", r.modelID)
		}

	case "/models":
		for _, info := range catalog.Models() {
			caps := []string{}
			if info.Caps&catalog.CapVision != 0 {
				caps = append(caps, "vision")
			}
			if info.Caps&catalog.CapReasoning != 0 || info.Caps&catalog.CapReasoningEffort != 0 {
				caps = append(caps, "reasoning")
			}
			if info.Caps&catalog.CapReasoningEffort != 0 {
				caps = append(caps, "effort")
			}
			suffix := ""
			if len(caps) > 0 {
				suffix = "  [" + strings.Join(caps, ", ") + "]"
			}
			fmt.Printf("  %-22s %s%s\n", info.ID, info.Label, suffix)
		}

	case "/effort":
		if len(args) != 1 {
			fmt.Printf("Current effort: %s\n", r.reasoningEffort)
			break
		}
		valid := false
		for _, e := range catalog.ReasoningEfforts() {
			if args[0] == e {
				valid = true
			}
		}
		if !valid {
			fmt.Println(infoStyle.Render("Usage: /effort low|medium|high"))
			break
		}
		r.reasoningEffort = args[0]

	case "/thinking":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			fmt.Println(infoStyle.Render("Usage: /thinking on|off"))
			break
		}
		r.thinkingEnabled = args[0] == "on"

	case "/attach":
		if len(args) != 1 {
			fmt.Println(infoStyle.Render("Usage: /attach <image-file>"))
			break
		}
		uri, err := util.EncodeImageDataURI(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			break
		}
		r.imageDataURI = uri
		if !catalog.IsVisionCapable(r.modelID) {
			fmt.Println(noticeStyle.Render("Note: " + r.modelID + " does not accept images; the attachment will be dropped at send time."))
		} else {
			fmt.Println(infoStyle.Render("Image attached to your next message."))
		}

	case "/retry":
		if r.retry == nil {
			fmt.Println(infoStyle.Render("Nothing to retry."))
			break
		}
		pending := r.retry
		r.retry = nil
		text, err := r.orch.RollbackTurn(pending.chatID, pending.messageID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			break
		}
		if text == "" {
			text = pending.text
		}
		r.modelID = catalog.FallbackModel
		fmt.Println(infoStyle.Render("Retrying on " + r.modelID + "..."))
		r.sendTurn(session.RetryInput(text, r.reasoningEffort, r.thinkingEnabled))

	case "/delete":
		if len(args) != 1 {
			fmt.Println(infoStyle.Render("Usage: /delete <chat-id>"))
			break
		}
		if !r.confirm("Delete chat " + args[0] + "? This cannot be undone.") {
			break
		}
		if r.store.Delete(args[0]) {
			r.persist()
		}

	case "/delete-all":
		if !r.confirm("Delete ALL chats? This cannot be undone.") {
			break
		}
		r.store.DeleteAll()
		r.persist()

	case "/export":
		format := export.FormatMarkdown
		if len(args) > 0 && args[0] == "json" {
			format = export.FormatJSON
		}
		chat := r.store.Active()
		if chat == nil {
			fmt.Println(infoStyle.Render("No active chat to export."))
			break
		}
		path, err := export.ToFile(chat, format, ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			break
		}
		fmt.Println(infoStyle.Render("Exported to " + path))

	default:
		fmt.Println(infoStyle.Render("Unknown command; /help lists commands."))
	}
	return false
}

// persist saves the chat list after a store mutation made outside the
// orchestrator (deletes).
func (r *repl) persist() {
	// The orchestrator persister is the same storage the TUI uses; plain
	// mode reaches it through the store-owning orchestrator.
	if err := r.orch.PersistChats(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
	}
}

func (r *repl) confirm(question string) bool {
	answer, err := r.line.Prompt(noticeStyle.Render(question) + " [y/N] ")
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func (r *repl) printHelp() {
	help := `
Commands:
  /new                 start a fresh chat
  /chats               list chats (* marks active)
  /switch <id>         make a chat active
  /delete <id>         delete a chat (asks first)
  /delete-all          delete every chat (asks first)
  /model [id]          show or switch model
  /models              list models and capabilities
  /effort <level>      set reasoning effort (low|medium|high)
  /thinking on|off     toggle extended thinking
  /attach <file>       attach an image to the next message
  /export [json]       export the active chat (markdown by default)
  /retry               resend a blocked message on ` + catalog.FallbackModel + `
  /quit                exit
`
	fmt.Println(infoStyle.Render(strings.TrimSpace(help)))
}
