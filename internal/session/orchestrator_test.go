// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/pollen-tui/internal/api"
	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/model"
	"github.com/jeranaias/pollen-tui/internal/store"
)

// fakeCompleter returns scripted results and records requests.
type fakeCompleter struct {
	reply    string
	err      error
	requests []*api.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req *api.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

// memPersister counts saves and remembers the last chat list length.
type memPersister struct {
	saves    int
	lastLen  int
	lastMsgs int // message count of the first chat at last save
	err      error
}

func (p *memPersister) SaveChats(chats []*model.Chat) error {
	if p.err != nil {
		return p.err
	}
	p.saves++
	p.lastLen = len(chats)
	if len(chats) > 0 {
		p.lastMsgs = len(chats[0].Messages)
	} else {
		p.lastMsgs = 0
	}
	return nil
}

func newTestOrchestrator(client Completer) (*Orchestrator, *store.Store, *memPersister) {
	s := store.New()
	p := &memPersister{}
	return New(s, p, client), s, p
}

func textInput(text, modelID string) Input {
	return Input{Text: text, Model: modelID}
}

// =============================================================================
// COMPOSE TESTS
// =============================================================================

func TestCompose_EmptyInputIsNoOp(t *testing.T) {
	o, s, p := newTestOrchestrator(&fakeCompleter{})

	_, err := o.Compose(Input{Model: "openai"})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if s.Len() != 0 || p.saves != 0 {
		t.Error("no-op send changed state")
	}
}

func TestCompose_CreatesAndTitlesChatOnFirstSend(t *testing.T) {
	o, s, p := newTestOrchestrator(&fakeCompleter{})

	turn, err := o.Compose(textInput("hello there, how are you doing today?", "openai"))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if s.Len() != 1 {
		t.Fatalf("chat count = %d, want exactly one new chat", s.Len())
	}
	chat := s.Active()
	if chat == nil || chat.ID != turn.ChatID {
		t.Fatal("new chat should be active")
	}
	if chat.Title != "hello there, how are you doing..." {
		t.Errorf("Title = %q", chat.Title)
	}
	if len(chat.Messages) != 1 || chat.Messages[0].Role != model.RoleUser {
		t.Errorf("messages = %+v, want exactly one user message", chat.Messages)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want persist after compose", p.saves)
	}
}

func TestCompose_ReusesActiveChat(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{reply: "ok"})

	turn, _ := o.Compose(textInput("first", "openai"))
	o.Resolve(o.Await(context.Background(), turn))

	if _, err := o.Compose(textInput("second", "openai")); err != nil {
		t.Fatalf("second Compose failed: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("chat count = %d, second send must not create a chat", s.Len())
	}
	if got := len(s.Active().Messages); got != 3 {
		t.Errorf("message count = %d, want user+assistant+user", got)
	}
}

func TestCompose_ImageDroppedForNonVisionModel(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{})

	turn, err := o.Compose(Input{Text: "describe this", ImageDataURI: "data:image/png;base64,AA", Model: "deepseek"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	msg := s.Active().Messages[0]
	if msg.Content.Parts != nil {
		t.Error("non-vision model must get plain string content")
	}
	if msg.Content.Text != "describe this" {
		t.Errorf("content = %q", msg.Content.Text)
	}
	wire := turn.Request.Messages[0].Content
	if wire.Parts != nil || wire.Text != "describe this" {
		t.Errorf("wire content = %+v, want plain string", wire)
	}
}

func TestCompose_ImageAttachedForVisionModel(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{})

	_, err := o.Compose(Input{Text: "describe this", ImageDataURI: "data:image/png;base64,AA", Model: "gemini-large"})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	msg := s.Active().Messages[0]
	if len(msg.Content.Parts) != 2 {
		t.Fatalf("parts = %+v, want text+image", msg.Content.Parts)
	}
	if msg.Content.Parts[0].Kind != model.PartText || msg.Content.Parts[1].Kind != model.PartImage {
		t.Errorf("part order wrong: %+v", msg.Content.Parts)
	}
}

func TestCompose_ReasoningFieldsFollowCatalog(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeCompleter{})

	turn, _ := o.Compose(Input{Text: "x", Model: "gemini-large", ReasoningEffort: "high", ThinkingEnabled: true})
	if turn.Request.Thinking == nil || turn.Request.Thinking.Type != api.ThinkingEnabled {
		t.Errorf("thinking = %+v", turn.Request.Thinking)
	}
	if turn.Request.ReasoningEffort != "" {
		t.Error("gemini-large must not carry reasoning_effort")
	}
}

func TestCompose_InFlightGuard(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeCompleter{})

	turn, err := o.Compose(textInput("first", "openai"))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if _, err := o.Compose(textInput("second", "openai")); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("err = %v, want ErrTurnInFlight", err)
	}

	// Resolving releases the guard.
	o.Resolve(Outcome{Turn: turn, Kind: OutcomeSuppressed})
	if _, err := o.Compose(textInput("second", "openai")); err != nil {
		t.Errorf("Compose after resolve failed: %v", err)
	}
}

// =============================================================================
// OUTCOME TESTS
// =============================================================================

func TestTurn_SuccessAppendsAssistantAndPersists(t *testing.T) {
	o, s, p := newTestOrchestrator(&fakeCompleter{reply: "hi, human"})

	turn, _ := o.Compose(textInput("hello", "openai"))
	out := o.Await(context.Background(), turn)
	if out.Kind != OutcomeReply {
		t.Fatalf("Kind = %v, want reply", out.Kind)
	}

	msg, err := o.Resolve(out)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if msg == nil || msg.Role != model.RoleAssistant {
		t.Fatalf("resolved message = %+v", msg)
	}

	chat := s.Active()
	if len(chat.Messages) != 2 {
		t.Fatalf("message count = %d, want user+assistant", len(chat.Messages))
	}
	if chat.Messages[1].Content.TextContent() != "hi, human" {
		t.Errorf("assistant content = %q", chat.Messages[1].Content.TextContent())
	}
	if p.saves != 2 {
		t.Errorf("saves = %d, want compose+resolve", p.saves)
	}
	if o.InFlight(chat.ID) {
		t.Error("guard still held after resolve")
	}
}

func TestTurn_GatewayTimeoutIsSilent(t *testing.T) {
	o, s, p := newTestOrchestrator(&fakeCompleter{err: &api.RequestError{Status: 524, Message: "HTTP 524"}})

	turn, _ := o.Compose(textInput("hello", "openai"))
	out := o.Await(context.Background(), turn)
	if out.Kind != OutcomeSuppressed {
		t.Fatalf("Kind = %v, want suppressed", out.Kind)
	}
	if out.ErrMessage != "" {
		t.Errorf("suppressed outcome carries message %q", out.ErrMessage)
	}

	if _, err := o.Resolve(out); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// History ends at the user message; nothing else was recorded.
	if got := len(s.Active().Messages); got != 1 {
		t.Errorf("message count = %d, want only the user message", got)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, suppressed outcome must not re-persist", p.saves)
	}
}

func TestTurn_BlockedClassification(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{err: &api.RequestError{Status: 400, Message: "request blocked by content policy"}})

	turn, _ := o.Compose(textInput("something spicy", "openai"))
	out := o.Await(context.Background(), turn)
	if out.Kind != OutcomeBlocked {
		t.Fatalf("Kind = %v, want blocked", out.Kind)
	}

	o.Resolve(out)
	if got := len(s.Active().Messages); got != 1 {
		t.Errorf("message count = %d, blocked turn must not be recorded", got)
	}
}

func TestTurn_GenericErrorVerbatim(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeCompleter{err: &api.RequestError{Status: 500, Message: "upstream exploded"}})

	turn, _ := o.Compose(textInput("hello", "openai"))
	out := o.Await(context.Background(), turn)
	if out.Kind != OutcomeError {
		t.Fatalf("Kind = %v, want error", out.Kind)
	}
	if out.ErrMessage != "upstream exploded" {
		t.Errorf("ErrMessage = %q, want raw message", out.ErrMessage)
	}
}

func TestResolve_ChatDeletedWhileAwaiting(t *testing.T) {
	o, s, p := newTestOrchestrator(&fakeCompleter{reply: "late"})

	turn, _ := o.Compose(textInput("hello", "openai"))
	s.Delete(turn.ChatID)

	savesBefore := p.saves
	msg, err := o.Resolve(o.Await(context.Background(), turn))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if msg != nil {
		t.Error("reply for a deleted chat should be dropped")
	}
	if p.saves != savesBefore {
		t.Error("dropped reply must not persist anything")
	}
}

// =============================================================================
// RETRY FLOW TESTS
// =============================================================================

func TestRetryFlow_BlockedThenFallbackSucceeds(t *testing.T) {
	client := &fakeCompleter{err: &api.RequestError{Status: 400, Message: "blocked"}}
	o, s, _ := newTestOrchestrator(client)

	turn, _ := o.Compose(textInput("tell me things", "openai"))
	out := o.Await(context.Background(), turn)
	o.Resolve(out)
	if out.Kind != OutcomeBlocked {
		t.Fatalf("Kind = %v", out.Kind)
	}

	// One-click retry: rollback, switch model, resubmit.
	text, err := o.RollbackTurn(turn.ChatID, turn.UserMessageID)
	if err != nil {
		t.Fatalf("RollbackTurn failed: %v", err)
	}
	if text != "tell me things" {
		t.Errorf("rollback text = %q", text)
	}
	if got := len(s.Get(turn.ChatID).Messages); got != 0 {
		t.Errorf("message count after rollback = %d, want 0", got)
	}

	client.err = nil
	client.reply = "a safe answer"
	retry := RetryInput(text, "", false)
	if retry.Model != catalog.FallbackModel {
		t.Fatalf("retry model = %q, want fallback", retry.Model)
	}

	turn2, err := o.Compose(retry)
	if err != nil {
		t.Fatalf("retry Compose failed: %v", err)
	}
	if turn2.Request.Model != "openai-fast" {
		t.Errorf("request model = %q", turn2.Request.Model)
	}
	o.Resolve(o.Await(context.Background(), turn2))

	msgs := s.Get(turn.ChatID).Messages
	if len(msgs) != 2 {
		t.Fatalf("message count = %d, want user+assistant", len(msgs))
	}
	if msgs[1].Content.TextContent() != "a safe answer" {
		t.Errorf("assistant = %q", msgs[1].Content.TextContent())
	}
}

func TestRollbackTurn_KeyedByID(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{reply: "fine"})

	// Build a history: user+assistant, then a blocked user turn.
	turn1, _ := o.Compose(textInput("keep me", "openai"))
	o.Resolve(o.Await(context.Background(), turn1))

	turn2, _ := o.Compose(textInput("remove me", "openai"))
	o.Resolve(Outcome{Turn: turn2, Kind: OutcomeBlocked, ErrMessage: "blocked"})

	if _, err := o.RollbackTurn(turn2.ChatID, turn2.UserMessageID); err != nil {
		t.Fatalf("RollbackTurn failed: %v", err)
	}

	msgs := s.Get(turn2.ChatID).Messages
	if len(msgs) != 2 {
		t.Fatalf("message count = %d, want the first turn intact", len(msgs))
	}
	if msgs[0].Content.TextContent() != "keep me" || msgs[1].Role != model.RoleAssistant {
		t.Errorf("surviving history wrong: %+v", msgs)
	}
}

func TestRollbackTurn_Errors(t *testing.T) {
	o, s, _ := newTestOrchestrator(&fakeCompleter{})

	if _, err := o.RollbackTurn("missing", "mid"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("err = %v, want ErrChatNotFound", err)
	}

	turn, _ := o.Compose(textInput("hi", "openai"))
	// Still in flight: rollback refused.
	if _, err := o.RollbackTurn(turn.ChatID, turn.UserMessageID); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("err = %v, want ErrTurnInFlight", err)
	}

	o.Resolve(Outcome{Turn: turn, Kind: OutcomeError, ErrMessage: "x"})
	if _, err := o.RollbackTurn(turn.ChatID, "unknown-id"); err == nil {
		t.Error("expected error for unknown message id")
	}
	_ = s
}

// =============================================================================
// PLAIN MODE PATH
// =============================================================================

func TestRunTurn(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeCompleter{reply: "sync reply"})

	reply, ok, err := o.RunTurn(context.Background(), textInput("hello", "openai"))
	if err != nil || !ok || reply != "sync reply" {
		t.Errorf("RunTurn = (%q, %v, %v)", reply, ok, err)
	}
}

func TestRunTurn_SuppressedIsQuiet(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeCompleter{err: &api.RequestError{Status: 524, Message: "HTTP 524"}})

	reply, ok, err := o.RunTurn(context.Background(), textInput("hello", "openai"))
	if err != nil {
		t.Fatalf("suppressed turn surfaced error: %v", err)
	}
	if ok || reply != "" {
		t.Errorf("RunTurn = (%q, %v), want quiet no-op", reply, ok)
	}
}

// =============================================================================
// CLIENT SWAP
// =============================================================================

func TestSetClient_SubsequentTurnsUseNewClient(t *testing.T) {
	first := &fakeCompleter{reply: "from first"}
	o, s, _ := newTestOrchestrator(first)

	turn, err := o.Compose(textInput("one", "openai"))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if _, err := o.Resolve(o.Await(context.Background(), turn)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	second := &fakeCompleter{reply: "from second"}
	o.SetClient(second)

	s.ClearActive()
	turn, err = o.Compose(textInput("two", "openai"))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	out := o.Await(context.Background(), turn)
	if out.Reply != "from second" {
		t.Errorf("reply = %q, want the swapped client's", out.Reply)
	}
	if len(first.requests) != 1 || len(second.requests) != 1 {
		t.Errorf("request counts = %d/%d, want 1/1", len(first.requests), len(second.requests))
	}
}
