// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/pollen-tui/internal/api"
	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/model"
	"github.com/jeranaias/pollen-tui/internal/store"
)

// Sentinel errors surfaced to the UI layer.
var (
	// ErrEmptyInput means the send was a no-op: no text and no image.
	ErrEmptyInput = errors.New("nothing to send")

	// ErrTurnInFlight means this chat is already awaiting a reply.
	ErrTurnInFlight = errors.New("a turn is already awaiting a reply for this chat")

	// ErrChatNotFound means the chat disappeared between events.
	ErrChatNotFound = errors.New("chat not found")
)

// Completer is the network dependency: one completion call. Satisfied by
// *api.Client; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req *api.Request) (string, error)
}

// Persister is the durability dependency: replace the whole persisted
// chat list. Satisfied by *storage.Store.
type Persister interface {
	SaveChats(chats []*model.Chat) error
}

// Input is one send action as the UI collected it.
type Input struct {
	Text            string
	ImageDataURI    string // empty when no image is attached
	Model           string
	ReasoningEffort string
	ThinkingEnabled bool
}

// Turn is a composed turn: the user message is in the store and
// persisted, and the request is ready to send.
type Turn struct {
	ChatID        string
	UserMessageID string
	Request       *api.Request

	// Text is the original user text, kept so the blocked-retry flow
	// can refill the input after rollback.
	Text string
}

// OutcomeKind classifies how a turn ended.
type OutcomeKind int

const (
	// OutcomeReply is a successful completion.
	OutcomeReply OutcomeKind = iota
	// OutcomeSuppressed is a gateway-timeout failure: cleared silently,
	// nothing recorded, nothing shown.
	OutcomeSuppressed
	// OutcomeBlocked is a content-policy rejection; the UI offers
	// retry-with-different-model.
	OutcomeBlocked
	// OutcomeError is every other failure, surfaced verbatim.
	OutcomeError
)

// Outcome is the result of awaiting one turn.
type Outcome struct {
	Turn       *Turn
	Kind       OutcomeKind
	Reply      string
	ErrMessage string
}

// Orchestrator drives the per-turn state machine. Compose, Resolve, and
// RollbackTurn must run on the UI event loop (they touch the store);
// Await is the blocking network step and runs in a background command.
type Orchestrator struct {
	store   *store.Store
	persist Persister
	client  Completer
	logger  *log.Logger

	mu       sync.Mutex
	inflight map[string]bool // chat id -> awaiting a reply
}

// New creates an orchestrator over the given store, persistence, and
// completion client.
func New(s *store.Store, persist Persister, client Completer) *Orchestrator {
	return &Orchestrator{
		store:    s,
		persist:  persist,
		client:   client,
		logger:   log.New(io.Discard, "", 0),
		inflight: make(map[string]bool),
	}
}

// SetClient swaps the completion client, e.g. after a live config
// reload changes the endpoint. A call already inside Complete finishes
// on the old client.
func (o *Orchestrator) SetClient(client Completer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.client = client
}

// SetLogger enables debug logging.
func (o *Orchestrator) SetLogger(l *log.Logger) {
	if l != nil {
		o.logger = l
	}
}

// InFlight reports whether the chat is awaiting a reply. The UI disables
// the send affordance from this, but Compose re-checks regardless:
// programmatic retry goes through the same gate.
func (o *Orchestrator) InFlight(chatID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[chatID]
}

// Compose runs the Composing state for one send action.
//
// Empty input (no text, no image) is rejected with ErrEmptyInput and
// nothing changes. Otherwise an active chat is ensured (created and
// titled from the first text when none is active) and the user message
// is built: the image is attached only when one is selected AND the
// currently selected model is vision-capable right now; otherwise it is
// silently dropped and the content stays a plain string. The message is
// appended, the chat list persisted, and the chat marked in-flight.
func (o *Orchestrator) Compose(in Input) (*Turn, error) {
	if in.Text == "" && in.ImageDataURI == "" {
		return nil, ErrEmptyInput
	}

	chat := o.store.Active()
	if chat == nil {
		chat = o.store.NewChat(time.Now())
		chat.Title = model.DeriveTitle(in.Text)
		o.logger.Printf("session: created chat %s", chat.ID)
	}

	if o.InFlight(chat.ID) {
		return nil, ErrTurnInFlight
	}

	var msg model.Message
	if in.ImageDataURI != "" && catalog.IsVisionCapable(in.Model) {
		msg = model.NewUserImageMessage(in.Text, in.ImageDataURI)
	} else {
		msg = model.NewUserMessage(in.Text)
	}
	chat.Append(msg)

	if err := o.persist.SaveChats(o.store.Chats()); err != nil {
		return nil, fmt.Errorf("failed to persist chats: %w", err)
	}

	o.mu.Lock()
	o.inflight[chat.ID] = true
	o.mu.Unlock()

	return &Turn{
		ChatID:        chat.ID,
		UserMessageID: msg.ID,
		Request:       api.BuildRequest(chat.Messages, in.Model, in.ReasoningEffort, in.ThinkingEnabled),
		Text:          in.Text,
	}, nil
}

// Await performs the network call and classifies the result. It never
// touches the store; safe to run off the event loop. Every failure maps
// to exactly one outcome kind; nothing propagates further.
func (o *Orchestrator) Await(ctx context.Context, t *Turn) Outcome {
	o.mu.Lock()
	client := o.client
	o.mu.Unlock()

	reply, err := client.Complete(ctx, t.Request)
	switch {
	case err == nil:
		return Outcome{Turn: t, Kind: OutcomeReply, Reply: reply}
	case api.IsTimeout(err):
		o.logger.Printf("session: gateway timeout suppressed for chat %s", t.ChatID)
		return Outcome{Turn: t, Kind: OutcomeSuppressed}
	case api.IsBlocked(err):
		return Outcome{Turn: t, Kind: OutcomeBlocked, ErrMessage: err.Error()}
	default:
		return Outcome{Turn: t, Kind: OutcomeError, ErrMessage: err.Error()}
	}
}

// Resolve applies an outcome back on the event loop and releases the
// in-flight guard. Only a reply mutates state: the assistant message is
// appended and the chat list persisted. Suppressed, blocked, and error
// outcomes leave history exactly as Compose left it: the failed
// assistant turn is never recorded. Returns the appended message for a
// reply outcome, nil otherwise.
func (o *Orchestrator) Resolve(out Outcome) (*model.Message, error) {
	o.mu.Lock()
	delete(o.inflight, out.Turn.ChatID)
	o.mu.Unlock()

	if out.Kind != OutcomeReply {
		return nil, nil
	}

	chat := o.store.Get(out.Turn.ChatID)
	if chat == nil {
		// Deleted while awaiting; the reply has nowhere to go.
		o.logger.Printf("session: dropping reply for deleted chat %s", out.Turn.ChatID)
		return nil, nil
	}

	msg := model.NewAssistantMessage(out.Reply)
	chat.Append(msg)
	if err := o.persist.SaveChats(o.store.Chats()); err != nil {
		return nil, fmt.Errorf("failed to persist chats: %w", err)
	}
	return &msg, nil
}

// PersistChats saves the current chat list. Used after store mutations
// that happen outside a turn (chat deletes).
func (o *Orchestrator) PersistChats() error {
	if err := o.persist.SaveChats(o.store.Chats()); err != nil {
		return fmt.Errorf("failed to persist chats: %w", err)
	}
	return nil
}

// RollbackTurn undoes a blocked turn before retrying on another model:
// the triggering user message and anything after it leave persisted
// history. The rollback keys off the message id, not stack positions, so
// a history that happens to end in two user messages loses only the
// right one. Returns the original text for refilling the input.
func (o *Orchestrator) RollbackTurn(chatID, userMessageID string) (string, error) {
	if o.InFlight(chatID) {
		return "", ErrTurnInFlight
	}

	chat := o.store.Get(chatID)
	if chat == nil {
		return "", ErrChatNotFound
	}

	var text string
	for _, m := range chat.Messages {
		if m.ID == userMessageID {
			text = m.Content.TextContent()
			break
		}
	}
	if !chat.TruncateFrom(userMessageID) {
		return "", fmt.Errorf("message %s not in chat %s", userMessageID, chatID)
	}

	if err := o.persist.SaveChats(o.store.Chats()); err != nil {
		return "", fmt.Errorf("failed to persist chats: %w", err)
	}
	return text, nil
}

// RetryInput builds the resubmission for the blocked-retry action: same
// text, no image, model switched to the catalog fallback.
func RetryInput(text, effort string, thinkingEnabled bool) Input {
	return Input{
		Text:            text,
		Model:           catalog.FallbackModel,
		ReasoningEffort: effort,
		ThinkingEnabled: thinkingEnabled,
	}
}

// RunTurn is the synchronous path used by plain mode: compose, await,
// resolve in one call. The suppressed outcome returns ("", false, nil)
// with ok=false so callers can stay silent about it.
func (o *Orchestrator) RunTurn(ctx context.Context, in Input) (reply string, ok bool, err error) {
	turn, err := o.Compose(in)
	if err != nil {
		return "", false, err
	}
	out := o.Await(ctx, turn)
	if _, err := o.Resolve(out); err != nil {
		return "", false, err
	}
	switch out.Kind {
	case OutcomeReply:
		return out.Reply, true, nil
	case OutcomeSuppressed:
		return "", false, nil
	default:
		return "", false, errors.New(out.ErrMessage)
	}
}
