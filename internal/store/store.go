// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"strconv"
	"time"

	"github.com/jeranaias/pollen-tui/internal/model"
)

// Store is the ordered chat collection, most recent first, plus the
// active-thread pointer. Invariant: the active id, when set, always
// references a chat in the list; deleting that chat clears the pointer.
type Store struct {
	chats    []*model.Chat
	activeID string
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// FromChats builds a store over a loaded chat list. The list is adopted
// as-is; persistence already keeps it most-recent-first. No chat becomes
// active.
func FromChats(chats []*model.Chat) *Store {
	return &Store{chats: chats}
}

// Chats returns the chat list, most recent first. Callers must not
// reorder it.
func (s *Store) Chats() []*model.Chat {
	return s.chats
}

// Len returns the number of chats.
func (s *Store) Len() int {
	return len(s.chats)
}

// Get returns the chat with the given id, or nil.
func (s *Store) Get(id string) *model.Chat {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Active returns the active chat, or nil when none is selected.
func (s *Store) Active() *model.Chat {
	if s.activeID == "" {
		return nil
	}
	return s.Get(s.activeID)
}

// ActiveID returns the active chat id, or "".
func (s *Store) ActiveID() string {
	return s.activeID
}

// SetActive points the store at an existing chat. Unknown ids are
// rejected so the pointer can never dangle.
func (s *Store) SetActive(id string) bool {
	if s.Get(id) == nil {
		return false
	}
	s.activeID = id
	return true
}

// ClearActive drops the selection; the UI falls back to the welcome view.
func (s *Store) ClearActive() {
	s.activeID = ""
}

// NewChat creates a chat, prepends it (newest first), and makes it
// active. Two chats created inside the same millisecond would share a
// timestamp id, so the id is nudged forward until unique.
func (s *Store) NewChat(now time.Time) *model.Chat {
	chat := model.NewChat(now)
	for s.Get(chat.ID) != nil {
		n, err := strconv.ParseInt(chat.ID, 10, 64)
		if err != nil {
			break
		}
		chat.ID = strconv.FormatInt(n+1, 10)
	}
	s.chats = append([]*model.Chat{chat}, s.chats...)
	s.activeID = chat.ID
	return chat
}

// Delete removes a chat. Deleting an unknown id is a no-op; deleting the
// active chat clears the active pointer. Returns whether a chat was
// removed.
func (s *Store) Delete(id string) bool {
	for i, c := range s.chats {
		if c.ID == id {
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			if s.activeID == id {
				s.activeID = ""
			}
			return true
		}
	}
	return false
}

// DeleteAll removes every chat and clears the selection.
func (s *Store) DeleteAll() {
	s.chats = nil
	s.activeID = ""
}
