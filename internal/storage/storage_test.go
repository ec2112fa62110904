// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pollen-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pollen.db"))
	require.NoError(t, err, "Open")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadChats_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	chats, err := s.LoadChats()
	require.NoError(t, err)
	require.NotNil(t, chats)
	require.Empty(t, chats)
}

func TestChats_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	newer := model.NewChat(time.Now().Add(time.Second).Truncate(time.Millisecond))
	newer.Title = model.DeriveTitle("second conversation")
	newer.Append(model.NewUserMessage("second conversation"))
	newer.Append(model.NewAssistantMessage("reply two"))

	older := model.NewChat(time.Now().Truncate(time.Millisecond))
	older.Title = model.DeriveTitle("first with a picture")
	older.Append(model.NewUserImageMessage("first with a picture", "data:image/png;base64,AA=="))

	saved := []*model.Chat{newer, older}
	require.NoError(t, s.SaveChats(saved))

	loaded, err := s.LoadChats()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Order, identity, and content all survive the round trip.
	require.Equal(t, newer.ID, loaded[0].ID)
	require.Equal(t, older.ID, loaded[1].ID)
	require.Equal(t, newer.Title, loaded[0].Title)
	require.Len(t, loaded[0].Messages, 2)
	require.Equal(t, model.RoleAssistant, loaded[0].Messages[1].Role)
	require.Equal(t, "reply two", loaded[0].Messages[1].Content.TextContent())

	// The stored vision message keeps its image part.
	require.Len(t, loaded[1].Messages, 1)
	require.True(t, loaded[1].Messages[0].Content.HasImage())
	require.Equal(t, "first with a picture", loaded[1].Messages[0].Content.TextContent())
}

func TestSaveChats_ReplacesWholeRecord(t *testing.T) {
	s := openTestStore(t)

	a := model.NewChat(time.Now())
	b := model.NewChat(time.Now().Add(time.Second))
	require.NoError(t, s.SaveChats([]*model.Chat{b, a}))

	// Deleting a chat persists as a smaller whole record.
	require.NoError(t, s.SaveChats([]*model.Chat{b}))

	loaded, err := s.LoadChats()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, b.ID, loaded[0].ID)
}

func TestSettings_DefaultsBeforeFirstSave(t *testing.T) {
	s := openTestStore(t)

	settings, err := s.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, ThemeSystem, settings.Theme)
	require.Empty(t, settings.APIKey)
}

func TestSettings_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveSettings(Settings{APIKey: "pk-123", Theme: ThemeDark}))

	loaded, err := s.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "pk-123", loaded.APIKey)
	require.Equal(t, ThemeDark, loaded.Theme)
}

func TestSettings_IndependentOfChats(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveSettings(Settings{APIKey: "pk-9", Theme: ThemeLight}))

	chat := model.NewChat(time.Now())
	require.NoError(t, s.SaveChats([]*model.Chat{chat}))
	require.NoError(t, s.SaveChats(nil))

	settings, err := s.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "pk-9", settings.APIKey, "chats writes must not disturb settings")
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pollen.db")

	s, err := Open(path)
	require.NoError(t, err)
	chat := model.NewChat(time.Now())
	chat.Append(model.NewUserMessage("survives reopen"))
	require.NoError(t, s.SaveChats([]*model.Chat{chat}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.LoadChats()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "survives reopen", loaded[0].Messages[0].Content.TextContent())
}
