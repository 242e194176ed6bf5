// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/morganforge/chatledger/internal/model"
	"github.com/morganforge/chatledger/internal/storage"
)

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the in-memory snapshot of the active conversation and keeps
// it consistent with the store and the current pointer. All operations are
// invoked sequentially from one session context; the manager is not safe for
// concurrent use.
type Manager struct {
	store  *storage.Store
	active *model.Conversation
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(store *storage.Store) *Manager {
	return &Manager{store: store}
}

// Active returns the in-memory snapshot of the current conversation.
// It is nil until Bootstrap has run.
func (m *Manager) Active() *model.Conversation {
	return m.active
}

// Store exposes the underlying store for read-only collaborators.
func (m *Manager) Store() *storage.Store {
	return m.store
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// Bootstrap resolves the current conversation on startup. With no pointer it
// creates conversation 1 and points at it. With a pointer whose target record
// is missing or unreadable it synthesizes a default conversation under that
// id rather than failing: a dangling pointer is an accepted crash artifact,
// not an error.
func (m *Manager) Bootstrap() error {
	id, err := m.store.CurrentID()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			var decodeErr *storage.DecodeError
			if !errors.As(err, &decodeErr) {
				return fmt.Errorf("reading current pointer: %w", err)
			}
			log.Warn().Err(err).Msg("current pointer unreadable, starting fresh")
		}

		conv := model.NewConversation(1)
		if err := m.store.Put(conv); err != nil {
			return fmt.Errorf("creating first conversation: %w", err)
		}
		if err := m.store.SetCurrentID(conv.ID); err != nil {
			return fmt.Errorf("setting current pointer: %w", err)
		}
		m.active = conv
		log.Info().Int("id", conv.ID).Msg("created first conversation")
		return nil
	}

	conv, err := m.store.Get(id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			var decodeErr *storage.DecodeError
			if !errors.As(err, &decodeErr) {
				return fmt.Errorf("loading conversation %d: %w", id, err)
			}
			log.Warn().Int("id", id).Err(err).Msg("conversation record unreadable, recreating")
		}
		// Pointer target missing: synthesize a default conversation with the
		// same id so the pointer never dangles.
		conv = model.NewConversation(id)
	}

	m.active = conv
	log.Debug().Int("id", conv.ID).Int("messages", conv.MessageCount()).Msg("loaded current conversation")
	return nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// New creates a conversation under the next free id (max existing + 1,
// starting at 1), persists it, points at it and makes it active. The
// personality is always reset to the default, never inherited from the
// previous conversation.
func (m *Manager) New() (*model.Conversation, error) {
	ids, err := m.store.IDs()
	if err != nil {
		return nil, fmt.Errorf("listing conversation ids: %w", err)
	}

	newID := 1
	for _, id := range ids {
		if id >= newID {
			newID = id + 1
		}
	}

	conv := model.NewConversation(newID)
	if err := m.store.Put(conv); err != nil {
		return nil, fmt.Errorf("persisting conversation %d: %w", newID, err)
	}
	if err := m.store.SetCurrentID(newID); err != nil {
		return nil, fmt.Errorf("setting current pointer: %w", err)
	}

	m.active = conv
	log.Info().Int("id", newID).Msg("created new conversation")
	return conv, nil
}

// Switch makes the conversation with the given id current and active.
// Switching to an id that does not exist is a no-op; callers validate id
// membership via List beforehand.
func (m *Manager) Switch(id int) error {
	conv, err := m.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Debug().Int("id", id).Msg("switch target does not exist, ignoring")
			return nil
		}
		return fmt.Errorf("loading conversation %d: %w", id, err)
	}

	if err := m.store.SetCurrentID(id); err != nil {
		return fmt.Errorf("setting current pointer: %w", err)
	}

	m.active = conv
	log.Info().Int("id", id).Msg("switched conversation")
	return nil
}

// Delete removes a conversation. When the active conversation is deleted the
// manager re-points to the most recently created remaining conversation
// (highest id), or creates a fresh one when none remain, so the current
// pointer never dangles.
func (m *Manager) Delete(id int) error {
	if err := m.store.Delete(id); err != nil {
		return fmt.Errorf("deleting conversation %d: %w", id, err)
	}
	log.Info().Int("id", id).Msg("deleted conversation")

	if m.active == nil || m.active.ID != id {
		return nil
	}

	metas, err := m.store.List()
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}
	if len(metas) == 0 {
		_, err := m.New()
		return err
	}
	// List is sorted by id descending.
	return m.Switch(metas[0].ID)
}

// List returns metadata for all persisted conversations, newest first.
func (m *Manager) List() ([]storage.Meta, error) {
	return m.store.List()
}

// =============================================================================
// MUTATION
// =============================================================================

// Rename changes the display name of the active conversation and persists
// immediately.
func (m *Manager) Rename(name string) error {
	if m.active == nil {
		return errors.New("no active conversation")
	}
	m.active.Name = name
	return m.Save()
}

// SetPersonality changes the system-prompt text of the active conversation
// and persists immediately.
func (m *Manager) SetPersonality(text string) error {
	if m.active == nil {
		return errors.New("no active conversation")
	}
	m.active.Personality = text
	return m.Save()
}

// AppendMessage appends a message to the active conversation and persists
// immediately.
func (m *Manager) AppendMessage(msg model.Message) error {
	if m.active == nil {
		return errors.New("no active conversation")
	}
	m.active.Append(msg)
	return m.Save()
}

// Save persists the active snapshot exactly as held in memory. This is the
// single point where conversation state reaches the store after a mutation.
func (m *Manager) Save() error {
	if m.active == nil {
		return errors.New("no active conversation")
	}
	if err := m.store.Put(m.active); err != nil {
		return fmt.Errorf("persisting conversation %d: %w", m.active.ID, err)
	}
	log.Debug().Int("id", m.active.ID).Int("messages", m.active.MessageCount()).Msg("saved conversation")
	return nil
}
