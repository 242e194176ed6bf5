// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/morganforge/chatledger/internal/model"
	"github.com/morganforge/chatledger/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a conversation record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = errors.New("conversation not found")

// DecodeError indicates a persisted record that exists but cannot be parsed.
// Callers decide whether to recreate the record; List skips such entries.
type DecodeError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "corrupt conversation record " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying parse error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STORE
// =============================================================================

const (
	conversationsDir = "conversations"
	currentFile      = "current.json"
)

// currentPointer is the persisted shape of the current-conversation record.
type currentPointer struct {
	CurrentConversationID int `json:"current_conversation_id"`
}

// Meta is a lightweight projection of a conversation used for listing.
type Meta struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	MessageCount int    `json:"message_count"`
}

// Store persists conversations as one JSON record per id under
// <baseDir>/conversations/<id>.json, plus a single current-pointer record at
// <baseDir>/current.json. All writes are atomic per record; there is no
// cross-record transaction (a crash between a record write and a pointer
// write is recovered by the session manager's fallback).
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir, creating the directory structure if
// it does not exist.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, conversationsDir), 0755); err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// =============================================================================
// CONVERSATION RECORDS
// =============================================================================

// Get loads a conversation by id. It returns ErrNotFound when no record
// exists and a *DecodeError when the record cannot be parsed.
func (s *Store) Get(id int) (*model.Conversation, error) {
	path := s.conversationPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	return &conv, nil
}

// Put writes the full conversation record, overwriting any existing record
// with the same id.
func (s *Store) Put(conv *model.Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.conversationPath(conv.ID), data, 0644)
}

// Delete removes a conversation record. Deleting an absent record is a no-op.
func (s *Store) Delete(id int) error {
	err := os.Remove(s.conversationPath(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns metadata for all persisted conversations, sorted by id
// descending (most recently created first). Records that cannot be parsed,
// and files whose names are not numeric ids, are skipped.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, conversationsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []Meta{}, nil
		}
		return nil, err
	}

	metas := make([]Meta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		conv, err := s.Get(id)
		if err != nil {
			log.Warn().Int("id", id).Err(err).Msg("skipping unreadable conversation record")
			continue
		}

		metas = append(metas, Meta{
			ID:           conv.ID,
			Name:         conv.Name,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ID > metas[j].ID
	})

	return metas, nil
}

// IDs returns the ids of all persisted conversations, in no particular
// order. Unlike List it does not parse record contents, so corrupt records
// still count: their ids stay reserved and are never reallocated.
func (s *Store) IDs() ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, conversationsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// =============================================================================
// CURRENT POINTER
// =============================================================================

// CurrentID returns the id of the current conversation. It returns
// ErrNotFound when no pointer record exists and a *DecodeError when the
// record cannot be parsed.
func (s *Store) CurrentID() (int, error) {
	path := filepath.Join(s.baseDir, currentFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	var ptr currentPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}

	return ptr.CurrentConversationID, nil
}

// SetCurrentID persists the current-conversation pointer.
func (s *Store) SetCurrentID(id int) error {
	data, err := json.MarshalIndent(currentPointer{CurrentConversationID: id}, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(filepath.Join(s.baseDir, currentFile), data, 0644)
}

// =============================================================================
// HELPERS
// =============================================================================

// conversationPath returns the record path for a conversation id.
func (s *Store) conversationPath(id int) string {
	return filepath.Join(s.baseDir, conversationsDir, strconv.Itoa(id)+".json")
}
