// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/chatledger/internal/model"
	"github.com/morganforge/chatledger/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return NewManager(store)
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

func TestBootstrap_EmptyStore(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Bootstrap())

	active := m.Active()
	require.NotNil(t, active)
	assert.Equal(t, 1, active.ID)
	assert.Equal(t, "Conversation 1", active.Name)
	assert.Equal(t, model.DefaultPersonality, active.Personality)
	assert.Empty(t, active.Messages)

	id, err := m.Store().CurrentID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	// The record is persisted, not only held in memory.
	persisted, err := m.Store().Get(1)
	require.NoError(t, err)
	assert.Equal(t, active, persisted)
}

func TestBootstrap_ExistingPointer(t *testing.T) {
	m := newTestManager(t)

	conv := model.NewConversation(3)
	conv.Name = "existing"
	conv.Append(model.NewUserMessage("hi"))
	require.NoError(t, m.Store().Put(conv))
	require.NoError(t, m.Store().SetCurrentID(3))

	require.NoError(t, m.Bootstrap())

	assert.Equal(t, 3, m.Active().ID)
	assert.Equal(t, "existing", m.Active().Name)
	assert.Equal(t, 1, m.Active().MessageCount())
}

func TestBootstrap_DanglingPointer(t *testing.T) {
	m := newTestManager(t)

	// Pointer exists but its target record does not.
	require.NoError(t, m.Store().SetCurrentID(5))

	require.NoError(t, m.Bootstrap())

	active := m.Active()
	require.NotNil(t, active)
	assert.Equal(t, 5, active.ID)
	assert.Equal(t, "Conversation 5", active.Name)
	assert.Equal(t, model.DefaultPersonality, active.Personality)
	assert.Empty(t, active.Messages)
}

func TestBootstrap_CorruptTarget(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Store().SetCurrentID(2))
	path := filepath.Join(m.Store().BaseDir(), "conversations", "2.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	require.NoError(t, m.Bootstrap())
	assert.Equal(t, 2, m.Active().ID)
	assert.Empty(t, m.Active().Messages)
}

// =============================================================================
// ID ALLOCATION
// =============================================================================

func TestNew_IDsStrictlyIncrease(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	seen := map[int]bool{1: true}
	for i := 0; i < 5; i++ {
		conv, err := m.New()
		require.NoError(t, err)
		assert.False(t, seen[conv.ID], "id %d reused", conv.ID)
		seen[conv.ID] = true
	}

	assert.Equal(t, 6, m.Active().ID)
}

func TestNew_NoReuseAfterDeletion(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	c2, err := m.New()
	require.NoError(t, err)
	c3, err := m.New()
	require.NoError(t, err)
	assert.Equal(t, 2, c2.ID)
	assert.Equal(t, 3, c3.ID)

	// Delete the middle conversation; the next id is still max + 1.
	require.NoError(t, m.Delete(2))
	c4, err := m.New()
	require.NoError(t, err)
	assert.Equal(t, 4, c4.ID)
}

func TestNew_ResetsPersonality(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())
	require.NoError(t, m.SetPersonality("pirate captain"))

	conv, err := m.New()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPersonality, conv.Personality)
}

// =============================================================================
// SWITCH
// =============================================================================

func TestSwitch(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())
	_, err := m.New()
	require.NoError(t, err)

	require.NoError(t, m.Switch(1))
	assert.Equal(t, 1, m.Active().ID)

	id, err := m.Store().CurrentID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestSwitch_MissingTargetIsNoop(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	require.NoError(t, m.Switch(99))

	assert.Equal(t, 1, m.Active().ID)
	id, err := m.Store().CurrentID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

// =============================================================================
// DELETE
// =============================================================================

func TestDelete_ActiveSwitchesToHighestRemaining(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())
	_, err := m.New()
	require.NoError(t, err)
	_, err = m.New()
	require.NoError(t, err)

	// Conversations {1,2,3}, current = 2.
	require.NoError(t, m.Switch(2))
	require.NoError(t, m.Delete(2))

	assert.Equal(t, 3, m.Active().ID)
	id, err := m.Store().CurrentID()
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestDelete_LastRemainingCreatesFresh(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	require.NoError(t, m.Delete(1))

	// With the store empty again the next id is max(existing, default 0)+1,
	// so the fresh conversation reuses id 1.
	active := m.Active()
	require.NotNil(t, active)
	assert.Equal(t, 1, active.ID)
	assert.True(t, active.IsEmpty())
	assert.Equal(t, model.DefaultPersonality, active.Personality)

	id, err := m.Store().CurrentID()
	require.NoError(t, err)
	assert.Equal(t, active.ID, id)
}

func TestDelete_InactiveKeepsCurrent(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())
	_, err := m.New()
	require.NoError(t, err)

	// Active is 2; delete 1.
	require.NoError(t, m.Delete(1))

	assert.Equal(t, 2, m.Active().ID)
	_, err = m.Store().Get(1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// =============================================================================
// MUTATION
// =============================================================================

func TestRename_WritesThrough(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	require.NoError(t, m.Rename("project notes"))

	persisted, err := m.Store().Get(1)
	require.NoError(t, err)
	assert.Equal(t, "project notes", persisted.Name)
}

func TestSetPersonality_WritesThrough(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	require.NoError(t, m.SetPersonality("terse reviewer"))

	persisted, err := m.Store().Get(1)
	require.NoError(t, err)
	assert.Equal(t, "terse reviewer", persisted.Personality)
}

func TestAppendMessage_WritesThrough(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Bootstrap())

	require.NoError(t, m.AppendMessage(model.NewUserMessage("hello")))
	require.NoError(t, m.AppendMessage(model.NewAssistantMessage("hi", &model.Usage{TotalTokens: 2})))

	persisted, err := m.Store().Get(1)
	require.NoError(t, err)
	require.Equal(t, 2, persisted.MessageCount())
	assert.Equal(t, "hello", persisted.Messages[0].Content)
	assert.True(t, persisted.Messages[1].HasUsage())
}

func TestMutation_NoActiveConversation(t *testing.T) {
	m := newTestManager(t)

	assert.Error(t, m.Rename("x"))
	assert.Error(t, m.SetPersonality("x"))
	assert.Error(t, m.AppendMessage(model.NewUserMessage("x")))
	assert.Error(t, m.Save())
}
