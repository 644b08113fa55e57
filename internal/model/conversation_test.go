// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONSTRUCTION TESTS
// =============================================================================

func TestNewConversation_DefaultTitle(t *testing.T) {
	before := time.Now()
	conv := NewConversation("")
	require.NotEmpty(t, conv.Title)

	// Default title is timestamp-derived and parseable with the layout
	parsed, err := time.ParseInLocation(TitleTimeFormat, conv.Title, time.Local)
	require.NoError(t, err)
	assert.WithinDuration(t, before, parsed, 2*time.Second)
}

func TestNewConversation_ExplicitTitle(t *testing.T) {
	conv := NewConversation("my_chat")
	assert.Equal(t, "my_chat", conv.Title)
	assert.NotEmpty(t, conv.ID)
	assert.Empty(t, conv.Model)
	assert.Equal(t, 0, conv.MessageCount())
	assert.Equal(t, conv.CreatedAt, conv.UpdatedAt)
}

// =============================================================================
// MESSAGE MANAGEMENT TESTS
// =============================================================================

func TestAddMessage_AppendOnlyGrowth(t *testing.T) {
	conv := NewConversation("growth")

	for i, content := range []string{"hello", "hi there", "how are you?"} {
		beforeCount := conv.MessageCount()
		beforeUpdated := conv.UpdatedAt

		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		conv.AddMessage(role, content)

		assert.Equal(t, beforeCount+1, conv.MessageCount())
		assert.Greater(t, conv.UpdatedAt, beforeUpdated,
			"UpdatedAt must strictly increase on append")
	}

	assert.Equal(t, "hello", conv.Messages[0].Content)
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "how are you?", conv.LastMessage().Content)
}

func TestAddMessage_OddCountTolerated(t *testing.T) {
	// A user message with no assistant reply (failed turn) is valid state.
	conv := NewConversation("odd")
	conv.AddMessage(RoleUser, "no reply came")
	assert.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, RoleUser, conv.LastMessage().Role)
}

func TestLastMessage_Empty(t *testing.T) {
	conv := NewConversation("empty")
	assert.Nil(t, conv.LastMessage())
}

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestTimestampRoundTrip(t *testing.T) {
	conv := NewConversation("stamps")
	created := conv.CreatedTime()
	assert.WithinDuration(t, time.Now(), created, 2*time.Second)

	conv.AddMessage(RoleUser, "tick")
	assert.False(t, conv.UpdatedTime().Before(created))
}
