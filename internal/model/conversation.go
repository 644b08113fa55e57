// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// TitleTimeFormat is the layout used for timestamp-derived default titles.
const TitleTimeFormat = "20060102_150405"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
//
// Timestamps are epoch seconds with sub-second precision. The on-disk
// record keeps them numeric, matching the persisted record contract.
// Messages are append-only during a session. The count is usually even
// (user/assistant pairs) but an odd count is valid: a user message may
// have no reply if a turn failed or the session ended mid-exchange.
type Conversation struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Model     string    `json:"model"`
	CreatedAt float64   `json:"created_at"`
	UpdatedAt float64   `json:"updated_at"`
}

// NewConversation creates a new conversation. If title is empty, a
// timestamp-derived title is generated so every conversation has a
// unique, human-recognizable key.
func NewConversation(title string) *Conversation {
	if title == "" {
		title = time.Now().Format(TitleTimeFormat)
	}
	now := epochSeconds()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		Messages:  make([]Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes UpdatedAt.
func (c *Conversation) AddMessage(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	c.UpdatedAt = epochSeconds()
}

// MessageCount returns the number of messages in the conversation.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// =============================================================================
// TIMESTAMP HELPERS
// =============================================================================

// CreatedTime returns CreatedAt as a time.Time for display.
func (c *Conversation) CreatedTime() time.Time {
	return secondsToTime(c.CreatedAt)
}

// UpdatedTime returns UpdatedAt as a time.Time for display.
func (c *Conversation) UpdatedTime() time.Time {
	return secondsToTime(c.UpdatedAt)
}

// epochSeconds returns the current time as fractional epoch seconds.
// Sub-second precision matters: UpdatedAt must strictly increase across
// appends that land within the same wall-clock second.
func epochSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func secondsToTime(s float64) time.Time {
	sec := int64(s)
	nsec := int64((s - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
