// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat transcripts and their metadata.
//
// # Key Types
//
//   - Conversation: Named, ordered transcript with model name and timestamps
//   - Message: Single message with role and content
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new conversation and append an exchange:
//
//	conv := model.NewConversation("")
//	conv.AddMessage(model.RoleUser, "Hello!")
//	conv.AddMessage(model.RoleAssistant, "Hi there.")
//
// Timestamps are stored as epoch seconds (float64) because that is the
// on-disk record contract; use CreatedTime/UpdatedTime for display.
package model
