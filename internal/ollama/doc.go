// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// This package implements a client for the Ollama local LLM server,
// supporting streaming chat completions, health probes, and model lookup.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - Options: Inference parameters (context size, sampling, GPU layers)
//   - StreamReader: Line-delimited JSON reader for streaming responses
//
// # Usage
//
// Create a client and stream a chat response:
//
//	client := ollama.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    return err
//	}
//	err := client.ChatStream(ctx, "mistral", messages, opts, func(chunk ollama.StreamChunk) {
//	    fmt.Print(chunk.Content)
//	})
//
// Cancelling the context mid-stream returns context.Canceled from
// ChatStream; callers use that to tell a user interrupt apart from a
// transport failure.
package ollama
