// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/glowchat/internal/config"
	"github.com/jeranaias/glowchat/internal/history"
	"github.com/jeranaias/glowchat/internal/model"
	"github.com/jeranaias/glowchat/internal/ollama"
	"github.com/jeranaias/glowchat/internal/render"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeStreamer scripts the model side of a session.
type fakeStreamer struct {
	chunks []ollama.StreamChunk
	err    error

	calls    int
	requests [][]ollama.Message
}

func (f *fakeStreamer) CheckRunning(ctx context.Context) error { return nil }

func (f *fakeStreamer) GetModel(ctx context.Context, name string) (*ollama.ShowModelResponse, error) {
	return &ollama.ShowModelResponse{}, nil
}

func (f *fakeStreamer) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return nil, nil
}

func (f *fakeStreamer) ChatStream(ctx context.Context, mdl string, messages []ollama.Message, opts *ollama.Options, callback ollama.StreamCallback) error {
	f.calls++
	f.requests = append(f.requests, messages)
	for _, c := range f.chunks {
		callback(c)
	}
	return f.err
}

// scriptReader plays back inputs, then reports EOF.
type scriptReader struct {
	inputs []string
	errs   []error
}

func (r *scriptReader) ReadInput(prompt string) (string, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(r.inputs) == 0 {
		return "", io.EOF
	}
	input := r.inputs[0]
	r.inputs = r.inputs[1:]
	return input, nil
}

func (r *scriptReader) Close() {}

func newTestSession(t *testing.T, streamer Streamer, inputs ...string) *ChatSession {
	t.Helper()

	store, err := history.NewStore(t.TempDir())
	require.NoError(t, err)

	conv := model.NewConversation("test_chat")
	conv.Model = "mistral"

	var out bytes.Buffer
	return &ChatSession{
		Conversation: conv,
		Config:       config.Default(),
		Model:        "mistral",
		Theme:        "dracula",
		Quiet:        true,
		StartTime:    time.Now(),
		Client:       streamer,
		Store:        store,
		Input:        &scriptReader{inputs: inputs},
		out:          &out,
		errOut:       io.Discard,
		newRenderer: func(s *ChatSession) render.Renderer {
			return render.NewPlainRenderer(io.Discard)
		},
		interrupts: newInterruptTracker(),
	}
}

func chunksFor(fragments ...string) []ollama.StreamChunk {
	chunks := make([]ollama.StreamChunk, 0, len(fragments)+1)
	for _, f := range fragments {
		chunks = append(chunks, ollama.StreamChunk{Content: f})
	}
	chunks = append(chunks, ollama.StreamChunk{
		Done:             true,
		PromptTokens:     10,
		CompletionTokens: 20,
	})
	return chunks
}

// =============================================================================
// SESSION LOOP TESTS
// =============================================================================

func TestRun_ExitSentinelSkipsPipeline(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("never")}
	s := newTestSession(t, fake, "q")

	require.NoError(t, s.Run())

	// The sentinel exits before anything reaches the model or the store.
	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, 0, s.Conversation.MessageCount())
	entries, _, err := s.Store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_ExitSentinelsCaseInsensitive(t *testing.T) {
	for _, sentinel := range []string{"q", "Q", "quit", "QUIT", "exit"} {
		fake := &fakeStreamer{}
		s := newTestSession(t, fake, sentinel)
		require.NoError(t, s.Run())
		assert.Equal(t, 0, fake.calls, sentinel)
	}
}

func TestRun_CompletedExchangeSaved(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("Hello ", "there!")}
	s := newTestSession(t, fake, "hi", "quit")

	require.NoError(t, s.Run())

	require.Equal(t, 1, fake.calls)
	require.Equal(t, 2, s.Conversation.MessageCount())
	assert.Equal(t, model.RoleUser, s.Conversation.Messages[0].Role)
	assert.Equal(t, "hi", s.Conversation.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, s.Conversation.Messages[1].Role)
	assert.Equal(t, "Hello there!", s.Conversation.Messages[1].Content)
	assert.Equal(t, 30, s.TotalTokens)
	assert.Equal(t, 1, s.Turns)

	// The user message was already in the request history.
	require.Len(t, fake.requests, 1)
	require.Len(t, fake.requests[0], 1)
	assert.Equal(t, "hi", fake.requests[0][0].Content)

	saved, found, err := s.Store.Load("test_chat")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, saved.Messages, 2)
}

func TestRun_SecondTurnCarriesHistory(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("reply")}
	s := newTestSession(t, fake, "first", "second", "q")

	require.NoError(t, s.Run())

	require.Equal(t, 2, fake.calls)
	// Second request: user, assistant, user.
	require.Len(t, fake.requests[1], 3)
	assert.Equal(t, "first", fake.requests[1][0].Content)
	assert.Equal(t, "reply", fake.requests[1][1].Content)
	assert.Equal(t, "second", fake.requests[1][2].Content)
}

func TestProcessTurn_FailureDiscardsResponse(t *testing.T) {
	fake := &fakeStreamer{
		chunks: []ollama.StreamChunk{{Content: "doomed partial"}},
		err:    errors.New("connection reset"),
	}
	s := newTestSession(t, fake)

	err := s.processTurn("hello")
	require.Error(t, err)

	// The user message stays in memory, the partial response does not,
	// and nothing was written to disk.
	require.Equal(t, 1, s.Conversation.MessageCount())
	assert.Equal(t, model.RoleUser, s.Conversation.Messages[0].Role)
	assert.Equal(t, 0, s.Turns)

	_, found, err := s.Store.Load("test_chat")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProcessTurn_CancelPreservesPartial(t *testing.T) {
	fake := &fakeStreamer{
		chunks: []ollama.StreamChunk{{Content: "partial "}, {Content: "text"}},
		err:    context.Canceled,
	}
	s := newTestSession(t, fake)

	require.NoError(t, s.processTurn("hello"))

	// An interrupt keeps what streamed in as the assistant's reply.
	require.Equal(t, 2, s.Conversation.MessageCount())
	assert.Equal(t, "partial text", s.Conversation.Messages[1].Content)
	assert.Equal(t, 1, s.Turns)
	assert.Equal(t, 1, s.Interrupted)

	saved, found, err := s.Store.Load("test_chat")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "partial text", saved.Messages[1].Content)
}

func TestRun_NoHistorySkipsSave(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("reply")}
	s := newTestSession(t, fake, "hello", "q")
	s.NoHistory = true

	require.NoError(t, s.Run())

	assert.Equal(t, 2, s.Conversation.MessageCount())
	entries, _, err := s.Store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_EmptyInputIgnored(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("reply")}
	s := newTestSession(t, fake, "", "   ", "q")

	require.NoError(t, s.Run())
	assert.Equal(t, 0, fake.calls)
}

// =============================================================================
// INTERRUPT TESTS
// =============================================================================

func TestInterruptTracker(t *testing.T) {
	current := time.Unix(1000, 0)
	tr := &interruptTracker{now: func() time.Time { return current }}

	// First press is only a hint.
	assert.False(t, tr.strike())

	// Second within the window exits.
	current = current.Add(500 * time.Millisecond)
	assert.True(t, tr.strike())

	// A slow pair starts over.
	current = current.Add(2 * time.Second)
	assert.False(t, tr.strike())
	current = current.Add(doubleInterruptWindow + time.Millisecond)
	assert.False(t, tr.strike())
}

func TestRun_DoubleInterruptExits(t *testing.T) {
	fake := &fakeStreamer{}
	s := newTestSession(t, fake)
	s.Input = &scriptReader{errs: []error{liner.ErrPromptAborted, liner.ErrPromptAborted}}

	// Both aborts land at the same instant, so the second one exits.
	require.NoError(t, s.Run())
	assert.Equal(t, 0, fake.calls)
}

func TestRun_SingleInterruptContinues(t *testing.T) {
	fake := &fakeStreamer{chunks: chunksFor("reply")}
	s := newTestSession(t, fake)
	s.Input = &scriptReader{
		errs:   []error{liner.ErrPromptAborted, nil},
		inputs: []string{"hello", "q"},
	}
	// Keep the presses far apart so the first one stays a hint.
	base := time.Unix(1000, 0)
	calls := 0
	s.interrupts.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 10 * time.Second)
	}

	require.NoError(t, s.Run())
	assert.Equal(t, 1, fake.calls)
}
