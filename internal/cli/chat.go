// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the glowchat CLI.
//
// Handles the "glowchat chat" command (also the default when no command
// is given): a REPL that streams model responses with live markdown and
// code formatting, and persists the conversation after each exchange.
//
// Command: chat
//
// Examples:
//   glowchat                         Start chat with the configured model
//   glowchat chat -m codellama       Use a specific model
//   glowchat --continue <title>      Resume a saved conversation
//
// Interactive behavior:
//   q, quit, exit       Exit (conversation saved first)
//   Ctrl+C              Interrupt the current response; at the prompt,
//                       twice within one second exits
//   Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/glowchat/internal/config"
	"github.com/jeranaias/glowchat/internal/history"
	"github.com/jeranaias/glowchat/internal/model"
	"github.com/jeranaias/glowchat/internal/ollama"
	"github.com/jeranaias/glowchat/internal/render"
)

// assistantTitle labels the streaming response panel.
const assistantTitle = "AI Assistant"

// Streamer is the subset of the Ollama client the chat session uses.
// Tests substitute a scripted implementation.
type Streamer interface {
	CheckRunning(ctx context.Context) error
	GetModel(ctx context.Context, name string) (*ollama.ShowModelResponse, error)
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	ChatStream(ctx context.Context, model string, messages []ollama.Message, opts *ollama.Options, callback ollama.StreamCallback) error
}

// =============================================================================
// INTERRUPT TRACKING
// =============================================================================

// doubleInterruptWindow is how close together two Ctrl+C presses at the
// prompt must land to exit the session.
const doubleInterruptWindow = time.Second

// interruptTracker decides whether a Ctrl+C at the prompt is a hint or
// an exit. Interrupts during streaming never count as strikes; they
// only cancel the in-flight response.
type interruptTracker struct {
	now  func() time.Time
	last time.Time
}

func newInterruptTracker() *interruptTracker {
	return &interruptTracker{now: time.Now}
}

// strike records an interrupt and reports whether it is the second
// within the window.
func (t *interruptTracker) strike() bool {
	n := t.now()
	second := !t.last.IsZero() && n.Sub(t.last) <= doubleInterruptWindow
	t.last = n
	return second
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Conversation *model.Conversation
	Config       *config.Config
	Model        string
	Theme        string
	Quiet        bool
	NoHistory    bool

	// Tracking
	StartTime   time.Time
	Turns       int
	Interrupted int
	TotalTokens int

	// Collaborators
	Client  Streamer
	Store   *history.Store
	Input   LineReader
	Watcher *config.Watcher

	// CancelFunc for the in-flight stream, set only while streaming.
	CancelFunc context.CancelFunc

	out         io.Writer
	errOut      io.Writer
	newRenderer func(s *ChatSession) render.Renderer
	interrupts  *interruptTracker

	modelOverridden bool
	themeOverridden bool
}

// NewChatSession creates a chat session from parsed arguments.
// Collaborators that fail to initialize degrade rather than abort:
// a broken store disables saving, a broken watcher disables hot-reload.
func NewChatSession(args Args) (*ChatSession, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// CLI flags override the config for this session only.
	mdl := cfg.Model
	if args.Model != "" {
		mdl = args.Model
	}
	theme := cfg.CodeTheme
	if args.Theme != "" {
		theme = args.Theme
	}

	client := ollama.NewClientWithConfig(cfg.ClientConfig())

	var store *history.Store
	if dir, err := history.DefaultDir(); err == nil {
		if s, err := history.NewStore(dir); err == nil {
			store = s
		} else {
			fmt.Fprintf(os.Stderr, "%s history unavailable: %v\n",
				warningStyle.Render("[Warning]"), err)
		}
	}

	var watcher *config.Watcher
	if path, err := config.Path(); err == nil {
		if w, err := config.NewWatcher(path); err == nil {
			watcher = w
		}
	}

	conv := model.NewConversation("")
	conv.Model = mdl

	return &ChatSession{
		Conversation:    conv,
		Config:          cfg,
		Model:           mdl,
		Theme:           theme,
		Quiet:           args.Quiet,
		NoHistory:       args.NoHistory,
		StartTime:       time.Now(),
		Client:          client,
		Store:           store,
		Input:           NewChatCLI(),
		Watcher:         watcher,
		out:             os.Stdout,
		errOut:          os.Stderr,
		newRenderer:     defaultRenderer,
		interrupts:      newInterruptTracker(),
		modelOverridden: args.Model != "",
		themeOverridden: args.Theme != "",
	}, nil
}

// Close releases the session's resources.
func (s *ChatSession) Close() {
	if s.Input != nil {
		s.Input.Close()
	}
	if s.Watcher != nil {
		s.Watcher.Close()
	}
}

// defaultRenderer picks the rendering backend once per response:
// formatted live panel on a TTY, raw text deltas when piped.
func defaultRenderer(s *ChatSession) render.Renderer {
	if IsStdoutTTY() {
		width := render.PanelWidth(GetTerminalWidth())
		return render.NewLiveRenderer(s.out, width, s.Theme,
			render.TitleBar(assistantTitle, s.Model))
	}
	return render.NewPlainRenderer(s.out)
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive
// support.
func HandleChatCommand(args Args) error {
	session, err := NewChatSession(args)
	if err != nil {
		return err
	}
	defer session.Close()

	// Resume a stored conversation when asked. A missing title is a
	// normal outcome, not a failure.
	if args.Continue != "" {
		if session.Store == nil {
			return fmt.Errorf("history is unavailable, cannot continue %q", args.Continue)
		}
		conv, found, err := session.Store.Load(args.Continue)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("%s No conversation named %q\n",
				infoStyle.Render("[History]"), args.Continue)
			return nil
		}
		session.Conversation = conv
		if !session.modelOverridden && conv.Model != "" {
			session.Model = conv.Model
		}
	}

	// Check daemon and model upfront so the first prompt cannot fail on
	// basics.
	ctx := context.Background()
	if err := session.probe(ctx); err != nil {
		return err
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// SIGINT during streaming cancels the in-flight response. At the
	// prompt liner owns the terminal and reports Ctrl+C as
	// ErrPromptAborted instead, so only streaming interrupts arrive
	// here.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
			}
		}
	}()

	return session.Run()
}

// Run drives the REPL until the user exits.
func (s *ChatSession) Run() error {
	for {
		s.applyConfigUpdates()

		input, err := s.Input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if s.interrupts.strike() {
					fmt.Fprintln(s.out)
					s.finish()
					return nil
				}
				fmt.Fprintln(s.errOut,
					warningStyle.Render("[Press Ctrl+C again to exit]"))
				continue
			}
			// EOF (Ctrl+D) or a broken terminal: exit gracefully.
			fmt.Fprintln(s.out)
			s.finish()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if isExitCommand(input) {
			s.finish()
			return nil
		}

		if err := s.processTurn(input); err != nil {
			fmt.Fprintf(s.errOut, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// isExitCommand reports whether the input asks to leave the session.
func isExitCommand(input string) bool {
	return strings.EqualFold(input, "q") ||
		strings.EqualFold(input, "quit") ||
		strings.EqualFold(input, "exit")
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// processTurn sends one user message and streams the response.
//
// Outcome handling is deliberately asymmetric: a transport failure
// discards whatever streamed in (no assistant message, no save), while
// a user interrupt keeps the partial text as the assistant's reply and
// saves it.
func (s *ChatSession) processTurn(input string) error {
	s.echoUser(input)
	s.Conversation.AddMessage(model.RoleUser, input)

	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	renderer := s.newRenderer(s)
	acc := render.NewAccumulator()
	start := time.Now()
	var promptTokens, completionTokens int

	err := s.Client.ChatStream(ctx, s.Model, s.requestMessages(), s.Config.Options(),
		func(chunk ollama.StreamChunk) {
			if chunk.Content != "" {
				renderer.Render(acc.Feed(chunk.Content))
			}
			if chunk.Done {
				promptTokens = chunk.PromptTokens
				completionTokens = chunk.CompletionTokens
			}
		})

	elapsed := time.Since(start)
	canceled := err != nil && errors.Is(err, context.Canceled)

	if err != nil && !canceled {
		renderer.Clear()
		return fmt.Errorf("streaming failed: %w", err)
	}

	renderer.Flush(acc.Document())
	fmt.Fprintln(s.out)

	s.Conversation.AddMessage(model.RoleAssistant, acc.Text())
	s.Turns++
	s.TotalTokens += promptTokens + completionTokens
	if canceled {
		s.Interrupted++
	}

	s.save()

	if !s.Quiet {
		s.showTurnStats(canceled, promptTokens+completionTokens, elapsed)
	}
	return nil
}

// requestMessages converts the conversation into the wire format,
// including the full history so the model keeps context.
func (s *ChatSession) requestMessages() []ollama.Message {
	msgs := make([]ollama.Message, 0, len(s.Conversation.Messages))
	for _, m := range s.Conversation.Messages {
		msgs = append(msgs, ollama.Message{Role: string(m.Role), Content: m.Content})
	}
	return msgs
}

// echoUser shows the user's message in a framed panel so the transcript
// reads as a dialogue. Skipped when piped.
func (s *ChatSession) echoUser(input string) {
	if s.Quiet || !IsStdoutTTY() {
		return
	}
	width := render.PanelWidth(GetTerminalWidth())
	fmt.Fprintln(s.out, userTitleStyle.Render("You"))
	fmt.Fprintln(s.out, userPanelStyle.Width(width-2).Render(input))
}

// save persists the conversation after each completed exchange.
func (s *ChatSession) save() {
	if s.NoHistory || s.Store == nil {
		return
	}
	if _, err := s.Store.Save(s.Conversation); err != nil {
		fmt.Fprintf(s.errOut, "%s failed to save conversation: %v\n",
			warningStyle.Render("[Warning]"), err)
	}
}

// finish saves any remaining state and prints the exit summary.
func (s *ChatSession) finish() {
	if s.Conversation.MessageCount() > 0 {
		s.save()
	}
	if !s.Quiet {
		printExitSummary(s)
	}
}

// applyConfigUpdates picks up config edits made while the session was
// idle or streaming. Flags given on the command line keep priority over
// the file for the whole session.
func (s *ChatSession) applyConfigUpdates() {
	if s.Watcher == nil {
		return
	}
	for {
		select {
		case cfg := <-s.Watcher.C:
			s.Config = cfg
			if !s.modelOverridden {
				s.Model = cfg.Model
				s.Conversation.Model = cfg.Model
			}
			if !s.themeOverridden {
				s.Theme = cfg.CodeTheme
			}
			if !s.Quiet {
				fmt.Fprintln(s.errOut, infoStyle.Render("[Config reloaded]"))
			}
		default:
			return
		}
	}
}

// =============================================================================
// CONNECTIVITY PROBE
// =============================================================================

// probe verifies the daemon is reachable and the model exists before
// entering the REPL.
func (s *ChatSession) probe(ctx context.Context) error {
	if err := s.Client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	if _, err := s.Client.GetModel(ctx, s.Model); err != nil {
		if ollama.IsModelNotFound(err) {
			s.printAvailableModels(ctx)
			return fmt.Errorf("model %q is not available. Pull it with: ollama pull %s",
				s.Model, s.Model)
		}
		return fmt.Errorf("failed to query model %q: %w", s.Model, err)
	}
	return nil
}

// printAvailableModels lists installed models to help recover from a
// typo in the model name.
func (s *ChatSession) printAvailableModels(ctx context.Context) {
	models, err := s.Client.ListModels(ctx)
	if err != nil || len(models) == 0 {
		return
	}
	fmt.Fprintln(s.errOut, infoStyle.Render("Available models:"))
	for _, m := range models {
		fmt.Fprintf(s.errOut, "  %s\n", commandStyle.Render(m.Name))
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(s *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("glowchat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(s.Model))

	if s.NoHistory || s.Store == nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("History:"),
			warningStyle.Render("disabled"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("History:"),
			commandStyle.Render(s.Conversation.Title))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Exit with q, quit, or Ctrl+D."))
	fmt.Println(infoStyle.Render("Ctrl+C interrupts a response; twice quickly exits."))
	fmt.Println()
}

// showTurnStats shows a brief status line after each response.
func (s *ChatSession) showTurnStats(canceled bool, tokens int, elapsed time.Duration) {
	status := commandStyle.Render("done")
	if canceled {
		status = warningStyle.Render("interrupted")
	}

	if tokens > 0 {
		fmt.Fprintf(s.errOut, "%s %s | %d tokens | %s\n",
			infoStyle.Render("[Stats]"),
			status,
			tokens,
			elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(s.errOut, "%s %s | %s\n",
			infoStyle.Render("[Stats]"),
			status,
			elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(s.errOut)
}

// printExitSummary prints the session summary on exit.
func printExitSummary(s *ChatSession) {
	if s.Turns == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(s.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d", infoStyle.Render("Exchanges:"), s.Turns)
	if s.Interrupted > 0 {
		fmt.Printf(" (%d interrupted)", s.Interrupted)
	}
	fmt.Println()

	if s.TotalTokens > 0 {
		fmt.Printf("  %s %d\n", infoStyle.Render("Tokens:"), s.TotalTokens)
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())

	if !s.NoHistory && s.Store != nil {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Saved as:"),
			commandStyle.Render(s.Conversation.Title))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
