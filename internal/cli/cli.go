// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for glowchat.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Chat flags
	Model     string
	Theme     string
	NoHistory bool
	Continue  string
	Quiet     bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `glowchat - streaming terminal chat for local Ollama models

Glowchat talks to a local Ollama daemon and renders responses live:
markdown formatting and syntax-highlighted code blocks appear while the
model is still generating. Conversations are saved and can be resumed.

Usage:
  glowchat                         Start an interactive chat session
  glowchat chat                    Same as above
  glowchat config [show|set]       Configuration
  glowchat history [list|show|delete]  Saved conversations
  glowchat version                 Show version
  glowchat help                    Show this help

Chat Flags:
  -m, --model NAME     Use a specific model (overrides config)
  --theme NAME         Syntax highlight theme for code blocks
  --continue TITLE     Resume a saved conversation
  --no-history         Do not save this conversation
  -q, --quiet          Minimal output (no banner, no stats)

Config Commands:
  glowchat config show             Show current configuration
  glowchat config set KEY VALUE    Update a setting
                                   (e.g. model, code_theme, generation.temperature)

History Commands:
  glowchat history list            List saved conversations
  glowchat history show TITLE      Print a saved conversation
  glowchat history delete TITLE    Delete a saved conversation

Interactive Session:
  q, quit              Exit (conversation is saved first)
  Ctrl+C               Interrupt the current response; twice quickly to exit
  Ctrl+D               Exit

Examples:
  glowchat                         Chat with the configured default model
  glowchat -m codellama            Chat with a specific model
  glowchat --continue 20250117_142033  Resume a conversation
  glowchat chat -q | tee out.txt   Plain output when piped
  glowchat config set model llama3
  glowchat history list

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("glowchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments (everything after the program
// name). Split out from Parse for testability.
func ParseArgs(args []string) (Command, Args) {
	var parsedArgs Args

	// Bare invocation starts a chat session.
	if len(args) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(args[0])
	remaining := args[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "history":
		parseHistoryArgs(&parsedArgs, remaining)
		return CmdHistory, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown leading token: treat the whole line as chat flags, so
		// `glowchat -m llama3` works without the explicit subcommand.
		parsedArgs.Raw = args
		parseChatArgs(&parsedArgs, args)
		return CmdChat, parsedArgs
	}
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--theme":
			if i+1 < len(remaining) {
				i++
				args.Theme = remaining[i]
			}
		case "--continue":
			if i+1 < len(remaining) {
				i++
				args.Continue = remaining[i]
			}
		case "--no-history":
			args.NoHistory = true
		case "-q", "--quiet":
			args.Quiet = true
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				args.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--theme="):
				args.Theme = strings.TrimPrefix(arg, "--theme=")
			case strings.HasPrefix(arg, "--continue="):
				args.Continue = strings.TrimPrefix(arg, "--continue=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// parseHistoryArgs parses history command specific arguments.
func parseHistoryArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			// Titles may contain spaces when quoted poorly; rejoin.
			args.ConfigKey = strings.Join(remaining[1:], " ")
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleChat handles the "chat" command.
// This delegates to the full implementation in chat.go.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		os.Exit(1)
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
