// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"bare starts chat", []string{}, CmdChat},
		{"explicit chat", []string{"chat"}, CmdChat},
		{"flags without subcommand", []string{"-m", "llama3"}, CmdChat},
		{"config", []string{"config"}, CmdConfig},
		{"history", []string{"history"}, CmdHistory},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tc.args)
			assert.Equal(t, tc.want, cmd)
		})
	}
}

func TestParseArgs_ChatFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{
		"chat", "-m", "codellama", "--theme", "monokai",
		"--continue", "20250117_142033", "--no-history", "-q",
	})

	assert.Equal(t, CmdChat, cmd)
	assert.Equal(t, "codellama", args.Model)
	assert.Equal(t, "monokai", args.Theme)
	assert.Equal(t, "20250117_142033", args.Continue)
	assert.True(t, args.NoHistory)
	assert.True(t, args.Quiet)
}

func TestParseArgs_ChatFlagsEqualsForm(t *testing.T) {
	_, args := ParseArgs([]string{"chat", "--model=llama3", "--theme=dracula", "--continue=old_chat"})
	assert.Equal(t, "llama3", args.Model)
	assert.Equal(t, "dracula", args.Theme)
	assert.Equal(t, "old_chat", args.Continue)
}

func TestParseArgs_ConfigSet(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "model", "llama3"})
	assert.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "set", args.Subcommand)
	assert.Equal(t, "model", args.ConfigKey)
	assert.Equal(t, "llama3", args.ConfigVal)
}

func TestParseArgs_HistorySubcommands(t *testing.T) {
	cmd, args := ParseArgs([]string{"history", "show", "my_chat"})
	assert.Equal(t, CmdHistory, cmd)
	assert.Equal(t, "show", args.Subcommand)
	assert.Equal(t, "my_chat", args.ConfigKey)

	_, args = ParseArgs([]string{"history", "delete", "my", "spaced", "title"})
	assert.Equal(t, "delete", args.Subcommand)
	assert.Equal(t, "my spaced title", args.ConfigKey)
}
