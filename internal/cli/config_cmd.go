// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for glowchat.
//
// Command: config
//
// Examples:
//   glowchat config                  Show current configuration
//   glowchat config show             Same as above
//   glowchat config set model llama3 Update a setting
package cli

import (
	"fmt"

	"github.com/jeranaias/glowchat/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow()
	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)
	default:
		return fmt.Errorf("unknown config subcommand %q (valid: show, set)", args.Subcommand)
	}
}

// handleConfigShow prints every setting with its current value.
func handleConfigShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path, err := config.Path()
	if err == nil {
		fmt.Printf("%s %s\n\n",
			infoStyle.Render("Config file:"),
			commandStyle.Render(path))
	}

	fmt.Println(summaryHeaderStyle.Render("Configuration"))
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s = %s\n",
			infoStyle.Render(key),
			commandStyle.Render(value))
	}
	return nil
}

// handleConfigSet updates one key and writes the file back.
func handleConfigSet(key, value string) error {
	if key == "" {
		return fmt.Errorf("usage: glowchat config set KEY VALUE")
	}
	if value == "" {
		return fmt.Errorf("no value given for %q", key)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("%s %s = %s\n",
		commandStyle.Render("[OK]"),
		key,
		value)
	return nil
}
