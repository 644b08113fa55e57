// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Saved conversation command handlers for glowchat.
//
// Command: history
//
// Examples:
//   glowchat history list            List saved conversations
//   glowchat history show TITLE      Print a saved conversation
//   glowchat history delete TITLE    Delete a saved conversation
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/glowchat/internal/history"
	"github.com/jeranaias/glowchat/internal/model"
)

// HandleHistory handles the "history" command.
func HandleHistory(args Args) error {
	dir, err := history.DefaultDir()
	if err != nil {
		return err
	}
	store, err := history.NewStore(dir)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return handleHistoryList(store)
	case "show":
		return handleHistoryShow(store, args.ConfigKey)
	case "delete", "rm":
		return handleHistoryDelete(store, args.ConfigKey)
	default:
		return fmt.Errorf("unknown history subcommand %q (valid: list, show, delete)", args.Subcommand)
	}
}

// handleHistoryList prints all saved conversations, newest first.
func handleHistoryList(store *history.Store) error {
	entries, skipped, err := store.List()
	if err != nil {
		return err
	}

	for _, name := range skipped {
		fmt.Fprintf(os.Stderr, "%s skipping unreadable record %s\n",
			warningStyle.Render("[Warning]"), name)
	}

	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("[No saved conversations]"))
		return nil
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Saved Conversations"))
	fmt.Println()
	fmt.Printf("  %-24s %8s  %-14s %s\n", "TITLE", "MESSAGES", "MODEL", "UPDATED")
	for _, e := range entries {
		fmt.Printf("  %-24s %8d  %-14s %s\n",
			commandStyle.Render(fmt.Sprintf("%-24s", e.Title)),
			e.MessageCount,
			e.Model,
			infoStyle.Render(e.UpdatedDisplay()))
	}
	fmt.Println()
	return nil
}

// handleHistoryShow prints a stored conversation as a transcript.
func handleHistoryShow(store *history.Store, title string) error {
	if title == "" {
		return fmt.Errorf("usage: glowchat history show TITLE")
	}

	conv, found, err := store.Load(title)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("%s No conversation named %q\n",
			infoStyle.Render("[History]"), title)
		return nil
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render(conv.Title))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(conv.Model))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Created:"),
		conv.CreatedTime().Format("2006-01-02 15:04:05"))
	fmt.Println()

	for _, msg := range conv.Messages {
		label := msg.Role.DisplayName()
		if msg.Role == model.RoleUser {
			label = userTitleStyle.Render(label)
		} else {
			label = welcomeStyle.Render(label)
		}
		fmt.Printf("%s\n%s\n\n", label, msg.Content)
	}
	return nil
}

// handleHistoryDelete removes a stored conversation. Deleting a title
// that does not exist is reported but never fails.
func handleHistoryDelete(store *history.Store, title string) error {
	if title == "" {
		return fmt.Errorf("usage: glowchat history delete TITLE")
	}

	deleted, err := store.Delete(title)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("%s No conversation named %q\n",
			infoStyle.Render("[History]"), title)
		return nil
	}

	fmt.Printf("%s Deleted %q\n", commandStyle.Render("[OK]"), title)
	return nil
}
