// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides durable persistence for conversations.
//
// Each conversation is one JSON record on disk, keyed by title and
// overwritten wholesale on every save. The store is passed explicitly
// to whatever needs it; there is no package-level instance.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/glowchat/internal/model"
	"github.com/jeranaias/glowchat/internal/util"
)

// displayTimeFormat is the layout for timestamps in listings.
const displayTimeFormat = "2006-01-02 15:04:05"

// =============================================================================
// STORE
// =============================================================================

// Store persists conversations as one JSON file per title.
//
// Saves are atomic per record (temp file + rename), but there is no
// cross-record coordination: a reader listing during a save may observe
// a transient mix of old and new records. Accepted for a single-user
// local tool.
type Store struct {
	dir string
}

// DefaultDir returns the default history location (~/.glowchat/history).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".glowchat", "history"), nil
}

// NewStore creates a store rooted at dir, creating it if absent.
// Creation is idempotent; an existing directory is reused as-is.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record path for a title.
func (s *Store) Path(title string) string {
	return filepath.Join(s.dir, title+".json")
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save serializes the full conversation to its record, overwriting any
// existing record with the same title. Returns the record path.
func (s *Store) Save(conv *model.Conversation) (string, error) {
	if err := validTitle(conv.Title); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(conv, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode conversation: %w", err)
	}

	path := s.Path(conv.Title)
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return "", fmt.Errorf("failed to write conversation record: %w", err)
	}
	return path, nil
}

// Load returns the conversation stored under title. A missing record is
// a normal outcome, reported through found=false with a nil error;
// errors are reserved for unreadable or corrupt records.
func (s *Store) Load(title string) (conv *model.Conversation, found bool, err error) {
	if err := validTitle(title); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.Path(title))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read conversation record: %w", err)
	}

	var c model.Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false, fmt.Errorf("corrupt conversation record %q: %w", title, err)
	}
	return &c, true, nil
}

// Delete removes the record for title if present. Returns whether a
// deletion occurred; a missing record is not an error.
func (s *Store) Delete(title string) (bool, error) {
	if err := validTitle(title); err != nil {
		return false, err
	}

	err := os.Remove(s.Path(title))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete conversation record: %w", err)
	}
	return true, nil
}

// =============================================================================
// LISTING
// =============================================================================

// Metadata describes one stored conversation for display.
type Metadata struct {
	Title        string
	MessageCount int
	Model        string
	CreatedAt    float64
	UpdatedAt    float64
}

// CreatedDisplay formats the creation time for listings.
func (m Metadata) CreatedDisplay() string {
	return formatEpoch(m.CreatedAt)
}

// UpdatedDisplay formats the last-update time for listings.
func (m Metadata) UpdatedDisplay() string {
	return formatEpoch(m.UpdatedAt)
}

// List returns metadata for every stored conversation, most recently
// updated first; ties are broken by title so the order is deterministic.
// Records that fail to decode are skipped rather than failing the whole
// listing; their filenames are returned in skipped so callers can warn.
func (s *Store) List() (entries []Metadata, skipped []string, err error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}

		var c model.Conversation
		if err := json.Unmarshal(data, &c); err != nil {
			skipped = append(skipped, name)
			continue
		}

		entries = append(entries, Metadata{
			Title:        c.Title,
			MessageCount: len(c.Messages),
			Model:        c.Model,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt != entries[j].UpdatedAt {
			return entries[i].UpdatedAt > entries[j].UpdatedAt
		}
		return entries[i].Title < entries[j].Title
	})

	return entries, skipped, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// validTitle rejects titles that would escape the store directory.
func validTitle(title string) error {
	if title == "" {
		return fmt.Errorf("conversation title is empty")
	}
	if strings.ContainsAny(title, `/\`) || title == "." || title == ".." {
		return fmt.Errorf("conversation title %q contains path elements", title)
	}
	return nil
}

func formatEpoch(s float64) string {
	if s == 0 {
		return "unknown"
	}
	return time.Unix(int64(s), 0).Format(displayTimeFormat)
}
