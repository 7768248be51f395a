// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a SQLite search index over saved conversations.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/openchat-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("history index is closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// HISTORY INDEX
// =============================================================================

// Index is a full-text search index over saved conversations. The JSON
// files in the conversation store stay the source of truth; the index
// is derived data and can be rebuilt from them at any time.
type Index struct {
	db *sql.DB
	mu sync.RWMutex
}

// SearchResult is one hit from a content search.
type SearchResult struct {
	ConversationID string
	Title          string
	Model          string
	UpdatedAt      time.Time
	// Snippet of the matching message with the match highlighted
	Snippet string
	Role    string
}

// DefaultPath returns the default database location, ~/.openchat/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".openchat", "history.db"), nil
}

// Open opens (creating if necessary) the history index at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init metadata: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the database handle.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return nil
	}
	err := idx.db.Close()
	idx.db = nil
	return err
}

// =============================================================================
// INDEXING
// =============================================================================

// IndexConversation inserts or replaces a conversation and its messages.
func (idx *Index) IndexConversation(ctx context.Context, conv *storage.StoredConversation) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return ErrClosed
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// Replace semantics: drop the old rows first. The cascade removes
	// messages, and the FTS trigger removes their search entries.
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, conv.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, model, created_at, updated_at, message_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.Model,
		conv.CreatedAt.Unix(), conv.UpdatedAt.Unix(), len(conv.Messages))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, msg := range conv.Messages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, role, content, timestamp)
			VALUES (?, ?, ?, ?)`,
			conv.ID, msg.Role, msg.Content, msg.Timestamp.Unix())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	return tx.Commit()
}

// RemoveConversation deletes a conversation from the index.
func (idx *Index) RemoveConversation(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return ErrClosed
	}

	_, err := idx.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Rebuild clears the index and re-indexes every conversation in the store.
func (idx *Index) Rebuild(ctx context.Context, store *storage.ConversationStore) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	idx.mu.Lock()
	if idx.db == nil {
		idx.mu.Unlock()
		return ErrClosed
	}
	_, err = idx.db.ExecContext(ctx, `DELETE FROM conversations`)
	idx.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, meta := range metas {
		conv, err := store.Load(meta.ID)
		if err != nil {
			continue // Skip corrupted files
		}
		if err := idx.IndexConversation(ctx, conv); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Search runs a full-text query over message content. Results are
// deduplicated per conversation, most recently updated first.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	ftsQuery := sanitizeQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.model, c.updated_at, m.role,
		       snippet(messages_fts, 0, '[', ']', '…', 12)
		FROM messages_fts
		JOIN messages m ON m.id = messages_fts.rowid
		JOIN conversations c ON c.id = m.conversation_id
		WHERE messages_fts MATCH ?
		GROUP BY c.id
		ORDER BY c.updated_at DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var updatedAt int64
		if err := rows.Scan(&r.ConversationID, &r.Title, &r.Model, &updatedAt, &r.Role, &r.Snippet); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		r.UpdatedAt = time.Unix(updatedAt, 0)
		results = append(results, r)
	}

	return results, rows.Err()
}

// Count returns the number of indexed conversations.
func (idx *Index) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.db == nil {
		return 0, ErrClosed
	}

	var n int
	err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// sanitizeQuery converts user input into a safe FTS5 match expression.
// Each word becomes a quoted prefix term so punctuation in the input
// cannot break the query syntax.
func sanitizeQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}
