// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a SQLite search index over saved conversations.
//
// The conversation store keeps JSON files as the source of truth; this
// package maintains a derived FTS5 index so content search stays fast
// as history grows. The index can always be rebuilt from the store.
//
// # Key Types
//
//   - Index: SQLite-backed full-text index
//   - SearchResult: One matching conversation with a highlighted snippet
//
// # Usage
//
//	idx, err := history.Open(path)
//	defer idx.Close()
//
//	err = idx.IndexConversation(ctx, stored)
//	results, err := idx.Search(ctx, "binary tree", 20)
package history
