// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch implements keyboard-event routing for the chat composer.
package dispatch

// =============================================================================
// MODIFIER CLASSIFIER
// =============================================================================

// Classifier resolves which raw modifier counts as the platform primary
// modifier. It is constructed once at startup from the platform probe and
// treated as immutable for the process lifetime.
type Classifier struct {
	mac bool
}

// NewClassifier returns a classifier for the given platform. When platform
// information is unavailable, callers pass false and get the non-Mac
// (Control) behavior, which is the safe default.
func NewClassifier(isMac bool) Classifier {
	return Classifier{mac: isMac}
}

// Primary reports whether the primary modifier was held, given the raw
// meta (Cmd) and ctrl flags of a key event. On macOS the primary modifier
// is Command; everywhere else it is Control.
func (c Classifier) Primary(meta, ctrl bool) bool {
	if c.mac {
		return meta
	}
	return ctrl
}

// IsMac reports whether the classifier was resolved for macOS. Exposed
// for help text that renders the platform-appropriate modifier glyph.
func (c Classifier) IsMac() bool {
	return c.mac
}
