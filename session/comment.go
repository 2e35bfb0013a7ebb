// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import "strings"

// CommentDraft is the transient edit buffer for the per-item comment field,
// scoped to whichever item is currently active.
type CommentDraft struct {
	itemID   string
	existing string

	Text    string
	Editing bool
	Visible bool
}

// Sync resets the draft whenever the active item or its server-confirmed
// comment changes. This is what keeps a comment typed against item N from
// leaking into item N+1's editor.
func (d *CommentDraft) Sync(itemID, existing string) {
	if itemID == d.itemID && existing == d.existing {
		return
	}
	d.itemID = itemID
	d.existing = existing
	d.Text = existing
	d.Editing = false
	d.Visible = false
}

// Open shows the comment box and enters edit mode.
func (d *CommentDraft) Open() {
	d.Visible = true
	d.Editing = true
}

// Cancel discards edits and reseeds the buffer from the existing comment.
func (d *CommentDraft) Cancel() {
	d.Text = d.existing
	d.Editing = false
	d.Visible = false
}

// CanSave reports whether the draft is worth a network call. An
// empty-after-trim draft is rejected locally.
func (d *CommentDraft) CanSave() bool {
	return strings.TrimSpace(d.Text) != ""
}
