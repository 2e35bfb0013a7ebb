// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"sort"

	"github.com/danielhkuo/qwirl/models"
)

// Derived is the navigation state computed from a position-sorted aggregate.
// It is recomputed from the aggregate on every read; nothing in it is stored.
type Derived struct {
	// LastRespondedPosition is the highest position the viewer has acted on
	// (answered or skipped); 0 if none.
	LastRespondedPosition int

	// FirstNewPosition is LastRespondedPosition + 1.
	FirstNewPosition int

	// NewCount is the number of items past LastRespondedPosition.
	NewCount int

	// Completed is true when the server says so, or when the acted-on count
	// has reached the item count (fallback for a stale cached status).
	Completed bool

	// SkippedIDs holds the ids of explicitly skipped items.
	SkippedIDs map[string]bool

	AnsweredCount   int
	SkippedCount    int
	UnansweredCount int
}

// Derive computes navigation state from the aggregate. Items must already
// be sorted by position ascending.
func Derive(view *models.SessionView) Derived {
	d := Derived{SkippedIDs: make(map[string]bool), FirstNewPosition: 1}
	if view == nil {
		return d
	}

	for _, item := range view.Items {
		if item.UserResponse == nil {
			d.UnansweredCount++
			continue
		}
		if item.Position > d.LastRespondedPosition {
			d.LastRespondedPosition = item.Position
		}
		if item.UserResponse.SelectedAnswer == nil {
			d.SkippedIDs[item.ID] = true
			d.SkippedCount++
		} else {
			d.AnsweredCount++
		}
	}

	d.FirstNewPosition = d.LastRespondedPosition + 1
	for _, item := range view.Items {
		if item.Position > d.LastRespondedPosition {
			d.NewCount++
		}
	}

	if len(view.Items) > 0 {
		acted := d.AnsweredCount + d.SkippedCount
		d.Completed = view.Status == models.SessionCompleted ||
			view.CompletedResponseCount >= len(view.Items) ||
			acted >= len(view.Items)
	} else {
		d.Completed = view.Status == models.SessionCompleted
	}

	return d
}

// SortItems sorts items by position ascending. Position is the sole
// ordering key; derivation and navigation assume it.
func SortItems(items []models.QwirlItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
}

// ItemAt returns the item with the given position, or nil if out of range.
func ItemAt(items []models.QwirlItem, position int) *models.QwirlItem {
	for i := range items {
		if items[i].Position == position {
			return &items[i]
		}
	}
	return nil
}

// LastPosition returns the highest position present, or 0 for no items.
func LastPosition(items []models.QwirlItem) int {
	last := 0
	for _, item := range items {
		if item.Position > last {
			last = item.Position
		}
	}
	return last
}

// FirstUnanswered returns the position of the first item the viewer has not
// acted on, or 0 if every item has a response record.
func FirstUnanswered(items []models.QwirlItem) int {
	for _, item := range items {
		if item.UserResponse == nil {
			return item.Position
		}
	}
	return 0
}

// PreviousPosition returns the nearest position below current that has an
// item, or 0 if there is none. Items are keyed by position, not by slice
// index, so this is a scan rather than a decrement.
func PreviousPosition(items []models.QwirlItem, current int) int {
	best := 0
	for _, item := range items {
		if item.Position < current && item.Position > best {
			best = item.Position
		}
	}
	return best
}

// NextPosition returns the nearest position above current that has an
// item, or 0 if there is none.
func NextPosition(items []models.QwirlItem, current int) int {
	best := 0
	for _, item := range items {
		if item.Position > current && (best == 0 || item.Position < best) {
			best = item.Position
		}
	}
	return best
}
