// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessionsync

import (
	"github.com/danielhkuo/qwirl/models"
)

// ApplyAnswer returns a copy of the aggregate with the optimistic effect of
// submitting selected for itemID. A nil selected records an explicit skip.
//
// Answers can be changed, so the arithmetic must know whether this is a
// first response or a correction: a correction moves one vote between
// options and leaves every total alone. Double-counting on change is the
// bug class this function exists to prevent.
func ApplyAnswer(view *models.SessionView, itemID string, selected *string) *models.SessionView {
	out := view.Clone()

	for idx := range out.Items {
		item := &out.Items[idx]
		if item.ID != itemID {
			continue
		}

		hadResponse := item.UserResponse != nil
		var prevAnswer *string
		var prevComment *string
		if hadResponse {
			prevAnswer = item.UserResponse.SelectedAnswer
			prevComment = item.UserResponse.Comment
		}

		// Per-item statistics. Only actual answers count; skips never touch
		// the vote table.
		if item.Stats.Votes == nil {
			item.Stats.Votes = make(map[string]int)
		}
		if hadResponse && prevAnswer != nil {
			if item.Stats.Votes[*prevAnswer] > 0 {
				item.Stats.Votes[*prevAnswer]--
			}
		}
		if selected != nil {
			item.Stats.Votes[*selected]++
		}
		if !hadResponse && selected != nil {
			item.Stats.TotalResponses++
			item.ResponseCount++
		}

		item.UserResponse = &models.UserResponse{
			SelectedAnswer: clone(selected),
			Comment:        clone(prevComment),
		}

		// Session-level counters.
		switch {
		case !hadResponse && selected != nil:
			out.AnsweredCount++
			out.UnansweredCount = floorDec(out.UnansweredCount)
			out.CompletedResponseCount++
		case !hadResponse && selected == nil:
			out.SkippedCount++
			out.UnansweredCount = floorDec(out.UnansweredCount)
			out.CompletedResponseCount++
		case hadResponse && prevAnswer != nil && selected == nil:
			out.AnsweredCount = floorDec(out.AnsweredCount)
			out.SkippedCount++
		case hadResponse && prevAnswer == nil && selected != nil:
			out.SkippedCount = floorDec(out.SkippedCount)
			out.AnsweredCount++
		}

		break
	}

	return out
}

// ApplyComment returns a copy of the aggregate with the comment set on the
// matching item. The selected answer is preserved; if the viewer has not
// acted on the item yet, a skip-shaped record is created to hold the
// comment.
func ApplyComment(view *models.SessionView, itemID, comment string) *models.SessionView {
	out := view.Clone()

	for idx := range out.Items {
		item := &out.Items[idx]
		if item.ID != itemID {
			continue
		}

		c := comment
		if item.UserResponse == nil {
			item.UserResponse = &models.UserResponse{Comment: &c}
		} else {
			item.UserResponse.Comment = &c
		}
		break
	}

	return out
}

func clone(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func floorDec(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
