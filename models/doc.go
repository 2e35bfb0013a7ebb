// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the shared types for the Qwirl API.

# Type Categories

  - Request types: JSON bodies accepted by the API (CreateQwirlRequest, SubmitAnswerRequest, ...)
  - Response types: JSON bodies returned by the API (StartSessionResponse, SessionSummary, ...)
  - Domain types: Qwirl, QwirlItem, UserResponse, SessionView

# The Session Aggregate

SessionView is the aggregate the response-session controller works against:
one viewer's pass through one owner's questionnaire, with per-item responses
and live option statistics folded in. The cache and sessionsync packages
treat it as a value: Clone produces deep copies so optimistic patches never
alias the stored snapshot.

# Response Semantics

A QwirlItem's UserResponse distinguishes three states:

  - nil record: the viewer has not acted on the item
  - record with nil SelectedAnswer: an explicit skip
  - record with non-nil SelectedAnswer: an answer

Session status is one of not_started, in_progress, or completed.
*/
package models
