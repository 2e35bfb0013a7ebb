// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Qwirl API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - QwirlHandler: Qwirl lifecycle (create, add items, publish, admin view)
  - SessionHandler: Session start, answers, comments, finish
  - AggregateHandler: The viewer-facing questionnaire aggregate

Handlers are created via constructor functions that accept *sql.DB and Config:

	qwirlHandler := handlers.NewQwirlHandler(db, cfg)

# Qwirl Lifecycle

Qwirls progress through two states: draft → open

	POST /qwirls               → CreateQwirl (returns owner_key)
	POST /qwirls/{id}/items    → AddItem (draft only)
	POST /qwirls/{id}/publish  → PublishQwirl
	GET  /qwirls/{id}/admin    → GetQwirlAdmin

Owner operations require the X-Owner-Key header.

# Response Flow

Viewers interact via the owner's username:

	GET  /qwirls/{username}          → GetQwirl (aggregate + stats)
	POST /qwirls/{username}/sessions → StartSession (returns viewer_token)
	POST /sessions/{id}/responses    → SubmitAnswer (answer or skip, upsert)
	PATCH /sessions/{id}/items/{item}/comment → SaveComment
	POST /sessions/{id}/finish       → FinishSession (computes wavelength)

Session operations require the X-Viewer-Token header. A null
selected_answer is an explicit skip; re-submitting replaces the previous
answer and preserves the comment.

# Wavelength

The wavelength score is computed in wavelength.go on finish:

	score := handlers.ComputeWavelength(matched, answered)

It is the fraction of non-skip answers matching the owner's own answer.
Skipped items count toward neither side.
*/
package handlers
