// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Qwirl API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Qwirl management (owner, requires X-Owner-Key):

	POST /qwirls               - Create qwirl
	GET  /qwirls/{id}/admin    - Get qwirl details
	POST /qwirls/{id}/items    - Add item (draft only)
	POST /qwirls/{id}/publish  - Open for responses

Viewer operations (public, keyed by owner username):

	GET  /qwirls/{username}          - Aggregate with items and stats
	POST /qwirls/{username}/sessions - Start a response session

Session operations (require X-Viewer-Token):

	POST  /sessions/{session_id}/responses                    - Answer or skip
	PATCH /sessions/{session_id}/items/{qwirl_item_id}/comment - Save comment
	POST  /sessions/{session_id}/finish                       - Finish, compute wavelength

# Handler Initialization

The router creates handler instances with dependency injection:

	qwirlHandler := handlers.NewQwirlHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	aggregateHandler := handlers.NewAggregateHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
