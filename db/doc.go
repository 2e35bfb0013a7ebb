// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - qwirl: Questionnaire metadata and lifecycle state
  - qwirl_item: Positioned questions within a qwirl
  - item_option: Ordered answer choices per item
  - response_session: One session per viewer per qwirl
  - item_response: Answers, skips, and comments (null answer = skip)

# Relationships

	qwirl 1──* qwirl_item
	qwirl_item 1──* item_option
	qwirl 1──* response_session
	response_session 1──* item_response

All foreign keys use ON DELETE CASCADE.

# Portability

The same schema runs on postgres (lib/pq) and sqlite (modernc.org/sqlite):
no NOW() defaults (timestamps are inserted explicitly), and query
placeholders are sequential $N each used exactly once, which both drivers
bind positionally.

# Indexes

Performance indexes on:

  - qwirl.owner_username (unique)
  - qwirl_item.(qwirl_id, position) (unique)
  - response_session.(qwirl_id, viewer_username) (unique)
  - response_session.viewer_token
  - item_response.item_id
*/
package db
