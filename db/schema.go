// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The SQL is kept portable between postgres and sqlite: timestamps are
// inserted explicitly by the handlers instead of NOW() defaults, and
// placeholders in queries are sequential $N used exactly once each.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Qwirls (one questionnaire per owner username)
CREATE TABLE IF NOT EXISTS qwirl (
    id TEXT PRIMARY KEY,
    owner_username TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'open')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qwirl_owner ON qwirl(owner_username);

-- Items (positioned questions within a qwirl)
CREATE TABLE IF NOT EXISTS qwirl_item (
    id TEXT PRIMARY KEY,
    qwirl_id TEXT NOT NULL REFERENCES qwirl(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    prompt TEXT NOT NULL,
    owner_answer TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (qwirl_id, position)
);

CREATE INDEX IF NOT EXISTS idx_qwirl_item_qwirl ON qwirl_item(qwirl_id);

-- Item options (ordered answer choices)
CREATE TABLE IF NOT EXISTS item_option (
    item_id TEXT NOT NULL REFERENCES qwirl_item(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (item_id, idx)
);

-- Response sessions (one per viewer per qwirl)
CREATE TABLE IF NOT EXISTS response_session (
    id TEXT PRIMARY KEY,
    qwirl_id TEXT NOT NULL REFERENCES qwirl(id) ON DELETE CASCADE,
    viewer_username TEXT NOT NULL,
    viewer_token TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress', 'completed')),
    wavelength REAL,
    ip_hash TEXT,
    user_agent TEXT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    UNIQUE (qwirl_id, viewer_username)
);

CREATE INDEX IF NOT EXISTS idx_response_session_qwirl ON response_session(qwirl_id);
CREATE INDEX IF NOT EXISTS idx_response_session_token ON response_session(viewer_token);

-- Item responses (answer, skip, or comment; null selected_answer = skip)
CREATE TABLE IF NOT EXISTS item_response (
    session_id TEXT NOT NULL REFERENCES response_session(id) ON DELETE CASCADE,
    item_id TEXT NOT NULL REFERENCES qwirl_item(id) ON DELETE CASCADE,
    selected_answer TEXT,
    comment TEXT,
    responded_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_item_response_item ON item_response(item_id);
`
