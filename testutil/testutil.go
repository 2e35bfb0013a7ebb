// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/qwirl/auth"
	"github.com/danielhkuo/qwirl/cliparse"
	"github.com/danielhkuo/qwirl/db"
)

// SetupTestDB creates a fresh sqlite database in a per-test temp dir with
// the full schema. The file is removed with the temp dir when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + t.TempDir() + "/qwirl_test.db?_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3321,
		DatabaseURL:  "file::memory:",
		DatabaseType: "sqlite",
		OwnerKeySalt: "test-owner-salt",
	}
}

// CreateTestQwirl creates a qwirl in the database and returns its ID and
// owner key. status should be "draft" or "open".
func CreateTestQwirl(t *testing.T, conn *sql.DB, cfg cliparse.Config, ownerUsername, status string) (qwirlID, ownerKey string) {
	t.Helper()

	qwirlID = uuid.NewString()
	ownerKey = auth.GenerateOwnerKey(qwirlID, cfg.OwnerKeySalt)

	_, err := conn.Exec(`
		INSERT INTO qwirl (id, owner_username, title, status, created_at)
		VALUES ($1, $2, 'Test Qwirl', $3, $4)
	`, qwirlID, ownerUsername, status, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test qwirl: %v", err)
	}

	return qwirlID, ownerKey
}

// AddTestItem adds an item with options to a qwirl and returns the item ID
func AddTestItem(t *testing.T, conn *sql.DB, qwirlID string, position int, prompt, ownerAnswer string, options []string) string {
	t.Helper()

	itemID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO qwirl_item (id, qwirl_id, position, prompt, owner_answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, itemID, qwirlID, position, prompt, ownerAnswer, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	for i, label := range options {
		_, err := conn.Exec(`
			INSERT INTO item_option (item_id, idx, label)
			VALUES ($1, $2, $3)
		`, itemID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return itemID
}

// StartTestSession creates a response session and returns its ID and token
func StartTestSession(t *testing.T, conn *sql.DB, qwirlID, viewerUsername string) (sessionID, viewerToken string) {
	t.Helper()

	sessionID = uuid.NewString()
	viewerToken, _ = auth.GenerateViewerToken()

	_, err := conn.Exec(`
		INSERT INTO response_session (id, qwirl_id, viewer_username, viewer_token, status, started_at)
		VALUES ($1, $2, $3, $4, 'in_progress', $5)
	`, sessionID, qwirlID, viewerUsername, viewerToken, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, viewerToken
}

// SubmitTestResponse records an answer (or skip, when selected is nil) for
// an item directly in the database
func SubmitTestResponse(t *testing.T, conn *sql.DB, sessionID, itemID string, selected *string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO item_response (session_id, item_id, selected_answer, responded_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, itemID, selected, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
