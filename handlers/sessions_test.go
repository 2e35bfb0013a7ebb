// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/qwirl/models"
	"github.com/danielhkuo/qwirl/testutil"
)

func strPtr(s string) *string { return &s }

// openQwirl creates a published qwirl with two items and returns everything
// a session test needs.
func openQwirl(t *testing.T, db *sql.DB) (qwirlID, item1, item2 string) {
	t.Helper()
	cfg := testutil.GetTestConfig()
	qwirlID, _ = testutil.CreateTestQwirl(t, db, cfg, "alice", models.StatusOpen)
	item1 = testutil.AddTestItem(t, db, qwirlID, 1, "Coffee or tea?", "Coffee", []string{"Coffee", "Tea"})
	item2 = testutil.AddTestItem(t, db, qwirlID, 2, "Cats or dogs?", "Dogs", []string{"Cats", "Dogs"})
	return qwirlID, item1, item2
}

func TestStartSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	openQwirl(t, db)

	t.Run("valid start", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/qwirls/alice/sessions",
			models.StartSessionRequest{ViewerUsername: "viewer1"}, nil)
		req.SetPathValue("username", "alice")
		w := httptest.NewRecorder()

		handler.StartSession(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.StartSessionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.SessionID == "" {
			t.Error("expected non-empty session_id")
		}
		if resp.ViewerToken == "" {
			t.Error("expected non-empty viewer_token")
		}
	})

	t.Run("duplicate viewer", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/qwirls/alice/sessions",
			models.StartSessionRequest{ViewerUsername: "viewer1"}, nil)
		req.SetPathValue("username", "alice")
		w := httptest.NewRecorder()

		handler.StartSession(w, req)

		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	t.Run("unknown owner", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/qwirls/nobody/sessions",
			models.StartSessionRequest{ViewerUsername: "viewer2"}, nil)
		req.SetPathValue("username", "nobody")
		w := httptest.NewRecorder()

		handler.StartSession(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("draft qwirl rejects sessions", func(t *testing.T) {
		testutil.CreateTestQwirl(t, db, cfg, "draftowner", models.StatusDraft)

		req := testutil.MakeRequest("POST", "/qwirls/draftowner/sessions",
			models.StartSessionRequest{ViewerUsername: "viewer3"}, nil)
		req.SetPathValue("username", "draftowner")
		w := httptest.NewRecorder()

		handler.StartSession(w, req)

		testutil.AssertStatus(t, w, http.StatusConflict)
	})
}

func TestSubmitAnswer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	qwirlID, item1, _ := openQwirl(t, db)
	sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer1")

	submit := func(t *testing.T, itemID string, selected *string, headerToken string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/responses",
			models.SubmitAnswerRequest{QwirlItemID: itemID, SelectedAnswer: selected},
			map[string]string{"X-Viewer-Token": headerToken})
		req.SetPathValue("session_id", sessionID)
		w := httptest.NewRecorder()
		handler.SubmitAnswer(w, req)
		return w
	}

	t.Run("first answer", func(t *testing.T) {
		w := submit(t, item1, strPtr("Coffee"), token)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var rec models.UserResponseRecord
		testutil.AssertJSON(t, w, &rec)
		if rec.SelectedAnswer == nil || *rec.SelectedAnswer != "Coffee" {
			t.Errorf("expected Coffee, got %v", rec.SelectedAnswer)
		}
	})

	t.Run("answer change replaces previous", func(t *testing.T) {
		w := submit(t, item1, strPtr("Tea"), token)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var answer string
		err := db.QueryRow(`
			SELECT selected_answer FROM item_response WHERE session_id = $1 AND item_id = $2
		`, sessionID, item1).Scan(&answer)
		if err != nil {
			t.Fatalf("failed to query response: %v", err)
		}
		if answer != "Tea" {
			t.Errorf("expected Tea, got %s", answer)
		}

		// Still a single row per session+item
		var count int
		if err := db.QueryRow(`
			SELECT COUNT(*) FROM item_response WHERE session_id = $1
		`, sessionID).Scan(&count); err != nil {
			t.Fatalf("failed to count responses: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 response row, got %d", count)
		}
	})

	t.Run("skip records null answer", func(t *testing.T) {
		w := submit(t, item1, nil, token)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var answer *string
		err := db.QueryRow(`
			SELECT selected_answer FROM item_response WHERE session_id = $1 AND item_id = $2
		`, sessionID, item1).Scan(&answer)
		if err != nil {
			t.Fatalf("failed to query response: %v", err)
		}
		if answer != nil {
			t.Errorf("expected null answer, got %v", *answer)
		}
	})

	t.Run("answer not an option", func(t *testing.T) {
		w := submit(t, item1, strPtr("Juice"), token)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown item", func(t *testing.T) {
		w := submit(t, "no-such-item", strPtr("Coffee"), token)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("wrong token", func(t *testing.T) {
		w := submit(t, item1, strPtr("Coffee"), "bad-token")
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("missing token", func(t *testing.T) {
		w := submit(t, item1, strPtr("Coffee"), "")
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestSaveComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	qwirlID, item1, item2 := openQwirl(t, db)
	sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer1")
	testutil.SubmitTestResponse(t, db, sessionID, item1, strPtr("Coffee"))

	save := func(t *testing.T, itemID, comment string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.MakeRequest("PATCH", "/sessions/"+sessionID+"/items/"+itemID+"/comment",
			models.SaveCommentRequest{Comment: comment},
			map[string]string{"X-Viewer-Token": token})
		req.SetPathValue("session_id", sessionID)
		req.SetPathValue("qwirl_item_id", itemID)
		w := httptest.NewRecorder()
		handler.SaveComment(w, req)
		return w
	}

	t.Run("comment on answered item preserves answer", func(t *testing.T) {
		w := save(t, item1, "big coffee person")
		testutil.AssertStatus(t, w, http.StatusOK)

		var answer, comment *string
		err := db.QueryRow(`
			SELECT selected_answer, comment FROM item_response WHERE session_id = $1 AND item_id = $2
		`, sessionID, item1).Scan(&answer, &comment)
		if err != nil {
			t.Fatalf("failed to query response: %v", err)
		}
		if answer == nil || *answer != "Coffee" {
			t.Errorf("expected answer preserved, got %v", answer)
		}
		if comment == nil || *comment != "big coffee person" {
			t.Errorf("expected comment saved, got %v", comment)
		}
	})

	t.Run("comment on unacted item creates skip-shaped record", func(t *testing.T) {
		w := save(t, item2, "tough one")
		testutil.AssertStatus(t, w, http.StatusOK)

		var answer, comment *string
		err := db.QueryRow(`
			SELECT selected_answer, comment FROM item_response WHERE session_id = $1 AND item_id = $2
		`, sessionID, item2).Scan(&answer, &comment)
		if err != nil {
			t.Fatalf("failed to query response: %v", err)
		}
		if answer != nil {
			t.Errorf("expected null answer, got %v", *answer)
		}
		if comment == nil || *comment != "tough one" {
			t.Errorf("expected comment saved, got %v", comment)
		}
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		w := save(t, item1, "   ")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestFinishSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg)

	qwirlID, item1, item2 := openQwirl(t, db)

	finish := func(t *testing.T, sessionID, token string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/finish", nil,
			map[string]string{"X-Viewer-Token": token})
		req.SetPathValue("session_id", sessionID)
		w := httptest.NewRecorder()
		handler.FinishSession(w, req)
		return w
	}

	t.Run("wavelength counts matches over answered", func(t *testing.T) {
		sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer1")
		// item1 matches the owner (Coffee), item2 does not (owner picked Dogs)
		testutil.SubmitTestResponse(t, db, sessionID, item1, strPtr("Coffee"))
		testutil.SubmitTestResponse(t, db, sessionID, item2, strPtr("Cats"))

		w := finish(t, sessionID, token)
		testutil.AssertStatus(t, w, http.StatusOK)

		var summary models.SessionSummary
		testutil.AssertJSON(t, w, &summary)
		if summary.Status != models.SessionCompleted {
			t.Errorf("expected completed, got %s", summary.Status)
		}
		if summary.AnsweredCount != 2 {
			t.Errorf("expected 2 answered, got %d", summary.AnsweredCount)
		}
		if summary.Wavelength != 0.5 {
			t.Errorf("expected wavelength 0.5, got %v", summary.Wavelength)
		}
		if summary.FinishedAt == nil {
			t.Error("expected finished_at")
		}
	})

	t.Run("skips excluded from wavelength", func(t *testing.T) {
		sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer2")
		testutil.SubmitTestResponse(t, db, sessionID, item1, strPtr("Coffee"))
		testutil.SubmitTestResponse(t, db, sessionID, item2, nil)

		w := finish(t, sessionID, token)
		testutil.AssertStatus(t, w, http.StatusOK)

		var summary models.SessionSummary
		testutil.AssertJSON(t, w, &summary)
		if summary.AnsweredCount != 1 || summary.SkippedCount != 1 {
			t.Errorf("expected 1 answered / 1 skipped, got %d / %d",
				summary.AnsweredCount, summary.SkippedCount)
		}
		if summary.Wavelength != 1.0 {
			t.Errorf("expected wavelength 1.0, got %v", summary.Wavelength)
		}
	})

	t.Run("all skips scores zero", func(t *testing.T) {
		sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer3")
		testutil.SubmitTestResponse(t, db, sessionID, item1, nil)
		testutil.SubmitTestResponse(t, db, sessionID, item2, nil)

		w := finish(t, sessionID, token)
		testutil.AssertStatus(t, w, http.StatusOK)

		var summary models.SessionSummary
		testutil.AssertJSON(t, w, &summary)
		if summary.Wavelength != 0 {
			t.Errorf("expected wavelength 0, got %v", summary.Wavelength)
		}
	})

	t.Run("re-finish recomputes wavelength", func(t *testing.T) {
		sessionID, token := testutil.StartTestSession(t, db, qwirlID, "viewer4")
		testutil.SubmitTestResponse(t, db, sessionID, item1, strPtr("Tea"))

		w := finish(t, sessionID, token)
		testutil.AssertStatus(t, w, http.StatusOK)

		var summary models.SessionSummary
		testutil.AssertJSON(t, w, &summary)
		if summary.Wavelength != 0 {
			t.Fatalf("expected wavelength 0, got %v", summary.Wavelength)
		}

		// A late answer on the remaining item changes the score on re-finish
		testutil.SubmitTestResponse(t, db, sessionID, item2, strPtr("Dogs"))

		w = finish(t, sessionID, token)
		testutil.AssertStatus(t, w, http.StatusOK)

		testutil.AssertJSON(t, w, &summary)
		if summary.Wavelength != 0.5 {
			t.Errorf("expected wavelength 0.5 after re-finish, got %v", summary.Wavelength)
		}
	})
}
